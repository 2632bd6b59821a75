package rbac

import (
	"regexp"

	"task-approval-backend/models"
)

type HTTPMethod string

const (
	GET    HTTPMethod = "GET"
	POST   HTTPMethod = "POST"
	PUT    HTTPMethod = "PUT"
	DELETE HTTPMethod = "DELETE"
)

type routeRules struct {
	exact    map[string]models.RbacFunc
	patterns []patternRule
}

type patternRule struct {
	pattern *regexp.Regexp
	handler models.RbacFunc
}
