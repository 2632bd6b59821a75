package rbac

import (
	"regexp"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"task-approval-backend/models"
)

type Provider interface {
	GetRuleFunc(method, path string) (models.RbacFunc, bool)
	RegisterRule(module models.Module, permission models.Permission, roles []models.UserRole, swaggerPattern string, handler models.RbacFunc) error
	GetPermissions(role models.UserRole) map[models.Module][]models.Permission
}

var Instance Provider

func NewHandler() {
	i := newImpl()
	i.initRules()
	Instance = i
}

func newImpl() *impl {
	return &impl{
		rules:       map[HTTPMethod]*routeRules{},
		permissions: map[models.UserRole]map[models.Module][]models.Permission{},
	}
}

type impl struct {
	rules       map[HTTPMethod]*routeRules
	permissions map[models.UserRole]map[models.Module][]models.Permission
}

func (i *impl) GetRuleFunc(method, path string) (models.RbacFunc, bool) {
	rules, ok := i.rules[HTTPMethod(strings.ToUpper(method))]
	if !ok {
		return nil, false
	}
	path = normalizePath(path)
	if handler, ok := rules.exact[path]; ok {
		return handler, true
	}
	for _, rule := range rules.patterns {
		if rule.pattern.MatchString(path) {
			return rule.handler, true
		}
	}
	return nil, false
}

// RegisterRule binds a "/api/v1/path/{id} [method]" pattern to a check. A nil handler allows the listed roles.
func (i *impl) RegisterRule(module models.Module, permission models.Permission, roles []models.UserRole, swaggerPattern string, handler models.RbacFunc) error {
	path, method, err := parseSwaggerPattern(swaggerPattern)
	if err != nil {
		return err
	}
	for _, role := range roles {
		if _, ok := i.permissions[role]; !ok {
			i.permissions[role] = map[models.Module][]models.Permission{}
		}
		if !slices.Contains(i.permissions[role][module], permission) {
			i.permissions[role][module] = append(i.permissions[role][module], permission)
		}
	}
	if handler == nil {
		handler = AllowByRoleFunc(roles)
	}
	rules, ok := i.rules[method]
	if !ok {
		rules = &routeRules{exact: map[string]models.RbacFunc{}}
		i.rules[method] = rules
	}
	if !strings.Contains(path, "{") {
		rules.exact[path] = handler
		return nil
	}
	pattern, err := pathToRegex(path)
	if err != nil {
		return errors.Wrapf(err, "rule %v", swaggerPattern)
	}
	rules.patterns = append(rules.patterns, patternRule{pattern: pattern, handler: handler})
	return nil
}

func (i *impl) GetPermissions(role models.UserRole) map[models.Module][]models.Permission {
	return i.permissions[role]
}

var pathParamRe = regexp.MustCompile(`\{[^}]+?\}`)

func pathToRegex(path string) (*regexp.Regexp, error) {
	pattern := regexp.QuoteMeta(path)
	pattern = strings.ReplaceAll(pattern, `\{`, "{")
	pattern = strings.ReplaceAll(pattern, `\}`, "}")
	pattern = pathParamRe.ReplaceAllString(pattern, `([^/]+)`)
	return regexp.Compile("^" + pattern + "$")
}

func AllowFunc() models.RbacFunc {
	return func(userID string, role models.UserRole, uri string) bool {
		return true
	}
}

func AllowByRoleFunc(accessRoles []models.UserRole) models.RbacFunc {
	allowMap := map[models.UserRole]bool{}
	for _, role := range accessRoles {
		allowMap[role] = true
	}
	return func(userID string, role models.UserRole, uri string) bool {
		return allowMap[role]
	}
}

func parseSwaggerPattern(pattern string) (path string, method HTTPMethod, err error) {
	pattern = strings.TrimSpace(pattern)
	bracketStart := strings.LastIndex(pattern, "[")
	bracketEnd := strings.LastIndex(pattern, "]")
	if bracketStart == -1 || bracketEnd <= bracketStart {
		return "", "", errors.Errorf("method not provided for pattern (%v)", pattern)
	}
	path = normalizePath(pattern[:bracketStart])
	method = HTTPMethod(strings.ToUpper(strings.TrimSpace(pattern[bracketStart+1 : bracketEnd])))
	return path, method, nil
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
