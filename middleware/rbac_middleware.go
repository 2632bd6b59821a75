package middleware

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"task-approval-backend/lib/rbac"
	apimodels "task-approval-backend/models/api"
)

const rbacForbidden = "RBAC_FORBIDDEN"

func RbacMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		actor := GetActor(ctx)
		if actor.UserID == "" || actor.Role == "" {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError(rbacForbidden))
		}
		handler, found := rbac.Instance.GetRuleFunc(ctx.Method(), ctx.Path())
		if !found {
			return ctx.Next()
		}
		if !handler(actor.UserID, actor.Role, ctx.Path()) {
			log.
				WithField("user_id", actor.UserID).
				WithField("role", actor.Role).
				WithField("path", ctx.Path()).
				Info("request denied by rbac")
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError(rbacForbidden))
		}
		return ctx.Next()
	}
}
