package middleware

import (
	"github.com/gofiber/fiber/v2"
	authutils "task-approval-backend/lib/utils/auth-utils"
	"task-approval-backend/models"
	apimodels "task-approval-backend/models/api"
)

func GetUserID(ctx *fiber.Ctx) string {
	claims := authutils.GetClaims(ctx)
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}

func GetUserRole(ctx *fiber.Ctx) models.UserRole {
	claims := authutils.GetClaims(ctx)
	if role, ok := claims["role"].(string); ok {
		return models.UserRole(role)
	}
	return ""
}

// GetActor is the acting user of the request as the engine sees it.
func GetActor(ctx *fiber.Ctx) models.Actor {
	return models.Actor{
		UserID: GetUserID(ctx),
		Role:   GetUserRole(ctx),
	}
}

func AdminRequired() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !GetUserRole(ctx).IsAdmin() {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("operation is not available"))
		}
		return ctx.Next()
	}
}
