package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"task-approval-backend/controllers"
	"task-approval-backend/lib/dashboard"
	"task-approval-backend/middleware"
	apimodels "task-approval-backend/models/api"
)

type dashboardApiController struct {
	controllers.BaseAPIController
}

func InitDashboardApiRouters(app *fiber.App) {
	controller := dashboardApiController{}
	app.Get("dashboard", controller.get)
}

// @Summary Dashboard
// @Tags Dashboard
// @Description Task counts and the caller's open work
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=dashboardapimodels.DashboardView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/dashboard [get]
func (c *dashboardApiController) get(ctx *fiber.Ctx) error {
	resp, err := dashboard.Instance.Get(middleware.GetActor(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load dashboard")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}
