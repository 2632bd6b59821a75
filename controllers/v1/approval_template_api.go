package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"task-approval-backend/controllers"
	approvaltemplate "task-approval-backend/lib/approval-template"
	"task-approval-backend/middleware"
	apimodels "task-approval-backend/models/api"
	approvalapimodels "task-approval-backend/models/api/approval"
)

type approvalTemplateApiController struct {
	controllers.BaseAPIController
}

func InitApprovalTemplateApiRouters(app *fiber.App) {
	controller := approvalTemplateApiController{}
	app.Route("approval_templates", func(router fiber.Router) {
		router.Post("list", controller.list)
		router.Get(":id", controller.get)
		router.Use(middleware.AdminRequired())
		router.Post("", controller.create)
		router.Put(":id", controller.update)
		router.Delete(":id", controller.delete)
	})
}

// @Summary Template list
// @Tags Approval templates
// @Description Predefined approval chains
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 approvalapimodels.TemplateFilter	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]approvalapimodels.TemplateView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approval_templates/list [post]
func (c *approvalTemplateApiController) list(ctx *fiber.Ctx) error {
	var payload approvalapimodels.TemplateFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return c.SendBadRequest(ctx, err)
	}
	list, rowCount, err := approvaltemplate.Instance.List(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load templates")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Template by ID
// @Tags Approval templates
// @Description Template with its stages
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "template ID"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.TemplateView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approval_templates/{id} [get]
func (c *approvalTemplateApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	resp, err := approvaltemplate.Instance.Get(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load template")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Create template
// @Tags Approval templates
// @Description Create template
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 approvalapimodels.TemplateData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approval_templates [post]
func (c *approvalTemplateApiController) create(ctx *fiber.Ctx) error {
	var payload approvalapimodels.TemplateData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return c.SendBadRequest(ctx, err)
	}
	id, err := approvaltemplate.Instance.Create(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to create template")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Update template
// @Tags Approval templates
// @Description Replaces the template with its stages, chains of existing tasks stay as they are
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "template ID"
// @Param	body body	 approvalapimodels.TemplateData	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approval_templates/{id} [put]
func (c *approvalTemplateApiController) update(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	var payload approvalapimodels.TemplateData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return c.SendBadRequest(ctx, err)
	}
	err = approvaltemplate.Instance.Update(id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to update template")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Delete template
// @Tags Approval templates
// @Description Delete template
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "template ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approval_templates/{id} [delete]
func (c *approvalTemplateApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	err = approvaltemplate.Instance.Delete(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to delete template")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
