package dict

import (
	"github.com/gofiber/fiber/v2"
	"task-approval-backend/controllers"
	departmentprovider "task-approval-backend/lib/dicts/department"
	"task-approval-backend/middleware"
	apimodels "task-approval-backend/models/api"
	dictapimodels "task-approval-backend/models/api/dict"
)

type departmentDictApiController struct {
	controllers.BaseAPIController
}

func InitDepartmentDictApiRouters(app *fiber.App) {
	controller := departmentDictApiController{}
	app.Route("departments", func(router fiber.Router) {
		router.Get("tree", controller.departmentTree)
		router.Get(":id", controller.departmentGet)
		router.Use(middleware.AdminRequired())
		router.Post("", controller.departmentCreate)
		router.Put(":id", controller.departmentUpdate)
		router.Delete(":id", controller.departmentDelete)
	})
}

// @Summary Create
// @Tags Dictionary. Department
// @Description Create
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 dictapimodels.DepartmentData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/dict/departments [post]
func (c *departmentDictApiController) departmentCreate(ctx *fiber.Ctx) error {
	var payload dictapimodels.DepartmentData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return c.SendBadRequest(ctx, err)
	}
	if err := payload.Validate(); err != nil {
		return c.SendBadRequest(ctx, err)
	}
	id, err := departmentprovider.Instance.Create(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to create department")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Update
// @Tags Dictionary. Department
// @Description Update
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 dictapimodels.DepartmentData	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/dict/departments/{id} [put]
func (c *departmentDictApiController) departmentUpdate(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	var payload dictapimodels.DepartmentData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return c.SendBadRequest(ctx, err)
	}
	if err = payload.Validate(); err != nil {
		return c.SendBadRequest(ctx, err)
	}
	err = departmentprovider.Instance.Update(id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to update department")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Get by ID
// @Tags Dictionary. Department
// @Description Get by ID
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=dictapimodels.DepartmentView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/dict/departments/{id} [get]
func (c *departmentDictApiController) departmentGet(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	resp, err := departmentprovider.Instance.Get(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load department")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Delete
// @Tags Dictionary. Department
// @Description Delete
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/dict/departments/{id} [delete]
func (c *departmentDictApiController) departmentDelete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	err = departmentprovider.Instance.Delete(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to delete department")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Department tree
// @Tags Dictionary. Department
// @Description Department tree, filtered by name when set
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   name        		query   string  				    	false        "part of department name"
// @Success 200 {object} apimodels.Response{data=[]dictapimodels.DepartmentTreeItem}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/dict/departments/tree [get]
func (c *departmentDictApiController) departmentTree(ctx *fiber.Ctx) error {
	payload := dictapimodels.DepartmentFind{Name: ctx.Query("name")}
	resp, err := departmentprovider.Instance.Tree(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load department tree")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}
