package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"task-approval-backend/controllers"
	taskcommenthandler "task-approval-backend/lib/task-comment"
	"task-approval-backend/middleware"
	apimodels "task-approval-backend/models/api"
	taskapimodels "task-approval-backend/models/api/task"
)

type taskCommentApiController struct {
	controllers.BaseAPIController
}

func InitTaskCommentApiRouters(app *fiber.App) {
	controller := taskCommentApiController{}
	app.Route("tasks/:id/comments", func(router fiber.Router) {
		router.Post("", controller.add)
		router.Get("", controller.list)
	})
}

// @Summary Add comment
// @Tags Task comments
// @Description Adds a comment to the task
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Param	body body	 taskapimodels.CommentData	true	"request body"
// @Success 200 {object} apimodels.Response{data=taskapimodels.CommentView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/comments [post]
func (c *taskCommentApiController) add(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	var payload taskapimodels.CommentData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return c.SendBadRequest(ctx, err)
	}
	resp, err := taskcommenthandler.Instance.AddComment(middleware.GetActor(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to add comment")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Comment list
// @Tags Task comments
// @Description Comments of the task, oldest first
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Success 200 {object} apimodels.Response{data=[]taskapimodels.CommentView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/comments [get]
func (c *taskCommentApiController) list(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	resp, err := taskcommenthandler.Instance.List(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load comments")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}
