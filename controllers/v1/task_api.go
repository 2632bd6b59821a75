package apiv1

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"task-approval-backend/controllers"
	pdfexport "task-approval-backend/lib/export/pdf"
	taskhandler "task-approval-backend/lib/task"
	tasknodehandler "task-approval-backend/lib/task-node"
	"task-approval-backend/lib/workflow"
	"task-approval-backend/middleware"
	apimodels "task-approval-backend/models/api"
	taskapimodels "task-approval-backend/models/api/task"
)

type taskApiController struct {
	controllers.BaseAPIController
}

func InitTaskApiRouters(app *fiber.App) {
	controller := taskApiController{}
	app.Route("tasks", func(router fiber.Router) {
		router.Post("", controller.create)
		router.Post("list", controller.list)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Delete("", controller.delete)
			idRoute.Put("start", controller.start)
			idRoute.Put("complete", controller.complete)
			idRoute.Put("forward", controller.forward)
			idRoute.Put("reject", controller.reject)
			idRoute.Put("approve", controller.approve)
			idRoute.Put("reject_stage", controller.rejectStage)
			idRoute.Get("nodes", controller.nodes)
			idRoute.Get("history", controller.history)
			idRoute.Get("approval_sheet", controller.approvalSheet)
		})
	})
}

// @Summary Create task
// @Tags Tasks
// @Description Creates a task and materializes its approval chain
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 taskapimodels.TaskData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks [post]
func (c *taskApiController) create(ctx *fiber.Ctx) error {
	var payload taskapimodels.TaskData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return c.SendBadRequest(ctx, err)
	}
	id, err := taskhandler.Instance.Create(ctx.UserContext(), middleware.GetActor(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to create task")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Task list
// @Tags Tasks
// @Description Task list with filter and pagination
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 taskapimodels.TaskFilter	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]taskapimodels.TaskView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/list [post]
func (c *taskApiController) list(ctx *fiber.Ctx) error {
	var payload taskapimodels.TaskFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return c.SendBadRequest(ctx, err)
	}
	list, rowCount, err := taskhandler.Instance.List(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load task list")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Task by ID
// @Tags Tasks
// @Description Task with approvers, forwarding nodes, comments and attachments
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Success 200 {object} apimodels.Response{data=taskapimodels.TaskDetailView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id} [get]
func (c *taskApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	resp, err := taskhandler.Instance.Get(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load task")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Delete task
// @Tags Tasks
// @Description Deletes the task, allowed to its creator and administrators
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id} [delete]
func (c *taskApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	err = taskhandler.Instance.Delete(ctx.UserContext(), middleware.GetActor(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to delete task")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

type actionFunc func(ctx *fiber.Ctx, id string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error)

// action runs a workflow transition that takes an optional comment.
func (c *taskApiController) action(ctx *fiber.Ctx, msg string, fn actionFunc) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	var payload taskapimodels.ActionRequest
	if len(ctx.Body()) != 0 {
		if err = c.BodyParser(ctx, &payload); err != nil {
			return c.SendBadRequest(ctx, err)
		}
	}
	resp, err := fn(ctx, id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, msg)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Start task
// @Tags Task flow
// @Description open -> in_progress, by the assignee or a holder of the assignee role
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Param	body body	 taskapimodels.ActionRequest	false	"request body"
// @Success 200 {object} apimodels.Response{data=taskapimodels.TaskView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/start [put]
func (c *taskApiController) start(ctx *fiber.Ctx) error {
	return c.action(ctx, "unable to start task", func(ctx *fiber.Ctx, id string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error) {
		return workflow.Instance.Start(ctx.UserContext(), middleware.GetActor(ctx), id, data)
	})
}

// @Summary Complete task
// @Tags Task flow
// @Description in_progress -> pending_approval, or completed when the task has no approvers
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Param	body body	 taskapimodels.ActionRequest	false	"request body"
// @Success 200 {object} apimodels.Response{data=taskapimodels.TaskView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/complete [put]
func (c *taskApiController) complete(ctx *fiber.Ctx) error {
	return c.action(ctx, "unable to complete task", func(ctx *fiber.Ctx, id string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error) {
		return workflow.Instance.Complete(ctx.UserContext(), middleware.GetActor(ctx), id, data)
	})
}

// @Summary Forward task
// @Tags Task flow
// @Description Hands the task over to another user and records a forwarding node
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Param	body body	 taskapimodels.ForwardRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=taskapimodels.TaskView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/forward [put]
func (c *taskApiController) forward(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	var payload taskapimodels.ForwardRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return c.SendBadRequest(ctx, err)
	}
	resp, err := workflow.Instance.Forward(ctx.UserContext(), middleware.GetActor(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to forward task")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Reject task
// @Tags Task flow
// @Description in_progress -> rejected
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Param	body body	 taskapimodels.ActionRequest	false	"request body"
// @Success 200 {object} apimodels.Response{data=taskapimodels.TaskView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/reject [put]
func (c *taskApiController) reject(ctx *fiber.Ctx) error {
	return c.action(ctx, "unable to reject task", func(ctx *fiber.Ctx, id string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error) {
		return workflow.Instance.Reject(ctx.UserContext(), middleware.GetActor(ctx), id, data)
	})
}

// @Summary Approve stage
// @Tags Task flow
// @Description Approves the current stage of the caller
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Param	body body	 taskapimodels.ActionRequest	false	"request body"
// @Success 200 {object} apimodels.Response{data=taskapimodels.TaskView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/approve [put]
func (c *taskApiController) approve(ctx *fiber.Ctx) error {
	return c.action(ctx, "unable to approve task", func(ctx *fiber.Ctx, id string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error) {
		return workflow.Instance.Approve(ctx.UserContext(), middleware.GetActor(ctx), id, data)
	})
}

// @Summary Reject stage
// @Tags Task flow
// @Description Rejects a pending stage of the caller, the task becomes rejected
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Param	body body	 taskapimodels.ActionRequest	false	"request body"
// @Success 200 {object} apimodels.Response{data=taskapimodels.TaskView}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/reject_stage [put]
func (c *taskApiController) rejectStage(ctx *fiber.Ctx) error {
	return c.action(ctx, "unable to reject stage", func(ctx *fiber.Ctx, id string, data taskapimodels.ActionRequest) (taskapimodels.TaskView, error) {
		return workflow.Instance.RejectStage(ctx.UserContext(), middleware.GetActor(ctx), id, data)
	})
}

// @Summary Forwarding ledger
// @Tags Tasks
// @Description Forwarding nodes in order and the replayed hand-off path
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Success 200 {object} apimodels.Response{data=taskapimodels.LedgerView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/nodes [get]
func (c *taskApiController) nodes(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	resp, err := tasknodehandler.Instance.Ledger(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load forwarding ledger")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Task history
// @Tags Tasks
// @Description Transitions of the task in order
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Success 200 {object} apimodels.Response{data=[]taskapimodels.HistoryView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/history [get]
func (c *taskApiController) history(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	resp, err := taskhandler.Instance.History(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load task history")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Approval sheet
// @Tags Tasks
// @Description PDF with the task summary, approval chain and forwarding path
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Success 200 {file} file
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/approval_sheet [get]
func (c *taskApiController) approvalSheet(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	task, err := taskhandler.Instance.Get(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load task")
	}
	ledger, err := tasknodehandler.Instance.Ledger(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load forwarding ledger")
	}
	body, err := pdfexport.TaskApprovalSheet(task, ledger)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to build approval sheet")
	}
	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="task-%v.pdf"`, id))
	return ctx.Send(body)
}
