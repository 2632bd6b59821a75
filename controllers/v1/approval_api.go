package apiv1

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"task-approval-backend/controllers"
	approvalquery "task-approval-backend/lib/approval-query"
	xlsexport "task-approval-backend/lib/export/xls"
	"task-approval-backend/middleware"
	apimodels "task-approval-backend/models/api"
)

type approvalApiController struct {
	controllers.BaseAPIController
}

func InitApprovalApiRouters(app *fiber.App) {
	controller := approvalApiController{}
	app.Route("approvals", func(router fiber.Router) {
		router.Get("my", controller.my)
		router.Get("pending", controller.pending)
		router.Get("history", controller.history)
		router.Get("history/export", controller.historyExport)
	})
}

// @Summary My approvals
// @Tags Approvals
// @Description Pending approval rows of the caller, actionable ones are flagged
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]approvalapimodels.ApprovalView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/my [get]
func (c *approvalApiController) my(ctx *fiber.Ctx) error {
	resp, err := approvalquery.Instance.MyApprovals(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load approvals")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Pending approvals
// @Tags Approvals
// @Description Pending approval rows of all approvers holding the role, all roles when empty
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   role        		query   string  				    	false        "approver role"
// @Success 200 {object} apimodels.Response{data=[]approvalapimodels.ApprovalView}
// @Failure 403 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/pending [get]
func (c *approvalApiController) pending(ctx *fiber.Ctx) error {
	resp, err := approvalquery.Instance.PendingApprovals(middleware.GetActor(ctx), ctx.Query("role"))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load pending approvals")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Approval history
// @Tags Approvals
// @Description Approval rows of the caller, most recent decision first
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]approvalapimodels.ApprovalView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/history [get]
func (c *approvalApiController) history(ctx *fiber.Ctx) error {
	resp, err := approvalquery.Instance.ApprovalHistory(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load approval history")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Approval history export
// @Tags Approvals
// @Description Approval history of the caller as an Excel file
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {file} file
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/history/export [get]
func (c *approvalApiController) historyExport(ctx *fiber.Ctx) error {
	list, err := approvalquery.Instance.ApprovalHistory(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load approval history")
	}
	data, err := xlsexport.Instance.ExportApprovalHistory(list)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to export approval history")
	}
	fileName := fmt.Sprintf("approvals-%v.xlsx", time.Now().Format("20060102-150405"))
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(data)
}
