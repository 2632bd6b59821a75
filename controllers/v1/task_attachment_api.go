package apiv1

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"task-approval-backend/controllers"
	filestorage "task-approval-backend/lib/file-storage"
	"task-approval-backend/middleware"
	apimodels "task-approval-backend/models/api"
	dbmodels "task-approval-backend/models/db"
)

type taskAttachmentApiController struct {
	controllers.BaseAPIController
}

func InitTaskAttachmentApiRouters(app *fiber.App) {
	controller := taskAttachmentApiController{}
	app.Route("tasks/:id/attachments", func(router fiber.Router) {
		router.Post("", controller.upload)
		router.Get("", controller.list)
		router.Get(":fileId", controller.download)
	})
}

// @Summary Upload attachment
// @Tags Task attachments
// @Description Uploads a file to the task
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Param   file		formData	file 	true 	"file to upload"
// @Success 200 {object} apimodels.Response{data=taskapimodels.AttachmentView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/attachments [post]
func (c *taskAttachmentApiController) upload(ctx *fiber.Ctx) error {
	if filestorage.Instance == nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(apimodels.NewError("file storage is not configured"))
	}
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	buffer, err := file.Open()
	if err != nil {
		c.GetLogger(ctx).WithError(err).Error("unable to open uploaded file")
		return c.SendBadRequest(ctx, err)
	}
	defer buffer.Close()

	actor := middleware.GetActor(ctx)
	info := dbmodels.UploadFileInfo{
		TaskID:      id,
		UserID:      actor.UserID,
		FileName:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
	}
	resp, err := filestorage.Instance.Upload(ctx.UserContext(), actor, info, buffer, file.Size)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to upload file")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Attachment list
// @Tags Task attachments
// @Description Files of the task
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Success 200 {object} apimodels.Response{data=[]taskapimodels.AttachmentView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/attachments [get]
func (c *taskAttachmentApiController) list(ctx *fiber.Ctx) error {
	if filestorage.Instance == nil {
		return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse([]interface{}{}))
	}
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	resp, err := filestorage.Instance.List(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to load attachments")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Download attachment
// @Tags Task attachments
// @Description Streams the file content
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "task ID"
// @Param   fileId         		path    string  				    	true         "file ID"
// @Success 200 {file} file
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/attachments/{fileId} [get]
func (c *taskAttachmentApiController) download(ctx *fiber.Ctx) error {
	if filestorage.Instance == nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(apimodels.NewError("file storage is not configured"))
	}
	id, err := c.GetID(ctx)
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	fileID, err := c.GetParam(ctx, "fileId")
	if err != nil {
		return c.SendBadRequest(ctx, err)
	}
	rec, body, err := filestorage.Instance.Download(ctx.UserContext(), id, fileID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "unable to download file")
	}
	if rec.MimeType != "" {
		ctx.Set(fiber.HeaderContentType, rec.MimeType)
	}
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%v"`, rec.Filename))
	return ctx.SendStream(body)
}
