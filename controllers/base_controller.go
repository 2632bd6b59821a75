package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"task-approval-backend/middleware"
	"task-approval-backend/models"
	apimodels "task-approval-backend/models/api"
)

type BaseAPIController struct{}

func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		c.GetLogger(ctx).WithError(err).Warn("unable to parse request body")
		return errors.New("unable to read request data")
	}
	return nil
}

func (c *BaseAPIController) GetID(ctx *fiber.Ctx) (string, error) {
	return c.GetParam(ctx, "id")
}

func (c *BaseAPIController) GetParam(ctx *fiber.Ctx, name string) (string, error) {
	value := strings.TrimSpace(ctx.Params(name))
	if value == "" {
		return "", errors.Errorf("parameter %s is empty", name)
	}
	return value, nil
}

func (c *BaseAPIController) GetLogger(ctx *fiber.Ctx) *log.Entry {
	logger := log.
		WithField("method", ctx.Method()).
		WithField("path", ctx.Path())
	if userID := middleware.GetUserID(ctx); userID != "" {
		logger = logger.WithField("user_id", userID)
	}
	return logger
}

// errorStatus maps the workflow error taxonomy onto HTTP codes.
var errorStatus = []struct {
	target error
	status int
}{
	{models.ErrNotFound, fiber.StatusNotFound},
	{models.ErrTemplateNotFound, fiber.StatusNotFound},
	{models.ErrUnauthorized, fiber.StatusForbidden},
	{models.ErrInvalidTransition, fiber.StatusConflict},
	{models.ErrAlreadyProcessed, fiber.StatusConflict},
	{models.ErrTaskBusy, fiber.StatusConflict},
	{models.ErrEmptyChain, fiber.StatusUnprocessableEntity},
	{models.ErrNoPeersFound, fiber.StatusUnprocessableEntity},
	{models.ErrUnresolvableApprover, fiber.StatusUnprocessableEntity},
	{models.ErrTemplateNotApplicable, fiber.StatusUnprocessableEntity},
	{models.ErrValidation, fiber.StatusUnprocessableEntity},
}

func ErrorStatus(err error) int {
	for _, item := range errorStatus {
		if errors.Is(err, item.target) {
			return item.status
		}
	}
	return fiber.StatusInternalServerError
}

// SendError answers with the status of err. Unknown errors are logged and hidden behind msg.
func (c *BaseAPIController) SendError(ctx *fiber.Ctx, logger *log.Entry, err error, msg string) error {
	status := ErrorStatus(err)
	if status == fiber.StatusInternalServerError {
		logger.WithError(err).Error(msg)
		return ctx.Status(status).JSON(apimodels.NewError(msg))
	}
	return ctx.Status(status).JSON(apimodels.NewError(err.Error()))
}

func (c *BaseAPIController) SendBadRequest(ctx *fiber.Ctx, err error) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
}
