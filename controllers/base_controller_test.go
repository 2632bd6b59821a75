package controllers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"task-approval-backend/models"
)

func TestErrorStatus(t *testing.T) {
	cases := map[error]int{
		errors.Wrap(models.ErrNotFound, "task 1"):         fiber.StatusNotFound,
		errors.Wrap(models.ErrTemplateNotFound, "t"):      fiber.StatusNotFound,
		errors.Wrap(models.ErrUnauthorized, "x"):          fiber.StatusForbidden,
		errors.Wrap(models.ErrInvalidTransition, "x"):     fiber.StatusConflict,
		errors.Wrap(models.ErrAlreadyProcessed, "x"):      fiber.StatusConflict,
		errors.Wrap(models.ErrTaskBusy, "x"):              fiber.StatusConflict,
		errors.Wrap(models.ErrEmptyChain, "x"):            fiber.StatusUnprocessableEntity,
		errors.Wrap(models.ErrNoPeersFound, "x"):          fiber.StatusUnprocessableEntity,
		errors.Wrap(models.ErrUnresolvableApprover, "x"):  fiber.StatusUnprocessableEntity,
		errors.Wrap(models.ErrTemplateNotApplicable, "x"): fiber.StatusUnprocessableEntity,
		errors.Wrap(models.ErrValidation, "x"):            fiber.StatusUnprocessableEntity,
		errors.New("connection refused"):                  fiber.StatusInternalServerError,
	}
	for err, status := range cases {
		t.Run(err.Error(), func(t *testing.T) {
			require.Equal(t, status, ErrorStatus(err))
		})
	}
}
