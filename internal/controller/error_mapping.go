package controller

import (
	"ai-chatbot-be/internal/apperror"
	"ai-chatbot-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// statusOf maps an error kind to its HTTP status. Inference failures are
// a bad-gateway condition: the upstream model failed, not this service.
func statusOf(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindInference:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(ctx *fiber.Ctx, err error) error {
	code := statusOf(err)
	return ctx.Status(code).JSON(serverutils.ErrorResponse(code, err.Error()))
}
