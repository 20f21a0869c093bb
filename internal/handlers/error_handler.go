package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"hirehub/backend/internal/apperr"
)

// ErrorHandler maps the service error taxonomy onto HTTP statuses. It is
// installed as the Fiber app's error handler so the taxonomy applies to
// every route uniformly.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return c.Status(statusOf(appErr.Kind)).JSON(fiber.Map{
			"error": appErr.Msg,
			"kind":  appErr.Kind.String(),
		})
	}

	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindUnsupportedFormat, apperr.KindEmptyDocument:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindInvalidState:
		return fiber.StatusConflict
	case apperr.KindTimeout:
		return fiber.StatusGatewayTimeout
	case apperr.KindExternalService:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
