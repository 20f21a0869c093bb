package handlers

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirehub/backend/internal/apperr"
)

func TestErrorHandlerStatusMapping(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation("bad input"), fiber.StatusBadRequest},
		{"unsupported format", apperr.UnsupportedFormat("no gifs"), fiber.StatusBadRequest},
		{"empty document", apperr.EmptyDocument("nothing extracted"), fiber.StatusBadRequest},
		{"not found", apperr.NotFound("no such session"), fiber.StatusNotFound},
		{"invalid state", apperr.InvalidState("already completed"), fiber.StatusConflict},
		{"timeout", apperr.Timeout("rpc timed out", nil), fiber.StatusGatewayTimeout},
		{"external service", apperr.ExternalService("model down", nil), fiber.StatusBadGateway},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
		{"fiber error", fiber.ErrUnauthorized, fiber.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/boom", func(c *fiber.Ctx) error {
				return tc.err
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
