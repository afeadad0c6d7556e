package pkg

import (
	stdErrors "errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		code      string
		message   string
		retryable bool
	}{
		{"app error", errors.NewInvalidStatusError("Destination is not pending"), fiber.StatusConflict, errors.CodeInvalidStatus, "Destination is not pending", false},
		{"conflict is retryable", errors.NewConflictError("race"), fiber.StatusConflict, errors.CodeConflict, "race", true},
		{"fiber not found", fiber.ErrNotFound, fiber.StatusNotFound, errors.CodeNotFound, "Not Found", false},
		{"fiber bad request", fiber.NewError(fiber.StatusBadRequest, "bad"), fiber.StatusBadRequest, errors.CodeInvalidData, "bad", false},
		{"plain error is hidden", stdErrors.New("pq: relation does not exist"), fiber.StatusInternalServerError, errors.CodeInternalError, "Internal Server Error", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return ErrorResponse(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decodeError(t, resp.Body)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Error)
			assert.Equal(t, tt.retryable, body.Retryable)
		})
	}
}

func TestCreatedResponse(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error { return CreatedResponse(c, "ok") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
