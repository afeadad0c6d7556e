package middlewares

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditMiddleware_Capture(t *testing.T) {
	h := newHarness(t)
	audit := NewAuditMiddleware(h.audit)

	var seen models.RequestMeta
	app := fiber.New()
	app.Use(audit.Capture)
	app.Get("/destinations/:id", func(c *fiber.Ctx) error {
		seen = pkg.RequestMetaFrom(c.UserContext())
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/destinations/:id/approve", func(c *fiber.Ctx) error {
		return pkg.ErrorResponse(c, errors.NewInvalidStatusError("Destination is not pending"))
	})

	req := httptest.NewRequest(fiber.MethodGet, "/destinations/abc?page=2", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.5", seen.IPAddress)
	assert.Equal(t, "/destinations/abc?page=2", seen.RequestURL)

	req = httptest.NewRequest(fiber.MethodPost, "/destinations/abc/approve", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	h.dispatcher.Flush()

	logs, err := h.audit.GetAuditLogs(context.Background(), &models.AuditLogListRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, logs.TotalItems)

	row := logs.Items[0]
	assert.Equal(t, "http.post", row.Action)
	assert.Equal(t, "destinations", row.ResourceType)
	assert.Equal(t, "abc", row.ResourceID)
	assert.Equal(t, fiber.StatusConflict, row.StatusCode)
	assert.Equal(t, "203.0.113.5", row.IPAddress)
	assert.Nil(t, row.UserID)
}

func TestResourceType(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error { return c.SendString(resourceType(c)) })

	for path, want := range map[string]string{
		"/api/v1/destinations/abc/approve": "destinations",
		"/bookings/1":                      "bookings",
		"/api/v1":                          "root",
		"/":                                "root",
	} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, path, nil))
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, want, string(body), path)
	}
}
