package middlewares

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/safatanc/tourism-core/internal/app/services"
)

// AuditMiddleware stores request metadata in the user context for services
// and records every mutating request once the handler has answered.
type AuditMiddleware struct {
	auditService *services.AuditService
}

func NewAuditMiddleware(auditService *services.AuditService) *AuditMiddleware {
	return &AuditMiddleware{auditService: auditService}
}

func (m *AuditMiddleware) Capture(c *fiber.Ctx) error {
	// fiber reuses request buffers; the meta outlives the handler
	meta := models.RequestMeta{
		IPAddress:     utils.CopyString(getIPAddress(c)),
		RequestMethod: utils.CopyString(c.Method()),
		RequestURL:    utils.CopyString(c.OriginalURL()),
	}
	c.SetUserContext(pkg.WithRequestMeta(c.UserContext(), meta))

	err := c.Next()

	if !isMutating(c.Method()) {
		return err
	}

	meta.StatusCode = c.Response().StatusCode()
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			meta.StatusCode = fiberErr.Code
		}
	}

	entry := services.AuditEntry{
		Action:       fmt.Sprintf("http.%s", strings.ToLower(c.Method())),
		ResourceType: utils.CopyString(resourceType(c)),
		ResourceID:   utils.CopyString(c.Params("id")),
		Meta:         meta,
	}
	if principal, ok := PrincipalFrom(c); ok {
		id := principal.ID
		entry.UserID = &id
	}
	m.auditService.Record(c.UserContext(), entry)

	return err
}

func isMutating(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		return true
	}
	return false
}

// resourceType is the first path segment after the API prefix, e.g.
// "destinations" for /api/v1/destinations/:id.
func resourceType(c *fiber.Ctx) string {
	segments := strings.Split(strings.Trim(c.Path(), "/"), "/")
	if len(segments) >= 2 && segments[0] == "api" && strings.HasPrefix(segments[1], "v") {
		segments = segments[2:]
	}
	if len(segments) == 0 || segments[0] == "" {
		return "root"
	}
	return segments[0]
}
