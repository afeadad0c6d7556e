package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/tourism-core/internal/app/middlewares"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/safatanc/tourism-core/internal/app/services"
)

type AuditHandler struct {
	auditService         *services.AuditService
	authMiddleware       *middlewares.AuthMiddleware
	permissionMiddleware *middlewares.PermissionMiddleware
}

func NewAuditHandler(
	auditService *services.AuditService,
	authMiddleware *middlewares.AuthMiddleware,
	permissionMiddleware *middlewares.PermissionMiddleware,
) *AuditHandler {
	return &AuditHandler{
		auditService:         auditService,
		authMiddleware:       authMiddleware,
		permissionMiddleware: permissionMiddleware,
	}
}

func (h *AuditHandler) RegisterRoutes(router fiber.Router) {
	auditGroup := router.Group("/audit-logs")

	reader := chain(h.authMiddleware.Authenticated(), h.permissionMiddleware.Require(services.PermAuditRead))

	auditGroup.Get("/", chain(reader, h.GetAuditLogs)...)
	auditGroup.Get("/:resource_type/:resource_id", chain(reader, h.GetResourceTrail)...)
}

func (h *AuditHandler) GetAuditLogs(c *fiber.Ctx) error {
	var req models.AuditLogListRequest
	if err := c.QueryParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	logs, err := h.auditService.GetAuditLogs(c.UserContext(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, logs)
}

func (h *AuditHandler) GetResourceTrail(c *fiber.Ctx) error {
	logs, err := h.auditService.GetResourceTrail(c.UserContext(), c.Params("resource_type"), c.Params("resource_id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, logs)
}
