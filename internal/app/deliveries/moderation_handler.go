package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/tourism-core/internal/app/middlewares"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/safatanc/tourism-core/internal/app/services"
)

type ModerationHandler struct {
	moderationService    *services.ModerationService
	authMiddleware       *middlewares.AuthMiddleware
	permissionMiddleware *middlewares.PermissionMiddleware
	rateLimiter          *middlewares.RateLimitMiddleware
}

func NewModerationHandler(
	moderationService *services.ModerationService,
	authMiddleware *middlewares.AuthMiddleware,
	permissionMiddleware *middlewares.PermissionMiddleware,
	rateLimiter *middlewares.RateLimitMiddleware,
) *ModerationHandler {
	return &ModerationHandler{
		moderationService:    moderationService,
		authMiddleware:       authMiddleware,
		permissionMiddleware: permissionMiddleware,
		rateLimiter:          rateLimiter,
	}
}

func (h *ModerationHandler) RegisterRoutes(router fiber.Router) {
	moderationGroup := router.Group("/moderation")

	reviewer := chain(h.authMiddleware.Authenticated(),
		h.permissionMiddleware.Require(services.PermModerationQueueRead),
		h.rateLimiter.LimitByUser(middlewares.ModerationAPILimit),
	)

	moderationGroup.Get("/queue", chain(reviewer, h.GetQueue)...)
	moderationGroup.Get("/history/:content_type/:id", chain(reviewer, h.GetHistory)...)
}

func (h *ModerationHandler) GetQueue(c *fiber.Ctx) error {
	var req models.ModerationQueueRequest
	if err := c.QueryParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	queue, err := h.moderationService.Queue(c.UserContext(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, queue)
}

func (h *ModerationHandler) GetHistory(c *fiber.Ctx) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	history, err := h.moderationService.History(c.UserContext(), models.ContentType(c.Params("content_type")), id)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, history)
}
