package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/tourism-core/internal/app/middlewares"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/safatanc/tourism-core/internal/app/services"
)

type GuideHandler struct {
	guideService    *services.GuideService
	workflowService *services.WorkflowService
	authMiddleware  *middlewares.AuthMiddleware
	rateLimiter     *middlewares.RateLimitMiddleware
}

func NewGuideHandler(
	guideService *services.GuideService,
	workflowService *services.WorkflowService,
	authMiddleware *middlewares.AuthMiddleware,
	rateLimiter *middlewares.RateLimitMiddleware,
) *GuideHandler {
	return &GuideHandler{
		guideService:    guideService,
		workflowService: workflowService,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
	}
}

func (h *GuideHandler) RegisterRoutes(router fiber.Router) {
	guideGroup := router.Group("/guides")

	auth := h.authMiddleware.Authenticated()
	write := chain(auth, h.rateLimiter.LimitByUser(middlewares.TransitionLimit))

	guideGroup.Post("/apply", chain(write, h.Apply)...)
	guideGroup.Get("/verifications", chain(auth, h.rateLimiter.LimitByUser(middlewares.ModerationAPILimit), h.ListVerifications)...)
	guideGroup.Get("/verifications/me", chain(auth, h.ListMine)...)
	guideGroup.Post("/verifications/:id/approve", chain(write, h.Approve)...)
	guideGroup.Post("/verifications/:id/reject", chain(write, h.Reject)...)
}

func (h *GuideHandler) Apply(c *fiber.Ctx) error {
	var req models.GuideApplicationRequest
	if err := pkg.ParseStrictBody(c, &req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.workflowService.ApplyAsGuide(c.UserContext(), middlewares.MustPrincipal(c), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.CreatedResponse(c, result)
}

func (h *GuideHandler) ListVerifications(c *fiber.Ctx) error {
	var req models.VerificationListRequest
	if err := c.QueryParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	verifications, err := h.guideService.ListVerifications(c.UserContext(), middlewares.MustPrincipal(c), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, verifications)
}

func (h *GuideHandler) ListMine(c *fiber.Ctx) error {
	verifications, err := h.guideService.ListMine(c.UserContext(), middlewares.MustPrincipal(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, verifications)
}

func (h *GuideHandler) Approve(c *fiber.Ctx) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	var req models.ModerationNotesRequest
	if err := pkg.ParseStrictBody(c, &req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.workflowService.RequestTransition(c.UserContext(), middlewares.MustPrincipal(c), models.TransitionRequest{
		EntityType: models.ContentTypeGuideVerification,
		EntityID:   id,
		Action:     models.ActionApprove,
		Notes:      req.Notes,
	})
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}

func (h *GuideHandler) Reject(c *fiber.Ctx) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	var req models.VerificationRejectRequest
	if err := pkg.ParseStrictBody(c, &req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.workflowService.RequestTransition(c.UserContext(), middlewares.MustPrincipal(c), models.TransitionRequest{
		EntityType: models.ContentTypeGuideVerification,
		EntityID:   id,
		Action:     models.ActionReject,
		Reason:     req.Reason,
		Notes:      req.Notes,
	})
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}
