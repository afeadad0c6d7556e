package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/tourism-core/internal/app/middlewares"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/safatanc/tourism-core/internal/app/services"
)

type DestinationHandler struct {
	destinationService *services.DestinationService
	workflowService    *services.WorkflowService
	authMiddleware     *middlewares.AuthMiddleware
	rateLimiter        *middlewares.RateLimitMiddleware
}

func NewDestinationHandler(
	destinationService *services.DestinationService,
	workflowService *services.WorkflowService,
	authMiddleware *middlewares.AuthMiddleware,
	rateLimiter *middlewares.RateLimitMiddleware,
) *DestinationHandler {
	return &DestinationHandler{
		destinationService: destinationService,
		workflowService:    workflowService,
		authMiddleware:     authMiddleware,
		rateLimiter:        rateLimiter,
	}
}

func (h *DestinationHandler) RegisterRoutes(router fiber.Router) {
	destinationGroup := router.Group("/destinations")

	auth := h.authMiddleware.Authenticated()
	write := chain(auth, h.rateLimiter.LimitByUser(middlewares.TransitionLimit))

	destinationGroup.Get("/", h.rateLimiter.LimitByIP(middlewares.PublicAPILimit), h.ListApproved)
	destinationGroup.Get("/me", chain(auth, h.ListMine)...)
	destinationGroup.Get("/:id", h.authMiddleware.OptionalPrincipal, h.GetDestination)

	destinationGroup.Post("/", chain(write, h.CreateDestination)...)
	destinationGroup.Patch("/:id", chain(write, h.EditDestination)...)
	destinationGroup.Delete("/:id", chain(write, h.DeleteDestination)...)
	destinationGroup.Put("/:id/featured", chain(write, h.SetFeatured)...)

	destinationGroup.Post("/:id/submit", chain(write, h.Submit)...)
	destinationGroup.Post("/:id/approve", chain(write, h.Approve)...)
	destinationGroup.Post("/:id/reject", chain(write, h.Reject)...)
	destinationGroup.Post("/:id/request-revision", chain(write, h.RequestRevision)...)
	destinationGroup.Post("/:id/withdraw", chain(write, h.Withdraw)...)
	destinationGroup.Post("/:id/reset", chain(write, h.Reset)...)
}

func (h *DestinationHandler) ListApproved(c *fiber.Ctx) error {
	var pagination models.PaginationRequest
	if err := c.QueryParser(&pagination); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	destinations, err := h.destinationService.ListApproved(c.UserContext(), &pagination)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, destinations)
}

func (h *DestinationHandler) ListMine(c *fiber.Ctx) error {
	var pagination models.PaginationRequest
	if err := c.QueryParser(&pagination); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	principal := middlewares.MustPrincipal(c)
	destinations, err := h.destinationService.ListByOwner(c.UserContext(), principal.ID, &pagination)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, destinations)
}

func (h *DestinationHandler) GetDestination(c *fiber.Ctx) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	var viewer *models.Principal
	if principal, ok := middlewares.PrincipalFrom(c); ok {
		viewer = &principal
	}

	destination, err := h.destinationService.GetDestination(c.UserContext(), viewer, id)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, destination)
}

func (h *DestinationHandler) CreateDestination(c *fiber.Ctx) error {
	var req models.DestinationCreateRequest
	if err := pkg.ParseStrictBody(c, &req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.workflowService.CreateDestination(c.UserContext(), middlewares.MustPrincipal(c), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.CreatedResponse(c, result)
}

func (h *DestinationHandler) EditDestination(c *fiber.Ctx) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	var req models.DestinationUpdateRequest
	if err := pkg.ParseStrictBody(c, &req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.workflowService.EditDestination(c.UserContext(), middlewares.MustPrincipal(c), id, &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}

func (h *DestinationHandler) DeleteDestination(c *fiber.Ctx) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.workflowService.RequestTransition(c.UserContext(), middlewares.MustPrincipal(c), models.TransitionRequest{
		EntityType: models.ContentTypeDestination,
		EntityID:   id,
		Action:     models.ActionDelete,
		Cascade:    pkg.QueryBool(c, "cascade"),
	})
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}

func (h *DestinationHandler) SetFeatured(c *fiber.Ctx) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	var req models.DestinationFeatureRequest
	if err := pkg.ParseStrictBody(c, &req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	destination, err := h.destinationService.SetFeatured(c.UserContext(), middlewares.MustPrincipal(c), id, &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, destination)
}

func (h *DestinationHandler) Submit(c *fiber.Ctx) error {
	return h.transitionWithNotes(c, models.ActionSubmit)
}

func (h *DestinationHandler) Approve(c *fiber.Ctx) error {
	return h.transitionWithNotes(c, models.ActionApprove)
}

func (h *DestinationHandler) RequestRevision(c *fiber.Ctx) error {
	return h.transitionWithNotes(c, models.ActionRequestRevision)
}

func (h *DestinationHandler) Withdraw(c *fiber.Ctx) error {
	return h.transitionWithNotes(c, models.ActionWithdraw)
}

func (h *DestinationHandler) Reset(c *fiber.Ctx) error {
	return h.transitionWithNotes(c, models.ActionReset)
}

func (h *DestinationHandler) Reject(c *fiber.Ctx) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	var req models.ModerationRejectRequest
	if err := pkg.ParseStrictBody(c, &req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.workflowService.RequestTransition(c.UserContext(), middlewares.MustPrincipal(c), models.TransitionRequest{
		EntityType: models.ContentTypeDestination,
		EntityID:   id,
		Action:     models.ActionReject,
		Reason:     &req.Reason,
		Notes:      req.Notes,
	})
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}

func (h *DestinationHandler) transitionWithNotes(c *fiber.Ctx, action models.TransitionAction) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	var req models.ModerationNotesRequest
	if err := pkg.ParseStrictBody(c, &req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.workflowService.RequestTransition(c.UserContext(), middlewares.MustPrincipal(c), models.TransitionRequest{
		EntityType: models.ContentTypeDestination,
		EntityID:   id,
		Action:     action,
		Notes:      req.Notes,
	})
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}
