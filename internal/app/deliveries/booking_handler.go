package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/tourism-core/internal/app/middlewares"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/safatanc/tourism-core/internal/app/services"
)

type BookingHandler struct {
	bookingService  *services.BookingService
	workflowService *services.WorkflowService
	authMiddleware  *middlewares.AuthMiddleware
	rateLimiter     *middlewares.RateLimitMiddleware
}

func NewBookingHandler(
	bookingService *services.BookingService,
	workflowService *services.WorkflowService,
	authMiddleware *middlewares.AuthMiddleware,
	rateLimiter *middlewares.RateLimitMiddleware,
) *BookingHandler {
	return &BookingHandler{
		bookingService:  bookingService,
		workflowService: workflowService,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
	}
}

func (h *BookingHandler) RegisterRoutes(router fiber.Router) {
	bookingGroup := router.Group("/bookings")

	auth := h.authMiddleware.Authenticated()
	write := chain(auth, h.rateLimiter.LimitByUser(middlewares.TransitionLimit))

	bookingGroup.Post("/", chain(write, h.CreateBooking)...)
	bookingGroup.Get("/me", chain(auth, h.ListMine)...)
	bookingGroup.Get("/guide", chain(auth, h.ListAsGuide)...)
	bookingGroup.Get("/:id", chain(auth, h.GetBooking)...)
	bookingGroup.Post("/:id/confirm", chain(write, h.Confirm)...)
	bookingGroup.Post("/:id/cancel", chain(write, h.Cancel)...)
	bookingGroup.Post("/:id/complete", chain(write, h.Complete)...)
}

func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	var req models.BookingCreateRequest
	if err := pkg.ParseStrictBody(c, &req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.workflowService.CreateBooking(c.UserContext(), middlewares.MustPrincipal(c), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.CreatedResponse(c, result)
}

func (h *BookingHandler) ListMine(c *fiber.Ctx) error {
	var req models.BookingListRequest
	if err := c.QueryParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	bookings, err := h.bookingService.ListAsTraveler(c.UserContext(), middlewares.MustPrincipal(c), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, bookings)
}

func (h *BookingHandler) ListAsGuide(c *fiber.Ctx) error {
	var req models.BookingListRequest
	if err := c.QueryParser(&req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	bookings, err := h.bookingService.ListAsGuide(c.UserContext(), middlewares.MustPrincipal(c), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, bookings)
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	booking, err := h.bookingService.GetBooking(c.UserContext(), middlewares.MustPrincipal(c), id)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, booking)
}

func (h *BookingHandler) Confirm(c *fiber.Ctx) error {
	return h.transition(c, models.ActionConfirm)
}

func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, models.ActionCancel)
}

func (h *BookingHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, models.ActionComplete)
}

func (h *BookingHandler) transition(c *fiber.Ctx, action models.TransitionAction) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	var req models.ModerationNotesRequest
	if err := pkg.ParseStrictBody(c, &req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.workflowService.RequestTransition(c.UserContext(), middlewares.MustPrincipal(c), models.TransitionRequest{
		EntityType: models.ContentTypeBooking,
		EntityID:   id,
		Action:     action,
		Notes:      req.Notes,
	})
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}
