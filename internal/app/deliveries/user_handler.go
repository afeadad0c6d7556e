package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/tourism-core/internal/app/middlewares"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/safatanc/tourism-core/internal/app/services"
)

type UserHandler struct {
	userService     *services.UserService
	workflowService *services.WorkflowService
	authMiddleware  *middlewares.AuthMiddleware
	rateLimiter     *middlewares.RateLimitMiddleware
}

func NewUserHandler(
	userService *services.UserService,
	workflowService *services.WorkflowService,
	authMiddleware *middlewares.AuthMiddleware,
	rateLimiter *middlewares.RateLimitMiddleware,
) *UserHandler {
	return &UserHandler{
		userService:     userService,
		workflowService: workflowService,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
	}
}

func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userGroup := router.Group("/users")

	auth := h.authMiddleware.Authenticated()
	write := chain(auth, h.rateLimiter.LimitByUser(middlewares.TransitionLimit))

	// registration only needs a valid token; the local record does not exist yet
	userGroup.Post("/register", h.rateLimiter.LimitByIP(middlewares.RegisterLimit), h.authMiddleware.AuthToken, h.Register)
	userGroup.Get("/me", chain(auth, h.GetMe)...)

	userGroup.Post("/:id/role", chain(write, h.ChangeRole)...)
	userGroup.Post("/:id/suspend", chain(write, h.Suspend)...)
	userGroup.Post("/:id/reinstate", chain(write, h.Reinstate)...)
	userGroup.Post("/:id/deactivate", chain(write, h.Deactivate)...)
	userGroup.Post("/:id/activate", chain(write, h.Activate)...)
	userGroup.Delete("/:id", chain(write, h.DeleteUser)...)
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req models.UserRegisterRequest
	if err := pkg.ParseStrictBody(c, &req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	user, err := h.userService.Register(c.UserContext(), middlewares.TokenSubject(c), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.CreatedResponse(c, user)
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	profile, err := h.userService.GetProfile(c.UserContext(), middlewares.MustPrincipal(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, profile)
}

func (h *UserHandler) ChangeRole(c *fiber.Ctx) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	var req models.ChangeRoleRequest
	if err := pkg.ParseStrictBody(c, &req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.workflowService.RequestTransition(c.UserContext(), middlewares.MustPrincipal(c), models.TransitionRequest{
		EntityType: models.ContentTypeUser,
		EntityID:   id,
		Action:     models.ActionChangeRole,
		Role:       &req.Role,
	})
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}

func (h *UserHandler) Suspend(c *fiber.Ctx) error {
	return h.transition(c, models.ActionSuspend)
}

func (h *UserHandler) Reinstate(c *fiber.Ctx) error {
	return h.transition(c, models.ActionReinstate)
}

func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	return h.transition(c, models.ActionDeactivate)
}

func (h *UserHandler) Activate(c *fiber.Ctx) error {
	return h.transition(c, models.ActionActivate)
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.workflowService.RequestTransition(c.UserContext(), middlewares.MustPrincipal(c), models.TransitionRequest{
		EntityType: models.ContentTypeUser,
		EntityID:   id,
		Action:     models.ActionDelete,
		Cascade:    pkg.QueryBool(c, "cascade"),
	})
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}

func (h *UserHandler) transition(c *fiber.Ctx, action models.TransitionAction) error {
	id, err := pkg.ParseUUIDParam(c, "id")
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	var req models.ModerationNotesRequest
	if err := pkg.ParseStrictBody(c, &req); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	result, err := h.workflowService.RequestTransition(c.UserContext(), middlewares.MustPrincipal(c), models.TransitionRequest{
		EntityType: models.ContentTypeUser,
		EntityID:   id,
		Action:     action,
		Notes:      req.Notes,
	})
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}
