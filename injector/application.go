package injector

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/tourism-core/internal/app/deliveries"
	"github.com/safatanc/tourism-core/internal/app/middlewares"
	"github.com/safatanc/tourism-core/internal/app/services"
)

// Application represents the main application container for tourism-core
type Application struct {
	HealthHandler        *deliveries.HealthHandler
	UserHandler          *deliveries.UserHandler
	DestinationHandler   *deliveries.DestinationHandler
	GuideHandler         *deliveries.GuideHandler
	BookingHandler       *deliveries.BookingHandler
	ModerationHandler    *deliveries.ModerationHandler
	AuditHandler         *deliveries.AuditHandler
	AuditMiddleware      *middlewares.AuditMiddleware
	RateLimitMiddleware  *middlewares.RateLimitMiddleware
	PostCommitDispatcher *services.PostCommitDispatcher
}

// RegisterRoutes registers all application routes using a Fiber router
func (app *Application) RegisterRoutes(router fiber.Router) {
	router.Use(app.AuditMiddleware.Capture)

	app.HealthHandler.RegisterRoutes(router)

	api := router.Group("/api/v1")
	api.Use(app.RateLimitMiddleware.LimitByIP(middlewares.AuthenticatedAPILimit))

	app.UserHandler.RegisterRoutes(api)
	app.DestinationHandler.RegisterRoutes(api)
	app.GuideHandler.RegisterRoutes(api)
	app.BookingHandler.RegisterRoutes(api)
	app.ModerationHandler.RegisterRoutes(api)
	app.AuditHandler.RegisterRoutes(api)
}

// Shutdown drains queued audit writes and notifications.
func (app *Application) Shutdown(ctx context.Context) error {
	return app.PostCommitDispatcher.Shutdown(ctx)
}
