//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"
	"github.com/safatanc/tourism-core/internal/app/deliveries"
	"github.com/safatanc/tourism-core/internal/app/middlewares"
	"github.com/safatanc/tourism-core/internal/app/services"
	"github.com/safatanc/tourism-core/internal/infrastructures"
)

// Infrastructure providers
var infrastructureSet = wire.NewSet(
	infrastructures.ProvideConfig,
	infrastructures.NewDatabase,
	infrastructures.NewRedisClient,
	infrastructures.NewValidator,
	wire.Bind(new(middlewares.RateLimiter), new(*middlewares.RedisRateLimiter)),
	middlewares.NewRedisRateLimiter,
	wire.Bind(new(services.Notifier), new(*services.RedisNotifier)),
	services.NewRedisNotifier,
)

// Service providers
var serviceSet = wire.NewSet(
	services.DefaultPermissionTable,
	services.NewPermissionResolver,
	services.NewPostCommitDispatcher,
	services.NewAuditService,
	services.NewNotificationService,
	services.NewModerationService,
	services.NewWorkflowService,
	services.NewUserService,
	services.NewDestinationService,
	services.NewBookingService,
	services.NewGuideService,
)

// Middleware providers
var middlewareSet = wire.NewSet(
	middlewares.NewAuthMiddleware,
	middlewares.NewPermissionMiddleware,
	middlewares.NewRateLimitMiddleware,
	middlewares.NewAuditMiddleware,
)

// Handler providers
var handlerSet = wire.NewSet(
	deliveries.NewHealthHandler,
	deliveries.NewUserHandler,
	deliveries.NewDestinationHandler,
	deliveries.NewGuideHandler,
	deliveries.NewBookingHandler,
	deliveries.NewModerationHandler,
	deliveries.NewAuditHandler,
	wire.Struct(new(Application), "*"),
)

// InitializeApplication initializes the application with all its dependencies
func InitializeApplication() (*Application, error) {
	wire.Build(
		infrastructureSet,
		serviceSet,
		middlewareSet,
		handlerSet,
	)
	return &Application{}, nil
}
