package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.GetHealth)
}

func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewInternalServerError(err, "Database unavailable"))
	}
	return pkg.SuccessResponse(c, "tourism-core")
}
