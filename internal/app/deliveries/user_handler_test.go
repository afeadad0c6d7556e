package deliveries

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRoutes(t *testing.T) {
	s := newServer(t)
	subject := uuid.New()

	status, body := s.do(t, fiber.MethodGet, "/api/v1/users/me", &subject, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, errors.CodeUnauthorized, body.Code)

	register := map[string]any{"email": "ayu@example.com", "full_name": "Ayu Lestari"}
	status, body = s.do(t, fiber.MethodPost, "/api/v1/users/register", &subject, register)
	require.Equal(t, fiber.StatusCreated, status, body.Error)
	var user models.User
	body.into(t, &user)
	assert.Equal(t, subject, user.ID)
	assert.Equal(t, models.UserRoleUser, user.Role)

	status, body = s.do(t, fiber.MethodPost, "/api/v1/users/register", &subject, register)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, errors.CodeAlreadyProcessed, body.Code)

	status, body = s.do(t, fiber.MethodPost, "/api/v1/users/register", nil, register)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = s.do(t, fiber.MethodGet, "/api/v1/users/me", &subject, nil)
	require.Equal(t, fiber.StatusOK, status, body.Error)
	var profile services.UserProfile
	body.into(t, &profile)
	assert.Equal(t, "ayu@example.com", profile.Email)
	assert.Contains(t, profile.Permissions, services.PermBookingsCreate)
	assert.NotContains(t, profile.Permissions, services.PermDestinationsCreate)

	t.Run("deactivated accounts lose access", func(t *testing.T) {
		admin := s.createUser(t, models.UserRoleAdmin, models.GuideStatusUnverified)

		status, body := s.do(t, fiber.MethodPost, "/api/v1/users/"+subject.String()+"/deactivate", &subject, nil)
		assert.Equal(t, fiber.StatusForbidden, status)
		assert.False(t, body.Success)

		status, body = s.do(t, fiber.MethodPost, "/api/v1/users/"+subject.String()+"/deactivate", &admin.ID, map[string]any{"notes": "requested by owner"})
		require.Equal(t, fiber.StatusOK, status, body.Error)
		var result transitionBody
		body.into(t, &result)
		assert.Equal(t, "inactive", result.NewStatus)

		status, body = s.do(t, fiber.MethodGet, "/api/v1/users/me", &subject, nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, errors.CodeUnauthorized, body.Code)
	})
}
