package middlewares

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/services"
	"github.com/safatanc/tourism-core/internal/infrastructures"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "test-secret"

type harness struct {
	db          *gorm.DB
	dispatcher  *services.PostCommitDispatcher
	audit       *services.AuditService
	users       *services.UserService
	permissions *services.PermissionResolver
	auth        *AuthMiddleware
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))

	dispatcher := services.StartPostCommitDispatcher(1, 32, time.Second)
	t.Cleanup(func() { dispatcher.Shutdown(context.Background()) })

	validator := infrastructures.NewValidator()
	permissions := services.NewPermissionResolver(services.DefaultPermissionTable())
	audit := services.NewAuditService(db, validator, dispatcher)
	users := services.NewUserService(db, validator, permissions, audit)

	return &harness{
		db:          db,
		dispatcher:  dispatcher,
		audit:       audit,
		users:       users,
		permissions: permissions,
		auth:        NewAuthMiddleware(users, &infrastructures.AppConfig{JWT_SECRET: testSecret}),
	}
}

func (h *harness) createUser(t *testing.T, role models.UserRole, active bool) *models.User {
	t.Helper()
	id := uuid.New()
	user := &models.User{
		ID:          id,
		Email:       id.String() + "@example.com",
		FullName:    "Test User",
		Role:        role,
		GuideStatus: models.GuideStatusUnverified,
		IsActive:    true,
	}
	require.NoError(t, h.db.Create(user).Error)
	if !active {
		require.NoError(t, h.db.Model(user).Update("is_active", false).Error)
		user.IsActive = false
	}
	return user
}

func signToken(t *testing.T, subject string, expiresIn time.Duration, method jwt.SigningMethod) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func decodeCode(t *testing.T, body io.Reader) string {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Code
}
