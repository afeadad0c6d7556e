package deliveries

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/middlewares"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/safatanc/tourism-core/internal/app/services"
	"github.com/safatanc/tourism-core/internal/infrastructures"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "handler-secret"

type allowAll struct{}

func (allowAll) Allow(ctx context.Context, key string, limit middlewares.Rate) (bool, middlewares.RateLimitInfo) {
	return true, middlewares.RateLimitInfo{Limit: limit.Requests, Remaining: limit.Requests, Reset: time.Now().Add(limit.Window)}
}

func (allowAll) Reset(ctx context.Context, key string) error { return nil }

type discardNotifier struct{}

func (discardNotifier) Publish(ctx context.Context, event models.DomainEvent) error { return nil }

type server struct {
	app        *fiber.App
	db         *gorm.DB
	dispatcher *services.PostCommitDispatcher
	workflow   *services.WorkflowService
}

func newServer(t *testing.T) *server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))

	dispatcher := services.StartPostCommitDispatcher(1, 64, time.Second)
	t.Cleanup(func() { dispatcher.Shutdown(context.Background()) })

	cfg := &infrastructures.AppConfig{JWT_SECRET: testSecret, TX_TIMEOUT: 5 * time.Second}
	validator := infrastructures.NewValidator()
	permissions := services.NewPermissionResolver(services.DefaultPermissionTable())
	audit := services.NewAuditService(db, validator, dispatcher)
	users := services.NewUserService(db, validator, permissions, audit)
	moderation := services.NewModerationService(db, validator)
	notification := services.NewNotificationService(discardNotifier{}, dispatcher)
	workflow := services.NewWorkflowService(db, validator, permissions, moderation, audit, notification, cfg)

	auth := middlewares.NewAuthMiddleware(users, cfg)
	limiter := middlewares.NewRateLimitMiddleware(allowAll{})
	gate := middlewares.NewPermissionMiddleware(permissions)

	app := fiber.New(fiber.Config{ErrorHandler: pkg.ErrorResponse})
	NewHealthHandler(db).RegisterRoutes(app)
	api := app.Group("/api/v1")
	NewUserHandler(users, workflow, auth, limiter).RegisterRoutes(api)
	NewDestinationHandler(services.NewDestinationService(db, validator, permissions, audit), workflow, auth, limiter).RegisterRoutes(api)
	NewGuideHandler(services.NewGuideService(db, validator, permissions), workflow, auth, limiter).RegisterRoutes(api)
	NewBookingHandler(services.NewBookingService(db, validator, permissions), workflow, auth, limiter).RegisterRoutes(api)
	NewModerationHandler(moderation, auth, gate, limiter).RegisterRoutes(api)
	NewAuditHandler(audit, auth, gate).RegisterRoutes(api)

	return &server{app: app, db: db, dispatcher: dispatcher, workflow: workflow}
}

func (s *server) createUser(t *testing.T, role models.UserRole, guideStatus models.GuideStatus) models.Principal {
	t.Helper()
	id := uuid.New()
	user := &models.User{
		ID:          id,
		Email:       id.String() + "@example.com",
		FullName:    "Handler User",
		Role:        role,
		GuideStatus: guideStatus,
		IsActive:    true,
	}
	require.NoError(t, s.db.Create(user).Error)
	return user.Principal()
}

func token(t *testing.T, subject uuid.UUID) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// do sends body (nil, a string or a value to marshal) as subject and returns
// the status with the decoded envelope.
func (s *server) do(t *testing.T, method string, path string, subject *uuid.UUID, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if subject != nil {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token(t, *subject))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode, decode(t, resp)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func (e envelope) into(t *testing.T, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, out))
}

type transitionBody struct {
	EntityID       uuid.UUID       `json:"entity_id"`
	PreviousStatus string          `json:"previous_status"`
	NewStatus      string          `json:"new_status"`
	LedgerEntryID  uuid.UUID       `json:"ledger_entry_id"`
	Entity         json.RawMessage `json:"entity"`
}
