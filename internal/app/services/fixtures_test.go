package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/infrastructures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.DomainEvent
}

func (n *recordingNotifier) Publish(ctx context.Context, event models.DomainEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) Events() []models.DomainEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.DomainEvent(nil), n.events...)
}

type testEnv struct {
	db           *gorm.DB
	dispatcher   *PostCommitDispatcher
	notifier     *recordingNotifier
	permissions  *PermissionResolver
	audit        *AuditService
	moderation   *ModerationService
	workflow     *WorkflowService
	users        *UserService
	destinations *DestinationService
	bookings     *BookingService
	guides       *GuideService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	cfg := &infrastructures.AppConfig{TX_TIMEOUT: 5 * time.Second}
	validator := infrastructures.NewValidator()
	dispatcher := StartPostCommitDispatcher(2, 128, 2*time.Second)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		dispatcher.Shutdown(ctx)
	})

	notifier := &recordingNotifier{}
	permissions := NewPermissionResolver(DefaultPermissionTable())
	audit := NewAuditService(db, validator, dispatcher)
	moderation := NewModerationService(db, validator)
	notification := NewNotificationService(notifier, dispatcher)

	return &testEnv{
		db:           db,
		dispatcher:   dispatcher,
		notifier:     notifier,
		permissions:  permissions,
		audit:        audit,
		moderation:   moderation,
		workflow:     NewWorkflowService(db, validator, permissions, moderation, audit, notification, cfg),
		users:        NewUserService(db, validator, permissions, audit),
		destinations: NewDestinationService(db, validator, permissions, audit),
		bookings:     NewBookingService(db, validator, permissions),
		guides:       NewGuideService(db, validator, permissions),
	}
}

func (e *testEnv) createUser(t *testing.T, role models.UserRole, guideStatus models.GuideStatus) models.Principal {
	t.Helper()

	id := uuid.New()
	user := &models.User{
		ID:          id,
		Email:       fmt.Sprintf("%s@example.com", id),
		FullName:    string(role) + " " + id.String()[:8],
		Role:        role,
		GuideStatus: guideStatus,
		IsActive:    true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user.Principal()
}

func (e *testEnv) verifiedGuide(t *testing.T) models.Principal {
	return e.createUser(t, models.UserRoleGuide, models.GuideStatusVerified)
}

func (e *testEnv) traveler(t *testing.T) models.Principal {
	return e.createUser(t, models.UserRoleUser, models.GuideStatusUnverified)
}

func (e *testEnv) auditor(t *testing.T) models.Principal {
	return e.createUser(t, models.UserRoleAuditor, models.GuideStatusUnverified)
}

func (e *testEnv) admin(t *testing.T) models.Principal {
	return e.createUser(t, models.UserRoleAdmin, models.GuideStatusUnverified)
}

func (e *testEnv) draftDestination(t *testing.T, owner models.Principal) uuid.UUID {
	t.Helper()

	result, err := e.workflow.CreateDestination(context.Background(), owner, &models.DestinationCreateRequest{
		Name:     "Kawah Ijen",
		Location: "Banyuwangi",
		Price:    decimal.NewFromInt(150000),
	})
	require.NoError(t, err)
	return result.EntityID
}

// approvedDestination walks a fresh destination through submit and approve.
func (e *testEnv) approvedDestination(t *testing.T, owner, moderator models.Principal) uuid.UUID {
	t.Helper()

	id := e.draftDestination(t, owner)
	e.mustTransition(t, owner, models.ContentTypeDestination, id, models.ActionSubmit)
	e.mustTransition(t, moderator, models.ContentTypeDestination, id, models.ActionApprove)
	return id
}

func (e *testEnv) booking(t *testing.T, traveler models.Principal, destinationID uuid.UUID) uuid.UUID {
	t.Helper()

	result, err := e.workflow.CreateBooking(context.Background(), traveler, &models.BookingCreateRequest{
		DestinationID: destinationID.String(),
		BookingDate:   time.Now().UTC().AddDate(0, 0, 7).Format(time.DateOnly),
		Participants:  2,
	})
	require.NoError(t, err)
	return result.EntityID
}

func (e *testEnv) transition(principal models.Principal, entity models.ContentType, id uuid.UUID, action models.TransitionAction) (*models.TransitionResult, error) {
	return e.workflow.RequestTransition(context.Background(), principal, models.TransitionRequest{
		EntityType: entity,
		EntityID:   id,
		Action:     action,
	})
}

func (e *testEnv) mustTransition(t *testing.T, principal models.Principal, entity models.ContentType, id uuid.UUID, action models.TransitionAction) *models.TransitionResult {
	t.Helper()

	result, err := e.transition(principal, entity, id, action)
	require.NoError(t, err)
	return result
}

func (e *testEnv) ledger(t *testing.T, contentType models.ContentType, id uuid.UUID) []models.ModerationLog {
	t.Helper()

	logs, err := e.moderation.History(context.Background(), contentType, id)
	require.NoError(t, err)
	return logs
}

func (e *testEnv) destination(t *testing.T, id uuid.UUID) models.Destination {
	t.Helper()

	var destination models.Destination
	require.NoError(t, e.db.Unscoped().Where("id = ?", id).First(&destination).Error)
	return destination
}

func (e *testEnv) user(t *testing.T, id uuid.UUID) models.User {
	t.Helper()

	var user models.User
	require.NoError(t, e.db.Unscoped().Where("id = ?", id).First(&user).Error)
	return user
}

func (e *testEnv) bookingRow(t *testing.T, id uuid.UUID) models.Booking {
	t.Helper()

	var booking models.Booking
	require.NoError(t, e.db.Where("id = ?", id).First(&booking).Error)
	return booking
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()

	require.Error(t, err)
	assert.Equal(t, code, errors.CodeOf(err), err.Error())
}
