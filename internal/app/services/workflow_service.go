package services

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres error codes that mean "lost a race, try again".
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// moderationActions are always refused on one's own resource, whatever the
// current state.
var moderationActions = map[models.TransitionAction]struct{}{
	models.ActionApprove:         {},
	models.ActionReject:          {},
	models.ActionRequestRevision: {},
}

// WorkflowService is the only component that mutates lifecycle state. Every
// operation runs guard, permission check, validation, persistence and ledger
// append in one transaction, then hands audit and notification to the
// post-commit dispatcher.
type WorkflowService struct {
	db                  *gorm.DB
	validator           *infrastructures.Validator
	permissions         *PermissionResolver
	moderationService   *ModerationService
	auditService        *AuditService
	notificationService *NotificationService
	txTimeout           time.Duration
	now                 func() time.Time
}

func NewWorkflowService(
	db *gorm.DB,
	validator *infrastructures.Validator,
	permissions *PermissionResolver,
	moderationService *ModerationService,
	auditService *AuditService,
	notificationService *NotificationService,
	cfg *infrastructures.AppConfig,
) *WorkflowService {
	txTimeout := cfg.TX_TIMEOUT
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &WorkflowService{
		db:                  db,
		validator:           validator,
		permissions:         permissions,
		moderationService:   moderationService,
		auditService:        auditService,
		notificationService: notificationService,
		txTimeout:           txTimeout,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type committedEntry struct {
	log       *models.ModerationLog
	from      string
	previous  any
	current   any
	recipient *uuid.UUID
}

// transitionOutcome is what a transaction body hands back for commit-time
// bookkeeping.
type transitionOutcome struct {
	result  *models.TransitionResult
	entries []committedEntry
	audits  []AuditEntry
}

// RequestTransition applies action to the referenced entity on behalf of
// principal and returns the committed state.
func (s *WorkflowService) RequestTransition(ctx context.Context, principal models.Principal, req models.TransitionRequest) (*models.TransitionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !principal.IsActive {
		return nil, errors.NewUnauthorizedError("Account is inactive")
	}

	var body func(tx *gorm.DB) (*transitionOutcome, error)
	switch req.EntityType {
	case models.ContentTypeDestination:
		body = func(tx *gorm.DB) (*transitionOutcome, error) { return s.transitionDestination(tx, principal, req) }
	case models.ContentTypeGuideVerification:
		body = func(tx *gorm.DB) (*transitionOutcome, error) { return s.transitionVerification(tx, principal, req) }
	case models.ContentTypeBooking:
		body = func(tx *gorm.DB) (*transitionOutcome, error) { return s.transitionBooking(tx, principal, req) }
	case models.ContentTypeUser:
		body = func(tx *gorm.DB) (*transitionOutcome, error) { return s.transitionUser(tx, principal, req) }
	default:
		return nil, errors.NewInvalidDataError(fmt.Sprintf("Unsupported entity type %s", req.EntityType))
	}

	return s.run(ctx, principal, body)
}

// run executes body in a transaction bounded by txTimeout and dispatches the
// post-commit work when it commits.
func (s *WorkflowService) run(ctx context.Context, principal models.Principal, body func(tx *gorm.DB) (*transitionOutcome, error)) (*models.TransitionResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var outcome *transitionOutcome
	err := s.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		out, err := body(tx)
		if err != nil {
			return err
		}
		outcome = out
		return nil
	})
	if err != nil {
		return nil, translateTxError(txCtx, err)
	}

	s.afterCommit(ctx, principal, outcome)
	return outcome.result, nil
}

func (s *WorkflowService) afterCommit(ctx context.Context, principal models.Principal, outcome *transitionOutcome) {
	actorID := principal.ID
	for _, entry := range outcome.entries {
		log := entry.log
		logrus.WithFields(logrus.Fields{
			"content_type": log.ContentType,
			"content_id":   log.ContentID,
			"action":       log.Action,
			"actor_id":     log.ActorID,
			"from":         entry.from,
			"to":           log.Status,
		}).Info("transition committed")

		s.auditService.Record(ctx, AuditEntry{
			UserID:       &actorID,
			Action:       fmt.Sprintf("%s.%s", log.ContentType, log.Action),
			ResourceType: string(log.ContentType),
			ResourceID:   log.ContentID.String(),
			OldValues:    entry.previous,
			NewValues:    entry.current,
		})

		s.notificationService.Emit(models.DomainEvent{
			Type:          fmt.Sprintf("%s.%s", log.ContentType, log.Action),
			ContentType:   log.ContentType,
			ContentID:     log.ContentID,
			Action:        string(log.Action),
			Status:        log.Status,
			ActorID:       log.ActorID,
			RecipientID:   entry.recipient,
			LedgerEntryID: log.ID,
			OccurredAt:    log.CreatedAt,
		})
	}

	for _, audit := range outcome.audits {
		if audit.UserID == nil {
			audit.UserID = &actorID
		}
		s.auditService.Record(ctx, audit)
	}
}

// appendLedger writes the ledger row for a committed change and records it on
// the outcome.
func (s *WorkflowService) appendLedger(tx *gorm.DB, outcome *transitionOutcome, entry LedgerEntry, from string, recipient *uuid.UUID) (*models.ModerationLog, error) {
	log, err := s.moderationService.Append(tx, entry)
	if err != nil {
		return nil, err
	}
	outcome.entries = append(outcome.entries, committedEntry{
		log:       log,
		from:      from,
		previous:  entry.Previous,
		current:   entry.New,
		recipient: recipient,
	})
	return log, nil
}

// guardSelfAction trips when an owner asks for a moderation action on its own
// resource, or for an action every edge of which excludes the owner.
func guardSelfAction[S ~string](table *TransitionTable[S], current S, action models.TransitionAction, isOwner bool, name string) error {
	if !isOwner {
		return nil
	}
	_, moderation := moderationActions[action]
	if moderation || table.IsSelfForbidden(current, action) {
		return errors.NewInvalidActionError(fmt.Sprintf("Cannot %s your own %s", action, name))
	}
	return nil
}

func actorFor(principal models.Principal, isOwner bool, isGuide bool) Actor {
	return Actor{
		Role:    principal.EffectiveRole(),
		IsOwner: isOwner,
		IsGuide: isGuide,
	}
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func staleWrite(result *gorm.DB, what string) error {
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", what, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewConflictError(fmt.Sprintf("The %s was modified concurrently, refresh and retry", what))
	}
	return nil
}

// translateTxError keeps AppErrors, turns races and timeouts into CONFLICT
// and everything else into INTERNAL_ERROR.
func translateTxError(ctx context.Context, err error) error {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}

	var pgErr *pgconn.PgError
	if stdErrors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return errors.NewConflictError("Concurrent update detected, retry the request")
		}
	}

	if stdErrors.Is(err, context.DeadlineExceeded) || stdErrors.Is(err, context.Canceled) || ctx.Err() != nil {
		return errors.NewConflictError("Transaction timed out, retry the request")
	}
	if stdErrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.NewConflictError("Concurrent update detected, retry the request")
	}

	return errors.NewInternalServerError(err, "Failed to apply transition")
}

// optionalText trims s and returns nil for blank input.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func unsupportedAction(entity models.ContentType, action models.TransitionAction) error {
	return errors.NewInvalidDataError(fmt.Sprintf("Unsupported action %s for %s", action, entity))
}

func dependentsMessage(subject string, bookings int, open bool, openText string) string {
	parts := make([]string, 0, 2)
	if bookings > 0 {
		parts = append(parts, fmt.Sprintf("has %d active bookings", bookings))
	}
	if open {
		parts = append(parts, openText)
	}
	return fmt.Sprintf("%s %s; pass cascade=true to delete anyway", subject, strings.Join(parts, " and "))
}
