package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"gorm.io/gorm"
)

var userLedgerActions = map[models.TransitionAction]models.LedgerAction{
	models.ActionSuspend:    models.LedgerActionSuspended,
	models.ActionReinstate:  models.LedgerActionReinstated,
	models.ActionChangeRole: models.LedgerActionRoleChanged,
	models.ActionDeactivate: models.LedgerActionDeactivated,
	models.ActionActivate:   models.LedgerActionActivated,
	models.ActionDelete:     models.LedgerActionDeleted,
}

// accountSnapshot is what the ledger keeps of a user.
type accountSnapshot struct {
	Role        models.UserRole    `json:"role"`
	GuideStatus models.GuideStatus `json:"guide_status"`
	IsActive    bool               `json:"is_active"`
	Deleted     bool               `json:"deleted,omitempty"`
}

func snapshotOf(u *models.User) accountSnapshot {
	return accountSnapshot{
		Role:        u.Role,
		GuideStatus: u.GuideStatus,
		IsActive:    u.IsActive,
		Deleted:     u.DeletedAt.Valid,
	}
}

func (s *WorkflowService) transitionUser(tx *gorm.DB, principal models.Principal, req models.TransitionRequest) (*transitionOutcome, error) {
	ledgerAction, ok := userLedgerActions[req.Action]
	if !ok {
		return nil, unsupportedAction(req.EntityType, req.Action)
	}

	user, err := s.lockUser(tx, req.EntityID)
	if err != nil {
		return nil, err
	}
	previous := *user

	// every account action is administrative, so acting on oneself is refused
	if user.ID == principal.ID {
		return nil, errors.NewInvalidActionError(fmt.Sprintf("Cannot %s your own account", req.Action))
	}
	permission := PermUsersManage
	if req.Action == models.ActionSuspend || req.Action == models.ActionReinstate {
		permission = PermGuidesSuspend
	}
	if !s.permissions.Check(principal, permission) {
		return nil, errors.NewInsufficientPermissionsError()
	}

	actor := actorFor(principal, false, false)
	outcome := &transitionOutcome{}
	var status string

	switch req.Action {
	case models.ActionSuspend, models.ActionReinstate:
		next, err := GuideStatusLifecycle.Validate(user.GuideStatus, req.Action, actor)
		if err != nil {
			return nil, err
		}
		result := tx.Model(&models.User{}).
			Where("id = ? AND guide_status = ?", user.ID, user.GuideStatus).
			Update("guide_status", next)
		if err := staleWrite(result, "user"); err != nil {
			return nil, err
		}
		status = string(next)

	case models.ActionChangeRole:
		if req.Role == nil {
			return nil, errors.NewInvalidDataError("role is required")
		}
		next, err := AccountLifecycle.Validate(user.AccountStatus(), req.Action, actor)
		if err != nil {
			return nil, err
		}
		if user.Role == *req.Role {
			return nil, errors.NewAlreadyProcessedError(fmt.Sprintf("User already has role %s", *req.Role))
		}
		result := tx.Model(&models.User{}).
			Where("id = ? AND role = ?", user.ID, user.Role).
			Update("role", *req.Role)
		if err := staleWrite(result, "user"); err != nil {
			return nil, err
		}
		status = string(next)

	case models.ActionDeactivate, models.ActionActivate:
		next, err := AccountLifecycle.Validate(user.AccountStatus(), req.Action, actor)
		if err != nil {
			return nil, err
		}
		result := tx.Model(&models.User{}).
			Where("id = ? AND is_active = ?", user.ID, user.IsActive).
			Update("is_active", next == models.AccountStatusActive)
		if err := staleWrite(result, "user"); err != nil {
			return nil, err
		}
		status = string(next)

	case models.ActionDelete:
		next, err := AccountLifecycle.Validate(user.AccountStatus(), req.Action, actor)
		if err != nil {
			return nil, err
		}
		if err := s.deleteUser(tx, principal, user, req.Cascade, outcome); err != nil {
			return nil, err
		}
		status = string(next)
	}

	current, err := s.reloadUser(tx, user.ID)
	if err != nil {
		return nil, err
	}

	recipient := user.ID
	log, err := s.appendLedger(tx, outcome, LedgerEntry{
		ContentType: models.ContentTypeUser,
		ContentID:   user.ID,
		Action:      ledgerAction,
		ActorID:     principal.ID,
		Status:      status,
		Previous:    snapshotOf(&previous),
		New:         snapshotOf(current),
		Notes:       optionalText(req.Notes),
	}, string(previous.AccountStatus()), &recipient)
	if err != nil {
		return nil, err
	}

	outcome.result = &models.TransitionResult{
		EntityType:     models.ContentTypeUser,
		EntityID:       user.ID,
		Action:         req.Action,
		PreviousStatus: string(previous.AccountStatus()),
		NewStatus:      status,
		LedgerEntryID:  log.ID,
		Entity:         current,
	}
	if req.Action == models.ActionSuspend || req.Action == models.ActionReinstate {
		outcome.result.PreviousStatus = string(previous.GuideStatus)
	}
	return outcome, nil
}

// deleteUser soft-deletes and deactivates user. Active bookings on either
// side, an open verification or a destination under review block it unless
// cascade is set. A cascade cancels those bookings and rejects the
// verification. The user's destinations are always retired and the user is
// cleared from every booking's guide snapshot.
func (s *WorkflowService) deleteUser(tx *gorm.DB, principal models.Principal, user *models.User, cascade bool, outcome *transitionOutcome) error {
	var bookings []models.Booking
	if err := forUpdate(tx).
		Where("(user_id = ? OR guide_id = ?) AND status IN ?", user.ID, user.ID, models.ActiveBookingStatuses).
		Find(&bookings).Error; err != nil {
		return fmt.Errorf("failed to load bookings: %w", err)
	}
	var open int64
	if err := tx.Model(&models.GuideVerification{}).
		Where("user_id = ? AND status = ?", user.ID, models.VerificationStatusPending).
		Count(&open).Error; err != nil {
		return fmt.Errorf("failed to count verifications: %w", err)
	}

	var underReview int64
	if err := tx.Model(&models.Destination{}).
		Where("created_by = ? AND status = ?", user.ID, models.DestinationStatusPending).
		Count(&underReview).Error; err != nil {
		return fmt.Errorf("failed to count destinations: %w", err)
	}

	pending := make([]string, 0, 2)
	if open > 0 {
		pending = append(pending, "has an open guide application")
	}
	if underReview > 0 {
		pending = append(pending, fmt.Sprintf("has %d destinations under review", underReview))
	}
	if (len(bookings) > 0 || len(pending) > 0) && !cascade {
		return errors.NewDependentRecordsError(dependentsMessage("User", len(bookings), len(pending) > 0, strings.Join(pending, " and ")))
	}

	note := "user deleted"
	for i := range bookings {
		if _, err := s.cancelBookingInTx(tx, principal, &bookings[i], &note, outcome); err != nil {
			return err
		}
	}
	if err := s.rejectOpenVerification(tx, principal, user.ID, note, outcome); err != nil {
		return err
	}
	if err := s.retireOwnedDestinations(tx, principal, user.ID, note, outcome); err != nil {
		return err
	}
	if err := tx.Model(&models.Booking{}).
		Where("guide_id = ?", user.ID).
		Update("guide_id", nil).Error; err != nil {
		return fmt.Errorf("failed to clear guide snapshots: %w", err)
	}

	result := tx.Model(&models.User{}).
		Where("id = ? AND is_active = ?", user.ID, user.IsActive).
		Update("is_active", false)
	if err := staleWrite(result, "user"); err != nil {
		return err
	}
	if err := tx.Where("id = ?", user.ID).Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *WorkflowService) lockUser(tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := forUpdate(tx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("User not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// reloadUser reads the committed row, soft-deleted included.
func (s *WorkflowService) reloadUser(tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := tx.Unscoped().Where("id = ?", id).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	return &user, nil
}
