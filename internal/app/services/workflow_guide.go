package services

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var verificationLedgerActions = map[models.TransitionAction]models.LedgerAction{
	models.ActionApprove: models.LedgerActionApproved,
	models.ActionReject:  models.LedgerActionRejected,
}

// guideDecision is the ledger snapshot of a verification together with the
// applicant fields it cascades into.
type guideDecision struct {
	Verification *models.GuideVerification `json:"verification,omitempty"`
	Role         models.UserRole           `json:"role"`
	GuideStatus  models.GuideStatus        `json:"guide_status"`
}

// ApplyAsGuide opens a verification for principal. The role stays unchanged
// until a moderator approves it.
func (s *WorkflowService) ApplyAsGuide(ctx context.Context, principal models.Principal, req *models.GuideApplicationRequest) (*models.TransitionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	documents := make([]string, 0, len(req.VerificationDocuments))
	for _, doc := range req.VerificationDocuments {
		if doc = strings.TrimSpace(doc); doc != "" {
			documents = append(documents, doc)
		}
	}
	if len(documents) == 0 {
		return nil, errors.NewInvalidDataError("verification_documents must contain at least one document")
	}
	if !s.permissions.Check(principal, PermGuidesApply) {
		return nil, errors.NewInsufficientPermissionsError("You are not allowed to apply as a guide")
	}

	result, err := s.run(ctx, principal, func(tx *gorm.DB) (*transitionOutcome, error) {
		user, err := s.lockUser(tx, principal.ID)
		if err != nil {
			return nil, err
		}
		previous := *user

		var open int64
		if err := tx.Model(&models.GuideVerification{}).
			Where("user_id = ? AND status = ?", user.ID, models.VerificationStatusPending).
			Count(&open).Error; err != nil {
			return nil, fmt.Errorf("failed to count open verifications: %w", err)
		}
		nextGuideStatus, err := ValidateGuideApplication(user.GuideStatus, open > 0)
		if err != nil {
			return nil, err
		}

		credentials := ""
		if c := optionalText(req.Credentials); c != nil {
			credentials = *c
		}
		verification := &models.GuideVerification{
			UserID:      user.ID,
			Credentials: credentials,
			Documents:   datatypes.JSONSlice[string](documents),
			Status:      models.VerificationStatusPending,
		}
		if err := tx.Create(verification).Error; err != nil {
			return nil, fmt.Errorf("failed to create verification: %w", err)
		}

		result := tx.Model(&models.User{}).
			Where("id = ? AND guide_status = ?", user.ID, user.GuideStatus).
			Update("guide_status", nextGuideStatus)
		if err := staleWrite(result, "user"); err != nil {
			return nil, err
		}

		outcome := &transitionOutcome{}
		log, err := s.appendLedger(tx, outcome, LedgerEntry{
			ContentType: models.ContentTypeGuideVerification,
			ContentID:   verification.ID,
			Action:      models.LedgerActionSubmitted,
			ActorID:     principal.ID,
			Status:      string(verification.Status),
			Previous:    guideDecision{Role: previous.Role, GuideStatus: previous.GuideStatus},
			New:         guideDecision{Verification: verification, Role: user.Role, GuideStatus: nextGuideStatus},
		}, string(previous.GuideStatus), nil)
		if err != nil {
			return nil, err
		}

		outcome.result = &models.TransitionResult{
			EntityType:    models.ContentTypeGuideVerification,
			EntityID:      verification.ID,
			Action:        models.ActionApply,
			NewStatus:     string(verification.Status),
			LedgerEntryID: log.ID,
			Entity:        verification,
		}
		return outcome, nil
	})
	if err != nil && errors.CodeOf(err) == errors.CodeConflict {
		// the partial unique index fired: another application won the race
		var open int64
		if s.db.WithContext(ctx).Model(&models.GuideVerification{}).
			Where("user_id = ? AND status = ?", principal.ID, models.VerificationStatusPending).
			Count(&open).Error == nil && open > 0 {
			return nil, errors.NewApplicationPendingError("You already have a pending guide application")
		}
	}
	return result, err
}

func (s *WorkflowService) transitionVerification(tx *gorm.DB, principal models.Principal, req models.TransitionRequest) (*transitionOutcome, error) {
	ledgerAction, ok := verificationLedgerActions[req.Action]
	if !ok {
		return nil, unsupportedAction(req.EntityType, req.Action)
	}

	var verification models.GuideVerification
	if err := forUpdate(tx).Where("id = ?", req.EntityID).First(&verification).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Verification not found")
		}
		return nil, fmt.Errorf("failed to load verification: %w", err)
	}
	previous := verification
	isOwner := verification.UserID == principal.ID

	if err := guardSelfAction(VerificationLifecycle, verification.Status, req.Action, isOwner, "verification"); err != nil {
		return nil, err
	}
	if !s.permissions.Check(principal, PermGuidesVerify) {
		return nil, errors.NewInsufficientPermissionsError()
	}

	actor := actorFor(principal, isOwner, false)
	next, err := VerificationLifecycle.Validate(verification.Status, req.Action, actor)
	if err != nil {
		return nil, err
	}

	applicant, err := s.lockUser(tx, verification.UserID)
	if err != nil {
		return nil, err
	}
	previousUser := *applicant
	nextGuideStatus, err := GuideStatusLifecycle.Validate(applicant.GuideStatus, req.Action, actor)
	if err != nil {
		return nil, err
	}

	notes := optionalText(req.Notes)
	reason := optionalText(req.Reason)
	if reason != nil && notes == nil {
		notes = reason
	}
	now := s.now()
	reviewer := principal.ID

	result := tx.Model(&models.GuideVerification{}).
		Where("id = ? AND status = ?", verification.ID, verification.Status).
		Updates(map[string]any{
			"status":      next,
			"reviewed_by": reviewer,
			"reviewed_at": now,
			"notes":       notes,
		})
	if err := staleWrite(result, "verification"); err != nil {
		return nil, err
	}

	userUpdates := map[string]any{"guide_status": nextGuideStatus}
	if next == models.VerificationStatusApproved && applicant.Role == models.UserRoleUser {
		userUpdates["role"] = models.UserRoleGuide
	}
	result = tx.Model(&models.User{}).
		Where("id = ? AND guide_status = ?", applicant.ID, applicant.GuideStatus).
		Updates(userUpdates)
	if err := staleWrite(result, "user"); err != nil {
		return nil, err
	}

	var current models.GuideVerification
	if err := tx.Where("id = ?", verification.ID).First(&current).Error; err != nil {
		return nil, fmt.Errorf("failed to reload verification: %w", err)
	}
	currentUser, err := s.reloadUser(tx, applicant.ID)
	if err != nil {
		return nil, err
	}

	outcome := &transitionOutcome{}
	recipient := applicant.ID
	log, err := s.appendLedger(tx, outcome, LedgerEntry{
		ContentType:     models.ContentTypeGuideVerification,
		ContentID:       verification.ID,
		Action:          ledgerAction,
		ActorID:         principal.ID,
		Status:          string(current.Status),
		Previous:        guideDecision{Verification: &previous, Role: previousUser.Role, GuideStatus: previousUser.GuideStatus},
		New:             guideDecision{Verification: &current, Role: currentUser.Role, GuideStatus: currentUser.GuideStatus},
		Notes:           notes,
		RejectionReason: reason,
	}, string(previous.Status), &recipient)
	if err != nil {
		return nil, err
	}

	outcome.result = &models.TransitionResult{
		EntityType:     models.ContentTypeGuideVerification,
		EntityID:       verification.ID,
		Action:         req.Action,
		PreviousStatus: string(previous.Status),
		NewStatus:      string(current.Status),
		LedgerEntryID:  log.ID,
		Entity:         current,
	}
	return outcome, nil
}

// rejectOpenVerification closes the user's pending verification, if any, as
// part of a cascade.
func (s *WorkflowService) rejectOpenVerification(tx *gorm.DB, principal models.Principal, userID uuid.UUID, reason string, outcome *transitionOutcome) error {
	var verification models.GuideVerification
	err := forUpdate(tx).Where("user_id = ? AND status = ?", userID, models.VerificationStatusPending).First(&verification).Error
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load verification: %w", err)
	}
	previous := verification

	now := s.now()
	result := tx.Model(&models.GuideVerification{}).
		Where("id = ? AND status = ?", verification.ID, verification.Status).
		Updates(map[string]any{
			"status":      models.VerificationStatusRejected,
			"reviewed_by": principal.ID,
			"reviewed_at": now,
			"notes":       reason,
		})
	if err := staleWrite(result, "verification"); err != nil {
		return err
	}
	verification.Status = models.VerificationStatusRejected
	verification.ReviewedBy = &principal.ID
	verification.ReviewedAt = &now
	verification.Notes = &reason

	_, err = s.appendLedger(tx, outcome, LedgerEntry{
		ContentType:     models.ContentTypeGuideVerification,
		ContentID:       verification.ID,
		Action:          models.LedgerActionRejected,
		ActorID:         principal.ID,
		Status:          string(verification.Status),
		Previous:        previous,
		New:             verification,
		Notes:           &reason,
		RejectionReason: &reason,
	}, string(previous.Status), nil)
	return err
}
