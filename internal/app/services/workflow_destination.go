package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"gorm.io/gorm"
)

var destinationLedgerActions = map[models.TransitionAction]models.LedgerAction{
	models.ActionSubmit:          models.LedgerActionSubmitted,
	models.ActionApprove:         models.LedgerActionApproved,
	models.ActionReject:          models.LedgerActionRejected,
	models.ActionRequestRevision: models.LedgerActionRevisionRequested,
	models.ActionWithdraw:        models.LedgerActionWithdrawn,
	models.ActionReset:           models.LedgerActionReset,
	models.ActionDelete:          models.LedgerActionDeleted,
}

func destinationPermission(action models.TransitionAction, isOwner bool) Permission {
	switch action {
	case models.ActionSubmit, models.ActionWithdraw, models.ActionReset:
		return PermDestinationsSubmitOwn
	case models.ActionApprove, models.ActionReject, models.ActionRequestRevision:
		return PermDestinationsModerate
	case models.ActionEdit:
		return PermDestinationsUpdateOwn
	case models.ActionDelete:
		if isOwner {
			return PermDestinationsDeleteOwn
		}
		return PermDestinationsDelete
	}
	return ""
}

// CreateDestination stores a new draft owned by principal.
func (s *WorkflowService) CreateDestination(ctx context.Context, principal models.Principal, req *models.DestinationCreateRequest) (*models.TransitionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, errors.NewInvalidDataError("price cannot be negative")
	}
	if !s.permissions.Check(principal, PermDestinationsCreate) {
		return nil, errors.NewInsufficientPermissionsError("Only verified guides can create destinations")
	}

	return s.run(ctx, principal, func(tx *gorm.DB) (*transitionOutcome, error) {
		destination := &models.Destination{
			CreatedBy:   principal.ID,
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			Location:    req.Location,
			Price:       req.Price,
			Status:      models.DestinationStatusDraft,
		}
		if err := tx.Create(destination).Error; err != nil {
			return nil, fmt.Errorf("failed to create destination: %w", err)
		}

		outcome := &transitionOutcome{}
		log, err := s.appendLedger(tx, outcome, LedgerEntry{
			ContentType: models.ContentTypeDestination,
			ContentID:   destination.ID,
			Action:      models.LedgerActionCreated,
			ActorID:     principal.ID,
			Status:      string(destination.Status),
			New:         destination,
		}, "", nil)
		if err != nil {
			return nil, err
		}

		outcome.result = &models.TransitionResult{
			EntityType:    models.ContentTypeDestination,
			EntityID:      destination.ID,
			Action:        models.ActionCreate,
			NewStatus:     string(destination.Status),
			LedgerEntryID: log.ID,
			Entity:        destination,
		}
		return outcome, nil
	})
}

// EditDestination applies a partial content update. A non-admin edit of an
// approved destination demotes it to draft and clears the approval.
func (s *WorkflowService) EditDestination(ctx context.Context, principal models.Principal, id uuid.UUID, req *models.DestinationUpdateRequest) (*models.TransitionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return nil, errors.NewInvalidDataError("At least one field must be provided")
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, errors.NewInvalidDataError("price cannot be negative")
	}

	return s.run(ctx, principal, func(tx *gorm.DB) (*transitionOutcome, error) {
		destination, err := s.lockDestination(tx, id)
		if err != nil {
			return nil, err
		}
		previous := *destination
		isOwner := destination.CreatedBy == principal.ID

		if !s.permissions.Check(principal, PermDestinationsUpdateOwn, destination.CreatedBy) {
			return nil, errors.NewInsufficientPermissionsError("You can only edit your own destinations")
		}
		next, err := DestinationLifecycle.Validate(destination.Status, models.ActionEdit, actorFor(principal, isOwner, false))
		if err != nil {
			return nil, err
		}

		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Location != nil {
			updates["location"] = *req.Location
		}
		if req.Price != nil {
			updates["price"] = *req.Price
		}
		demoted := next != destination.Status
		if demoted {
			updates["status"] = next
			updates["approved_by"] = nil
			updates["approved_at"] = nil
		}

		result := tx.Model(&models.Destination{}).
			Where("id = ? AND status = ?", destination.ID, destination.Status).
			Updates(updates)
		if err := staleWrite(result, "destination"); err != nil {
			return nil, err
		}

		current, err := s.reloadDestination(tx, destination.ID)
		if err != nil {
			return nil, err
		}

		outcome := &transitionOutcome{
			result: &models.TransitionResult{
				EntityType:     models.ContentTypeDestination,
				EntityID:       current.ID,
				Action:         models.ActionEdit,
				PreviousStatus: string(previous.Status),
				NewStatus:      string(current.Status),
				Entity:         current,
			},
		}
		if demoted {
			log, err := s.appendLedger(tx, outcome, LedgerEntry{
				ContentType: models.ContentTypeDestination,
				ContentID:   current.ID,
				Action:      models.LedgerActionDemoted,
				ActorID:     principal.ID,
				Status:      string(current.Status),
				Previous:    previous,
				New:         current,
			}, string(previous.Status), nil)
			if err != nil {
				return nil, err
			}
			outcome.result.LedgerEntryID = log.ID
		} else {
			outcome.audits = append(outcome.audits, AuditEntry{
				Action:       "destination.updated",
				ResourceType: string(models.ContentTypeDestination),
				ResourceID:   current.ID.String(),
				OldValues:    previous,
				NewValues:    current,
			})
		}
		return outcome, nil
	})
}

func (s *WorkflowService) transitionDestination(tx *gorm.DB, principal models.Principal, req models.TransitionRequest) (*transitionOutcome, error) {
	ledgerAction, ok := destinationLedgerActions[req.Action]
	if !ok {
		return nil, unsupportedAction(req.EntityType, req.Action)
	}

	destination, err := s.lockDestination(tx, req.EntityID)
	if err != nil {
		return nil, err
	}
	previous := *destination
	isOwner := destination.CreatedBy == principal.ID

	if err := guardSelfAction(DestinationLifecycle, destination.Status, req.Action, isOwner, "destination"); err != nil {
		return nil, err
	}
	if !s.permissions.Check(principal, destinationPermission(req.Action, isOwner), destination.CreatedBy) {
		return nil, errors.NewInsufficientPermissionsError()
	}

	switch req.Action {
	case models.ActionSubmit:
		latest, err := s.moderationService.LatestFor(tx, models.ContentTypeDestination, destination.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger: %w", err)
		}
		if latest != nil && latest.Status == string(models.DestinationStatusPending) {
			return nil, errors.NewAlreadySubmittedError("Destination is already awaiting review")
		}
	case models.ActionRequestRevision:
		if destination.Status == models.DestinationStatusRevisionRequested {
			return nil, errors.NewAlreadyProcessedError("Revision has already been requested")
		}
	}

	next, err := DestinationLifecycle.Validate(destination.Status, req.Action, actorFor(principal, isOwner, false))
	if err != nil {
		return nil, err
	}

	notes := optionalText(req.Notes)
	reason := optionalText(req.Reason)
	if req.Action == models.ActionReject && reason == nil {
		return nil, errors.NewInvalidDataError("reason is required to reject a destination")
	}

	outcome := &transitionOutcome{}
	var current *models.Destination
	if req.Action == models.ActionDelete {
		if current, err = s.deleteDestination(tx, principal, destination, req.Cascade, outcome); err != nil {
			return nil, err
		}
	} else {
		updates := map[string]any{"status": next}
		switch next {
		case models.DestinationStatusApproved:
			now := s.now()
			updates["approved_by"] = principal.ID
			updates["approved_at"] = now
			updates["rejection_reason"] = nil
		case models.DestinationStatusRejected:
			updates["rejection_reason"] = *reason
		case models.DestinationStatusDraft:
			updates["rejection_reason"] = nil
		}

		result := tx.Model(&models.Destination{}).
			Where("id = ? AND status = ?", destination.ID, destination.Status).
			Updates(updates)
		if err := staleWrite(result, "destination"); err != nil {
			return nil, err
		}
		if current, err = s.reloadDestination(tx, destination.ID); err != nil {
			return nil, err
		}
	}

	var recipient *uuid.UUID
	if !isOwner {
		owner := destination.CreatedBy
		recipient = &owner
	}
	log, err := s.appendLedger(tx, outcome, LedgerEntry{
		ContentType:     models.ContentTypeDestination,
		ContentID:       destination.ID,
		Action:          ledgerAction,
		ActorID:         principal.ID,
		Status:          string(current.Status),
		Previous:        previous,
		New:             current,
		Notes:           notes,
		RejectionReason: reason,
	}, string(previous.Status), recipient)
	if err != nil {
		return nil, err
	}

	outcome.result = &models.TransitionResult{
		EntityType:     models.ContentTypeDestination,
		EntityID:       destination.ID,
		Action:         req.Action,
		PreviousStatus: string(previous.Status),
		NewStatus:      string(current.Status),
		LedgerEntryID:  log.ID,
		Entity:         current,
	}
	return outcome, nil
}

// deleteDestination soft-deletes destination. Active bookings or an open
// review block it unless cascade is set, in which case the bookings are
// cancelled first.
func (s *WorkflowService) deleteDestination(tx *gorm.DB, principal models.Principal, destination *models.Destination, cascade bool, outcome *transitionOutcome) (*models.Destination, error) {
	var bookings []models.Booking
	if err := forUpdate(tx).
		Where("destination_id = ? AND status IN ?", destination.ID, models.ActiveBookingStatuses).
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	underReview := destination.Status == models.DestinationStatusPending
	if (len(bookings) > 0 || underReview) && !cascade {
		return nil, errors.NewDependentRecordsError(dependentsMessage("Destination", len(bookings), underReview, "is under review"))
	}
	if cascade && principal.EffectiveRole() != models.UserRoleAdmin {
		return nil, errors.NewInsufficientPermissionsError("Only administrators can cascade a delete")
	}

	note := "destination deleted"
	for i := range bookings {
		if _, err := s.cancelBookingInTx(tx, principal, &bookings[i], &note, outcome); err != nil {
			return nil, err
		}
	}

	result := tx.Where("id = ? AND status = ?", destination.ID, destination.Status).Delete(&models.Destination{})
	if err := staleWrite(result, "destination"); err != nil {
		return nil, err
	}

	deleted := *destination
	return &deleted, nil
}

// retireOwnedDestinations soft-deletes every destination created by ownerID
// as part of a user delete, cancelling bookings still open on them.
func (s *WorkflowService) retireOwnedDestinations(tx *gorm.DB, principal models.Principal, ownerID uuid.UUID, reason string, outcome *transitionOutcome) error {
	var destinations []models.Destination
	if err := forUpdate(tx).Where("created_by = ?", ownerID).Find(&destinations).Error; err != nil {
		return fmt.Errorf("failed to load destinations: %w", err)
	}

	for i := range destinations {
		destination := destinations[i]

		var bookings []models.Booking
		if err := forUpdate(tx).
			Where("destination_id = ? AND status IN ?", destination.ID, models.ActiveBookingStatuses).
			Find(&bookings).Error; err != nil {
			return fmt.Errorf("failed to load bookings: %w", err)
		}
		for j := range bookings {
			if _, err := s.cancelBookingInTx(tx, principal, &bookings[j], &reason, outcome); err != nil {
				return err
			}
		}

		result := tx.Where("id = ? AND status = ?", destination.ID, destination.Status).Delete(&models.Destination{})
		if err := staleWrite(result, "destination"); err != nil {
			return err
		}
		if _, err := s.appendLedger(tx, outcome, LedgerEntry{
			ContentType: models.ContentTypeDestination,
			ContentID:   destination.ID,
			Action:      models.LedgerActionDeleted,
			ActorID:     principal.ID,
			Status:      string(destination.Status),
			Previous:    destination,
			New:         destination,
			Notes:       &reason,
		}, string(destination.Status), nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *WorkflowService) lockDestination(tx *gorm.DB, id uuid.UUID) (*models.Destination, error) {
	var destination models.Destination
	if err := forUpdate(tx).Where("id = ?", id).First(&destination).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Destination not found")
		}
		return nil, fmt.Errorf("failed to load destination: %w", err)
	}
	return &destination, nil
}

func (s *WorkflowService) reloadDestination(tx *gorm.DB, id uuid.UUID) (*models.Destination, error) {
	var destination models.Destination
	if err := tx.Where("id = ?", id).First(&destination).Error; err != nil {
		return nil, fmt.Errorf("failed to reload destination: %w", err)
	}
	return &destination, nil
}
