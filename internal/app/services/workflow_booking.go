package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var bookingLedgerActions = map[models.TransitionAction]models.LedgerAction{
	models.ActionConfirm:  models.LedgerActionConfirmed,
	models.ActionCancel:   models.LedgerActionCancelled,
	models.ActionComplete: models.LedgerActionCompleted,
}

var bookingPermissions = map[models.TransitionAction]Permission{
	models.ActionConfirm:  PermBookingsConfirmOwn,
	models.ActionCancel:   PermBookingsCancelOwn,
	models.ActionComplete: PermBookingsCompleteOwn,
}

// CreateBooking books an approved destination for principal. The guide is
// snapshotted from the destination creator.
func (s *WorkflowService) CreateBooking(ctx context.Context, principal models.Principal, req *models.BookingCreateRequest) (*models.TransitionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !s.permissions.Check(principal, PermBookingsCreate) {
		return nil, errors.NewInsufficientPermissionsError("You are not allowed to create bookings")
	}
	destinationID, err := uuid.Parse(req.DestinationID)
	if err != nil {
		return nil, errors.NewInvalidDataError("Invalid destination_id format")
	}

	return s.run(ctx, principal, func(tx *gorm.DB) (*transitionOutcome, error) {
		var destination models.Destination
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).Where("id = ?", destinationID).First(&destination).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.NewNotFoundError("Destination not found")
			}
			return nil, fmt.Errorf("failed to load destination: %w", err)
		}

		var guide models.User
		if err := tx.Where("id = ?", destination.CreatedBy).First(&guide).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.NewInvalidStatusError("Destination is no longer offered by its guide")
			}
			return nil, fmt.Errorf("failed to load guide: %w", err)
		}
		if !guide.IsActive {
			return nil, errors.NewInvalidStatusError("Destination is no longer offered by its guide")
		}

		now := s.now()
		bookingDate, total, err := ValidateBookingCreation(&destination, req.BookingDate, req.Participants, now)
		if err != nil {
			return nil, err
		}
		participants := req.Participants
		if participants <= 0 {
			participants = 1
		}

		guideID := destination.CreatedBy
		booking := &models.Booking{
			Reference:     pkg.BookingReference(now),
			UserID:        principal.ID,
			DestinationID: destination.ID,
			GuideID:       &guideID,
			Status:        models.BookingStatusPending,
			BookingDate:   bookingDate,
			Participants:  participants,
			TotalPrice:    total,
			Notes:         optionalText(req.Notes),
		}
		if err := tx.Create(booking).Error; err != nil {
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}

		outcome := &transitionOutcome{}
		log, err := s.appendLedger(tx, outcome, LedgerEntry{
			ContentType: models.ContentTypeBooking,
			ContentID:   booking.ID,
			Action:      models.LedgerActionCreated,
			ActorID:     principal.ID,
			Status:      string(booking.Status),
			New:         booking,
		}, "", &guideID)
		if err != nil {
			return nil, err
		}

		outcome.result = &models.TransitionResult{
			EntityType:    models.ContentTypeBooking,
			EntityID:      booking.ID,
			Action:        models.ActionCreate,
			NewStatus:     string(booking.Status),
			LedgerEntryID: log.ID,
			Entity:        booking,
		}
		return outcome, nil
	})
}

func (s *WorkflowService) transitionBooking(tx *gorm.DB, principal models.Principal, req models.TransitionRequest) (*transitionOutcome, error) {
	ledgerAction, ok := bookingLedgerActions[req.Action]
	if !ok {
		return nil, unsupportedAction(req.EntityType, req.Action)
	}

	booking, err := s.lockBooking(tx, req.EntityID)
	if err != nil {
		return nil, err
	}
	previous := *booking
	isTraveler := booking.UserID == principal.ID
	isGuide := booking.IsGuide(principal.ID)

	owners := []uuid.UUID{booking.UserID}
	if req.Action != models.ActionCancel {
		owners = nil
	}
	if booking.GuideID != nil {
		owners = append(owners, *booking.GuideID)
	}
	if !s.permissions.Check(principal, bookingPermissions[req.Action], owners...) {
		return nil, errors.NewForbiddenOwnershipError(fmt.Sprintf("You are not allowed to %s this booking", req.Action))
	}

	next, err := BookingLifecycle.Validate(booking.Status, req.Action, actorFor(principal, isTraveler, isGuide))
	if err != nil {
		return nil, err
	}

	outcome := &transitionOutcome{}
	if next == models.BookingStatusCancelled {
		current, err := s.cancelBookingInTx(tx, principal, booking, optionalText(req.Notes), outcome)
		if err != nil {
			return nil, err
		}
		outcome.result = bookingResult(req.Action, previous, current, outcome)
		return outcome, nil
	}

	result := tx.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, booking.Status).
		Update("status", next)
	if err := staleWrite(result, "booking"); err != nil {
		return nil, err
	}
	current, err := s.reloadBooking(tx, booking.ID)
	if err != nil {
		return nil, err
	}

	traveler := booking.UserID
	if _, err := s.appendLedger(tx, outcome, LedgerEntry{
		ContentType: models.ContentTypeBooking,
		ContentID:   booking.ID,
		Action:      ledgerAction,
		ActorID:     principal.ID,
		Status:      string(current.Status),
		Previous:    previous,
		New:         current,
		Notes:       optionalText(req.Notes),
	}, string(previous.Status), &traveler); err != nil {
		return nil, err
	}

	outcome.result = bookingResult(req.Action, previous, current, outcome)
	return outcome, nil
}

// cancelBookingInTx cancels a locked booking and appends its ledger entry.
// Cascades reuse it so every cancelled booking has its own entry.
func (s *WorkflowService) cancelBookingInTx(tx *gorm.DB, principal models.Principal, booking *models.Booking, notes *string, outcome *transitionOutcome) (*models.Booking, error) {
	previous := *booking
	now := s.now()
	result := tx.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, booking.Status).
		Updates(map[string]any{
			"status":       models.BookingStatusCancelled,
			"cancelled_at": now,
		})
	if err := staleWrite(result, "booking"); err != nil {
		return nil, err
	}
	current, err := s.reloadBooking(tx, booking.ID)
	if err != nil {
		return nil, err
	}

	// notify the party that did not cancel
	recipient := booking.UserID
	if recipient == principal.ID && booking.GuideID != nil {
		recipient = *booking.GuideID
	}
	if _, err := s.appendLedger(tx, outcome, LedgerEntry{
		ContentType: models.ContentTypeBooking,
		ContentID:   booking.ID,
		Action:      models.LedgerActionCancelled,
		ActorID:     principal.ID,
		Status:      string(current.Status),
		Previous:    previous,
		New:         current,
		Notes:       notes,
	}, string(previous.Status), &recipient); err != nil {
		return nil, err
	}
	return current, nil
}

func bookingResult(action models.TransitionAction, previous models.Booking, current *models.Booking, outcome *transitionOutcome) *models.TransitionResult {
	result := &models.TransitionResult{
		EntityType:     models.ContentTypeBooking,
		EntityID:       current.ID,
		Action:         action,
		PreviousStatus: string(previous.Status),
		NewStatus:      string(current.Status),
		Entity:         current,
	}
	if n := len(outcome.entries); n > 0 {
		result.LedgerEntryID = outcome.entries[n-1].log.ID
	}
	return result
}

func (s *WorkflowService) lockBooking(tx *gorm.DB, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := forUpdate(tx).Where("id = ?", id).First(&booking).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Booking not found")
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return &booking, nil
}

func (s *WorkflowService) reloadBooking(tx *gorm.DB, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, fmt.Errorf("failed to reload booking: %w", err)
	}
	return &booking, nil
}
