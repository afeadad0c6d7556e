package services

import (
	"time"

	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/shopspring/decimal"
)

// BookingLifecycle. Actor mismatches surface as UNAUTHORIZED since the
// caller is authenticated but not a party to the booking.
var BookingLifecycle = NewTransitionTable("booking", errors.NewForbiddenOwnershipError,
	Transition[models.BookingStatus]{From: models.BookingStatusPending, Action: models.ActionConfirm, To: models.BookingStatusConfirmed, Allow: byGuideOrAdmin},
	Transition[models.BookingStatus]{From: models.BookingStatusPending, Action: models.ActionCancel, To: models.BookingStatusCancelled, Allow: byParticipant},
	Transition[models.BookingStatus]{From: models.BookingStatusConfirmed, Action: models.ActionCancel, To: models.BookingStatusCancelled, Allow: byParticipant},
	Transition[models.BookingStatus]{From: models.BookingStatusConfirmed, Action: models.ActionComplete, To: models.BookingStatusCompleted, Allow: byGuideOrAdmin},
)

// IsTerminalBooking reports whether no action leaves status.
func IsTerminalBooking(status models.BookingStatus) bool {
	return len(BookingLifecycle.Actions(status)) == 0
}

func ValidateBooking(current models.BookingStatus, action models.TransitionAction, actorIsTraveler, actorIsGuide bool, actorRole models.UserRole) (models.BookingStatus, error) {
	return BookingLifecycle.Validate(current, action, Actor{Role: actorRole, IsOwner: actorIsTraveler, IsGuide: actorIsGuide})
}

// ValidateBookingCreation checks a new booking against its destination and
// returns the parsed date and the total price.
func ValidateBookingCreation(destination *models.Destination, bookingDate string, participants int, now time.Time) (time.Time, decimal.Decimal, error) {
	if destination.Status != models.DestinationStatusApproved {
		return time.Time{}, decimal.Zero, errors.NewInvalidStatusError("Destination is not open for booking")
	}

	date, err := pkg.ParseDate(bookingDate)
	if err != nil {
		return time.Time{}, decimal.Zero, errors.NewInvalidDataError("booking_date must be formatted as YYYY-MM-DD")
	}
	if date.Before(pkg.StartOfDay(now)) {
		return time.Time{}, decimal.Zero, errors.NewInvalidDataError("booking_date cannot be in the past")
	}

	if participants <= 0 {
		participants = 1
	}
	total := destination.Price.Mul(decimal.NewFromInt(int64(participants)))
	return date, total, nil
}
