package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusRefunded  BookingStatus = "refunded"
)

// ActiveBookingStatuses are the non-terminal statuses that pin a destination
// or a user against deletion.
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

// Booking.GuideID is a snapshot of the destination creator taken at creation
// time. It is only ever cleared, never reassigned.
type Booking struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Reference     string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"reference"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	DestinationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"destination_id"`
	GuideID       *uuid.UUID      `gorm:"type:uuid;index" json:"guide_id"`
	Status        BookingStatus   `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	BookingDate   time.Time       `gorm:"not null" json:"booking_date"`
	Participants  int             `gorm:"not null;default:1" json:"participants"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_price"`
	Notes         *string         `gorm:"type:text" json:"notes"`
	CancelledAt   *time.Time      `json:"cancelled_at"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IsGuide reports whether id holds the booking's guide snapshot.
func (b *Booking) IsGuide(id uuid.UUID) bool {
	return b.GuideID != nil && *b.GuideID == id
}

type BookingCreateRequest struct {
	DestinationID string  `json:"destination_id" validate:"required,uuid"`
	BookingDate   string  `json:"booking_date" validate:"required,datetime=2006-01-02"`
	Participants  int     `json:"participants" validate:"omitempty,min=1,max=50"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type BookingListRequest struct {
	PaginationRequest
	Status *BookingStatus `query:"status" validate:"omitempty,oneof=pending confirmed completed cancelled refunded"`
}
