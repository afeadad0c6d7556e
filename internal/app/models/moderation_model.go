package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentType string

const (
	ContentTypeDestination       ContentType = "destination"
	ContentTypeGuideVerification ContentType = "guide_verification"
	ContentTypeBooking           ContentType = "booking"
	ContentTypeUser              ContentType = "user"
)

// LedgerAction is the past-tense name recorded for a committed transition.
type LedgerAction string

const (
	LedgerActionCreated           LedgerAction = "created"
	LedgerActionSubmitted         LedgerAction = "submitted"
	LedgerActionApproved          LedgerAction = "approved"
	LedgerActionRejected          LedgerAction = "rejected"
	LedgerActionRevisionRequested LedgerAction = "revision_requested"
	LedgerActionWithdrawn         LedgerAction = "withdrawn"
	LedgerActionReset             LedgerAction = "reset"
	LedgerActionDemoted           LedgerAction = "demoted"
	LedgerActionDeleted           LedgerAction = "deleted"
	LedgerActionConfirmed         LedgerAction = "confirmed"
	LedgerActionCancelled         LedgerAction = "cancelled"
	LedgerActionCompleted         LedgerAction = "completed"
	LedgerActionSuspended         LedgerAction = "suspended"
	LedgerActionReinstated        LedgerAction = "reinstated"
	LedgerActionRoleChanged       LedgerAction = "role_changed"
	LedgerActionDeactivated       LedgerAction = "deactivated"
	LedgerActionActivated         LedgerAction = "activated"
)

// ModerationLog is one committed lifecycle transition. Rows are append-only:
// a correction is a new row.
type ModerationLog struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ContentType     ContentType    `gorm:"type:varchar(32);not null;index:idx_moderation_content" json:"content_type"`
	ContentID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_moderation_content" json:"content_id"`
	Action          LedgerAction   `gorm:"type:varchar(32);not null" json:"action"`
	ActorID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"actor_id"`
	Status          string         `gorm:"type:varchar(32);not null;index" json:"status"`
	PreviousValues  datatypes.JSON `json:"previous_values"`
	NewValues       datatypes.JSON `json:"new_values"`
	Notes           *string        `gorm:"type:text" json:"notes"`
	RejectionReason *string        `gorm:"type:text" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;index" json:"created_at"`
}

func (m *ModerationLog) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type ModerationQueueRequest struct {
	PaginationRequest
	ContentType *ContentType `query:"content_type" validate:"omitempty,oneof=destination guide_verification booking user"`
	Status      *string      `query:"status" validate:"omitempty,max=32"`
}
