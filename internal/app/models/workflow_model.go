package models

import (
	"time"

	"github.com/google/uuid"
)

// TransitionAction is the verb a caller asks the workflow to apply.
type TransitionAction string

const (
	ActionCreate          TransitionAction = "create"
	ActionSubmit          TransitionAction = "submit"
	ActionApprove         TransitionAction = "approve"
	ActionReject          TransitionAction = "reject"
	ActionRequestRevision TransitionAction = "request_revision"
	ActionWithdraw        TransitionAction = "withdraw"
	ActionReset           TransitionAction = "reset"
	ActionEdit            TransitionAction = "edit"
	ActionDelete          TransitionAction = "delete"
	ActionApply           TransitionAction = "apply"
	ActionConfirm         TransitionAction = "confirm"
	ActionCancel          TransitionAction = "cancel"
	ActionComplete        TransitionAction = "complete"
	ActionSuspend         TransitionAction = "suspend"
	ActionReinstate       TransitionAction = "reinstate"
	ActionChangeRole      TransitionAction = "change_role"
	ActionDeactivate      TransitionAction = "deactivate"
	ActionActivate        TransitionAction = "activate"
)

// TransitionRequest is the single input of WorkflowService.RequestTransition.
// Reason is required for rejecting a destination and Role for change_role;
// every other field is optional.
type TransitionRequest struct {
	EntityType ContentType      `validate:"required,oneof=destination guide_verification booking user"`
	EntityID   uuid.UUID        `validate:"required"`
	Action     TransitionAction `validate:"required"`
	Notes      *string          `validate:"omitempty,max=2000"`
	Reason     *string          `validate:"omitempty,max=2000"`
	Role       *UserRole        `validate:"omitempty,oneof=user guide auditor admin"`
	Cascade    bool
}

// TransitionResult carries the authoritative post-commit state.
type TransitionResult struct {
	EntityType     ContentType      `json:"entity_type"`
	EntityID       uuid.UUID        `json:"entity_id"`
	Action         TransitionAction `json:"action"`
	PreviousStatus string           `json:"previous_status"`
	NewStatus      string           `json:"new_status"`
	LedgerEntryID  uuid.UUID        `json:"ledger_entry_id"`
	Entity         any              `json:"entity"`
}

// DomainEvent is published after commit for the notification collaborator.
type DomainEvent struct {
	Type          string      `json:"type"`
	ContentType   ContentType `json:"content_type"`
	ContentID     uuid.UUID   `json:"content_id"`
	Action        string      `json:"action"`
	Status        string      `json:"status"`
	ActorID       uuid.UUID   `json:"actor_id"`
	RecipientID   *uuid.UUID  `json:"recipient_id,omitempty"`
	LedgerEntryID uuid.UUID   `json:"ledger_entry_id"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// Request bodies for the moderation endpoints. Decoded strictly.

type ModerationNotesRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ModerationRejectRequest struct {
	Reason string  `json:"reason" validate:"required,max=2000"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type VerificationRejectRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=2000"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}
