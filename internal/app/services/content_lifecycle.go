package services

import (
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
)

func permissionDenied(msg string) *errors.AppError {
	return errors.NewInsufficientPermissionsError(msg)
}

// DestinationLifecycle. Delete keeps the status: the workflow soft-deletes
// the row instead.
var DestinationLifecycle = NewTransitionTable("destination", permissionDenied,
	Transition[models.DestinationStatus]{From: models.DestinationStatusDraft, Action: models.ActionSubmit, To: models.DestinationStatusPending, Allow: byOwner},
	Transition[models.DestinationStatus]{From: models.DestinationStatusRevisionRequested, Action: models.ActionSubmit, To: models.DestinationStatusPending, Allow: byOwner},
	Transition[models.DestinationStatus]{From: models.DestinationStatusRevisionRequested, Action: models.ActionWithdraw, To: models.DestinationStatusDraft, Allow: byOwner},
	Transition[models.DestinationStatus]{From: models.DestinationStatusRejected, Action: models.ActionReset, To: models.DestinationStatusDraft, Allow: byOwner},

	Transition[models.DestinationStatus]{From: models.DestinationStatusPending, Action: models.ActionApprove, To: models.DestinationStatusApproved, Allow: byModerator, SelfForbidden: true},
	Transition[models.DestinationStatus]{From: models.DestinationStatusPending, Action: models.ActionReject, To: models.DestinationStatusRejected, Allow: byModerator, SelfForbidden: true},
	Transition[models.DestinationStatus]{From: models.DestinationStatusPending, Action: models.ActionRequestRevision, To: models.DestinationStatusRevisionRequested, Allow: byModerator, SelfForbidden: true},

	Transition[models.DestinationStatus]{From: models.DestinationStatusApproved, Action: models.ActionEdit, To: models.DestinationStatusApproved, Allow: byAdmin},
	Transition[models.DestinationStatus]{From: models.DestinationStatusApproved, Action: models.ActionEdit, To: models.DestinationStatusDraft, Allow: byOwnerNonAdmin},
	Transition[models.DestinationStatus]{From: models.DestinationStatusDraft, Action: models.ActionEdit, To: models.DestinationStatusDraft, Allow: byOwnerOrAdmin},
	Transition[models.DestinationStatus]{From: models.DestinationStatusRevisionRequested, Action: models.ActionEdit, To: models.DestinationStatusRevisionRequested, Allow: byOwnerOrAdmin},
	Transition[models.DestinationStatus]{From: models.DestinationStatusRejected, Action: models.ActionEdit, To: models.DestinationStatusRejected, Allow: byOwnerOrAdmin},

	Transition[models.DestinationStatus]{From: models.DestinationStatusDraft, Action: models.ActionDelete, To: models.DestinationStatusDraft, Allow: byOwnerOrAdmin},
	Transition[models.DestinationStatus]{From: models.DestinationStatusPending, Action: models.ActionDelete, To: models.DestinationStatusPending, Allow: byAdmin, SelfForbidden: true},
	Transition[models.DestinationStatus]{From: models.DestinationStatusApproved, Action: models.ActionDelete, To: models.DestinationStatusApproved, Allow: byAdmin, SelfForbidden: true},
	Transition[models.DestinationStatus]{From: models.DestinationStatusRejected, Action: models.ActionDelete, To: models.DestinationStatusRejected, Allow: byAdmin, SelfForbidden: true},
	Transition[models.DestinationStatus]{From: models.DestinationStatusRevisionRequested, Action: models.ActionDelete, To: models.DestinationStatusRevisionRequested, Allow: byAdmin, SelfForbidden: true},
)

var VerificationLifecycle = NewTransitionTable("verification", permissionDenied,
	Transition[models.VerificationStatus]{From: models.VerificationStatusPending, Action: models.ActionApprove, To: models.VerificationStatusApproved, Allow: byModerator, SelfForbidden: true},
	Transition[models.VerificationStatus]{From: models.VerificationStatusPending, Action: models.ActionReject, To: models.VerificationStatusRejected, Allow: byModerator, SelfForbidden: true},
)

// GuideStatusLifecycle drives User.guide_status. Approve and reject are only
// ever applied as the cascade of a verification decision.
var GuideStatusLifecycle = NewTransitionTable("guide status", permissionDenied,
	Transition[models.GuideStatus]{From: models.GuideStatusUnverified, Action: models.ActionApply, To: models.GuideStatusPending, Allow: byOwner},
	Transition[models.GuideStatus]{From: models.GuideStatusRejected, Action: models.ActionApply, To: models.GuideStatusPending, Allow: byOwner},
	Transition[models.GuideStatus]{From: models.GuideStatusPending, Action: models.ActionApprove, To: models.GuideStatusVerified, Allow: byModerator, SelfForbidden: true},
	Transition[models.GuideStatus]{From: models.GuideStatusPending, Action: models.ActionReject, To: models.GuideStatusRejected, Allow: byModerator, SelfForbidden: true},
	Transition[models.GuideStatus]{From: models.GuideStatusVerified, Action: models.ActionSuspend, To: models.GuideStatusSuspended, Allow: byAdmin, SelfForbidden: true},
	Transition[models.GuideStatus]{From: models.GuideStatusSuspended, Action: models.ActionReinstate, To: models.GuideStatusVerified, Allow: byAdmin, SelfForbidden: true},
)

var AccountLifecycle = NewTransitionTable("user", permissionDenied,
	Transition[models.AccountStatus]{From: models.AccountStatusActive, Action: models.ActionDeactivate, To: models.AccountStatusInactive, Allow: byAdmin, SelfForbidden: true},
	Transition[models.AccountStatus]{From: models.AccountStatusInactive, Action: models.ActionActivate, To: models.AccountStatusActive, Allow: byAdmin, SelfForbidden: true},
	Transition[models.AccountStatus]{From: models.AccountStatusActive, Action: models.ActionChangeRole, To: models.AccountStatusActive, Allow: byAdmin, SelfForbidden: true},
	Transition[models.AccountStatus]{From: models.AccountStatusInactive, Action: models.ActionChangeRole, To: models.AccountStatusInactive, Allow: byAdmin, SelfForbidden: true},
	Transition[models.AccountStatus]{From: models.AccountStatusActive, Action: models.ActionDelete, To: models.AccountStatusInactive, Allow: byAdmin, SelfForbidden: true},
	Transition[models.AccountStatus]{From: models.AccountStatusInactive, Action: models.ActionDelete, To: models.AccountStatusInactive, Allow: byAdmin, SelfForbidden: true},
)

func ValidateDestination(current models.DestinationStatus, action models.TransitionAction, actorIsOwner bool, actorRole models.UserRole) (models.DestinationStatus, error) {
	return DestinationLifecycle.Validate(current, action, Actor{Role: actorRole, IsOwner: actorIsOwner})
}

func ValidateVerification(current models.VerificationStatus, action models.TransitionAction, actorIsOwner bool, actorRole models.UserRole) (models.VerificationStatus, error) {
	return VerificationLifecycle.Validate(current, action, Actor{Role: actorRole, IsOwner: actorIsOwner})
}

// ValidateGuideApplication checks whether a user in guideStatus may open a
// new verification. hasOpen reports an existing pending verification.
func ValidateGuideApplication(guideStatus models.GuideStatus, hasOpen bool) (models.GuideStatus, error) {
	switch {
	case guideStatus == models.GuideStatusVerified:
		return "", errors.NewAlreadyVerifiedGuideError("You are already a verified guide")
	case hasOpen || guideStatus == models.GuideStatusPending:
		return "", errors.NewApplicationPendingError("You already have a pending guide application")
	}
	return GuideStatusLifecycle.Validate(guideStatus, models.ActionApply, Actor{Role: models.UserRoleUser, IsOwner: true})
}

func ValidateGuideStatus(current models.GuideStatus, action models.TransitionAction, actorIsOwner bool, actorRole models.UserRole) (models.GuideStatus, error) {
	return GuideStatusLifecycle.Validate(current, action, Actor{Role: actorRole, IsOwner: actorIsOwner})
}

func ValidateAccount(current models.AccountStatus, action models.TransitionAction, actorIsSelf bool, actorRole models.UserRole) (models.AccountStatus, error) {
	return AccountLifecycle.Validate(current, action, Actor{Role: actorRole, IsOwner: actorIsSelf})
}
