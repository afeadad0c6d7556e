package services

import (
	"testing"

	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var destinationStatuses = []models.DestinationStatus{
	models.DestinationStatusDraft,
	models.DestinationStatusPending,
	models.DestinationStatusApproved,
	models.DestinationStatusRejected,
	models.DestinationStatusRevisionRequested,
}

func TestDestinationLifecycle_Closure(t *testing.T) {
	known := make(map[models.DestinationStatus]struct{}, len(destinationStatuses))
	for _, s := range destinationStatuses {
		known[s] = struct{}{}
	}

	for _, s := range destinationStatuses {
		for next := range DestinationLifecycle.reachable(s) {
			_, ok := known[next]
			assert.True(t, ok, "%s reaches unknown status %s", s, next)
		}
	}

	// every state can get back to approved
	for _, s := range destinationStatuses {
		_, ok := DestinationLifecycle.reachable(s)[models.DestinationStatusApproved]
		assert.True(t, ok, "approved unreachable from %s", s)
	}
}

func TestValidateDestination(t *testing.T) {
	tests := []struct {
		name    string
		current models.DestinationStatus
		action  models.TransitionAction
		isOwner bool
		role    models.UserRole
		want    models.DestinationStatus
		code    string
	}{
		{"owner submits draft", models.DestinationStatusDraft, models.ActionSubmit, true, models.UserRoleGuide, models.DestinationStatusPending, ""},
		{"stranger submits draft", models.DestinationStatusDraft, models.ActionSubmit, false, models.UserRoleGuide, "", errors.CodeInsufficientPermissions},
		{"owner resubmits after revision", models.DestinationStatusRevisionRequested, models.ActionSubmit, true, models.UserRoleGuide, models.DestinationStatusPending, ""},
		{"auditor approves", models.DestinationStatusPending, models.ActionApprove, false, models.UserRoleAuditor, models.DestinationStatusApproved, ""},
		{"admin rejects", models.DestinationStatusPending, models.ActionReject, false, models.UserRoleAdmin, models.DestinationStatusRejected, ""},
		{"guide cannot approve", models.DestinationStatusPending, models.ActionApprove, false, models.UserRoleGuide, "", errors.CodeInsufficientPermissions},
		{"owner cannot self approve", models.DestinationStatusPending, models.ActionApprove, true, models.UserRoleAdmin, "", errors.CodeInvalidAction},
		{"approve draft is illegal", models.DestinationStatusDraft, models.ActionApprove, false, models.UserRoleAdmin, "", errors.CodeInvalidStatus},
		{"owner edit demotes approved", models.DestinationStatusApproved, models.ActionEdit, true, models.UserRoleGuide, models.DestinationStatusDraft, ""},
		{"admin edit keeps approved", models.DestinationStatusApproved, models.ActionEdit, false, models.UserRoleAdmin, models.DestinationStatusApproved, ""},
		{"admin editing own approved keeps it", models.DestinationStatusApproved, models.ActionEdit, true, models.UserRoleAdmin, models.DestinationStatusApproved, ""},
		{"pending cannot be edited", models.DestinationStatusPending, models.ActionEdit, true, models.UserRoleGuide, "", errors.CodeInvalidStatus},
		{"owner resets rejected", models.DestinationStatusRejected, models.ActionReset, true, models.UserRoleGuide, models.DestinationStatusDraft, ""},
		{"owner withdraws revision", models.DestinationStatusRevisionRequested, models.ActionWithdraw, true, models.UserRoleGuide, models.DestinationStatusDraft, ""},
		{"owner deletes draft", models.DestinationStatusDraft, models.ActionDelete, true, models.UserRoleGuide, models.DestinationStatusDraft, ""},
		{"owner cannot delete approved", models.DestinationStatusApproved, models.ActionDelete, true, models.UserRoleGuide, "", errors.CodeInvalidAction},
		{"admin deletes approved", models.DestinationStatusApproved, models.ActionDelete, false, models.UserRoleAdmin, models.DestinationStatusApproved, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateDestination(tt.current, tt.action, tt.isOwner, tt.role)
			if tt.code != "" {
				assertCode(t, err, tt.code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateVerification(t *testing.T) {
	next, err := ValidateVerification(models.VerificationStatusPending, models.ActionApprove, false, models.UserRoleAuditor)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusApproved, next)

	_, err = ValidateVerification(models.VerificationStatusPending, models.ActionApprove, true, models.UserRoleAdmin)
	assertCode(t, err, errors.CodeInvalidAction)

	_, err = ValidateVerification(models.VerificationStatusApproved, models.ActionReject, false, models.UserRoleAdmin)
	assertCode(t, err, errors.CodeInvalidStatus)
}

func TestValidateGuideApplication(t *testing.T) {
	next, err := ValidateGuideApplication(models.GuideStatusUnverified, false)
	require.NoError(t, err)
	assert.Equal(t, models.GuideStatusPending, next)

	next, err = ValidateGuideApplication(models.GuideStatusRejected, false)
	require.NoError(t, err)
	assert.Equal(t, models.GuideStatusPending, next)

	_, err = ValidateGuideApplication(models.GuideStatusVerified, false)
	assertCode(t, err, errors.CodeAlreadyVerifiedGuide)

	_, err = ValidateGuideApplication(models.GuideStatusPending, false)
	assertCode(t, err, errors.CodeApplicationPending)

	_, err = ValidateGuideApplication(models.GuideStatusUnverified, true)
	assertCode(t, err, errors.CodeApplicationPending)

	_, err = ValidateGuideApplication(models.GuideStatusSuspended, false)
	assertCode(t, err, errors.CodeInvalidStatus)
}

func TestValidateGuideStatusAndAccount(t *testing.T) {
	next, err := ValidateGuideStatus(models.GuideStatusVerified, models.ActionSuspend, false, models.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.GuideStatusSuspended, next)

	_, err = ValidateGuideStatus(models.GuideStatusVerified, models.ActionSuspend, false, models.UserRoleAuditor)
	assertCode(t, err, errors.CodeInsufficientPermissions)

	account, err := ValidateAccount(models.AccountStatusActive, models.ActionDeactivate, false, models.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusInactive, account)

	_, err = ValidateAccount(models.AccountStatusActive, models.ActionDeactivate, true, models.UserRoleAdmin)
	assertCode(t, err, errors.CodeInvalidAction)

	_, err = ValidateAccount(models.AccountStatusInactive, models.ActionDeactivate, false, models.UserRoleAdmin)
	assertCode(t, err, errors.CodeInvalidStatus)
}

func TestTransitionTable_Introspection(t *testing.T) {
	assert.Contains(t, DestinationLifecycle.Actions(models.DestinationStatusDraft), models.ActionSubmit)
	assert.NotContains(t, DestinationLifecycle.Actions(models.DestinationStatusApproved), models.ActionSubmit)

	assert.Equal(t,
		[]models.TransitionAction{models.ActionSubmit, models.ActionEdit, models.ActionDelete},
		DestinationLifecycle.Actions(models.DestinationStatusDraft),
	)

	assert.True(t, DestinationLifecycle.IsSelfForbidden(models.DestinationStatusApproved, models.ActionDelete))
	assert.False(t, DestinationLifecycle.IsSelfForbidden(models.DestinationStatusDraft, models.ActionDelete))
	assert.False(t, DestinationLifecycle.IsSelfForbidden(models.DestinationStatusApproved, models.ActionEdit))
	assert.False(t, DestinationLifecycle.IsSelfForbidden(models.DestinationStatusDraft, models.ActionApprove))
}
