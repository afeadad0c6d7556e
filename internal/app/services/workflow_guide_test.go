package services

import (
	"context"
	"testing"

	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(env *testEnv, principal models.Principal) (*models.TransitionResult, error) {
	return env.workflow.ApplyAsGuide(context.Background(), principal, &models.GuideApplicationRequest{
		VerificationDocuments: []string{"https://cdn.example.com/ktp.jpg", " https://cdn.example.com/license.pdf "},
	})
}

func TestWorkflow_GuideVerificationScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	applicant := env.traveler(t)
	auditor := env.auditor(t)

	result, err := apply(env, applicant)
	require.NoError(t, err)
	assert.Equal(t, "pending", result.NewStatus)

	user := env.user(t, applicant.ID)
	assert.Equal(t, models.UserRoleUser, user.Role)
	assert.Equal(t, models.GuideStatusPending, user.GuideStatus)

	_, err = apply(env, user.Principal())
	assertCode(t, err, errors.CodeApplicationPending)

	approved := env.mustTransition(t, auditor, models.ContentTypeGuideVerification, result.EntityID, models.ActionApprove)
	assert.Equal(t, "approved", approved.NewStatus)

	user = env.user(t, applicant.ID)
	assert.Equal(t, models.UserRoleGuide, user.Role)
	assert.Equal(t, models.GuideStatusVerified, user.GuideStatus)

	var verification models.GuideVerification
	require.NoError(t, env.db.Where("id = ?", result.EntityID).First(&verification).Error)
	assert.Equal(t, models.VerificationStatusApproved, verification.Status)
	require.NotNil(t, verification.ReviewedBy)
	assert.Equal(t, auditor.ID, *verification.ReviewedBy)
	assert.Equal(t, []string{"https://cdn.example.com/ktp.jpg", "https://cdn.example.com/license.pdf"}, []string(verification.Documents))

	_, err = apply(env, user.Principal())
	assertCode(t, err, errors.CodeAlreadyVerifiedGuide)

	// the promoted guide can now publish
	_, err = env.workflow.CreateDestination(ctx, user.Principal(), &models.DestinationCreateRequest{Name: "Raja Ampat"})
	require.NoError(t, err)

	logs := env.ledger(t, models.ContentTypeGuideVerification, result.EntityID)
	require.Len(t, logs, 2)
	assert.Equal(t, models.LedgerActionSubmitted, logs[0].Action)
	assert.Equal(t, models.LedgerActionApproved, logs[1].Action)
	assert.Contains(t, string(logs[1].NewValues), `"guide_status":"verified"`)
}

func TestWorkflow_GuideRejectionAndReapply(t *testing.T) {
	env := newTestEnv(t)
	applicant := env.traveler(t)
	admin := env.admin(t)

	result, err := apply(env, applicant)
	require.NoError(t, err)

	reason := "Document is blurry"
	_, err = env.workflow.RequestTransition(context.Background(), admin, models.TransitionRequest{
		EntityType: models.ContentTypeGuideVerification,
		EntityID:   result.EntityID,
		Action:     models.ActionReject,
		Reason:     &reason,
	})
	require.NoError(t, err)

	user := env.user(t, applicant.ID)
	assert.Equal(t, models.UserRoleUser, user.Role)
	assert.Equal(t, models.GuideStatusRejected, user.GuideStatus)

	_, err = env.transition(admin, models.ContentTypeGuideVerification, result.EntityID, models.ActionApprove)
	assertCode(t, err, errors.CodeInvalidStatus)

	again, err := apply(env, user.Principal())
	require.NoError(t, err)
	assert.NotEqual(t, result.EntityID, again.EntityID)
}

func TestWorkflow_GuideVerificationGuards(t *testing.T) {
	env := newTestEnv(t)
	applicant := env.createUser(t, models.UserRoleAdmin, models.GuideStatusUnverified)
	guide := env.verifiedGuide(t)

	result, err := apply(env, applicant)
	require.NoError(t, err)

	_, err = env.transition(applicant, models.ContentTypeGuideVerification, result.EntityID, models.ActionApprove)
	assertCode(t, err, errors.CodeInvalidAction)

	_, err = env.transition(guide, models.ContentTypeGuideVerification, result.EntityID, models.ActionApprove)
	assertCode(t, err, errors.CodeInsufficientPermissions)

	_, err = env.transition(guide, models.ContentTypeGuideVerification, result.EntityID, models.ActionSubmit)
	assertCode(t, err, errors.CodeInvalidData)

	_, err = env.workflow.ApplyAsGuide(context.Background(), env.traveler(t), &models.GuideApplicationRequest{
		VerificationDocuments: []string{"   "},
	})
	assertCode(t, err, errors.CodeInvalidData)
}

func TestGuideService_ListVerifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.traveler(t)
	second := env.traveler(t)
	auditor := env.auditor(t)

	_, err := apply(env, first)
	require.NoError(t, err)
	_, err = apply(env, second)
	require.NoError(t, err)

	_, err = env.guides.ListVerifications(ctx, first, &models.VerificationListRequest{})
	assertCode(t, err, errors.CodeInsufficientPermissions)

	status := models.VerificationStatusPending
	page, err := env.guides.ListVerifications(ctx, auditor, &models.VerificationListRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)

	mine, err := env.guides.ListMine(ctx, first)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].UserID)
}
