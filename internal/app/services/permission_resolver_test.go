package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/stretchr/testify/assert"
)

func principal(role models.UserRole, guideStatus models.GuideStatus) models.Principal {
	return models.Principal{ID: uuid.New(), Role: role, GuideStatus: guideStatus, IsActive: true}
}

func TestPermissionResolver_RoleTable(t *testing.T) {
	resolver := NewPermissionResolver(DefaultPermissionTable())

	user := principal(models.UserRoleUser, models.GuideStatusUnverified)
	guide := principal(models.UserRoleGuide, models.GuideStatusVerified)
	auditor := principal(models.UserRoleAuditor, models.GuideStatusUnverified)
	admin := principal(models.UserRoleAdmin, models.GuideStatusUnverified)

	tests := []struct {
		name       string
		principal  models.Principal
		permission Permission
		want       bool
	}{
		{"user books", user, PermBookingsCreate, true},
		{"user applies", user, PermGuidesApply, true},
		{"user cannot create destination", user, PermDestinationsCreate, false},
		{"guide creates destination", guide, PermDestinationsCreate, true},
		{"guide keeps user permissions", guide, PermBookingsCreate, true},
		{"guide cannot moderate", guide, PermDestinationsModerate, false},
		{"auditor moderates", auditor, PermDestinationsModerate, true},
		{"auditor reads queue", auditor, PermModerationQueueRead, true},
		{"auditor reads bookings", auditor, PermBookingsReadAny, true},
		{"auditor cannot feature", auditor, PermDestinationsFeature, false},
		{"auditor cannot manage users", auditor, PermUsersManage, false},
		{"admin features", admin, PermDestinationsFeature, true},
		{"admin manages users", admin, PermUsersManage, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.Check(tt.principal, tt.permission))
		})
	}
}

func TestPermissionResolver_UnverifiedGuideIsDemoted(t *testing.T) {
	resolver := NewPermissionResolver(DefaultPermissionTable())

	for _, status := range []models.GuideStatus{models.GuideStatusPending, models.GuideStatusSuspended, models.GuideStatusRejected} {
		guide := principal(models.UserRoleGuide, status)
		assert.False(t, resolver.Check(guide, PermDestinationsCreate), status)
		assert.True(t, resolver.Check(guide, PermBookingsCreate), status)
	}
}

func TestPermissionResolver_InactiveDeniedEverything(t *testing.T) {
	resolver := NewPermissionResolver(DefaultPermissionTable())

	admin := principal(models.UserRoleAdmin, models.GuideStatusUnverified)
	admin.IsActive = false

	assert.False(t, resolver.Check(admin, PermUsersManage))
	assert.Empty(t, resolver.AllowedPermissions(admin))
}

func TestPermissionResolver_OwnResource(t *testing.T) {
	resolver := NewPermissionResolver(DefaultPermissionTable())

	owner := principal(models.UserRoleGuide, models.GuideStatusVerified)
	other := principal(models.UserRoleGuide, models.GuideStatusVerified)

	assert.True(t, resolver.Check(owner, PermDestinationsUpdateOwn, owner.ID))
	assert.False(t, resolver.Check(other, PermDestinationsUpdateOwn, owner.ID))
	assert.False(t, resolver.Check(owner, PermDestinationsUpdateOwn))

	traveler := principal(models.UserRoleUser, models.GuideStatusUnverified)
	assert.True(t, resolver.Check(traveler, PermBookingsCancelOwn, traveler.ID, owner.ID))
	assert.True(t, resolver.Check(owner, PermBookingsCancelOwn, traveler.ID, owner.ID))
	assert.False(t, resolver.Check(traveler, PermBookingsCancelOwn, uuid.New()))

	admin := principal(models.UserRoleAdmin, models.GuideStatusUnverified)
	assert.True(t, resolver.Check(admin, PermDestinationsUpdateOwn, owner.ID))
}

func TestPermissionResolver_AllowedPermissions(t *testing.T) {
	resolver := NewPermissionResolver(DefaultPermissionTable())

	admin := principal(models.UserRoleAdmin, models.GuideStatusUnverified)
	assert.Equal(t, []Permission{"*"}, resolver.AllowedPermissions(admin))

	user := principal(models.UserRoleUser, models.GuideStatusUnverified)
	assert.Equal(t, []Permission{PermBookingsCancelOwn, PermBookingsCreate, PermGuidesApply}, resolver.AllowedPermissions(user))
}

func TestPermissionTable_CustomTable(t *testing.T) {
	table := NewPermissionTable(
		map[models.UserRole][]Permission{models.UserRoleAuditor: {PermAuditRead}},
		nil,
	)
	resolver := NewPermissionResolver(table)

	admin := principal(models.UserRoleAdmin, models.GuideStatusUnverified)
	auditor := principal(models.UserRoleAuditor, models.GuideStatusUnverified)

	assert.False(t, resolver.Check(admin, PermAuditRead), "no wildcard role configured")
	assert.True(t, resolver.Check(auditor, PermAuditRead))
	assert.False(t, table.IsOwnResource(PermDestinationsUpdateOwn))
}
