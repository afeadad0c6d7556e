package services

import (
	"sort"

	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/models"
)

type Permission string

const (
	PermDestinationsCreate    Permission = "destinations:create"
	PermDestinationsUpdateOwn Permission = "destinations:update:own"
	PermDestinationsSubmitOwn Permission = "destinations:submit:own"
	PermDestinationsDeleteOwn Permission = "destinations:delete:own"
	PermDestinationsDelete    Permission = "destinations:delete"
	PermDestinationsModerate  Permission = "destinations:moderate"
	PermDestinationsFeature   Permission = "destinations:feature"

	PermBookingsCreate      Permission = "bookings:create"
	PermBookingsCancelOwn   Permission = "bookings:cancel:own"
	PermBookingsConfirmOwn  Permission = "bookings:confirm:own"
	PermBookingsCompleteOwn Permission = "bookings:complete:own"
	PermBookingsReadAny     Permission = "bookings:read"

	PermGuidesApply   Permission = "guides:apply"
	PermGuidesVerify  Permission = "guides:verify"
	PermGuidesSuspend Permission = "guides:suspend"

	PermModerationQueueRead Permission = "moderation:queue:read"
	PermAuditRead           Permission = "audit:read"
	PermUsersManage         Permission = "users:manage"
)

// PermissionTable maps roles to permission sets. It is built once at startup
// and shared read-only, so lookups need no locking.
type PermissionTable struct {
	roles       map[models.UserRole]map[Permission]struct{}
	ownResource map[Permission]struct{}
	wildcard    map[models.UserRole]struct{}
}

// NewPermissionTable copies the given sets into an immutable table.
func NewPermissionTable(roles map[models.UserRole][]Permission, ownResource []Permission, wildcard ...models.UserRole) *PermissionTable {
	t := &PermissionTable{
		roles:       make(map[models.UserRole]map[Permission]struct{}, len(roles)),
		ownResource: make(map[Permission]struct{}, len(ownResource)),
		wildcard:    make(map[models.UserRole]struct{}, len(wildcard)),
	}
	for role, perms := range roles {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		t.roles[role] = set
	}
	for _, p := range ownResource {
		t.ownResource[p] = struct{}{}
	}
	for _, role := range wildcard {
		t.wildcard[role] = struct{}{}
	}
	return t
}

func DefaultPermissionTable() *PermissionTable {
	userPerms := []Permission{
		PermBookingsCreate,
		PermBookingsCancelOwn,
		PermGuidesApply,
	}
	guidePerms := append(append([]Permission{}, userPerms...),
		PermDestinationsCreate,
		PermDestinationsUpdateOwn,
		PermDestinationsSubmitOwn,
		PermDestinationsDeleteOwn,
		PermBookingsConfirmOwn,
		PermBookingsCompleteOwn,
	)
	auditorPerms := []Permission{
		PermDestinationsModerate,
		PermGuidesVerify,
		PermModerationQueueRead,
		PermAuditRead,
		PermBookingsReadAny,
	}

	return NewPermissionTable(
		map[models.UserRole][]Permission{
			models.UserRoleUser:    userPerms,
			models.UserRoleGuide:   guidePerms,
			models.UserRoleAuditor: auditorPerms,
		},
		[]Permission{
			PermDestinationsUpdateOwn,
			PermDestinationsSubmitOwn,
			PermDestinationsDeleteOwn,
			PermBookingsCancelOwn,
			PermBookingsConfirmOwn,
			PermBookingsCompleteOwn,
		},
		models.UserRoleAdmin,
	)
}

func (t *PermissionTable) IsOwnResource(p Permission) bool {
	_, ok := t.ownResource[p]
	return ok
}

type PermissionResolver struct {
	table *PermissionTable
}

func NewPermissionResolver(table *PermissionTable) *PermissionResolver {
	return &PermissionResolver{table: table}
}

// Check reports whether principal holds permission. For own-resource
// permissions the principal must be one of owners unless its effective role
// is auditor or admin.
func (r *PermissionResolver) Check(principal models.Principal, permission Permission, owners ...uuid.UUID) bool {
	if !principal.IsActive || principal.ID == uuid.Nil {
		return false
	}

	role := principal.EffectiveRole()
	if _, ok := r.table.wildcard[role]; ok {
		return true
	}

	if _, ok := r.table.roles[role][permission]; !ok {
		return false
	}

	if !r.table.IsOwnResource(permission) {
		return true
	}
	if role == models.UserRoleAuditor {
		return true
	}
	for _, owner := range owners {
		if owner == principal.ID {
			return true
		}
	}
	return false
}

// AllowedPermissions lists the effective permission set, sorted. Admins get
// the wildcard "*".
func (r *PermissionResolver) AllowedPermissions(principal models.Principal) []Permission {
	if !principal.IsActive {
		return []Permission{}
	}
	role := principal.EffectiveRole()
	if _, ok := r.table.wildcard[role]; ok {
		return []Permission{"*"}
	}
	perms := make([]Permission, 0, len(r.table.roles[role]))
	for p := range r.table.roles[role] {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}
