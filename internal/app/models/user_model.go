package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleUser    UserRole = "user"
	UserRoleGuide   UserRole = "guide"
	UserRoleAuditor UserRole = "auditor"
	UserRoleAdmin   UserRole = "admin"
)

type GuideStatus string

const (
	GuideStatusUnverified GuideStatus = "unverified"
	GuideStatusPending    GuideStatus = "pending"
	GuideStatusVerified   GuideStatus = "verified"
	GuideStatusSuspended  GuideStatus = "suspended"
	GuideStatusRejected   GuideStatus = "rejected"
)

// AccountStatus is the is_active flag seen as a lifecycle state.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName    string         `gorm:"type:varchar(255);not null" json:"full_name"`
	Role        UserRole       `gorm:"type:varchar(16);not null;default:'user';index" json:"role"`
	GuideStatus GuideStatus    `gorm:"type:varchar(16);not null;default:'unverified'" json:"guide_status"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) AccountStatus() AccountStatus {
	if u.IsActive {
		return AccountStatusActive
	}
	return AccountStatusInactive
}

// Principal returns the authenticated actor view of the user.
func (u *User) Principal() Principal {
	return Principal{
		ID:          u.ID,
		Role:        u.Role,
		GuideStatus: u.GuideStatus,
		IsActive:    u.IsActive,
	}
}

// Principal is the actor on whose behalf a request runs. It is produced by the
// authentication layer and never persisted on its own.
type Principal struct {
	ID          uuid.UUID   `json:"id"`
	Role        UserRole    `json:"role"`
	GuideStatus GuideStatus `json:"guide_status"`
	IsActive    bool        `json:"is_active"`
}

// EffectiveRole demotes guides that are not verified to plain users.
func (p Principal) EffectiveRole() UserRole {
	if p.Role == UserRoleGuide && p.GuideStatus != GuideStatusVerified {
		return UserRoleUser
	}
	return p.Role
}

// IsModerator reports whether the effective role may moderate content.
func (p Principal) IsModerator() bool {
	role := p.EffectiveRole()
	return role == UserRoleAuditor || role == UserRoleAdmin
}

type UserRegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"full_name" validate:"required,max=255"`
}

type ChangeRoleRequest struct {
	Role UserRole `json:"role" validate:"required,oneof=user guide auditor admin"`
}
