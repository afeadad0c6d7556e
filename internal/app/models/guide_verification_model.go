package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

// GuideVerification is a guide application. At most one per user may be
// pending, enforced by a partial unique index.
type GuideVerification struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID                   `gorm:"type:uuid;not null;index;index:idx_open_guide_verification,unique,where:status = 'pending'" json:"user_id"`
	Credentials string                      `gorm:"type:text" json:"credentials"`
	Documents   datatypes.JSONSlice[string] `json:"documents"`
	Status      VerificationStatus          `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	ReviewedBy  *uuid.UUID                  `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt  *time.Time                  `json:"reviewed_at"`
	Notes       *string                     `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *GuideVerification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type GuideApplicationRequest struct {
	VerificationDocuments []string `json:"verification_documents" validate:"required,min=1,max=20,dive,required,max=512"`
	Credentials           *string  `json:"credentials,omitempty" validate:"omitempty,max=5000"`
}

type VerificationListRequest struct {
	PaginationRequest
	Status *VerificationStatus `query:"status" validate:"omitempty,oneof=pending approved rejected"`
}
