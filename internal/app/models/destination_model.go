package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DestinationStatus string

const (
	DestinationStatusDraft             DestinationStatus = "draft"
	DestinationStatusPending           DestinationStatus = "pending"
	DestinationStatusApproved          DestinationStatus = "approved"
	DestinationStatusRejected          DestinationStatus = "rejected"
	DestinationStatusRevisionRequested DestinationStatus = "revision_requested"
)

type Destination struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedBy       uuid.UUID         `gorm:"type:uuid;not null;index" json:"created_by"`
	Name            string            `gorm:"type:varchar(255);not null" json:"name"`
	Description     string            `gorm:"type:text" json:"description"`
	Location        string            `gorm:"type:varchar(255)" json:"location"`
	Price           decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Status          DestinationStatus `gorm:"type:varchar(32);not null;default:'draft';index" json:"status"`
	ApprovedBy      *uuid.UUID        `gorm:"type:uuid" json:"approved_by"`
	ApprovedAt      *time.Time        `json:"approved_at"`
	RejectionReason *string           `gorm:"type:text" json:"rejection_reason"`
	Featured        bool              `gorm:"not null;default:false" json:"featured"`
	ViewCount       int64             `gorm:"not null;default:0" json:"view_count"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (d *Destination) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type DestinationCreateRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"omitempty,max=5000"`
	Location    string          `json:"location" validate:"omitempty,max=255"`
	Price       decimal.Decimal `json:"price"`
}

type DestinationUpdateRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Location    *string          `json:"location,omitempty" validate:"omitempty,max=255"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// IsEmpty reports whether the update carries no field at all.
func (r *DestinationUpdateRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.Location == nil && r.Price == nil
}

type DestinationFeatureRequest struct {
	Featured *bool `json:"featured" validate:"required"`
}
