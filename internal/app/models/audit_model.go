package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records any mutating action. It keeps no foreign key so it
// outlives the resource it points at.
type AuditLog struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	Action        string         `gorm:"type:varchar(64);not null;index" json:"action"`
	ResourceType  string         `gorm:"type:varchar(64);not null;index:idx_audit_resource" json:"resource_type"`
	ResourceID    string         `gorm:"type:varchar(64);index:idx_audit_resource" json:"resource_id"`
	OldValues     datatypes.JSON `json:"old_values"`
	NewValues     datatypes.JSON `json:"new_values"`
	IPAddress     string         `gorm:"type:varchar(64)" json:"ip_address"`
	RequestMethod string         `gorm:"type:varchar(16)" json:"request_method"`
	RequestURL    string         `gorm:"type:text" json:"request_url"`
	StatusCode    int            `json:"status_code"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}

// RequestMeta is the HTTP context copied onto audit rows.
type RequestMeta struct {
	IPAddress     string
	RequestMethod string
	RequestURL    string
	StatusCode    int
}

type AuditLogListRequest struct {
	PaginationRequest
	UserID       *string `query:"user_id" validate:"omitempty,uuid"`
	ResourceType *string `query:"resource_type" validate:"omitempty,max=64"`
	Action       *string `query:"action" validate:"omitempty,max=64"`
}
