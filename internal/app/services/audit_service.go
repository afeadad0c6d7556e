package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/safatanc/tourism-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditEntry is one mutating action to record.
type AuditEntry struct {
	UserID       *uuid.UUID
	Action       string
	ResourceType string
	ResourceID   string
	OldValues    any
	NewValues    any
	Meta         models.RequestMeta
}

type AuditService struct {
	db         *gorm.DB
	validator  *infrastructures.Validator
	dispatcher *PostCommitDispatcher
}

func NewAuditService(db *gorm.DB, validator *infrastructures.Validator, dispatcher *PostCommitDispatcher) *AuditService {
	return &AuditService{
		db:         db,
		validator:  validator,
		dispatcher: dispatcher,
	}
}

// Append writes an audit row synchronously. It runs outside any business
// transaction.
func (s *AuditService) Append(ctx context.Context, entry AuditEntry) error {
	oldValues, err := snapshotJSON(entry.OldValues)
	if err != nil {
		return err
	}
	newValues, err := snapshotJSON(entry.NewValues)
	if err != nil {
		return err
	}

	auditLog := &models.AuditLog{
		UserID:        entry.UserID,
		Action:        entry.Action,
		ResourceType:  entry.ResourceType,
		ResourceID:    entry.ResourceID,
		OldValues:     oldValues,
		NewValues:     newValues,
		IPAddress:     entry.Meta.IPAddress,
		RequestMethod: entry.Meta.RequestMethod,
		RequestURL:    entry.Meta.RequestURL,
		StatusCode:    entry.Meta.StatusCode,
	}

	if err := s.db.WithContext(ctx).Create(auditLog).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to create audit log")
	}
	return nil
}

// Record queues entry on the post-commit dispatcher. Request metadata is taken
// from ctx when the entry carries none. Failures are logged, never returned.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	if entry.Meta == (models.RequestMeta{}) {
		entry.Meta = pkg.RequestMetaFrom(ctx)
	}
	s.dispatcher.Dispatch("audit:"+entry.Action, func(jobCtx context.Context) error {
		if err := s.Append(jobCtx, entry); err != nil {
			logrus.WithFields(logrus.Fields{
				"action":        entry.Action,
				"resource_type": entry.ResourceType,
				"resource_id":   entry.ResourceID,
			}).Errorf("audit append failed: %v", err)
			return err
		}
		return nil
	})
}

// GetAuditLogs retrieves audit logs with pagination, newest first
func (s *AuditService) GetAuditLogs(ctx context.Context, req *models.AuditLogListRequest) (*models.Pagination[[]models.AuditLog], error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	req.Normalize()

	filter := func(db *gorm.DB) *gorm.DB {
		if req.UserID != nil {
			db = db.Where("user_id = ?", *req.UserID)
		}
		if req.ResourceType != nil {
			db = db.Where("resource_type = ?", *req.ResourceType)
		}
		if req.Action != nil {
			db = db.Where("action = ?", *req.Action)
		}
		return db
	}

	var totalItems int64
	if err := s.db.WithContext(ctx).Model(&models.AuditLog{}).Scopes(filter).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count audit logs")
	}

	logs := make([]models.AuditLog, 0)
	if err := s.db.WithContext(ctx).Scopes(filter).
		Order("created_at DESC").
		Limit(req.Limit).
		Offset(req.Offset()).
		Find(&logs).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get audit logs")
	}

	return models.NewPagination(&req.PaginationRequest, totalItems, logs), nil
}

// GetResourceTrail returns every audit row for one resource, oldest first.
func (s *AuditService) GetResourceTrail(ctx context.Context, resourceType string, resourceID string) ([]models.AuditLog, error) {
	logs := make([]models.AuditLog, 0)
	if err := s.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get audit trail")
	}
	return logs, nil
}
