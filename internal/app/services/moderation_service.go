package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/infrastructures"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LedgerEntry is the input of ModerationService.Append. Previous and New are
// snapshots marshalled to JSON as-is.
type LedgerEntry struct {
	ContentType     models.ContentType
	ContentID       uuid.UUID
	Action          models.LedgerAction
	ActorID         uuid.UUID
	Status          string
	Previous        any
	New             any
	Notes           *string
	RejectionReason *string
}

type ModerationService struct {
	db        *gorm.DB
	validator *infrastructures.Validator
}

func NewModerationService(db *gorm.DB, validator *infrastructures.Validator) *ModerationService {
	return &ModerationService{
		db:        db,
		validator: validator,
	}
}

// Append is the only write path of the ledger. It must run on the caller's
// transaction so the entry commits or rolls back with the transition.
func (s *ModerationService) Append(tx *gorm.DB, entry LedgerEntry) (*models.ModerationLog, error) {
	previous, err := snapshotJSON(entry.Previous)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to encode ledger snapshot")
	}
	next, err := snapshotJSON(entry.New)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to encode ledger snapshot")
	}

	log := &models.ModerationLog{
		ContentType:     entry.ContentType,
		ContentID:       entry.ContentID,
		Action:          entry.Action,
		ActorID:         entry.ActorID,
		Status:          entry.Status,
		PreviousValues:  previous,
		NewValues:       next,
		Notes:           entry.Notes,
		RejectionReason: entry.RejectionReason,
		CreatedAt:       tx.NowFunc(),
	}
	if err := tx.Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

// LatestFor returns the newest ledger entry for a content item, or nil.
func (s *ModerationService) LatestFor(tx *gorm.DB, contentType models.ContentType, contentID uuid.UUID) (*models.ModerationLog, error) {
	var logs []models.ModerationLog
	err := tx.Where("content_type = ? AND content_id = ?", contentType, contentID).
		Order("created_at DESC").
		Limit(1).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

// Queue lists ledger entries oldest first, so the longest-waiting submission
// is at the head.
func (s *ModerationService) Queue(ctx context.Context, req *models.ModerationQueueRequest) (*models.Pagination[[]models.ModerationLog], error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	req.Normalize()

	filter := func(db *gorm.DB) *gorm.DB {
		if req.ContentType != nil {
			db = db.Where("content_type = ?", *req.ContentType)
		}
		if req.Status != nil {
			db = db.Where("status = ?", *req.Status)
		}
		return db
	}

	var totalItems int64
	if err := s.db.WithContext(ctx).Model(&models.ModerationLog{}).Scopes(filter).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count moderation queue")
	}

	logs := make([]models.ModerationLog, 0)
	if err := s.db.WithContext(ctx).Scopes(filter).
		Order("created_at ASC").
		Limit(req.Limit).
		Offset(req.Offset()).
		Find(&logs).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get moderation queue")
	}

	return models.NewPagination(&req.PaginationRequest, totalItems, logs), nil
}

// History returns the full trail of one content item in commit order.
func (s *ModerationService) History(ctx context.Context, contentType models.ContentType, contentID uuid.UUID) ([]models.ModerationLog, error) {
	logs := make([]models.ModerationLog, 0)
	if err := s.db.WithContext(ctx).
		Where("content_type = ? AND content_id = ?", contentType, contentID).
		Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get moderation history")
	}
	return logs, nil
}

func snapshotJSON(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return datatypes.JSON(b), nil
}
