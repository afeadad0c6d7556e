package services

import (
	"context"

	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/infrastructures"
	"gorm.io/gorm"
)

type GuideService struct {
	db          *gorm.DB
	validator   *infrastructures.Validator
	permissions *PermissionResolver
}

func NewGuideService(db *gorm.DB, validator *infrastructures.Validator, permissions *PermissionResolver) *GuideService {
	return &GuideService{
		db:          db,
		validator:   validator,
		permissions: permissions,
	}
}

// ListVerifications is the reviewer view, oldest application first.
func (s *GuideService) ListVerifications(ctx context.Context, principal models.Principal, req *models.VerificationListRequest) (*models.Pagination[[]models.GuideVerification], error) {
	if !s.permissions.Check(principal, PermGuidesVerify) {
		return nil, errors.NewInsufficientPermissionsError()
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	req.Normalize()

	filter := func(db *gorm.DB) *gorm.DB {
		if req.Status != nil {
			db = db.Where("status = ?", *req.Status)
		}
		return db
	}

	var totalItems int64
	if err := s.db.WithContext(ctx).Model(&models.GuideVerification{}).Scopes(filter).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count verifications")
	}

	verifications := make([]models.GuideVerification, 0)
	if err := s.db.WithContext(ctx).Scopes(filter).
		Order("created_at ASC").
		Limit(req.Limit).
		Offset(req.Offset()).
		Find(&verifications).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get verifications")
	}

	return models.NewPagination(&req.PaginationRequest, totalItems, verifications), nil
}

// ListMine returns principal's own applications, newest first.
func (s *GuideService) ListMine(ctx context.Context, principal models.Principal) ([]models.GuideVerification, error) {
	verifications := make([]models.GuideVerification, 0)
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", principal.ID).
		Order("created_at DESC").
		Find(&verifications).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get verifications")
	}
	return verifications, nil
}
