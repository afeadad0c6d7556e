package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/infrastructures"
	"gorm.io/gorm"
)

type DestinationService struct {
	db           *gorm.DB
	validator    *infrastructures.Validator
	permissions  *PermissionResolver
	auditService *AuditService
}

func NewDestinationService(db *gorm.DB, validator *infrastructures.Validator, permissions *PermissionResolver, auditService *AuditService) *DestinationService {
	return &DestinationService{
		db:           db,
		validator:    validator,
		permissions:  permissions,
		auditService: auditService,
	}
}

// ListApproved returns the public catalogue, featured first.
func (s *DestinationService) ListApproved(ctx context.Context, pagination *models.PaginationRequest) (*models.Pagination[[]models.Destination], error) {
	return s.list(ctx, pagination, func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", models.DestinationStatusApproved)
	}, "featured DESC, created_at DESC")
}

func (s *DestinationService) ListByOwner(ctx context.Context, ownerID uuid.UUID, pagination *models.PaginationRequest) (*models.Pagination[[]models.Destination], error) {
	return s.list(ctx, pagination, func(db *gorm.DB) *gorm.DB {
		return db.Where("created_by = ?", ownerID)
	}, "updated_at DESC")
}

func (s *DestinationService) list(ctx context.Context, pagination *models.PaginationRequest, filter func(*gorm.DB) *gorm.DB, order string) (*models.Pagination[[]models.Destination], error) {
	if err := s.validator.Validate(pagination); err != nil {
		return nil, err
	}
	pagination.Normalize()

	var totalItems int64
	if err := s.db.WithContext(ctx).Model(&models.Destination{}).Scopes(filter).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count destinations")
	}

	destinations := make([]models.Destination, 0)
	if err := s.db.WithContext(ctx).Scopes(filter).
		Order(order).
		Limit(pagination.Limit).
		Offset(pagination.Offset()).
		Find(&destinations).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get destinations")
	}

	return models.NewPagination(pagination, totalItems, destinations), nil
}

// GetDestination returns a destination visible to viewer. Only approved
// destinations are public; owners and moderators see every state. A public
// view by anyone but the owner bumps view_count.
func (s *DestinationService) GetDestination(ctx context.Context, viewer *models.Principal, id uuid.UUID) (*models.Destination, error) {
	var destination models.Destination
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&destination).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Destination not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get destination")
	}

	isOwner := viewer != nil && viewer.ID == destination.CreatedBy
	if destination.Status != models.DestinationStatusApproved {
		if isOwner || (viewer != nil && viewer.IsActive && viewer.IsModerator()) {
			return &destination, nil
		}
		return nil, errors.NewNotFoundError("Destination not found")
	}

	if !isOwner {
		if err := s.db.WithContext(ctx).Model(&models.Destination{}).
			Where("id = ?", destination.ID).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
			return nil, errors.NewInternalServerError(err, "Failed to record view")
		}
		destination.ViewCount++
	}
	return &destination, nil
}

// SetFeatured toggles the featured flag on an approved destination. It is not
// a lifecycle transition, so only the audit trail records it.
func (s *DestinationService) SetFeatured(ctx context.Context, principal models.Principal, id uuid.UUID, req *models.DestinationFeatureRequest) (*models.Destination, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !s.permissions.Check(principal, PermDestinationsFeature) {
		return nil, errors.NewInsufficientPermissionsError()
	}

	var previous, current models.Destination
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("id = ?", id).First(&previous).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.NewNotFoundError("Destination not found")
			}
			return errors.NewInternalServerError(err, "Failed to get destination")
		}
		if previous.Status != models.DestinationStatusApproved {
			return errors.NewInvalidStatusError("Only approved destinations can be featured")
		}

		result := tx.Model(&models.Destination{}).
			Where("id = ? AND status = ?", previous.ID, previous.Status).
			Update("featured", *req.Featured)
		if err := staleWrite(result, "destination"); err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&current).Error
	})
	if err != nil {
		return nil, translateTxError(ctx, err)
	}

	actorID := principal.ID
	s.auditService.Record(ctx, AuditEntry{
		UserID:       &actorID,
		Action:       "destination.featured",
		ResourceType: string(models.ContentTypeDestination),
		ResourceID:   current.ID.String(),
		OldValues:    map[string]bool{"featured": previous.Featured},
		NewValues:    map[string]bool{"featured": current.Featured},
	})
	return &current, nil
}
