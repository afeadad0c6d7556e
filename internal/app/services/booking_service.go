package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/infrastructures"
	"gorm.io/gorm"
)

type BookingService struct {
	db          *gorm.DB
	validator   *infrastructures.Validator
	permissions *PermissionResolver
}

func NewBookingService(db *gorm.DB, validator *infrastructures.Validator, permissions *PermissionResolver) *BookingService {
	return &BookingService{
		db:          db,
		validator:   validator,
		permissions: permissions,
	}
}

// ListAsTraveler returns the bookings principal made.
func (s *BookingService) ListAsTraveler(ctx context.Context, principal models.Principal, req *models.BookingListRequest) (*models.Pagination[[]models.Booking], error) {
	return s.list(ctx, req, "user_id = ?", principal.ID)
}

// ListAsGuide returns the bookings whose guide snapshot is principal.
func (s *BookingService) ListAsGuide(ctx context.Context, principal models.Principal, req *models.BookingListRequest) (*models.Pagination[[]models.Booking], error) {
	return s.list(ctx, req, "guide_id = ?", principal.ID)
}

func (s *BookingService) list(ctx context.Context, req *models.BookingListRequest, where string, id uuid.UUID) (*models.Pagination[[]models.Booking], error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	req.Normalize()

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where(where, id)
		if req.Status != nil {
			db = db.Where("status = ?", *req.Status)
		}
		return db
	}

	var totalItems int64
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).Scopes(filter).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count bookings")
	}

	bookings := make([]models.Booking, 0)
	if err := s.db.WithContext(ctx).Scopes(filter).
		Order("booking_date ASC").
		Limit(req.Limit).
		Offset(req.Offset()).
		Find(&bookings).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get bookings")
	}

	return models.NewPagination(&req.PaginationRequest, totalItems, bookings), nil
}

// GetBooking returns a booking if principal is its traveler, its guide or
// staff allowed to read any booking.
func (s *BookingService) GetBooking(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Booking not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get booking")
	}

	if booking.UserID != principal.ID && !booking.IsGuide(principal.ID) && !s.permissions.Check(principal, PermBookingsReadAny) {
		return nil, errors.NewForbiddenOwnershipError("You are not a party to this booking")
	}
	return &booking, nil
}
