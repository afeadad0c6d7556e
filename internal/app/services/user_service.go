package services

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/infrastructures"
	"gorm.io/gorm"
)

// UserProfile is a user together with its effective permissions.
type UserProfile struct {
	models.User
	EffectiveRole models.UserRole `json:"effective_role"`
	Permissions   []Permission    `json:"permissions"`
}

type UserService struct {
	db           *gorm.DB
	validator    *infrastructures.Validator
	permissions  *PermissionResolver
	auditService *AuditService
}

func NewUserService(db *gorm.DB, validator *infrastructures.Validator, permissions *PermissionResolver, auditService *AuditService) *UserService {
	return &UserService{
		db:           db,
		validator:    validator,
		permissions:  permissions,
		auditService: auditService,
	}
}

// Register creates the local record for an identity issued by the external
// auth provider. id is the token subject.
func (s *UserService) Register(ctx context.Context, id uuid.UUID, req *models.UserRegisterRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:          id,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:    strings.TrimSpace(req.FullName),
		Role:        models.UserRoleUser,
		GuideStatus: models.GuideStatusUnverified,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if stdErrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.NewAlreadyProcessedError("User is already registered")
		}
		return nil, errors.NewInternalServerError(err, "Failed to register user")
	}

	s.auditService.Record(ctx, AuditEntry{
		UserID:       &user.ID,
		Action:       "user.registered",
		ResourceType: string(models.ContentTypeUser),
		ResourceID:   user.ID.String(),
		NewValues:    user,
	})
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("User not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get user")
	}
	return &user, nil
}

func (s *UserService) GetProfile(ctx context.Context, principal models.Principal) (*UserProfile, error) {
	user, err := s.GetUserByID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	return &UserProfile{
		User:          *user,
		EffectiveRole: principal.EffectiveRole(),
		Permissions:   s.permissions.AllowedPermissions(user.Principal()),
	}, nil
}
