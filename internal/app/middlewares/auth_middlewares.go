package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/safatanc/tourism-core/internal/app/services"
	"github.com/safatanc/tourism-core/internal/infrastructures"
)

const (
	LocalTokenSubject = "token_subject"
	LocalUser         = "user"
	LocalPrincipal    = "principal"
)

type AuthMiddleware struct {
	userService *services.UserService
	secret      []byte
}

func NewAuthMiddleware(userService *services.UserService, cfg *infrastructures.AppConfig) *AuthMiddleware {
	return &AuthMiddleware{userService: userService, secret: []byte(cfg.JWT_SECRET)}
}

// AuthToken verifies the bearer token and stores its subject.
func (m *AuthMiddleware) AuthToken(c *fiber.Ctx) error {
	subject, err := m.subject(c)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	c.Locals(LocalTokenSubject, subject)
	return c.Next()
}

// AuthPrincipal resolves the token subject to an active registered user.
func (m *AuthMiddleware) AuthPrincipal(c *fiber.Ctx) error {
	subject, ok := c.Locals(LocalTokenSubject).(uuid.UUID)
	if !ok {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("User is not authenticated"))
	}

	user, err := m.userService.GetUserByID(c.UserContext(), subject)
	if err != nil {
		if errors.CodeOf(err) == errors.CodeNotFound {
			return pkg.ErrorResponse(c, errors.NewUnauthorizedError("User is not registered. Please register first."))
		}
		return pkg.ErrorResponse(c, err)
	}
	if !user.IsActive {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Account is inactive"))
	}

	c.Locals(LocalUser, user)
	c.Locals(LocalPrincipal, user.Principal())
	return c.Next()
}

// Authenticated chains AuthToken and AuthPrincipal.
func (m *AuthMiddleware) Authenticated() []fiber.Handler {
	return []fiber.Handler{m.AuthToken, m.AuthPrincipal}
}

// OptionalPrincipal resolves a principal when a valid token is present and
// lets anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalPrincipal(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) == "" {
		return c.Next()
	}
	subject, err := m.subject(c)
	if err != nil {
		return c.Next()
	}
	user, err := m.userService.GetUserByID(c.UserContext(), subject)
	if err == nil && user.IsActive {
		c.Locals(LocalUser, user)
		c.Locals(LocalPrincipal, user.Principal())
	}
	return c.Next()
}

func (m *AuthMiddleware) subject(c *fiber.Ctx) (uuid.UUID, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return uuid.Nil, errors.NewUnauthorizedError()
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return uuid.Nil, errors.NewUnauthorizedError("Invalid or expired token")
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.NewUnauthorizedError("Invalid token subject")
	}
	return subject, nil
}

// PrincipalFrom returns the principal stored by AuthPrincipal.
func PrincipalFrom(c *fiber.Ctx) (models.Principal, bool) {
	principal, ok := c.Locals(LocalPrincipal).(models.Principal)
	return principal, ok
}

func MustPrincipal(c *fiber.Ctx) models.Principal {
	principal, _ := PrincipalFrom(c)
	return principal
}

func TokenSubject(c *fiber.Ctx) uuid.UUID {
	subject, _ := c.Locals(LocalTokenSubject).(uuid.UUID)
	return subject
}
