package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/tourism-core/internal/app/errors"
	"github.com/safatanc/tourism-core/internal/app/pkg"
	"github.com/safatanc/tourism-core/internal/app/services"
)

type PermissionMiddleware struct {
	resolver *services.PermissionResolver
}

func NewPermissionMiddleware(resolver *services.PermissionResolver) *PermissionMiddleware {
	return &PermissionMiddleware{resolver: resolver}
}

// Require lets the request through only when the resolved principal holds
// perm. It must run after AuthPrincipal.
func (m *PermissionMiddleware) Require(perm services.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return pkg.ErrorResponse(c, errors.NewUnauthorizedError("User is not authenticated"))
		}
		if !m.resolver.Check(principal, perm) {
			return pkg.ErrorResponse(c, errors.NewInsufficientPermissionsError())
		}
		return c.Next()
	}
}
