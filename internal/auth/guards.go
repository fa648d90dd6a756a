package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

// MustIdentity returns the caller identity or a 401 when the route was
// reached without RequireAuth having run.
func MustIdentity(c *fiber.Ctx) (Identity, error) {
	identity, ok := IdentityFromCtx(c)
	if !ok || identity.UserID <= 0 {
		return Identity{}, apperrors.NewUnauthorized(CodeMissingAuthorization, "missing authorization")
	}
	return identity, nil
}

// OptionalUserID returns the caller id, or 0 for anonymous requests.
func OptionalUserID(c *fiber.Ctx) int64 {
	if identity, ok := IdentityFromCtx(c); ok {
		return identity.UserID
	}
	return 0
}
