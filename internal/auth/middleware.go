package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/domain"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

const identityKey = "auth_identity"

type identityCtxKey struct{}

// Error codes returned by the authenticator.
const (
	CodeMissingAuthorization = "MISSING_AUTHORIZATION"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeTokenInvalid         = "TOKEN_INVALID"
)

// BearerHeaders are inspected in order; the fallbacks cover proxies that
// strip Authorization before it reaches the application.
var BearerHeaders = []string{"Authorization", "X-Authorization", "Redirect-HTTP-Authorization"}

const bearerPrefix = "bearer "

// Identity is the authenticated caller of the current request.
type Identity struct {
	UserID int64
}

// Verifier validates presented tokens.
type Verifier interface {
	Verify(ctx context.Context, token string, expected domain.TokenType) (int64, error)
}

// Authenticator gates routes on a bearer access token.
type Authenticator struct {
	tokens Verifier
}

// NewAuthenticator constructs middleware.
func NewAuthenticator(tokens Verifier) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// ExtractBearer returns the token following a case-insensitive "Bearer "
// prefix in the first non-empty bearer header.
func ExtractBearer(header func(key string) string) (string, bool) {
	for _, name := range BearerHeaders {
		value := header(name)
		if value == "" {
			continue
		}
		if len(value) <= len(bearerPrefix) || !strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
			return "", false
		}
		return value[len(bearerPrefix):], true
	}
	return "", false
}

// RequireAuth rejects requests without a valid access token.
func (a *Authenticator) RequireAuth(c *fiber.Ctx) error {
	token, ok := ExtractBearer(func(key string) string { return c.Get(key) })
	if !ok {
		return apperrors.NewUnauthorized(CodeMissingAuthorization, "missing authorization")
	}

	userID, err := a.tokens.Verify(c.UserContext(), token, domain.TokenTypeAccess)
	if err != nil {
		return RejectionFor(err)
	}

	setIdentity(c, Identity{UserID: userID})
	return c.Next()
}

// OptionalAuth sets the identity when a valid access token is present and
// otherwise lets the request through untouched.
func (a *Authenticator) OptionalAuth(c *fiber.Ctx) error {
	if token, ok := ExtractBearer(func(key string) string { return c.Get(key) }); ok {
		if userID, err := a.tokens.Verify(c.UserContext(), token, domain.TokenTypeAccess); err == nil {
			setIdentity(c, Identity{UserID: userID})
		}
	}
	return c.Next()
}

// RejectionFor maps a verification failure to an API error: expired tokens
// are 401 so clients refresh, other invalid tokens are 403.
func RejectionFor(err error) error {
	tokenErr, ok := AsTokenError(err)
	if !ok {
		return apperrors.NewInternalError(err)
	}
	if tokenErr.Expired {
		return apperrors.NewUnauthorized(CodeTokenExpired, tokenErr.Reason)
	}
	return apperrors.NewForbidden(CodeTokenInvalid, tokenErr.Reason)
}

func setIdentity(c *fiber.Ctx, identity Identity) {
	c.Locals(identityKey, identity)
	c.SetUserContext(WithIdentity(c.UserContext(), identity))
}

// IdentityFromCtx retrieves the authenticated caller of a fiber request.
func IdentityFromCtx(c *fiber.Ctx) (Identity, bool) {
	identity, ok := c.Locals(identityKey).(Identity)
	return identity, ok
}

// WithIdentity attaches identity to ctx.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

// IdentityFromContext retrieves the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey{}).(Identity)
	return identity, ok
}
