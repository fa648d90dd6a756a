package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/storefront-api/internal/domain"
)

// Reasons reported by TokenError.
const (
	ReasonInvalid      = "invalid token"
	ReasonExpired      = "token expired"
	ReasonIssuer       = "issuer mismatch"
	ReasonType         = "type mismatch"
	ReasonUserNotFound = "user not found"
)

// TokenError is returned by Verify when a token must be rejected.
type TokenError struct {
	Reason  string
	Expired bool
	Err     error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// UserLookup resolves token subjects against the user store.
type UserLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Claims describes the JWT payload.
type Claims struct {
	Issuer    string           `json:"iss"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
	Subject   int64            `json:"sub"`
	Type      domain.TokenType `json:"type"`
	ID        string           `json:"jti"`
}

func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c *Claims) GetIssuer() (string, error)                   { return c.Issuer, nil }
func (c *Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }
func (c *Claims) GetSubject() (string, error) {
	return strconv.FormatInt(c.Subject, 10), nil
}

// TokenSettings configures a TokenManager.
type TokenSettings struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenManager issues and verifies access and refresh tokens. It holds no
// mutable state and is safe for concurrent use.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	users      UserLookup
	now        func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(settings TokenSettings, users UserLookup) *TokenManager {
	if settings.AccessTTL <= 0 {
		settings.AccessTTL = time.Hour
	}
	if settings.RefreshTTL <= 0 {
		settings.RefreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret:     settings.Secret,
		issuer:     settings.Issuer,
		accessTTL:  settings.AccessTTL,
		refreshTTL: settings.RefreshTTL,
		users:      users,
		now:        time.Now,
	}
}

// WithClock returns a copy of the manager that reads time from now.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	clone := *tm
	clone.now = now
	return &clone
}

// Issuer returns the canonical origin embedded in every token.
func (tm *TokenManager) Issuer() string {
	return tm.issuer
}

// Lifetime resolves the configured duration for a token type.
func (tm *TokenManager) Lifetime(tokenType domain.TokenType) time.Duration {
	if tokenType == domain.TokenTypeRefresh {
		return tm.refreshTTL
	}
	return tm.accessTTL
}

// Issue builds and signs a token of the given type for userID.
func (tm *TokenManager) Issue(userID int64, tokenType domain.TokenType) (string, time.Time, error) {
	if !tokenType.Valid() {
		return "", time.Time{}, errors.New("unknown token type")
	}
	now := tm.now()
	expiresAt := now.Add(tm.Lifetime(tokenType))
	claims := &Claims{
		Issuer:    tm.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		Subject:   userID,
		Type:      tokenType,
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// IssuePair mints an access and a refresh token for userID.
func (tm *TokenManager) IssuePair(userID int64) (*domain.TokenPair, error) {
	access, accessExp, err := tm.Issue(userID, domain.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := tm.Issue(userID, domain.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
		ExpiresIn:        int64(tm.accessTTL / time.Second),
	}, nil
}

// Parse checks structure, signature and expiry and returns the claims.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &TokenError{Reason: ReasonExpired, Expired: true, Err: err}
		}
		return nil, &TokenError{Reason: ReasonInvalid, Err: err}
	}
	if !parsed.Valid {
		return nil, &TokenError{Reason: ReasonInvalid}
	}
	return claims, nil
}

// Verify decides whether tokenStr is currently valid for expected and
// returns the user it identifies. Rejections are *TokenError; any other
// error comes from the user store.
func (tm *TokenManager) Verify(ctx context.Context, tokenStr string, expected domain.TokenType) (int64, error) {
	claims, err := tm.Parse(tokenStr)
	if err != nil {
		return 0, err
	}
	if claims.Issuer != tm.issuer {
		return 0, &TokenError{Reason: ReasonIssuer}
	}
	if claims.Type != expected {
		return 0, &TokenError{Reason: ReasonType}
	}
	if claims.Subject <= 0 {
		return 0, &TokenError{Reason: ReasonUserNotFound}
	}
	if tm.users != nil {
		exists, err := tm.users.Exists(ctx, claims.Subject)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, &TokenError{Reason: ReasonUserNotFound}
		}
	}
	return claims.Subject, nil
}

// AsTokenError unwraps a verification rejection.
func AsTokenError(err error) (*TokenError, bool) {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr, true
	}
	return nil, false
}
