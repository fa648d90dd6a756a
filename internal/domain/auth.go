package domain

import "time"

// TokenType differentiates short-lived access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Valid reports whether t is a known token type.
func (t TokenType) Valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// TokenPair is the bundle returned by login and refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	ExpiresIn        int64
}
