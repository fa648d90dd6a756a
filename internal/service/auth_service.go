package service

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/events"
	"github.com/spec-kit/storefront-api/internal/repository"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

// Error codes returned by the auth flows.
const (
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeMissingRefreshToken = "MISSING_REFRESH_TOKEN"
	CodeUserNotFound        = "USER_NOT_FOUND"
)

// AuthService coordinates login, refresh and profile lookups.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	decoy      *auth.Decoy
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	BcryptCost int
}

// AuthResult is a freshly issued token bundle and its owner.
type AuthResult struct {
	User   *domain.User
	Tokens *domain.TokenPair
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		decoy:      auth.NewDecoy(deps.BcryptCost),
	}
}

func invalidCredentials() error {
	return apperrors.NewUnauthorized(CodeInvalidCredentials, "invalid username or password")
}

// Login authenticates by username or e-mail and issues a token pair.
func (s *AuthService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.decoy.Compare(password)
			s.publish(ctx, events.New(events.EventLoginFailed, 0, events.LoginFailedPayload{Login: login, Reason: "unknown user"}))
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.publish(ctx, events.New(events.EventLoginFailed, user.ID, events.LoginFailedPayload{Login: login, Reason: "wrong password"}))
		return nil, invalidCredentials()
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.New(events.EventUserLoggedIn, user.ID, nil))
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Refresh exchanges a refresh token for a new token pair. Previously issued
// tokens stay valid until they expire.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, apperrors.NewBadRequest(CodeMissingRefreshToken, "refresh_token is required")
	}

	userID, err := s.tokens.Verify(ctx, refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		if tokenErr, ok := auth.AsTokenError(err); ok && tokenErr.Reason == auth.ReasonUserNotFound {
			return nil, userNotFound()
		}
		return nil, auth.RejectionFor(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, userNotFound()
		}
		return nil, err
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.New(events.EventTokenRefreshed, user.ID, nil))
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Logout is a no-op beyond auditing: tokens are stateless and cannot be revoked.
func (s *AuthService) Logout(ctx context.Context, userID int64) {
	s.publish(ctx, events.New(events.EventUserLoggedOut, userID, nil))
}

// Me returns the profile of an authenticated user.
func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, userNotFound()
		}
		return nil, err
	}
	return user, nil
}

// Tokens exposes the token manager for middleware usage.
func (s *AuthService) Tokens() *auth.TokenManager {
	return s.tokens
}

func userNotFound() error {
	return apperrors.NewDomainError(CodeUserNotFound, "user not found", http.StatusNotFound, nil)
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
