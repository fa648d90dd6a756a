package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/service"
	"github.com/spec-kit/storefront-api/internal/validation"
)

// AuthHandler exposes login, refresh, logout and profile endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	v := validation.New()
	v.Field("username", req.Username).Required()
	v.Field("password", req.Password).Required()
	if err := v.Err(); err != nil {
		return err
	}

	result, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return ok(c, tokenResponse(result))
}

// Refresh POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.service.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return ok(c, tokenResponse(result))
}

// Logout POST /auth/logout. Tokens are stateless, so this always succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if userID := auth.OptionalUserID(c); userID > 0 {
		h.service.Logout(c.UserContext(), userID)
	}
	return ok(c, dto.MessageResponse{Message: "logged out"})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.service.Me(c.UserContext(), identity.UserID)
	if err != nil {
		return err
	}
	return ok(c, userResponse(user))
}

func tokenResponse(result *service.AuthResult) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    result.Tokens.ExpiresIn,
		User:         userResponse(result.User),
	}
}
