// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/inventory-server/internal/i18n"
	"codeberg.org/oliverandrich/inventory-server/internal/middleware"
	"codeberg.org/oliverandrich/inventory-server/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains handlers for authentication.
type AuthHandlers struct {
	auth *auth.Service
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(authService *auth.Service) *AuthHandlers {
	return &AuthHandlers{auth: authService}
}

// SignupRequest is the request body for account creation.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates a new account.
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid request")
	}

	user, err := h.auth.Signup(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// LoginRequest is the request body for login. Identifier may be a username
// or an email; the username and email fields are accepted as fallbacks for
// compatibility.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (r *LoginRequest) identifier() string {
	switch {
	case r.Identifier != "":
		return r.Identifier
	case r.Username != "":
		return r.Username
	default:
		return r.Email
	}
}

// Login authenticates an account. With two-factor enabled the response
// carries a temp token and no session token.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid request")
	}

	result, err := h.auth.Login(c.Request().Context(), req.identifier(), req.Password)
	if err != nil {
		return fail(c, err)
	}

	if result.TwoFactorRequired {
		payload := map[string]any{
			"twoFactorRequired": true,
			"tempToken":         result.TempToken,
		}
		if result.PreviewURL != "" {
			payload["previewUrl"] = result.PreviewURL
		}
		if result.Code != "" {
			payload["code"] = result.Code
		}
		return c.JSON(http.StatusOK, payload)
	}

	return c.JSON(http.StatusOK, sessionPayload(result))
}

// VerifyTwoFactorRequest is the request body for completing a pending login.
type VerifyTwoFactorRequest struct {
	TempToken string `json:"tempToken"`
	Code      string `json:"code"`
}

// VerifyTwoFactor exchanges a temp token plus a valid code for a session.
func (h *AuthHandlers) VerifyTwoFactor(c echo.Context) error {
	var req VerifyTwoFactorRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid request")
	}

	result, err := h.auth.VerifyTwoFactor(c.Request().Context(), req.TempToken, req.Code)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, sessionPayload(result))
}

// ResendTwoFactorRequest is the request body for requesting a fresh code.
type ResendTwoFactorRequest struct {
	TempToken string `json:"tempToken"`
}

// ResendTwoFactor replaces the pending code while keeping the temp token.
func (h *AuthHandlers) ResendTwoFactor(c echo.Context) error {
	var req ResendTwoFactorRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid request")
	}

	challenge, err := h.auth.ResendTwoFactor(c.Request().Context(), req.TempToken)
	if err != nil {
		return fail(c, err)
	}

	payload := map[string]any{
		"message": i18n.T(c.Request().Context(), "two_factor_resent"),
	}
	if challenge.PreviewURL != "" {
		payload["previewUrl"] = challenge.PreviewURL
	}
	if challenge.Code != "" {
		payload["code"] = challenge.Code
	}
	return c.JSON(http.StatusOK, payload)
}

// EnableTwoFactor turns on two-factor authentication for the authenticated
// account.
func (h *AuthHandlers) EnableTwoFactor(c echo.Context) error {
	if err := h.auth.EnableTwoFactor(c.Request().Context(), middleware.UserID(c)); err != nil {
		return fail(c, err)
	}
	return message(c, http.StatusOK, i18n.T(c.Request().Context(), "two_factor_enabled"))
}

// DisableTwoFactor turns off two-factor authentication and clears any
// pending code.
func (h *AuthHandlers) DisableTwoFactor(c echo.Context) error {
	if err := h.auth.DisableTwoFactor(c.Request().Context(), middleware.UserID(c)); err != nil {
		return fail(c, err)
	}
	return message(c, http.StatusOK, i18n.T(c.Request().Context(), "two_factor_disabled"))
}

func sessionPayload(result *auth.LoginResult) map[string]any {
	return map[string]any{
		"token":    result.Token,
		"id":       result.User.ID,
		"username": result.User.Username,
		"email":    result.User.Email,
	}
}
