// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/inventory-server/internal/services/auth"
	"codeberg.org/oliverandrich/inventory-server/internal/services/inventory"
	"codeberg.org/oliverandrich/inventory-server/internal/services/token"
	"codeberg.org/oliverandrich/inventory-server/internal/services/twofactor"
	"github.com/labstack/echo/v4"
)

// fail maps service errors to HTTP responses. Auth failures keep a generic
// message so responses do not leak which factor failed; anything unmapped
// is an internal failure.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrMissingFields), errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, inventory.ErrMissingFields):
		return message(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUserExists):
		return message(c, http.StatusConflict, "username or email already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return message(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, token.ErrInvalidToken):
		return message(c, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, twofactor.ErrInvalidCode):
		return message(c, http.StatusUnauthorized, "invalid verification code")
	case errors.Is(err, twofactor.ErrChallengeExpired):
		return message(c, http.StatusBadRequest, "verification code expired")
	case errors.Is(err, twofactor.ErrNoChallenge):
		return message(c, http.StatusBadRequest, "no verification code pending")
	case errors.Is(err, twofactor.ErrNotEnabled):
		return message(c, http.StatusBadRequest, "two-factor not enabled for this user")
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, inventory.ErrUserNotFound):
		return message(c, http.StatusNotFound, "user not found")
	case errors.Is(err, inventory.ErrItemNotFound):
		return message(c, http.StatusNotFound, "item not found")
	case errors.Is(err, inventory.ErrForbidden):
		return message(c, http.StatusForbidden, "forbidden")
	default:
		slog.Error("request_failed", "path", c.Path(), "error", err)
		return message(c, http.StatusInternalServerError, "internal server error")
	}
}

// message writes the uniform {"message": ...} JSON body.
func message(c echo.Context, status int, text string) error {
	return c.JSON(status, map[string]string{"message": text})
}
