// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/inventory-server/internal/services/token"
	"github.com/labstack/echo/v4"
)

const (
	userIDKey   = "auth.user_id"
	usernameKey = "auth.username"
)

// RequireAuth returns middleware that authenticates requests via a bearer
// token. Only session-purpose tokens grant resource access; two-factor-
// pending tokens are rejected here.
func RequireAuth(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c.Request())
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "no token provided"})
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			}
			if claims.Purpose() != token.PurposeSession {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			}

			userID, err := claims.UserID()
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			}

			c.Set(userIDKey, userID)
			c.Set(usernameKey, claims.Username)

			return next(c)
		}
	}
}

// extractToken reads the bearer token from the Authorization header or the
// legacy X-Access-Token header. A bare token without the Bearer prefix is
// accepted for compatibility.
func extractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		auth = r.Header.Get("X-Access-Token")
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

// UserID returns the authenticated account ID set by RequireAuth.
func UserID(c echo.Context) int64 {
	id, _ := c.Get(userIDKey).(int64)
	return id
}

// Username returns the authenticated username set by RequireAuth.
func Username(c echo.Context) string {
	name, _ := c.Get(usernameKey).(string)
	return name
}
