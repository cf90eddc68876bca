// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/oliverandrich/inventory-server/internal/config"
	"codeberg.org/oliverandrich/inventory-server/internal/database"
	"codeberg.org/oliverandrich/inventory-server/internal/i18n"
	"codeberg.org/oliverandrich/inventory-server/internal/models"
	"codeberg.org/oliverandrich/inventory-server/internal/repository"
	"codeberg.org/oliverandrich/inventory-server/internal/services/mailer"
	"codeberg.org/oliverandrich/inventory-server/internal/services/password"
	"codeberg.org/oliverandrich/inventory-server/internal/services/token"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, repository.New(db)
}

// NewTestUser creates a test user with the given plaintext password.
func NewTestUser(t *testing.T, repo *repository.Repository, username, email, plaintext string) *models.User {
	t.Helper()
	hash, err := password.Hash(plaintext)
	require.NoError(t, err)
	user, err := repo.CreateUser(context.Background(), username, email, hash)
	require.NoError(t, err)
	return user
}

// EnableTwoFactor flips the two-factor flag for a user and returns the
// refreshed record.
func EnableTwoFactor(t *testing.T, repo *repository.Repository, userID int64) *models.User {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.SetTwoFactorEnabled(ctx, userID, true))
	user, err := repo.GetUserByID(ctx, userID)
	require.NoError(t, err)
	return user
}

// NewTokenService creates a token service with test defaults.
func NewTokenService(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService(&config.AuthConfig{
		TokenSecret: "test-secret",
		SessionTTL:  time.Hour,
		PendingTTL:  10 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

// NewSinkMailer creates a mailer running on the capture sink, bypassing any
// SMTP probing.
func NewSinkMailer(t *testing.T) *mailer.Mailer {
	t.Helper()
	return mailer.New(context.Background(), &config.MailConfig{From: "no-reply@test.local"}, nil)
}

// InitI18n loads the embedded message catalog once for a test.
func InitI18n(t *testing.T) {
	t.Helper()
	require.NoError(t, i18n.Init())
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
