// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/inventory-server/internal/config"
	"codeberg.org/oliverandrich/inventory-server/internal/handlers"
	"codeberg.org/oliverandrich/inventory-server/internal/middleware"
	"codeberg.org/oliverandrich/inventory-server/internal/repository"
	"codeberg.org/oliverandrich/inventory-server/internal/services/auth"
	"codeberg.org/oliverandrich/inventory-server/internal/services/inventory"
	"codeberg.org/oliverandrich/inventory-server/internal/services/twofactor"
	"codeberg.org/oliverandrich/inventory-server/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// app wires the full HTTP surface against an in-memory database, with the
// capture sink as the mail provider and code exposure turned on so tests
// can complete the two-factor flow.
type app struct {
	e    *echo.Echo
	repo *repository.Repository
}

func newApp(t *testing.T) *app {
	t.Helper()
	testutil.InitI18n(t)

	_, repo := testutil.NewTestDB(t)
	tokens := testutil.NewTokenService(t)
	challenges := twofactor.NewService(repo, tokens, testutil.NewSinkMailer(t), 5*time.Minute)
	authService := auth.NewService(repo, tokens, challenges, &config.AuthConfig{ExposeCode: true})
	inventoryService := inventory.NewService(repo)

	authHandlers := handlers.NewAuth(authService)
	itemHandlers := handlers.NewItems(inventoryService)
	profileHandlers := handlers.NewProfile(inventoryService)
	requireAuth := middleware.RequireAuth(tokens)

	e := echo.New()
	e.GET("/health", handlers.Health)

	authGroup := e.Group("/api/auth")
	authGroup.POST("/signup", authHandlers.Signup)
	authGroup.POST("/login", authHandlers.Login)
	authGroup.POST("/verify-2fa", authHandlers.VerifyTwoFactor)
	authGroup.POST("/resend-2fa", authHandlers.ResendTwoFactor)
	authGroup.POST("/enable-2fa", authHandlers.EnableTwoFactor, requireAuth)
	authGroup.POST("/disable-2fa", authHandlers.DisableTwoFactor, requireAuth)

	items := e.Group("/api/items", requireAuth)
	items.POST("", itemHandlers.Create)
	items.GET("", itemHandlers.List)
	items.GET("/:id", itemHandlers.Get)
	items.PUT("/:id", itemHandlers.Update)
	items.DELETE("/:id", itemHandlers.Delete)

	e.GET("/api/profile/:userId", profileHandlers.Get, requireAuth)

	return &app{e: e, repo: repo}
}

// request performs a JSON request and decodes the JSON response body.
func (a *app) request(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec.Code, decoded
}

// requestList is request for endpoints returning a JSON array.
func (a *app) requestList(t *testing.T, method, path, token string) (int, []map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(""))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var decoded []map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec.Code, decoded
}

// signupAndLogin registers an account without two-factor and returns its
// session token.
func (a *app) signupAndLogin(t *testing.T, username, email string) string {
	t.Helper()

	status, _ := a.request(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username, "email": email, "password": "Str0ngPass!",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := a.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"identifier": username, "password": "Str0ngPass!",
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	a := newApp(t)

	status, body := a.request(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}
