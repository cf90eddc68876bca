// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires configuration, storage, services, and routes into a
// running HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/inventory-server/internal/config"
	"codeberg.org/oliverandrich/inventory-server/internal/database"
	"codeberg.org/oliverandrich/inventory-server/internal/handlers"
	"codeberg.org/oliverandrich/inventory-server/internal/i18n"
	"codeberg.org/oliverandrich/inventory-server/internal/middleware"
	"codeberg.org/oliverandrich/inventory-server/internal/repository"
	"codeberg.org/oliverandrich/inventory-server/internal/services/auth"
	"codeberg.org/oliverandrich/inventory-server/internal/services/inventory"
	"codeberg.org/oliverandrich/inventory-server/internal/services/mailer"
	"codeberg.org/oliverandrich/inventory-server/internal/services/token"
	"codeberg.org/oliverandrich/inventory-server/internal/services/twofactor"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/urfave/cli/v3"
)

// probeTimeout bounds the one-time SMTP connectivity checks at startup.
const probeTimeout = 15 * time.Second

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)

	if err := i18n.Init(); err != nil {
		return fmt.Errorf("failed to initialize i18n: %w", err)
	}

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	repo := repository.New(db)

	tokens, err := token.NewService(&cfg.Auth)
	if err != nil {
		return err
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	mail := mailer.New(probeCtx, &cfg.Mail, slog.Default())
	cancel()

	challenges := twofactor.NewService(repo, tokens, mail, cfg.Auth.CodeTTL)
	authService := auth.NewService(repo, tokens, challenges, &cfg.Auth)
	inventoryService := inventory.NewService(repo)

	e := newEcho(cfg, tokens, authService, inventoryService)

	return serve(ctx, e, cfg)
}

// newEcho builds the echo instance with middleware and routes.
func newEcho(cfg *config.Config, tokens *token.Service, authService *auth.Service, inventoryService *inventory.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(slog.Default()))

	registerRoutes(e, tokens, authService, inventoryService)

	return e
}

// registerRoutes configures all HTTP routes.
func registerRoutes(e *echo.Echo, tokens *token.Service, authService *auth.Service, inventoryService *inventory.Service) {
	e.GET("/health", handlers.Health)

	authHandlers := handlers.NewAuth(authService)
	itemHandlers := handlers.NewItems(inventoryService)
	profileHandlers := handlers.NewProfile(inventoryService)

	requireAuth := middleware.RequireAuth(tokens)

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
}

// serve runs the HTTP server until the context is canceled or a signal
// arrives, then shuts down gracefully.
func serve(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return e.Shutdown(shutdownCtx)
}
