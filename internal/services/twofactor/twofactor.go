// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package twofactor manages the per-account one-time-code challenge:
// generation, delivery, replacement, validation, and expiry.
package twofactor

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"codeberg.org/oliverandrich/inventory-server/internal/i18n"
	"codeberg.org/oliverandrich/inventory-server/internal/models"
	"codeberg.org/oliverandrich/inventory-server/internal/repository"
	"codeberg.org/oliverandrich/inventory-server/internal/services/mailer"
	"codeberg.org/oliverandrich/inventory-server/internal/services/password"
	"codeberg.org/oliverandrich/inventory-server/internal/services/token"
)

var (
	ErrNotEnabled       = errors.New("two-factor authentication not enabled")
	ErrNoChallenge      = errors.New("no verification code pending")
	ErrChallengeExpired = errors.New("verification code expired")
	ErrInvalidCode      = errors.New("invalid verification code")
)

// DefaultCodeTTL is the challenge validity used when none is configured.
const DefaultCodeTTL = 5 * time.Minute

// Service orchestrates the challenge slot against the repository, the token
// issuer, and the mail failover.
type Service struct {
	repo    *repository.Repository
	tokens  *token.Service
	mailer  *mailer.Mailer
	codeTTL time.Duration
}

// Challenge is the outcome of creating or replacing a pending challenge.
// Code carries the plaintext one-time code; callers decide whether it may
// be exposed (development diagnostics only).
type Challenge struct {
	PendingToken string
	Code         string
	Delivered    bool
	Provider     string
	PreviewURL   string
}

// NewService creates a challenge manager.
func NewService(repo *repository.Repository, tokens *token.Service, m *mailer.Mailer, codeTTL time.Duration) *Service {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	return &Service{repo: repo, tokens: tokens, mailer: m, codeTTL: codeTTL}
}

// Begin creates a fresh challenge for the user, overwriting any prior one:
// the previous code becomes invalid immediately. It issues a pending token
// and attempts to deliver the plaintext code to the registered email.
// Delivery failure does not abort the challenge; the code is logged as an
// operational fallback so the account can still authenticate.
func (s *Service) Begin(ctx context.Context, user *models.User) (*Challenge, error) {
	if !user.TwoFactorEnabled {
		return nil, ErrNotEnabled
	}

	code, err := GenerateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}
	codeHash, err := password.Hash(code)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.codeTTL)

	// Conditional replace guarded on the challenge state the caller read.
	// If a concurrent request won the slot, retry once from a fresh read;
	// last write wins.
	replaced, err := s.repo.ReplacePendingChallenge(ctx, user.ID, codeHash, expiresAt, user.TwoFactorCodeHash)
	if err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}
	if !replaced {
		fresh, err := s.repo.GetUserByID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload user: %w", err)
		}
		if !fresh.TwoFactorEnabled {
			return nil, ErrNotEnabled
		}
		replaced, err = s.repo.ReplacePendingChallenge(ctx, user.ID, codeHash, expiresAt, fresh.TwoFactorCodeHash)
		if err != nil {
			return nil, fmt.Errorf("failed to store challenge: %w", err)
		}
		if !replaced {
			return nil, fmt.Errorf("challenge slot contention for user %d", user.ID)
		}
	}

	pendingToken, err := s.tokens.IssuePending(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	challenge := &Challenge{PendingToken: pendingToken, Code: code}

	result, err := s.deliver(ctx, user, code)
	if err != nil {
		// Fallback channel: the challenge stands, authentication must not
		// be blocked by a mail outage.
		slog.Warn("two_factor_delivery_failed",
			"user_id", user.ID, "email", user.Email, "code", code, "error", err)
		return challenge, nil
	}

	challenge.Delivered = true
	challenge.Provider = result.Provider
	challenge.PreviewURL = result.PreviewURL
	slog.Info("two_factor_code_sent",
		"user_id", user.ID, "email", user.Email, "provider", result.Provider)

	return challenge, nil
}

// Verify checks a submitted code against the user's pending challenge.
// An expired challenge is left in place so a subsequent resend replaces it;
// a successful verification clears the slot exactly once.
func (s *Service) Verify(ctx context.Context, user *models.User, code string) error {
	if !user.HasPendingChallenge() {
		return ErrNoChallenge
	}
	if user.ChallengeExpired(time.Now()) {
		return ErrChallengeExpired
	}
	if !password.Verify(code, *user.TwoFactorCodeHash) {
		return ErrInvalidCode
	}

	// Clear conditionally on the matched hash. A concurrent resend that
	// replaced the slot wins, making this stale verification fail.
	cleared, err := s.repo.ClearPendingChallenge(ctx, user.ID, *user.TwoFactorCodeHash)
	if err != nil {
		return fmt.Errorf("failed to clear challenge: %w", err)
	}
	if !cleared {
		return ErrInvalidCode
	}

	return nil
}

func (s *Service) deliver(ctx context.Context, user *models.User, code string) (*mailer.Result, error) {
	minutes := int(s.codeTTL.Minutes())
	data := map[string]any{"Code": code, "Minutes": minutes}

	return s.mailer.Send(ctx, &mailer.Message{
		To:      user.Email,
		Subject: i18n.T(ctx, "two_factor_email_subject"),
		Text:    i18n.TData(ctx, "two_factor_email_body", data),
		HTML:    i18n.TData(ctx, "two_factor_email_body_html", data),
	})
}

// GenerateCode returns a uniformly random 6-digit code.
func GenerateCode() (string, error) {
	// 100000..999999, matching the emailed-code convention
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
