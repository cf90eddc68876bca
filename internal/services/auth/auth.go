// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth sequences signup, login, and the two-factor operations
// against the credential store, the token issuer, and the challenge manager.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"codeberg.org/oliverandrich/inventory-server/internal/config"
	"codeberg.org/oliverandrich/inventory-server/internal/models"
	"codeberg.org/oliverandrich/inventory-server/internal/repository"
	"codeberg.org/oliverandrich/inventory-server/internal/services/password"
	"codeberg.org/oliverandrich/inventory-server/internal/services/token"
	"codeberg.org/oliverandrich/inventory-server/internal/services/twofactor"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type Service struct {
	repo       *repository.Repository
	tokens     *token.Service
	challenges *twofactor.Service
	exposeCode bool
}

// NewService creates the authentication orchestrator.
func NewService(repo *repository.Repository, tokens *token.Service, challenges *twofactor.Service, cfg *config.AuthConfig) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		challenges: challenges,
		exposeCode: cfg.ExposeCode,
	}
}

// LoginResult is the outcome of a login or a completed verification.
// Either Token is set (full session) or TwoFactorRequired is true and
// TempToken carries the two-factor-pending token.
type LoginResult struct { //nolint:govet // fieldalignment: readability over optimization
	User              *models.User
	Token             string
	TwoFactorRequired bool
	TempToken         string
	PreviewURL        string
	Code              string // only populated with the expose-code dev flag
}

// Signup creates a new account with a freshly hashed password. The email is
// normalized to lowercase; usernames are case-sensitive.
func (s *Service) Signup(ctx context.Context, username, email, plaintext string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || plaintext == "" {
		return nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	exists, err := s.repo.IdentityExists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := password.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, username, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("signup_success", "user_id", user.ID, "username", username)

	return user, nil
}

// Login authenticates by username or email. With two-factor disabled it
// returns a session token directly; with it enabled it creates a challenge
// and returns a pending token instead of resource access.
func (s *Service) Login(ctx context.Context, identifier, plaintext string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plaintext == "" {
		return nil, ErrMissingFields
	}

	user, err := s.resolveUser(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform a bcrypt comparison to prevent
			// timing attacks
			password.DummyCompare(plaintext)
			slog.Warn("login_failed", "identifier", identifier, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !password.Verify(plaintext, user.PasswordHash) {
		slog.Warn("login_failed", "user_id", user.ID, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if !user.TwoFactorEnabled {
		sessionToken, err := s.tokens.IssueSession(user.ID, user.Username)
		if err != nil {
			return nil, err
		}
		slog.Info("login_success", "user_id", user.ID)
		return &LoginResult{User: user, Token: sessionToken}, nil
	}

	challenge, err := s.challenges.Begin(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	slog.Info("login_two_factor_pending", "user_id", user.ID)

	result := &LoginResult{
		User:              user,
		TwoFactorRequired: true,
		TempToken:         challenge.PendingToken,
		PreviewURL:        challenge.PreviewURL,
	}
	if s.exposeCode {
		result.Code = challenge.Code
	}
	return result, nil
}

// resolveUser tries an exact username match first, then an email match when
// the identifier looks like an email address.
func (s *Service) resolveUser(ctx context.Context, identifier string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if !strings.Contains(identifier, "@") {
		return nil, repository.ErrNotFound
	}
	return s.repo.GetUserByEmail(ctx, strings.ToLower(identifier))
}

// VerifyTwoFactor completes a pending login: the temp token must carry the
// two-factor-pending purpose and the submitted code must match the stored
// challenge. On success the challenge is cleared and a session token minted.
func (s *Service) VerifyTwoFactor(ctx context.Context, tempToken, code string) (*LoginResult, error) {
	if tempToken == "" || code == "" {
		return nil, ErrMissingFields
	}

	user, err := s.pendingUser(ctx, tempToken)
	if err != nil {
		return nil, err
	}

	if err := s.challenges.Verify(ctx, user, code); err != nil {
		if errors.Is(err, twofactor.ErrInvalidCode) {
			slog.Warn("two_factor_failed", "user_id", user.ID, "reason", "invalid_code")
		}
		return nil, err
	}

	sessionToken, err := s.tokens.IssueSession(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	slog.Info("two_factor_success", "user_id", user.ID)

	return &LoginResult{User: user, Token: sessionToken}, nil
}

// ResendTwoFactor replaces the pending challenge with a fresh code; the
// previous code becomes invalid immediately.
func (s *Service) ResendTwoFactor(ctx context.Context, tempToken string) (*twofactor.Challenge, error) {
	if tempToken == "" {
		return nil, ErrMissingFields
	}

	user, err := s.pendingUser(ctx, tempToken)
	if err != nil {
		return nil, err
	}

	challenge, err := s.challenges.Begin(ctx, user)
	if err != nil {
		return nil, err
	}

	slog.Info("two_factor_resent", "user_id", user.ID)

	if !s.exposeCode {
		challenge.Code = ""
	}
	return challenge, nil
}

// pendingUser resolves a two-factor-pending token to its account.
func (s *Service) pendingUser(ctx context.Context, tempToken string) (*models.User, error) {
	claims, err := s.tokens.VerifyPurpose(tempToken, token.PurposeTwoFactorPending)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// EnableTwoFactor turns on two-factor authentication for the account.
// Ownership is established by the caller through a session token for this
// exact account.
func (s *Service) EnableTwoFactor(ctx context.Context, userID int64) error {
	return s.setTwoFactor(ctx, userID, true)
}

// DisableTwoFactor turns off two-factor authentication and clears any
// pending challenge.
func (s *Service) DisableTwoFactor(ctx context.Context, userID int64) error {
	return s.setTwoFactor(ctx, userID, false)
}

func (s *Service) setTwoFactor(ctx context.Context, userID int64, enabled bool) error {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.repo.SetTwoFactorEnabled(ctx, userID, enabled); err != nil {
		return fmt.Errorf("failed to update two-factor state: %w", err)
	}
	slog.Info("two_factor_toggled", "user_id", userID, "enabled", enabled)
	return nil
}
