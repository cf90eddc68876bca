// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token issues and verifies short-lived signed bearer tokens.
// Tokens are never persisted; validity is fully determined by the signature
// and the embedded expiry at presentation time.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"codeberg.org/oliverandrich/inventory-server/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A session token grants general access; a two-factor-pending
// token only authorizes code verification and resend.
const (
	PurposeSession          = "session"
	PurposeTwoFactorPending = "two-factor-pending"
)

// ErrInvalidToken is returned for malformed, tampered, or expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the signed token contents.
type Claims struct {
	jwt.RegisteredClaims
	Username         string `json:"username,omitempty"`
	TwoFactorPending bool   `json:"2fa_pending,omitempty"`
}

// Purpose returns the purpose marker for the access layer to inspect.
func (c *Claims) Purpose() string {
	if c.TwoFactorPending {
		return PurposeTwoFactorPending
	}
	return PurposeSession
}

// UserID returns the subject as an account ID.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// Service signs and verifies tokens with a process-wide secret. The secret
// comes from explicit configuration; rotating it invalidates all outstanding
// tokens, which is acceptable for short-lived tokens.
type Service struct {
	secret     []byte
	sessionTTL time.Duration
	pendingTTL time.Duration
}

// NewService creates a token service from the auth configuration.
func NewService(cfg *config.AuthConfig) (*Service, error) {
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("token signing secret is required")
	}
	return &Service{
		secret:     []byte(cfg.TokenSecret),
		sessionTTL: cfg.SessionTTL,
		pendingTTL: cfg.PendingTTL,
	}, nil
}

// IssueSession mints a full session token for the user.
func (s *Service) IssueSession(userID int64, username string) (string, error) {
	return s.issue(userID, username, false, s.sessionTTL)
}

// IssuePending mints a two-factor-pending token for the user.
func (s *Service) IssuePending(userID int64, username string) (string, error) {
	return s.issue(userID, username, true, s.pendingTTL)
}

func (s *Service) issue(userID int64, username string, pending bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username:         username,
		TwoFactorPending: pending,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. It fails for
// a bad signature, a malformed token, a wrong signing method, or an expired
// token.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyPurpose validates a token and additionally requires the given
// purpose marker.
func (s *Service) VerifyPurpose(tokenString, purpose string) (*Claims, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Purpose() != purpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
