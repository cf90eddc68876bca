// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/inventory-server/internal/models"
)

// CreateUser creates a new user with the given credentials.
func (r *Repository) CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		username, email, passwordHash)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by exact username match.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE username = ?`, username); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email. Emails are stored lowercase,
// callers normalize before lookup.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// IdentityExists checks whether the username or email is already taken.
func (r *Repository) IdentityExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = ? OR email = ?)`,
		username, email)
	return exists, err
}

// SetTwoFactorEnabled toggles two-factor authentication for a user.
// Disabling also clears any pending challenge in the same statement.
func (r *Repository) SetTwoFactorEnabled(ctx context.Context, userID int64, enabled bool) error {
	var err error
	if enabled {
		_, err = r.db.ExecContext(ctx,
			`UPDATE users SET two_factor_enabled = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			userID)
	} else {
		_, err = r.db.ExecContext(ctx,
			`UPDATE users
			 SET two_factor_enabled = 0,
			     two_factor_code_hash = NULL,
			     two_factor_expires_at = NULL,
			     updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			userID)
	}
	return err
}

// ReplacePendingChallenge writes a new challenge into the user's single slot
// as an atomic conditional update. prevCodeHash is the hash observed by the
// caller's read (nil for an empty slot); the update only applies if the slot
// still holds that value, so concurrent writers cannot lose updates silently.
// Returns false when the guard did not match.
func (r *Repository) ReplacePendingChallenge(ctx context.Context, userID int64, codeHash string, expiresAt time.Time, prevCodeHash *string) (bool, error) {
	// SQLite's IS operator matches NULL against a NULL bind.
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET two_factor_code_hash = ?,
		     two_factor_expires_at = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND two_factor_enabled = 1 AND two_factor_code_hash IS ?`,
		codeHash, expiresAt.UTC(), userID, prevCodeHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClearPendingChallenge empties the challenge slot, conditional on the slot
// still holding the code hash that was just verified. Returns false when a
// concurrent resend replaced the slot first.
func (r *Repository) ClearPendingChallenge(ctx context.Context, userID int64, codeHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET two_factor_code_hash = NULL,
		     two_factor_expires_at = NULL,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND two_factor_code_hash = ?`,
		userID, codeHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
