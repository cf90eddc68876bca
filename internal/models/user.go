// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// User is an account with password credentials and optional two-factor
// authentication via emailed one-time codes.
//
// The two-factor challenge is a single overwrite slot: TwoFactorCodeHash and
// TwoFactorExpiresAt are either both set (a code is pending) or both NULL.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID                 int64      `db:"id" json:"id"`
	Username           string     `db:"username" json:"username"`
	Email              string     `db:"email" json:"email"`
	PasswordHash       string     `db:"password_hash" json:"-"`
	TwoFactorEnabled   bool       `db:"two_factor_enabled" json:"two_factor_enabled"`
	TwoFactorCodeHash  *string    `db:"two_factor_code_hash" json:"-"`
	TwoFactorExpiresAt *time.Time `db:"two_factor_expires_at" json:"-"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// HasPendingChallenge reports whether a one-time code is stored for the user.
func (u *User) HasPendingChallenge() bool {
	return u.TwoFactorCodeHash != nil && u.TwoFactorExpiresAt != nil
}

// ChallengeExpired reports whether the stored code has passed its expiry.
// Expiry is checked lazily at verification time, never swept proactively.
func (u *User) ChallengeExpired(now time.Time) bool {
	return u.TwoFactorExpiresAt != nil && !now.Before(*u.TwoFactorExpiresAt)
}
