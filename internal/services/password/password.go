// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package password provides one-way hashing and verification for secrets.
// The same primitive covers login passwords and one-time codes.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the cost factor for bcrypt hashing.
const bcryptCost = 10

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcryptCost)

// Hash produces a salted, irreversible digest of the secret.
func Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// Verify recomputes and compares the secret against a stored hash.
// bcrypt embeds its cost and salt in the hash, so hashes issued under a
// different cost still verify.
func Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// DummyCompare burns the same work as a real verification. Callers use it
// when no account matched, so response timing does not reveal which factor
// failed.
func DummyCompare(secret string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
}
