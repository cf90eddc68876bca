// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/inventory-server/internal/repository"
	"codeberg.org/oliverandrich/inventory-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.TwoFactorEnabled)
	assert.False(t, user.HasPendingChallenge())
	assert.NotZero(t, user.CreatedAt)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "alice", "other@example.com", "hash")

	assert.Error(t, err)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "bob", "alice@example.com", "hash")

	assert.Error(t, err)
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetUserByUsername(context.Background(), "nobody")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetUserByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)

	found, err := repo.GetUserByEmail(ctx, "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestIdentityExists(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)

	exists, err := repo.IdentityExists(ctx, "alice", "someone@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.IdentityExists(ctx, "someone", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.IdentityExists(ctx, "someone", "someone@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReplacePendingChallenge(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.SetTwoFactorEnabled(ctx, user.ID, true))

	expiresAt := time.Now().Add(5 * time.Minute)
	replaced, err := repo.ReplacePendingChallenge(ctx, user.ID, "code-hash", expiresAt, nil)

	require.NoError(t, err)
	assert.True(t, replaced)

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, stored.HasPendingChallenge())
	assert.Equal(t, "code-hash", *stored.TwoFactorCodeHash)
}

func TestReplacePendingChallenge_GuardMismatch(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.SetTwoFactorEnabled(ctx, user.ID, true))

	expiresAt := time.Now().Add(5 * time.Minute)
	replaced, err := repo.ReplacePendingChallenge(ctx, user.ID, "first", expiresAt, nil)
	require.NoError(t, err)
	require.True(t, replaced)

	// Guard still expects an empty slot, but "first" occupies it.
	replaced, err = repo.ReplacePendingChallenge(ctx, user.ID, "second", expiresAt, nil)

	require.NoError(t, err)
	assert.False(t, replaced)

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", *stored.TwoFactorCodeHash)
}

func TestReplacePendingChallenge_InPlace(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.SetTwoFactorEnabled(ctx, user.ID, true))

	expiresAt := time.Now().Add(5 * time.Minute)
	replaced, err := repo.ReplacePendingChallenge(ctx, user.ID, "first", expiresAt, nil)
	require.NoError(t, err)
	require.True(t, replaced)

	prev := "first"
	replaced, err = repo.ReplacePendingChallenge(ctx, user.ID, "second", expiresAt, &prev)

	require.NoError(t, err)
	assert.True(t, replaced)

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", *stored.TwoFactorCodeHash)
}

func TestReplacePendingChallenge_RequiresTwoFactor(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)

	replaced, err := repo.ReplacePendingChallenge(ctx, user.ID, "code-hash", time.Now().Add(5*time.Minute), nil)

	require.NoError(t, err)
	assert.False(t, replaced)
}

func TestClearPendingChallenge(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.SetTwoFactorEnabled(ctx, user.ID, true))

	replaced, err := repo.ReplacePendingChallenge(ctx, user.ID, "code-hash", time.Now().Add(5*time.Minute), nil)
	require.NoError(t, err)
	require.True(t, replaced)

	cleared, err := repo.ClearPendingChallenge(ctx, user.ID, "code-hash")

	require.NoError(t, err)
	assert.True(t, cleared)

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasPendingChallenge())
}

func TestClearPendingChallenge_HashMismatch(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.SetTwoFactorEnabled(ctx, user.ID, true))

	replaced, err := repo.ReplacePendingChallenge(ctx, user.ID, "current", time.Now().Add(5*time.Minute), nil)
	require.NoError(t, err)
	require.True(t, replaced)

	cleared, err := repo.ClearPendingChallenge(ctx, user.ID, "stale")

	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestSetTwoFactorEnabled_DisableClearsChallenge(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.SetTwoFactorEnabled(ctx, user.ID, true))

	replaced, err := repo.ReplacePendingChallenge(ctx, user.ID, "code-hash", time.Now().Add(5*time.Minute), nil)
	require.NoError(t, err)
	require.True(t, replaced)

	require.NoError(t, repo.SetTwoFactorEnabled(ctx, user.ID, false))

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactorEnabled)
	assert.False(t, stored.HasPendingChallenge())
}
