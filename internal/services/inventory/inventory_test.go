// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package inventory_test

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/inventory-server/internal/repository"
	"codeberg.org/oliverandrich/inventory-server/internal/services/inventory"
	"codeberg.org/oliverandrich/inventory-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*inventory.Service, *repository.Repository) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	return inventory.NewService(repo), repo
}

func TestCreateItem(t *testing.T) {
	svc, repo := newService(t)

	owner := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "secret")

	item, err := svc.CreateItem(context.Background(), owner.ID, inventory.ItemParams{
		Name:        "  Widget  ",
		SKU:         "WID-001",
		Quantity:    5,
		Description: "A widget",
	})

	require.NoError(t, err)
	assert.Equal(t, "Widget", item.Name, "name is trimmed")
	assert.Equal(t, int64(5), item.Quantity)
	assert.Equal(t, owner.ID, item.OwnerID)
}

func TestCreateItem_MissingFields(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	owner := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "secret")

	_, err := svc.CreateItem(ctx, owner.ID, inventory.ItemParams{SKU: "WID-001"})
	assert.ErrorIs(t, err, inventory.ErrMissingFields)

	_, err = svc.CreateItem(ctx, owner.ID, inventory.ItemParams{Name: "Widget"})
	assert.ErrorIs(t, err, inventory.ErrMissingFields)
}

func TestGetItem_OwnershipEnforced(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	alice := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "secret")
	bob := testutil.NewTestUser(t, repo, "bob", "bob@example.com", "secret")

	item, err := svc.CreateItem(ctx, alice.ID, inventory.ItemParams{Name: "Widget", SKU: "WID-001"})
	require.NoError(t, err)

	got, err := svc.GetItem(ctx, alice.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	_, err = svc.GetItem(ctx, bob.ID, item.ID)
	assert.ErrorIs(t, err, inventory.ErrForbidden)
}

func TestGetItem_NotFound(t *testing.T) {
	svc, repo := newService(t)

	owner := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "secret")

	_, err := svc.GetItem(context.Background(), owner.ID, 9999)

	assert.ErrorIs(t, err, inventory.ErrItemNotFound)
}

func TestUpdateItem(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	owner := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "secret")
	item, err := svc.CreateItem(ctx, owner.ID, inventory.ItemParams{Name: "Widget", SKU: "WID-001", Quantity: 5})
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, owner.ID, item.ID, inventory.ItemParams{
		Name:     "Widget v2",
		SKU:      "WID-002",
		Quantity: 7,
	})

	require.NoError(t, err)
	assert.Equal(t, "Widget v2", updated.Name)
	assert.Equal(t, "WID-002", updated.SKU)
	assert.Equal(t, int64(7), updated.Quantity)
	assert.Equal(t, owner.ID, updated.OwnerID)
}

func TestUpdateItem_KeepsFieldsWhenBlank(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	owner := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "secret")
	item, err := svc.CreateItem(ctx, owner.ID, inventory.ItemParams{Name: "Widget", SKU: "WID-001", Quantity: 5})
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, owner.ID, item.ID, inventory.ItemParams{Quantity: 3})

	require.NoError(t, err)
	assert.Equal(t, "Widget", updated.Name)
	assert.Equal(t, "WID-001", updated.SKU)
	assert.Equal(t, int64(3), updated.Quantity)
}

func TestUpdateItem_Forbidden(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	alice := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "secret")
	bob := testutil.NewTestUser(t, repo, "bob", "bob@example.com", "secret")

	item, err := svc.CreateItem(ctx, alice.ID, inventory.ItemParams{Name: "Widget", SKU: "WID-001"})
	require.NoError(t, err)

	_, err = svc.UpdateItem(ctx, bob.ID, item.ID, inventory.ItemParams{Name: "Hijacked"})

	assert.ErrorIs(t, err, inventory.ErrForbidden)
}

func TestDeleteItem(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	owner := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "secret")
	item, err := svc.CreateItem(ctx, owner.ID, inventory.ItemParams{Name: "Widget", SKU: "WID-001"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteItem(ctx, owner.ID, item.ID))

	_, err = svc.GetItem(ctx, owner.ID, item.ID)
	assert.ErrorIs(t, err, inventory.ErrItemNotFound)
}

func TestDeleteItem_Forbidden(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	alice := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "secret")
	bob := testutil.NewTestUser(t, repo, "bob", "bob@example.com", "secret")

	item, err := svc.CreateItem(ctx, alice.ID, inventory.ItemParams{Name: "Widget", SKU: "WID-001"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteItem(ctx, bob.ID, item.ID), inventory.ErrForbidden)
}

func TestProfile(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	owner := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "secret")
	_, err := svc.CreateItem(ctx, owner.ID, inventory.ItemParams{Name: "Widget", SKU: "WID-001", Quantity: 2})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, owner.ID, inventory.ItemParams{Name: "Gadget", SKU: "GAD-001", Quantity: 5})
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, owner.ID)

	require.NoError(t, err)
	assert.Equal(t, owner.ID, profile.User.ID)
	assert.Equal(t, "alice", profile.User.Username)
	assert.Equal(t, int64(2), profile.Stats.TotalItems)
	assert.Equal(t, int64(7), profile.Stats.TotalQuantity)
	assert.InDelta(t, 3.5, profile.Stats.AverageQuantity, 0.001)
	assert.Equal(t, int64(5), profile.Stats.MaxQuantity)
	assert.Equal(t, int64(2), profile.Stats.MinQuantity)
	assert.Len(t, profile.RecentActivity, 2)
}

func TestProfile_EmptyInventory(t *testing.T) {
	svc, repo := newService(t)

	owner := testutil.NewTestUser(t, repo, "alice", "alice@example.com", "secret")

	profile, err := svc.Profile(context.Background(), owner.ID)

	require.NoError(t, err)
	assert.Zero(t, profile.Stats.TotalItems)
	assert.Zero(t, profile.Stats.TotalQuantity)
	assert.Zero(t, profile.Stats.AverageQuantity)
	assert.Empty(t, profile.RecentActivity)
}

func TestProfile_UnknownUser(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Profile(context.Background(), 9999)

	assert.ErrorIs(t, err, inventory.ErrUserNotFound)
}
