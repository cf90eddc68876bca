// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"

	"codeberg.org/oliverandrich/inventory-server/internal/models"
)

// listLimit caps unbounded item listings.
const listLimit = 1000

// CreateItem creates a new inventory item.
func (r *Repository) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO items (name, sku, quantity, description, owner_id) VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.SKU, item.Quantity, item.Description, item.OwnerID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetItemByID(ctx, id)
}

// GetItemByID retrieves an item by ID.
func (r *Repository) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := r.db.GetContext(ctx, &item, `SELECT * FROM items WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &item, nil
}

// ListItemsByOwner returns the owner's items, newest first.
func (r *Repository) ListItemsByOwner(ctx context.Context, ownerID int64) ([]models.Item, error) {
	items := []models.Item{}
	err := r.db.SelectContext(ctx, &items,
		`SELECT * FROM items WHERE owner_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		ownerID, listLimit)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem updates an item's mutable fields. The owner is never changed.
func (r *Repository) UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE items
		 SET name = ?, sku = ?, quantity = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		item.Name, item.SKU, item.Quantity, item.Description, item.ID)
	if err != nil {
		return nil, err
	}
	return r.GetItemByID(ctx, item.ID)
}

// DeleteItem deletes an item by ID.
func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	return err
}

// CountItemsByOwner returns the number of items owned by a user.
func (r *Repository) CountItemsByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items WHERE owner_id = ?`, ownerID)
	return count, err
}

// QuantityStats holds aggregate quantity figures for an owner's items.
type QuantityStats struct {
	TotalQuantity int64   `db:"total_quantity"`
	AvgQuantity   float64 `db:"avg_quantity"`
	MaxQuantity   int64   `db:"max_quantity"`
	MinQuantity   int64   `db:"min_quantity"`
}

// ItemQuantityStats aggregates quantities over an owner's items.
// An owner without items yields all-zero stats.
func (r *Repository) ItemQuantityStats(ctx context.Context, ownerID int64) (*QuantityStats, error) {
	var stats QuantityStats
	err := r.db.GetContext(ctx, &stats,
		`SELECT COALESCE(SUM(quantity), 0) AS total_quantity,
		        COALESCE(AVG(quantity), 0) AS avg_quantity,
		        COALESCE(MAX(quantity), 0) AS max_quantity,
		        COALESCE(MIN(quantity), 0) AS min_quantity
		 FROM items WHERE owner_id = ?`,
		ownerID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return &stats, nil
}

// RecentItemsByOwner returns the owner's most recently updated items.
func (r *Repository) RecentItemsByOwner(ctx context.Context, ownerID int64, limit int) ([]models.Item, error) {
	items := []models.Item{}
	err := r.db.SelectContext(ctx, &items,
		`SELECT * FROM items WHERE owner_id = ? ORDER BY updated_at DESC, id DESC LIMIT ?`,
		ownerID, limit)
	if err != nil {
		return nil, err
	}
	return items, nil
}
