// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package inventory provides owner-scoped item management and the profile
// aggregates built on top of it.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"codeberg.org/oliverandrich/inventory-server/internal/models"
	"codeberg.org/oliverandrich/inventory-server/internal/repository"
)

var (
	ErrMissingFields = errors.New("name and sku are required")
	ErrItemNotFound  = errors.New("item not found")
	ErrForbidden     = errors.New("forbidden")
	ErrUserNotFound  = errors.New("user not found")
)

type Service struct {
	repo *repository.Repository
}

// NewService creates the inventory service.
func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// ItemParams holds the mutable item fields.
type ItemParams struct {
	Name        string
	SKU         string
	Quantity    int64
	Description string
}

// CreateItem creates an item owned by ownerID.
func (s *Service) CreateItem(ctx context.Context, ownerID int64, params ItemParams) (*models.Item, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.SKU = strings.TrimSpace(params.SKU)
	if params.Name == "" || params.SKU == "" {
		return nil, ErrMissingFields
	}

	item, err := s.repo.CreateItem(ctx, &models.Item{
		Name:        params.Name,
		SKU:         params.SKU,
		Quantity:    params.Quantity,
		Description: params.Description,
		OwnerID:     ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

// ListItems returns the owner's items, newest first.
func (s *Service) ListItems(ctx context.Context, ownerID int64) ([]models.Item, error) {
	return s.repo.ListItemsByOwner(ctx, ownerID)
}

// GetItem returns an item if it exists and belongs to ownerID.
func (s *Service) GetItem(ctx context.Context, ownerID, itemID int64) (*models.Item, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return item, nil
}

// UpdateItem applies the params to an owned item. The owner never changes
// through an update.
func (s *Service) UpdateItem(ctx context.Context, ownerID, itemID int64, params ItemParams) (*models.Item, error) {
	item, err := s.GetItem(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(params.Name); name != "" {
		item.Name = name
	}
	if sku := strings.TrimSpace(params.SKU); sku != "" {
		item.SKU = sku
	}
	item.Quantity = params.Quantity
	item.Description = params.Description

	updated, err := s.repo.UpdateItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return updated, nil
}

// DeleteItem deletes an owned item.
func (s *Service) DeleteItem(ctx context.Context, ownerID, itemID int64) error {
	if _, err := s.GetItem(ctx, ownerID, itemID); err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, itemID)
}

// Profile is the aggregate view of a user and their item activity.
type Profile struct {
	User           ProfileUser   `json:"user"`
	Stats          ProfileStats  `json:"stats"`
	RecentActivity []models.Item `json:"recentActivity"`
}

type ProfileUser struct { //nolint:govet // fieldalignment: readability over optimization
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	TwoFactorEnabled bool      `json:"twoFactorEnabled"`
	MemberSince      time.Time `json:"memberSince"`
	LastActive       time.Time `json:"lastActive"`
}

type ProfileStats struct {
	TotalItems      int64   `json:"totalItems"`
	TotalQuantity   int64   `json:"totalQuantity"`
	AverageQuantity float64 `json:"averageQuantity"`
	MaxQuantity     int64   `json:"maxQuantity"`
	MinQuantity     int64   `json:"minQuantity"`
}

// Profile returns the user's profile with quantity aggregates and the ten
// most recently updated items.
func (s *Service) Profile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	total, err := s.repo.CountItemsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.ItemQuantityStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.repo.RecentItemsByOwner(ctx, userID, 10)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User: ProfileUser{
			ID:               user.ID,
			Username:         user.Username,
			TwoFactorEnabled: user.TwoFactorEnabled,
			MemberSince:      user.CreatedAt,
			LastActive:       user.UpdatedAt,
		},
		Stats: ProfileStats{
			TotalItems:      total,
			TotalQuantity:   stats.TotalQuantity,
			AverageQuantity: math.Round(stats.AvgQuantity*10) / 10,
			MaxQuantity:     stats.MaxQuantity,
			MinQuantity:     stats.MinQuantity,
		},
		RecentActivity: recent,
	}, nil
}
