// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/inventory-server/internal/middleware"
	"codeberg.org/oliverandrich/inventory-server/internal/services/inventory"
	"github.com/labstack/echo/v4"
)

// ProfileHandlers contains handlers for the profile view.
type ProfileHandlers struct {
	inventory *inventory.Service
}

// NewProfile creates a new ProfileHandlers instance.
func NewProfile(inv *inventory.Service) *ProfileHandlers {
	return &ProfileHandlers{inventory: inv}
}

// Get returns profile and item statistics. Users can only view their own
// profile.
func (h *ProfileHandlers) Get(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid user id")
	}

	if userID != middleware.UserID(c) {
		return message(c, http.StatusForbidden, "forbidden")
	}

	profile, err := h.inventory.Profile(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}
