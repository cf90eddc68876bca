// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"

	"codeberg.org/oliverandrich/inventory-server/internal/i18n"
	"codeberg.org/oliverandrich/inventory-server/internal/middleware"
	"codeberg.org/oliverandrich/inventory-server/internal/services/inventory"
	"github.com/labstack/echo/v4"
)

// ItemHandlers contains handlers for inventory items.
type ItemHandlers struct {
	inventory *inventory.Service
}

// NewItems creates a new ItemHandlers instance.
func NewItems(inv *inventory.Service) *ItemHandlers {
	return &ItemHandlers{inventory: inv}
}

// ItemRequest is the request body for creating or updating an item.
type ItemRequest struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Quantity    int64  `json:"quantity"`
	Description string `json:"description"`
}

func (r *ItemRequest) params() inventory.ItemParams {
	return inventory.ItemParams{
		Name:        r.Name,
		SKU:         r.SKU,
		Quantity:    r.Quantity,
		Description: r.Description,
	}
}

// Create adds an item owned by the authenticated user.
func (h *ItemHandlers) Create(c echo.Context) error {
	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid request")
	}

	item, err := h.inventory.CreateItem(c.Request().Context(), middleware.UserID(c), req.params())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// List returns the authenticated user's items, newest first.
func (h *ItemHandlers) List(c echo.Context) error {
	items, err := h.inventory.ListItems(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Get returns a single owned item.
func (h *ItemHandlers) Get(c echo.Context) error {
	itemID, err := pathID(c, "id")
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid item id")
	}

	item, err := h.inventory.GetItem(c.Request().Context(), middleware.UserID(c), itemID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// Update modifies an owned item. The owner cannot be changed.
func (h *ItemHandlers) Update(c echo.Context) error {
	itemID, err := pathID(c, "id")
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid item id")
	}

	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid request")
	}

	item, err := h.inventory.UpdateItem(c.Request().Context(), middleware.UserID(c), itemID, req.params())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// Delete removes an owned item.
func (h *ItemHandlers) Delete(c echo.Context) error {
	itemID, err := pathID(c, "id")
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid item id")
	}

	if err := h.inventory.DeleteItem(c.Request().Context(), middleware.UserID(c), itemID); err != nil {
		return fail(c, err)
	}
	return message(c, http.StatusOK, i18n.T(c.Request().Context(), "item_deleted"))
}

func pathID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
