// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP boundary of the service.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports process liveness.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
