// Package handler contains the HTTP handlers of the board API.
package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/midvale99/ToolShare/internal/delivery/http/response"
	domainerrors "github.com/midvale99/ToolShare/internal/domain/errors"
)

// handleAppError maps application errors onto the unified error envelope.
// Anything outside the taxonomy bubbles up to echo's error handler.
func handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}

// parseIDParam parses a uuid path parameter.
func parseIDParam(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}
