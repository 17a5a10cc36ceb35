package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/midvale99/ToolShare/internal/delivery/http/response"
	"github.com/midvale99/ToolShare/internal/usecase"
)

// ProfileHandlerParams holds dependencies for ProfileHandler, injected by Fx.
type ProfileHandlerParams struct {
	fx.In

	ProfileUC usecase.ProfileUsecase
	Logger    *slog.Logger
}

// ProfileHandler holds dependencies for identity and profile handlers
type ProfileHandler struct {
	profileUC usecase.ProfileUsecase
	logger    *slog.Logger
}

// NewProfileHandler is the constructor for ProfileHandler
func NewProfileHandler(params ProfileHandlerParams) *ProfileHandler {
	return &ProfileHandler{
		profileUC: params.ProfileUC,
		logger:    params.Logger,
	}
}

// UpdateProfileRequest represents the request body for updating a profile
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=80"`
	Street      string `json:"street" validate:"max=160"`
	PhotoURL    string `json:"photo_url" validate:"omitempty,url"`
}

// SignIn handles bootstrapping or returning the board identity
func (h *ProfileHandler) SignIn(c echo.Context) error {
	user, err := h.profileUC.SignIn(c.Request().Context())
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, user, "Signed in")
}

// GetProfile handles retrieving a user profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid user ID")
	}

	user, err := h.profileUC.Get(c.Request().Context(), userID)
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, user, "Profile retrieved")
}

// UpdateProfile handles saving the editable profile fields
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid user ID")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", err.Error())
	}

	user, err := h.profileUC.Update(c.Request().Context(), &usecase.UpdateProfileInput{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Street:      req.Street,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, user, "Profile updated")
}
