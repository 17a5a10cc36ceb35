package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb"
	"go.uber.org/fx"

	"github.com/midvale99/ToolShare/internal/delivery/http/response"
	"github.com/midvale99/ToolShare/internal/usecase"
)

// ListingHandlerParams holds dependencies for ListingHandler, injected by Fx.
type ListingHandlerParams struct {
	fx.In

	BoardUC usecase.BoardUsecase
	Logger  *slog.Logger
}

// ListingHandler holds dependencies for board listing handlers
type ListingHandler struct {
	boardUC usecase.BoardUsecase
	logger  *slog.Logger
}

// NewListingHandler is the constructor for ListingHandler
func NewListingHandler(params ListingHandlerParams) *ListingHandler {
	return &ListingHandler{
		boardUC: params.BoardUC,
		logger:  params.Logger,
	}
}

// CreateListingRequest represents the request body for publishing a listing
type CreateListingRequest struct {
	OwnerID     uuid.UUID `json:"owner_id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=120"`
	Category    string    `json:"category" validate:"required,max=60"`
	Description string    `json:"description" validate:"max=2000"`
	PhotoURL    string    `json:"photo_url" validate:"omitempty,url"`
	Longitude   float64   `json:"longitude" validate:"min=-180,max=180"`
	Latitude    float64   `json:"latitude" validate:"min=-90,max=90"`
}

// GetBoard handles the proximity-filtered board view. The viewer location
// arrives as lat/lng query parameters; both or neither must be present.
func (h *ListingHandler) GetBoard(c echo.Context) error {
	latRaw := c.QueryParam("lat")
	lngRaw := c.QueryParam("lng")

	var viewer *orb.Point
	switch {
	case latRaw == "" && lngRaw == "":
		// No location known; the configured policy applies.
	case latRaw != "" && lngRaw != "":
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lng, lngErr := strconv.ParseFloat(lngRaw, 64)
		if latErr != nil || lngErr != nil {
			return response.BadRequest(c, "INVALID_COORDINATE", "lat and lng must be numbers")
		}
		viewer = &orb.Point{lng, lat}
	default:
		return response.BadRequest(c, "INVALID_COORDINATE", "lat and lng must be given together")
	}

	board, err := h.boardUC.ViewBoard(c.Request().Context(), viewer, c.QueryParam("q"))
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, board, "Board retrieved")
}

// GetRawListings handles the unfiltered listing dump used by remote boards
func (h *ListingHandler) GetRawListings(c echo.Context) error {
	listings, err := h.boardUC.RawListings(c.Request().Context())
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, listings, "Listings retrieved")
}

// CreateListing handles publishing a new listing
func (h *ListingHandler) CreateListing(c echo.Context) error {
	var req CreateListingRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid listing input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", err.Error())
	}

	listing, err := h.boardUC.CreateListing(c.Request().Context(), &usecase.CreateListingInput{
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
		Longitude:   req.Longitude,
		Latitude:    req.Latitude,
	})
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, listing, "Listing published")
}
