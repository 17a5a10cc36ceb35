package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/midvale99/ToolShare/internal/delivery/http/response"
	"github.com/midvale99/ToolShare/internal/domain/entity"
	"github.com/midvale99/ToolShare/internal/usecase"
)

// RequestHandlerParams holds dependencies for RequestHandler, injected by Fx.
type RequestHandlerParams struct {
	fx.In

	RequestUC usecase.RequestUsecase
	Logger    *slog.Logger
}

// RequestHandler holds dependencies for borrow-request handlers
type RequestHandler struct {
	requestUC usecase.RequestUsecase
	logger    *slog.Logger
}

// NewRequestHandler is the constructor for RequestHandler
func NewRequestHandler(params RequestHandlerParams) *RequestHandler {
	return &RequestHandler{
		requestUC: params.RequestUC,
		logger:    params.Logger,
	}
}

// CreateRequestRequest represents the request body for filing a borrow request
type CreateRequestRequest struct {
	ListingID  uuid.UUID  `json:"listing_id" validate:"required"`
	BorrowerID uuid.UUID  `json:"borrower_id" validate:"required"`
	Note       string     `json:"note" validate:"max=2000"`
	FromDate   *time.Time `json:"from_date,omitempty"`
	ToDate     *time.Time `json:"to_date,omitempty"`
}

// ResolveRequestRequest represents the request body for a lifecycle action
type ResolveRequestRequest struct {
	ActorID uuid.UUID `json:"actor_id" validate:"required"`
}

// ListRequests handles retrieving the requests a user is party to
func (h *RequestHandler) ListRequests(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("user"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid or missing user parameter")
	}

	requests, err := h.requestUC.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, requests, "Requests retrieved")
}

// CreateRequest handles filing a new borrow request
func (h *RequestHandler) CreateRequest(c echo.Context) error {
	var req CreateRequestRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid request input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", err.Error())
	}

	request, err := h.requestUC.Create(c.Request().Context(), &usecase.CreateRequestInput{
		ListingID:  req.ListingID,
		BorrowerID: req.BorrowerID,
		Note:       req.Note,
		FromDate:   req.FromDate,
		ToDate:     req.ToDate,
	})
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, request, "Borrow request filed")
}

// Accept handles the owner accepting a pending request
func (h *RequestHandler) Accept(c echo.Context) error {
	return h.resolve(c, entity.ActionAccept)
}

// Decline handles the owner declining a pending request
func (h *RequestHandler) Decline(c echo.Context) error {
	return h.resolve(c, entity.ActionDecline)
}

// HandOver handles the owner marking the item as handed over
func (h *RequestHandler) HandOver(c echo.Context) error {
	return h.resolve(c, entity.ActionHandOver)
}

// Complete handles either party closing the loan
func (h *RequestHandler) Complete(c echo.Context) error {
	return h.resolve(c, entity.ActionComplete)
}

func (h *RequestHandler) resolve(c echo.Context, action entity.RequestAction) error {
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid request ID")
	}

	var req ResolveRequestRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid action input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", err.Error())
	}

	request, err := h.requestUC.Resolve(c.Request().Context(), requestID, req.ActorID, action)
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, request, "Request resolved")
}
