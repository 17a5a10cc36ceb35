package impl

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/midvale99/ToolShare/internal/domain/entity"
	domainerrors "github.com/midvale99/ToolShare/internal/domain/errors"
	"github.com/midvale99/ToolShare/internal/domain/gateway"
	"github.com/midvale99/ToolShare/internal/usecase"
)

// requestService implements the RequestUsecase interface.
type requestService struct {
	gw     gateway.SyncGateway
	logger *slog.Logger
}

// NewRequestService is the constructor for requestService.
func NewRequestService(
	gw gateway.SyncGateway,
	logger *slog.Logger,
) usecase.RequestUsecase {
	return &requestService{
		gw:     gw,
		logger: logger,
	}
}

// ListForUser returns all requests where the user is a party.
func (srv *requestService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*entity.BorrowRequest, error) {
	if userID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("user id is required")
	}

	requests, err := srv.gw.LoadRequests(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load requests")
	}

	return requests, nil
}

// Create files a pending borrow request.
func (srv *requestService) Create(ctx context.Context, input *usecase.CreateRequestInput) (*entity.BorrowRequest, error) {
	in := gateway.CreateRequestInput{
		ListingID:  input.ListingID,
		BorrowerID: input.BorrowerID,
		Note:       input.Note,
		FromDate:   input.FromDate,
		ToDate:     input.ToDate,
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if in.FromDate != nil && in.ToDate != nil && in.ToDate.Before(*in.FromDate) {
		return nil, domainerrors.ErrValidationFailed.WithDetails("to_date precedes from_date")
	}

	request, err := srv.gw.CreateBorrowRequest(ctx, in)
	if err != nil {
		return nil, errors.Wrap(err, "create borrow request")
	}

	srv.logger.Info("Borrow request filed",
		slog.String("requestID", request.ID.String()),
		slog.String("listingID", request.ListingID.String()),
	)

	return request, nil
}

// Resolve applies a lifecycle action on behalf of an actor.
func (srv *requestService) Resolve(ctx context.Context, requestID, actorID uuid.UUID, action entity.RequestAction) (*entity.BorrowRequest, error) {
	in := gateway.ResolveRequestInput{
		RequestID: requestID,
		ActorID:   actorID,
		Action:    action,
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if !action.Valid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown lifecycle action")
	}

	request, err := srv.gw.ResolveRequest(ctx, in)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve request with %s", action)
	}

	srv.logger.Info("Borrow request resolved",
		slog.String("requestID", request.ID.String()),
		slog.String("action", string(action)),
		slog.String("status", string(request.Status)),
	)

	return request, nil
}
