package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/midvale99/ToolShare/internal/domain/entity"
)

// RequestUsecase defines the borrow-request lifecycle operations.
type RequestUsecase interface {
	// ListForUser returns all requests where the user is owner or borrower.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*entity.BorrowRequest, error)

	// Create files a pending request against an available listing.
	Create(ctx context.Context, input *CreateRequestInput) (*entity.BorrowRequest, error)

	// Resolve applies a lifecycle action on behalf of an actor.
	Resolve(ctx context.Context, requestID, actorID uuid.UUID, action entity.RequestAction) (*entity.BorrowRequest, error)
}

// CreateRequestInput defines the data required to file a borrow request.
type CreateRequestInput struct {
	ListingID  uuid.UUID  `json:"listing_id"`
	BorrowerID uuid.UUID  `json:"borrower_id"`
	Note       string     `json:"note"`
	FromDate   *time.Time `json:"from_date,omitempty"`
	ToDate     *time.Time `json:"to_date,omitempty"`
}
