// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/midvale99/ToolShare/internal/domain/entity"
)

// BoardUsecase defines the board-facing listing operations.
type BoardUsecase interface {
	// ViewBoard returns the listings visible to a viewer, nearest-known
	// policy applied, optionally narrowed by a text query.
	ViewBoard(ctx context.Context, viewer *orb.Point, query string) ([]*BoardListing, error)

	// RawListings returns every listing unfiltered, for replication and
	// remote boards.
	RawListings(ctx context.Context) ([]*entity.Listing, error)

	// CreateListing publishes a new available listing.
	CreateListing(ctx context.Context, input *CreateListingInput) (*entity.Listing, error)
}

// BoardListing is a listing as seen on the board, annotated with the
// distance to the viewer when a viewer location is known.
type BoardListing struct {
	*entity.Listing
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// --- Input DTOs ---

// CreateListingInput defines the data required to publish a listing.
type CreateListingInput struct {
	OwnerID     uuid.UUID `json:"owner_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photo_url"`
	Longitude   float64   `json:"longitude"`
	Latitude    float64   `json:"latitude"`
}
