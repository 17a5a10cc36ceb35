// Package gateway defines the swappable persistence/transport boundary
// between the core and whatever medium backs it: a durable local file, a
// relational database, or a remote board instance. The core must behave
// identically against any implementation of the contract.
package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/midvale99/ToolShare/internal/domain/entity"
)

// Provider names a concrete gateway implementation, selected once at
// process start via configuration.
type Provider string

const (
	// ProviderLocal persists a single versioned record to a local file.
	ProviderLocal Provider = "local"
	// ProviderPostgres persists entities to PostgreSQL.
	ProviderPostgres Provider = "postgres"
	// ProviderRemote proxies every operation to a remote board instance.
	ProviderRemote Provider = "remote"
)

// CreateListingInput carries a validated new-listing payload.
type CreateListingInput struct {
	OwnerID     uuid.UUID `validate:"required"`
	Title       string    `validate:"required,max=120"`
	Category    string    `validate:"required,max=60"`
	Description string    `validate:"max=2000"`
	PhotoURL    string    `validate:"omitempty,url"`
	Location    orb.Point
}

// CreateRequestInput carries a validated new-borrow-request payload.
type CreateRequestInput struct {
	ListingID  uuid.UUID `validate:"required"`
	BorrowerID uuid.UUID `validate:"required"`
	Note       string    `validate:"max=2000"`
	FromDate   *time.Time
	ToDate     *time.Time
}

// ResolveRequestInput carries a lifecycle action against a request.
type ResolveRequestInput struct {
	RequestID uuid.UUID            `validate:"required"`
	ActorID   uuid.UUID            `validate:"required"`
	Action    entity.RequestAction `validate:"required"`
}

// SendMessageInput carries one chat line for a request thread.
type SendMessageInput struct {
	RequestID uuid.UUID `validate:"required"`
	SenderID  uuid.UUID `validate:"required"`
	Text      string    `validate:"required,max=4000"`
}

// SaveProfileInput carries a profile update.
type SaveProfileInput struct {
	UserID      uuid.UUID `validate:"required"`
	DisplayName string    `validate:"required,max=80"`
	Street      string    `validate:"max=160"`
	PhotoURL    string    `validate:"omitempty,url"`
}

// SyncGateway is the backend contract the core depends on. Every call may
// fail with a connectivity error; such failures are retryable by the caller
// and must never leave partially created entities visible to readers.
//
// SubscribeMessages returns a channel that first receives the current
// history of the thread (delivered before the call returns, in order) and
// then live messages as they arrive. The subscription is restartable per
// request id; the returned stop function releases it.
type SyncGateway interface {
	// SignIn returns the existing local identity or bootstraps one.
	// Idempotent.
	SignIn(ctx context.Context) (*entity.User, error)

	// LoadListings returns listings near the viewer. Implementations may
	// pre-filter or return everything; the core reapplies the proximity
	// policy regardless, so radius semantics stay consistent.
	LoadListings(ctx context.Context, viewer *orb.Point) ([]*entity.Listing, error)

	// CreateListing persists a new available listing.
	CreateListing(ctx context.Context, in CreateListingInput) (*entity.Listing, error)

	// LoadRequests returns all requests where the user is owner or borrower.
	LoadRequests(ctx context.Context, userID uuid.UUID) ([]*entity.BorrowRequest, error)

	// CreateBorrowRequest files a pending request against an available
	// listing.
	CreateBorrowRequest(ctx context.Context, in CreateRequestInput) (*entity.BorrowRequest, error)

	// ResolveRequest applies a lifecycle action (accept, decline, handover,
	// complete) to a request, together with its listing side effects.
	ResolveRequest(ctx context.Context, in ResolveRequestInput) (*entity.BorrowRequest, error)

	// SubscribeMessages opens the chat thread of a request.
	SubscribeMessages(ctx context.Context, requestID uuid.UUID) (<-chan *entity.ChatMessage, func(), error)

	// SendMessage appends one chat line to a request thread.
	SendMessage(ctx context.Context, in SendMessageInput) (*entity.ChatMessage, error)

	// LoadProfile returns a user by id.
	LoadProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// SaveProfile updates the profile fields of a user.
	SaveProfile(ctx context.Context, in SaveProfileInput) (*entity.User, error)

	// Close releases any resources held by the gateway.
	Close() error
}

// Record is the single versioned document persisted by local storage:
// the whole board state, written atomically on every mutation
// (read-modify-write of the entire record, never field-level patches).
type Record struct {
	Version   int64                   `json:"version"`
	ProfileID uuid.UUID               `json:"profile_id,omitempty"`
	Users     []*entity.User          `json:"users"`
	Listings  []*entity.Listing       `json:"listings"`
	Requests  []*entity.BorrowRequest `json:"requests"`
	Messages  []*entity.ChatMessage   `json:"messages"`
}
