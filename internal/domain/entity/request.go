package entity

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a borrow request.
type RequestStatus string

const (
	// RequestPending is the implicit initial state of every request.
	RequestPending RequestStatus = "pending"
	// RequestAccepted means the owner agreed to lend; the listing is held.
	RequestAccepted RequestStatus = "accepted"
	// RequestDeclined is terminal; the listing was never held.
	RequestDeclined RequestStatus = "declined"
	// RequestCompleted is terminal; the tool came back to the owner.
	RequestCompleted RequestStatus = "completed"
)

// Terminal reports whether no further transition is permitted out of s.
func (s RequestStatus) Terminal() bool {
	return s == RequestDeclined || s == RequestCompleted
}

// Active reports whether the request still holds (or may come to hold) the
// listing. At most one active request may exist per listing.
func (s RequestStatus) Active() bool {
	return s == RequestPending || s == RequestAccepted
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case RequestPending:
		return next == RequestAccepted || next == RequestDeclined
	case RequestAccepted:
		return next == RequestCompleted
	default:
		return false
	}
}

// RequestAction names a lifecycle operation invoked against a request.
type RequestAction string

const (
	// ActionAccept moves pending -> accepted and reserves the listing.
	ActionAccept RequestAction = "accept"
	// ActionDecline moves pending -> declined; the listing stays available.
	ActionDecline RequestAction = "decline"
	// ActionHandOver marks a reserved listing as lent once the tool changes
	// hands; the request itself stays accepted.
	ActionHandOver RequestAction = "handover"
	// ActionComplete moves accepted -> completed, frees the listing and
	// credits both parties' counters.
	ActionComplete RequestAction = "complete"
)

// Valid reports whether a is one of the known lifecycle actions.
func (a RequestAction) Valid() bool {
	switch a {
	case ActionAccept, ActionDecline, ActionHandOver, ActionComplete:
		return true
	}

	return false
}

// BorrowRequest is a borrower's request against a specific listing, with its
// own lifecycle independent of the listing entity.
type BorrowRequest struct {
	ID         uuid.UUID     `json:"id"`
	ListingID  uuid.UUID     `json:"listing_id"`
	OwnerID    uuid.UUID     `json:"owner_id"`
	BorrowerID uuid.UUID     `json:"borrower_id"`
	Status     RequestStatus `json:"status"`
	Note       string        `json:"note,omitempty"`
	FromDate   *time.Time    `json:"from_date,omitempty"`
	ToDate     *time.Time    `json:"to_date,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
