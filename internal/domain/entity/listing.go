package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// ListingStatus is the availability state of a listing. It is mutated only
// through borrow request lifecycle transitions, never directly.
type ListingStatus string

const (
	// ListingAvailable means the tool can be requested.
	ListingAvailable ListingStatus = "available"
	// ListingReserved means an accepted borrow request exists but the tool
	// has not been handed over yet.
	ListingReserved ListingStatus = "reserved"
	// ListingLent means the tool is currently with the borrower.
	ListingLent ListingStatus = "lent"
)

// Valid reports whether s is one of the known listing statuses.
func (s ListingStatus) Valid() bool {
	switch s {
	case ListingAvailable, ListingReserved, ListingLent:
		return true
	}

	return false
}

// Listing is a tool advertised for borrowing. Location uses orb.Point
// ordering, i.e. longitude first, latitude second.
type Listing struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	Title       string        `json:"title"`
	Category    string        `json:"category"`
	Description string        `json:"description,omitempty"`
	PhotoURL    string        `json:"photo_url,omitempty"`
	Location    orb.Point     `json:"location"`
	Status      ListingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
