// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDisplayName is assigned to identities bootstrapped without a name.
const DefaultDisplayName = "Neighbour"

// User is a neighbour participating in the board. An identity is created on
// first use (anonymous bootstrap) and never deleted; the lending counters are
// mutated exclusively by completed borrow requests.
type User struct {
	ID            uuid.UUID `json:"id"`
	DisplayName   string    `json:"display_name"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	Street        string    `json:"street,omitempty"`
	ItemsLent     int       `json:"items_lent"`
	ItemsBorrowed int       `json:"items_borrowed"`
	Rating        float64   `json:"rating,omitempty"`
	RatingsCount  int       `json:"ratings_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
