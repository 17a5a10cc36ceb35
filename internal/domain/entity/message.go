package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one line of the per-request negotiation thread. Messages are
// append-only and are never edited or deleted; ordering is CreatedAt
// ascending with insertion order breaking ties.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	RequestID uuid.UUID `json:"request_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
