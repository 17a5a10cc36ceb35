package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/midvale99/ToolShare/internal/domain/entity"
)

// ChatUsecase defines the per-request message thread operations.
type ChatUsecase interface {
	// Thread returns the full history of a request thread, oldest first.
	Thread(ctx context.Context, requestID uuid.UUID) ([]*entity.ChatMessage, error)

	// Subscribe opens a live feed: history first, then new messages. The
	// stop function releases the subscription.
	Subscribe(ctx context.Context, requestID uuid.UUID) (<-chan *entity.ChatMessage, func(), error)

	// Send appends one chat line to a request thread.
	Send(ctx context.Context, input *SendMessageInput) (*entity.ChatMessage, error)
}

// SendMessageInput defines the data required to post a chat line.
type SendMessageInput struct {
	RequestID uuid.UUID `json:"request_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"text"`
}
