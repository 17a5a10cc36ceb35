package impl

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/midvale99/ToolShare/internal/domain/entity"
	domainerrors "github.com/midvale99/ToolShare/internal/domain/errors"
	"github.com/midvale99/ToolShare/internal/domain/gateway"
	"github.com/midvale99/ToolShare/internal/usecase"
)

// chatService implements the ChatUsecase interface.
type chatService struct {
	gw     gateway.SyncGateway
	logger *slog.Logger
}

// NewChatService is the constructor for chatService.
func NewChatService(
	gw gateway.SyncGateway,
	logger *slog.Logger,
) usecase.ChatUsecase {
	return &chatService{
		gw:     gw,
		logger: logger,
	}
}

// Thread returns the full history of a request thread. The subscription
// contract buffers the history before returning, so stopping immediately
// and draining the channel yields exactly the backlog.
func (srv *chatService) Thread(ctx context.Context, requestID uuid.UUID) ([]*entity.ChatMessage, error) {
	ch, stop, err := srv.gw.SubscribeMessages(ctx, requestID)
	if err != nil {
		return nil, errors.Wrap(err, "open thread")
	}
	stop()

	msgs := make([]*entity.ChatMessage, 0)
	for m := range ch {
		msgs = append(msgs, m)
	}

	return msgs, nil
}

// Subscribe opens a live feed for a request thread.
func (srv *chatService) Subscribe(ctx context.Context, requestID uuid.UUID) (<-chan *entity.ChatMessage, func(), error) {
	if requestID == uuid.Nil {
		return nil, nil, domainerrors.ErrValidationFailed.WithDetails("request id is required")
	}

	return srv.gw.SubscribeMessages(ctx, requestID)
}

// Send appends one chat line to a request thread.
func (srv *chatService) Send(ctx context.Context, input *usecase.SendMessageInput) (*entity.ChatMessage, error) {
	in := gateway.SendMessageInput{
		RequestID: input.RequestID,
		SenderID:  input.SenderID,
		Text:      strings.TrimSpace(input.Text),
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}

	msg, err := srv.gw.SendMessage(ctx, in)
	if err != nil {
		return nil, errors.Wrap(err, "send message")
	}

	srv.logger.Debug("Chat message sent",
		slog.String("requestID", msg.RequestID.String()),
		slog.String("messageID", msg.ID.String()),
	)

	return msg, nil
}
