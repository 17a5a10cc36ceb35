package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/midvale99/ToolShare/internal/delivery/http/response"
	"github.com/midvale99/ToolShare/internal/domain/entity"
	"github.com/midvale99/ToolShare/internal/usecase"
)

// MessageHandlerParams holds dependencies for MessageHandler, injected by Fx.
type MessageHandlerParams struct {
	fx.In

	ChatUC usecase.ChatUsecase
	Logger *slog.Logger
}

// MessageHandler holds dependencies for chat thread handlers
type MessageHandler struct {
	chatUC usecase.ChatUsecase
	logger *slog.Logger
}

// NewMessageHandler is the constructor for MessageHandler
func NewMessageHandler(params MessageHandlerParams) *MessageHandler {
	return &MessageHandler{
		chatUC: params.ChatUC,
		logger: params.Logger,
	}
}

// SendMessageRequest represents the request body for posting a chat line
type SendMessageRequest struct {
	SenderID uuid.UUID `json:"sender_id" validate:"required"`
	Text     string    `json:"text" validate:"required,max=4000"`
}

// GetThread handles retrieving a request thread. An optional RFC3339 "after"
// parameter narrows the result to messages at or past that instant, which is
// what polling clients use as a cursor.
func (h *MessageHandler) GetThread(c echo.Context) error {
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid request ID")
	}

	var after time.Time
	if raw := c.QueryParam("after"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "after must be RFC3339")
		}
		after = parsed
	}

	thread, err := h.chatUC.Thread(c.Request().Context(), requestID)
	if err != nil {
		return handleAppError(c, err)
	}

	if !after.IsZero() {
		filtered := make([]*entity.ChatMessage, 0, len(thread))
		for _, m := range thread {
			if !m.CreatedAt.Before(after) {
				filtered = append(filtered, m)
			}
		}
		thread = filtered
	}

	return response.Success(c, http.StatusOK, thread, "Thread retrieved")
}

// PostMessage handles appending one chat line to a request thread
func (h *MessageHandler) PostMessage(c echo.Context) error {
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return response.BadRequest(c, "INVALID_ID", "Invalid request ID")
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid message input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", err.Error())
	}

	msg, err := h.chatUC.Send(c.Request().Context(), &usecase.SendMessageInput{
		RequestID: requestID,
		SenderID:  req.SenderID,
		Text:      req.Text,
	})
	if err != nil {
		return handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, msg, "Message sent")
}
