package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/midvale99/ToolShare/internal/domain/entity"
)

// ProfileUsecase defines the identity and profile operations.
type ProfileUsecase interface {
	// SignIn returns the deployment's identity, bootstrapping an anonymous
	// one on first use. Idempotent.
	SignIn(ctx context.Context) (*entity.User, error)

	// Get returns a user profile by id.
	Get(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// Update saves the editable profile fields.
	Update(ctx context.Context, input *UpdateProfileInput) (*entity.User, error)
}

// UpdateProfileInput defines the editable profile fields.
type UpdateProfileInput struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Street      string    `json:"street"`
	PhotoURL    string    `json:"photo_url"`
}
