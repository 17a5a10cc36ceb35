package impl

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/midvale99/ToolShare/internal/domain/entity"
	domainerrors "github.com/midvale99/ToolShare/internal/domain/errors"
	"github.com/midvale99/ToolShare/internal/domain/gateway"
	"github.com/midvale99/ToolShare/internal/usecase"
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	gw     gateway.SyncGateway
	logger *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(
	gw gateway.SyncGateway,
	logger *slog.Logger,
) usecase.ProfileUsecase {
	return &profileService{
		gw:     gw,
		logger: logger,
	}
}

// SignIn returns the deployment's identity, creating one on first use.
func (srv *profileService) SignIn(ctx context.Context) (*entity.User, error) {
	user, err := srv.gw.SignIn(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "sign in")
	}

	srv.logger.Debug("Signed in", slog.String("userID", user.ID.String()))

	return user, nil
}

// Get returns a user profile by id.
func (srv *profileService) Get(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	if userID == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("user id is required")
	}

	user, err := srv.gw.LoadProfile(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load profile")
	}

	return user, nil
}

// Update saves the editable profile fields.
func (srv *profileService) Update(ctx context.Context, input *usecase.UpdateProfileInput) (*entity.User, error) {
	in := gateway.SaveProfileInput{
		UserID:      input.UserID,
		DisplayName: input.DisplayName,
		Street:      input.Street,
		PhotoURL:    input.PhotoURL,
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}

	user, err := srv.gw.SaveProfile(ctx, in)
	if err != nil {
		return nil, errors.Wrap(err, "save profile")
	}

	srv.logger.Info("Profile updated", slog.String("userID", user.ID.String()))

	return user, nil
}
