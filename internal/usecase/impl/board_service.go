package impl

import (
	"context"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/midvale99/ToolShare/config"
	"github.com/midvale99/ToolShare/internal/domain/entity"
	domainerrors "github.com/midvale99/ToolShare/internal/domain/errors"
	"github.com/midvale99/ToolShare/internal/domain/gateway"
	"github.com/midvale99/ToolShare/internal/geomath"
	"github.com/midvale99/ToolShare/internal/proximity"
	"github.com/midvale99/ToolShare/internal/usecase"
)

// boardService implements the BoardUsecase interface.
type boardService struct {
	gw     gateway.SyncGateway
	opts   proximity.Options
	logger *slog.Logger
}

// NewBoardService is the constructor for boardService.
func NewBoardService(
	gw gateway.SyncGateway,
	cfg *config.Config,
	logger *slog.Logger,
) (usecase.BoardUsecase, error) {
	opts, err := proximityOptions(cfg)
	if err != nil {
		return nil, err
	}

	return &boardService{
		gw:     gw,
		opts:   opts,
		logger: logger,
	}, nil
}

func proximityOptions(cfg *config.Config) (proximity.Options, error) {
	policy := proximity.NoLocationPolicy(cfg.Proximity.NoLocationPolicy)
	if policy == "" {
		policy = proximity.ShowAll
	}
	if !policy.Valid() {
		return proximity.Options{}, errors.Errorf("unknown no-location policy: %s", cfg.Proximity.NoLocationPolicy)
	}

	return proximity.Options{
		RadiusMeters: cfg.Proximity.RadiusMeters,
		NoLocation:   policy,
	}, nil
}

// ViewBoard loads all listings through the gateway and applies the
// proximity policy locally, so a pre-filtering backend and a dumb one give
// the same board.
func (srv *boardService) ViewBoard(ctx context.Context, viewer *orb.Point, query string) ([]*usecase.BoardListing, error) {
	if viewer != nil && !geomath.Valid(*viewer) {
		return nil, domainerrors.ErrInvalidCoordinate
	}

	listings, err := srv.gw.LoadListings(ctx, viewer)
	if err != nil {
		return nil, errors.Wrap(err, "load listings")
	}

	visible := proximity.NearbyAvailable(listings, viewer, query, srv.opts)

	board := make([]*usecase.BoardListing, 0, len(visible))
	for _, listing := range visible {
		item := &usecase.BoardListing{Listing: listing}
		if viewer != nil {
			d := geomath.Distance(*viewer, listing.Location)
			item.DistanceMeters = &d
		}
		board = append(board, item)
	}

	return board, nil
}

// RawListings returns the unfiltered listing set.
func (srv *boardService) RawListings(ctx context.Context) ([]*entity.Listing, error) {
	listings, err := srv.gw.LoadListings(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "load listings")
	}

	return listings, nil
}

// CreateListing publishes a new available listing.
func (srv *boardService) CreateListing(ctx context.Context, input *usecase.CreateListingInput) (*entity.Listing, error) {
	in := gateway.CreateListingInput{
		OwnerID:     input.OwnerID,
		Title:       input.Title,
		Category:    input.Category,
		Description: input.Description,
		PhotoURL:    input.PhotoURL,
		Location:    orb.Point{input.Longitude, input.Latitude},
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if !geomath.Valid(in.Location) {
		return nil, domainerrors.ErrInvalidCoordinate
	}

	listing, err := srv.gw.CreateListing(ctx, in)
	if err != nil {
		return nil, errors.Wrap(err, "create listing")
	}

	srv.logger.Info("Listing published",
		slog.String("listingID", listing.ID.String()),
		slog.String("title", listing.Title),
	)

	return listing, nil
}
