// Package postgres implements the board gateway on PostgreSQL via GORM.
// Every mutation runs inside one transaction with the affected rows locked,
// so the listing/request invariants hold under concurrent writers.
package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/midvale99/ToolShare/internal/domain/entity"
	domainerrors "github.com/midvale99/ToolShare/internal/domain/errors"
	"github.com/midvale99/ToolShare/internal/domain/gateway"
	"github.com/midvale99/ToolShare/internal/errors"
	"github.com/midvale99/ToolShare/internal/geomath"
	"github.com/midvale99/ToolShare/internal/infra/persistence/model"
)

const (
	profileIDSettingKey = "profile_id"
	defaultPollInterval = 2 * time.Second
)

// Gateway is the PostgreSQL-backed SyncGateway.
type Gateway struct {
	db           *gorm.DB
	logger       *slog.Logger
	pollInterval time.Duration
}

// New builds a postgres gateway. pollInterval drives the chat change feed;
// zero selects a 2s default.
func New(db *gorm.DB, logger *slog.Logger, pollInterval time.Duration) (*Gateway, error) {
	if db == nil {
		return nil, errors.New("postgres gateway requires a database handle")
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	if err := db.AutoMigrate(
		&model.UserModel{},
		&model.ListingModel{},
		&model.BorrowRequestModel{},
		&model.ChatMessageModel{},
		&model.SettingModel{},
	); err != nil {
		return nil, errors.Wrap(err, "migrate board schema")
	}

	return &Gateway{
		db:           db,
		logger:       logger,
		pollInterval: pollInterval,
	}, nil
}

var _ gateway.SyncGateway = (*Gateway)(nil)

// SignIn returns the deployment's identity, creating an anonymous one on
// first call. The settings row keeps SignIn idempotent across restarts.
func (g *Gateway) SignIn(ctx context.Context) (*entity.User, error) {
	var user entity.User

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var setting model.SettingModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", profileIDSettingKey).
			First(&setting).Error

		switch {
		case err == nil:
			id, parseErr := uuid.Parse(setting.Value)
			if parseErr != nil {
				return errors.Wrap(parseErr, "stored profile id is corrupt")
			}

			var row model.UserModel
			if err := tx.First(&row, "id = ?", id).Error; err != nil {
				return errors.Wrap(err, "load profile user")
			}
			user = *userToEntity(&row)

			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			now := time.Now().UTC()
			row := model.UserModel{
				ID:          uuid.New(),
				DisplayName: entity.DefaultDisplayName,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return errors.Wrap(err, "create profile user")
			}
			if err := tx.Create(&model.SettingModel{
				Key:       profileIDSettingKey,
				Value:     row.ID.String(),
				UpdatedAt: now,
			}).Error; err != nil {
				return errors.Wrap(err, "store profile id")
			}
			user = *userToEntity(&row)

			return nil

		default:
			return errors.Wrap(err, "load profile setting")
		}
	})
	if err != nil {
		return nil, backendOrDomain(err)
	}

	return &user, nil
}

// LoadListings returns every listing; the proximity filter runs in the core.
func (g *Gateway) LoadListings(ctx context.Context, _ *orb.Point) ([]*entity.Listing, error) {
	var rows []model.ListingModel
	if err := g.db.WithContext(ctx).
		Order("created_at DESC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, domainerrors.NewBackendError(err, "load listings")
	}

	out := make([]*entity.Listing, 0, len(rows))
	for i := range rows {
		out = append(out, listingToEntity(&rows[i]))
	}

	return out, nil
}

// CreateListing persists a new available listing.
func (g *Gateway) CreateListing(ctx context.Context, in gateway.CreateListingInput) (*entity.Listing, error) {
	if !geomath.Valid(in.Location) {
		return nil, domainerrors.ErrInvalidCoordinate
	}

	now := time.Now().UTC()
	row := model.ListingModel{
		ID:          uuid.New(),
		OwnerID:     in.OwnerID,
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		PhotoURL:    in.PhotoURL,
		Lng:         in.Location.Lon(),
		Lat:         in.Location.Lat(),
		Status:      string(entity.ListingAvailable),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUserRow(tx, in.OwnerID, now); err != nil {
			return err
		}

		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, backendOrDomain(err)
	}

	return listingToEntity(&row), nil
}

// LoadRequests returns requests where the user is owner or borrower.
func (g *Gateway) LoadRequests(ctx context.Context, userID uuid.UUID) ([]*entity.BorrowRequest, error) {
	var rows []model.BorrowRequestModel
	if err := g.db.WithContext(ctx).
		Where("owner_id = ? OR borrower_id = ?", userID, userID).
		Order("created_at DESC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, domainerrors.NewBackendError(err, "load requests")
	}

	out := make([]*entity.BorrowRequest, 0, len(rows))
	for i := range rows {
		out = append(out, requestToEntity(&rows[i]))
	}

	return out, nil
}

// CreateBorrowRequest files a pending request. The listing row is locked so
// the availability check and the active-request check cannot race.
func (g *Gateway) CreateBorrowRequest(ctx context.Context, in gateway.CreateRequestInput) (*entity.BorrowRequest, error) {
	var row model.BorrowRequestModel

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := lockListing(tx, in.ListingID)
		if err != nil {
			return err
		}
		if listing.Status != string(entity.ListingAvailable) {
			return domainerrors.ErrListingUnavailable
		}

		var active int64
		if err := tx.Model(&model.BorrowRequestModel{}).
			Where("listing_id = ? AND status IN ?", in.ListingID,
				[]string{string(entity.RequestPending), string(entity.RequestAccepted)}).
			Count(&active).Error; err != nil {
			return errors.Wrap(err, "count active requests")
		}
		if active > 0 {
			return domainerrors.ErrRequestConflict
		}

		now := time.Now().UTC()
		if err := ensureUserRow(tx, in.BorrowerID, now); err != nil {
			return err
		}

		row = model.BorrowRequestModel{
			ID:         uuid.New(),
			ListingID:  listing.ID,
			OwnerID:    listing.OwnerID,
			BorrowerID: in.BorrowerID,
			Status:     string(entity.RequestPending),
			Note:       in.Note,
			FromDate:   in.FromDate,
			ToDate:     in.ToDate,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, backendOrDomain(err)
	}

	return requestToEntity(&row), nil
}

// ResolveRequest applies a lifecycle action with its listing side effects in
// one transaction.
func (g *Gateway) ResolveRequest(ctx context.Context, in gateway.ResolveRequestInput) (*entity.BorrowRequest, error) {
	var row model.BorrowRequestModel

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, "id = ?", in.RequestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrRequestNotFound
			}

			return errors.Wrap(err, "load request")
		}

		listing, err := lockListing(tx, row.ListingID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		status := entity.RequestStatus(row.Status)

		switch in.Action {
		case entity.ActionAccept:
			if in.ActorID != row.OwnerID {
				return domainerrors.ErrNotParticipant
			}
			if !status.CanTransitionTo(entity.RequestAccepted) {
				return domainerrors.ErrInvalidTransition
			}
			if listing.Status != string(entity.ListingAvailable) {
				return domainerrors.ErrListingUnavailable
			}
			row.Status = string(entity.RequestAccepted)
			if err := updateListingStatus(tx, listing.ID, entity.ListingReserved, now); err != nil {
				return err
			}

		case entity.ActionDecline:
			if in.ActorID != row.OwnerID {
				return domainerrors.ErrNotParticipant
			}
			if !status.CanTransitionTo(entity.RequestDeclined) {
				return domainerrors.ErrInvalidTransition
			}
			row.Status = string(entity.RequestDeclined)

		case entity.ActionHandOver:
			if in.ActorID != row.OwnerID {
				return domainerrors.ErrNotParticipant
			}
			if status != entity.RequestAccepted || listing.Status != string(entity.ListingReserved) {
				return domainerrors.ErrInvalidTransition
			}
			if err := updateListingStatus(tx, listing.ID, entity.ListingLent, now); err != nil {
				return err
			}

		case entity.ActionComplete:
			if in.ActorID != row.OwnerID && in.ActorID != row.BorrowerID {
				return domainerrors.ErrNotParticipant
			}
			if !status.CanTransitionTo(entity.RequestCompleted) {
				return domainerrors.ErrInvalidTransition
			}
			row.Status = string(entity.RequestCompleted)
			if err := updateListingStatus(tx, listing.ID, entity.ListingAvailable, now); err != nil {
				return err
			}
			if err := creditCounter(tx, row.OwnerID, "items_lent", now); err != nil {
				return err
			}
			if err := creditCounter(tx, row.BorrowerID, "items_borrowed", now); err != nil {
				return err
			}

		default:
			return domainerrors.ErrValidationFailed.WithDetails("unknown lifecycle action")
		}

		row.UpdatedAt = now

		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, backendOrDomain(err)
	}

	return requestToEntity(&row), nil
}

// SubscribeMessages delivers the thread history, then polls for new rows.
func (g *Gateway) SubscribeMessages(ctx context.Context, requestID uuid.UUID) (<-chan *entity.ChatMessage, func(), error) {
	backlog, err := g.loadThread(ctx, requestID, nil)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan *entity.ChatMessage, len(backlog)+64)
	for _, m := range backlog {
		ch <- m
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	seen := make(map[uuid.UUID]struct{}, len(backlog))
	var cursor time.Time
	for _, m := range backlog {
		seen[m.ID] = struct{}{}
		if m.CreatedAt.After(cursor) {
			cursor = m.CreatedAt
		}
	}

	go func() {
		defer close(ch)

		ticker := time.NewTicker(g.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				fresh, err := g.loadThread(pollCtx, requestID, &cursor)
				if err != nil {
					if g.logger != nil {
						g.logger.Warn("chat poll failed", slog.String("error", err.Error()))
					}

					continue
				}
				for _, m := range fresh {
					if _, ok := seen[m.ID]; ok {
						continue
					}
					seen[m.ID] = struct{}{}
					if m.CreatedAt.After(cursor) {
						cursor = m.CreatedAt
					}
					select {
					case ch <- m:
					case <-pollCtx.Done():
						return
					}
				}
			}
		}
	}()

	return ch, cancel, nil
}

// SendMessage appends one chat line; only the two parties may write.
func (g *Gateway) SendMessage(ctx context.Context, in gateway.SendMessageInput) (*entity.ChatMessage, error) {
	var row model.ChatMessageModel

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req model.BorrowRequestModel
		if err := tx.First(&req, "id = ?", in.RequestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrRequestNotFound
			}

			return errors.Wrap(err, "load request")
		}
		if in.SenderID != req.OwnerID && in.SenderID != req.BorrowerID {
			return domainerrors.ErrNotParticipant
		}

		row = model.ChatMessageModel{
			ID:        uuid.New(),
			RequestID: in.RequestID,
			SenderID:  in.SenderID,
			Text:      in.Text,
			CreatedAt: time.Now().UTC(),
		}

		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, backendOrDomain(err)
	}

	return messageToEntity(&row), nil
}

// LoadProfile returns a user by id.
func (g *Gateway) LoadProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	var row model.UserModel
	if err := g.db.WithContext(ctx).First(&row, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, domainerrors.NewBackendError(err, "load profile")
	}

	return userToEntity(&row), nil
}

// SaveProfile updates the editable profile fields of a user.
func (g *Gateway) SaveProfile(ctx context.Context, in gateway.SaveProfileInput) (*entity.User, error) {
	var row model.UserModel

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, "id = ?", in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "load user")
		}

		row.DisplayName = in.DisplayName
		row.Street = in.Street
		row.PhotoURL = in.PhotoURL
		row.UpdatedAt = time.Now().UTC()

		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, backendOrDomain(err)
	}

	return userToEntity(&row), nil
}

// Close is a no-op; the pooled connection is owned by the fx lifecycle.
func (g *Gateway) Close() error {
	return nil
}

func (g *Gateway) loadThread(ctx context.Context, requestID uuid.UUID, after *time.Time) ([]*entity.ChatMessage, error) {
	q := g.db.WithContext(ctx).Where("request_id = ?", requestID)
	if after != nil {
		q = q.Where("created_at >= ?", *after)
	}

	var rows []model.ChatMessageModel
	if err := q.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, domainerrors.NewBackendError(err, "load chat thread")
	}

	out := make([]*entity.ChatMessage, 0, len(rows))
	for i := range rows {
		out = append(out, messageToEntity(&rows[i]))
	}

	return out, nil
}

func lockListing(tx *gorm.DB, id uuid.UUID) (*model.ListingModel, error) {
	var listing model.ListingModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrListingNotFound
		}

		return nil, errors.Wrap(err, "load listing")
	}

	return &listing, nil
}

func updateListingStatus(tx *gorm.DB, id uuid.UUID, status entity.ListingStatus, now time.Time) error {
	return tx.Model(&model.ListingModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": now}).Error
}

func creditCounter(tx *gorm.DB, userID uuid.UUID, column string, now time.Time) error {
	if err := ensureUserRow(tx, userID, now); err != nil {
		return err
	}

	return tx.Model(&model.UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			column:       gorm.Expr(column+" + 1"),
			"updated_at": now,
		}).Error
}

func ensureUserRow(tx *gorm.DB, id uuid.UUID, now time.Time) error {
	row := model.UserModel{
		ID:          id,
		DisplayName: entity.DefaultDisplayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// backendOrDomain keeps application errors as-is and wraps everything else
// as a retryable backend failure.
func backendOrDomain(err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	return domainerrors.NewBackendError(err, "postgres gateway call failed")
}

func userToEntity(m *model.UserModel) *entity.User {
	return &entity.User{
		ID:            m.ID,
		DisplayName:   m.DisplayName,
		PhotoURL:      m.PhotoURL,
		Street:        m.Street,
		ItemsLent:     m.ItemsLent,
		ItemsBorrowed: m.ItemsBorrowed,
		Rating:        m.Rating,
		RatingsCount:  m.RatingsCount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func listingToEntity(m *model.ListingModel) *entity.Listing {
	return &entity.Listing{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Title:       m.Title,
		Category:    m.Category,
		Description: m.Description,
		PhotoURL:    m.PhotoURL,
		Location:    orb.Point{m.Lng, m.Lat},
		Status:      entity.ListingStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func requestToEntity(m *model.BorrowRequestModel) *entity.BorrowRequest {
	return &entity.BorrowRequest{
		ID:         m.ID,
		ListingID:  m.ListingID,
		OwnerID:    m.OwnerID,
		BorrowerID: m.BorrowerID,
		Status:     entity.RequestStatus(m.Status),
		Note:       m.Note,
		FromDate:   m.FromDate,
		ToDate:     m.ToDate,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func messageToEntity(m *model.ChatMessageModel) *entity.ChatMessage {
	return &entity.ChatMessage{
		ID:        m.ID,
		RequestID: m.RequestID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}
