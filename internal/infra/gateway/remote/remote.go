// Package remote implements the board gateway as an HTTP client against
// another board instance. Responses use the unified API envelope; business
// error codes are mapped back onto the domain error values so callers cannot
// tell a remote board from a local one.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/midvale99/ToolShare/internal/domain/entity"
	domainerrors "github.com/midvale99/ToolShare/internal/domain/errors"
	"github.com/midvale99/ToolShare/internal/domain/gateway"
	"github.com/midvale99/ToolShare/internal/errors"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultPollInterval = 2 * time.Second
)

// Options tune the remote gateway client.
type Options struct {
	// Timeout bounds a single call; zero selects 10s.
	Timeout time.Duration
	// PollInterval is the chat poll period; zero selects 2s.
	PollInterval time.Duration
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// Gateway proxies every board operation to a remote instance.
type Gateway struct {
	baseURL      string
	client       *http.Client
	logger       *slog.Logger
	pollInterval time.Duration
}

// New builds a remote gateway for the board at baseURL.
func New(baseURL string, logger *slog.Logger, opts Options) (*Gateway, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, errors.New("remote gateway requires an endpoint")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrapf(err, "invalid endpoint %s", baseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &Gateway{
		baseURL:      baseURL,
		client:       client,
		logger:       logger,
		pollInterval: pollInterval,
	}, nil
}

var _ gateway.SyncGateway = (*Gateway)(nil)

// envelope mirrors the unified API response structure.
type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *errorInfo      `json:"error,omitempty"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}

func (g *Gateway) SignIn(ctx context.Context) (*entity.User, error) {
	var user entity.User
	if err := g.call(ctx, http.MethodPost, "/identity", nil, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (g *Gateway) LoadListings(ctx context.Context, viewer *orb.Point) ([]*entity.Listing, error) {
	path := "/listings/raw"
	if viewer != nil {
		path += fmt.Sprintf("?lng=%f&lat=%f", viewer.Lon(), viewer.Lat())
	}

	var listings []*entity.Listing
	if err := g.call(ctx, http.MethodGet, path, nil, &listings); err != nil {
		return nil, err
	}

	return listings, nil
}

func (g *Gateway) CreateListing(ctx context.Context, in gateway.CreateListingInput) (*entity.Listing, error) {
	body := map[string]any{
		"owner_id":    in.OwnerID,
		"title":       in.Title,
		"category":    in.Category,
		"description": in.Description,
		"photo_url":   in.PhotoURL,
		"longitude":   in.Location.Lon(),
		"latitude":    in.Location.Lat(),
	}

	var listing entity.Listing
	if err := g.call(ctx, http.MethodPost, "/listings", body, &listing); err != nil {
		return nil, err
	}

	return &listing, nil
}

func (g *Gateway) LoadRequests(ctx context.Context, userID uuid.UUID) ([]*entity.BorrowRequest, error) {
	var requests []*entity.BorrowRequest
	if err := g.call(ctx, http.MethodGet, "/requests?user="+userID.String(), nil, &requests); err != nil {
		return nil, err
	}

	return requests, nil
}

func (g *Gateway) CreateBorrowRequest(ctx context.Context, in gateway.CreateRequestInput) (*entity.BorrowRequest, error) {
	body := map[string]any{
		"listing_id":  in.ListingID,
		"borrower_id": in.BorrowerID,
		"note":        in.Note,
		"from_date":   in.FromDate,
		"to_date":     in.ToDate,
	}

	var request entity.BorrowRequest
	if err := g.call(ctx, http.MethodPost, "/requests", body, &request); err != nil {
		return nil, err
	}

	return &request, nil
}

func (g *Gateway) ResolveRequest(ctx context.Context, in gateway.ResolveRequestInput) (*entity.BorrowRequest, error) {
	if !in.Action.Valid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown lifecycle action")
	}

	path := fmt.Sprintf("/requests/%s/%s", in.RequestID, in.Action)
	body := map[string]any{"actor_id": in.ActorID}

	var request entity.BorrowRequest
	if err := g.call(ctx, http.MethodPost, path, body, &request); err != nil {
		return nil, err
	}

	return &request, nil
}

// SubscribeMessages delivers the current thread, then polls the messages
// endpoint for new lines.
func (g *Gateway) SubscribeMessages(ctx context.Context, requestID uuid.UUID) (<-chan *entity.ChatMessage, func(), error) {
	backlog, err := g.loadThread(ctx, requestID, time.Time{})
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan *entity.ChatMessage, len(backlog)+64)
	seen := make(map[uuid.UUID]struct{}, len(backlog))
	var cursor time.Time
	for _, m := range backlog {
		ch <- m
		seen[m.ID] = struct{}{}
		if m.CreatedAt.After(cursor) {
			cursor = m.CreatedAt
		}
	}

	pollCtx, cancel := context.WithCancel(context.Background())

	go func() {
		defer close(ch)

		ticker := time.NewTicker(g.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				fresh, err := g.loadThread(pollCtx, requestID, cursor)
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

func (g *Gateway) SendMessage(ctx context.Context, in gateway.SendMessageInput) (*entity.ChatMessage, error) {
	body := map[string]any{
		"sender_id": in.SenderID,
		"text":      in.Text,
	}

	var msg entity.ChatMessage
	if err := g.call(ctx, http.MethodPost, fmt.Sprintf("/requests/%s/messages", in.RequestID), body, &msg); err != nil {
		return nil, err
	}

	return &msg, nil
}

func (g *Gateway) LoadProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := g.call(ctx, http.MethodGet, "/users/"+userID.String(), nil, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (g *Gateway) SaveProfile(ctx context.Context, in gateway.SaveProfileInput) (*entity.User, error) {
	body := map[string]any{
		"display_name": in.DisplayName,
		"street":       in.Street,
		"photo_url":    in.PhotoURL,
	}

	var user entity.User
	if err := g.call(ctx, http.MethodPut, "/users/"+in.UserID.String(), body, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// Close is a no-op; the client holds no persistent connections worth closing.
func (g *Gateway) Close() error {
	return nil
}

func (g *Gateway) loadThread(ctx context.Context, requestID uuid.UUID, after time.Time) ([]*entity.ChatMessage, error) {
	path := fmt.Sprintf("/requests/%s/messages", requestID)
	if !after.IsZero() {
		path += "?after=" + url.QueryEscape(after.Format(time.RFC3339Nano))
	}

	var msgs []*entity.ChatMessage
	if err := g.call(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}

	return msgs, nil
}

// call performs one request/response round trip, decoding the envelope and
// unmarshalling data into out when out is non-nil.
func (g *Gateway) call(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domainerrors.NewBackendError(err, "remote board unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domainerrors.NewBackendError(err, "read remote response")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domainerrors.NewBackendError(err, "malformed remote response")
	}

	if !env.Success {
		return remoteError(resp.StatusCode, env.Error)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return domainerrors.NewBackendError(err, "decode remote payload")
		}
	}

	return nil
}

// knownErrors maps business error codes back onto domain error values.
var knownErrors = map[string]*domainerrors.BaseError{
	"VALIDATION_FAILED":   domainerrors.ErrValidationFailed,
	"INVALID_COORDINATE":  domainerrors.ErrInvalidCoordinate,
	"USER_NOT_FOUND":      domainerrors.ErrUserNotFound,
	"LISTING_NOT_FOUND":   domainerrors.ErrListingNotFound,
	"REQUEST_NOT_FOUND":   domainerrors.ErrRequestNotFound,
	"LISTING_UNAVAILABLE": domainerrors.ErrListingUnavailable,
	"REQUEST_CONFLICT":    domainerrors.ErrRequestConflict,
	"INVALID_TRANSITION":  domainerrors.ErrInvalidTransition,
	"NOT_PARTICIPANT":     domainerrors.ErrNotParticipant,
}

func remoteError(statusCode int, info *errorInfo) error {
	if info != nil {
		if base, ok := knownErrors[info.Code]; ok {
			if info.Details != "" {
				return base.WithDetails(info.Details)
			}

			return base
		}
	}

	return domainerrors.NewBackendError(
		errors.Errorf("remote board returned status %d", statusCode),
		"unexpected remote failure",
	)
}
