// Package local implements the board gateway on a single JSON file. The
// whole board record is rewritten atomically (temp file then rename) on
// every mutation, so a crash never leaves a torn document behind.
package local

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/midvale99/ToolShare/internal/domain/entity"
	"github.com/midvale99/ToolShare/internal/domain/gateway"
	"github.com/midvale99/ToolShare/internal/errors"
	"github.com/midvale99/ToolShare/internal/store"
)

// Gateway is the file-backed SyncGateway.
type Gateway struct {
	path  string
	store *store.Store
}

// New loads the record at path (a missing file means an empty board) and
// returns a gateway persisting every mutation back to it.
func New(path string, opts ...store.Option) (*Gateway, error) {
	if path == "" {
		return nil, errors.New("local gateway requires a state path")
	}

	rec, err := readRecord(path)
	if err != nil {
		return nil, err
	}

	g := &Gateway{path: path}
	g.store = store.New(rec, g.writeRecord, opts...)

	return g, nil
}

var _ gateway.SyncGateway = (*Gateway)(nil)

// Store exposes the underlying entity store, used when the same process
// also serves the board over HTTP.
func (g *Gateway) Store() *store.Store {
	return g.store
}

func (g *Gateway) SignIn(_ context.Context) (*entity.User, error) {
	return g.store.EnsureProfile()
}

func (g *Gateway) LoadListings(_ context.Context, _ *orb.Point) ([]*entity.Listing, error) {
	return g.store.Listings(), nil
}

func (g *Gateway) CreateListing(_ context.Context, in gateway.CreateListingInput) (*entity.Listing, error) {
	return g.store.CreateListing(in)
}

func (g *Gateway) LoadRequests(_ context.Context, userID uuid.UUID) ([]*entity.BorrowRequest, error) {
	return g.store.RequestsForUser(userID), nil
}

func (g *Gateway) CreateBorrowRequest(_ context.Context, in gateway.CreateRequestInput) (*entity.BorrowRequest, error) {
	return g.store.CreateBorrowRequest(in)
}

func (g *Gateway) ResolveRequest(_ context.Context, in gateway.ResolveRequestInput) (*entity.BorrowRequest, error) {
	return g.store.Resolve(in)
}

func (g *Gateway) SubscribeMessages(_ context.Context, requestID uuid.UUID) (<-chan *entity.ChatMessage, func(), error) {
	ch, stop := g.store.WatchMessages(requestID)

	return ch, stop, nil
}

func (g *Gateway) SendMessage(_ context.Context, in gateway.SendMessageInput) (*entity.ChatMessage, error) {
	return g.store.AppendMessage(in)
}

func (g *Gateway) LoadProfile(_ context.Context, userID uuid.UUID) (*entity.User, error) {
	return g.store.UserByID(userID)
}

func (g *Gateway) SaveProfile(_ context.Context, in gateway.SaveProfileInput) (*entity.User, error) {
	return g.store.SaveProfile(in)
}

// Close is a no-op; every mutation is already on disk when it returns.
func (g *Gateway) Close() error {
	return nil
}

func readRecord(path string) (*gateway.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, errors.Wrapf(err, "read board record %s", path)
	}

	var rec gateway.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errors.Wrapf(err, "parse board record %s", path)
	}

	return &rec, nil
}

func (g *Gateway) writeRecord(rec *gateway.Record) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode board record")
	}

	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create state directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(g.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp record file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return errors.Wrap(err, "write temp record file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return errors.Wrap(err, "sync temp record file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return errors.Wrap(err, "close temp record file")
	}

	if err := os.Rename(tmpName, g.path); err != nil {
		os.Remove(tmpName)

		return errors.Wrapf(err, "replace board record %s", g.path)
	}

	return nil
}
