package impl

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/midvale99/ToolShare/config"
	"github.com/midvale99/ToolShare/internal/domain/entity"
	"github.com/midvale99/ToolShare/internal/domain/gateway"
	"github.com/midvale99/ToolShare/internal/store"
)

// fakeGateway backs the SyncGateway contract with the in-memory store, so
// service tests run against real board semantics without any I/O.
type fakeGateway struct {
	store *store.Store
	calls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{store: store.New(nil, nil)}
}

func (f *fakeGateway) SignIn(context.Context) (*entity.User, error) {
	f.calls++

	return f.store.EnsureProfile()
}

func (f *fakeGateway) LoadListings(context.Context, *orb.Point) ([]*entity.Listing, error) {
	f.calls++

	return f.store.Listings(), nil
}

func (f *fakeGateway) CreateListing(_ context.Context, in gateway.CreateListingInput) (*entity.Listing, error) {
	f.calls++

	return f.store.CreateListing(in)
}

func (f *fakeGateway) LoadRequests(_ context.Context, userID uuid.UUID) ([]*entity.BorrowRequest, error) {
	f.calls++

	return f.store.RequestsForUser(userID), nil
}

func (f *fakeGateway) CreateBorrowRequest(_ context.Context, in gateway.CreateRequestInput) (*entity.BorrowRequest, error) {
	f.calls++

	return f.store.CreateBorrowRequest(in)
}

func (f *fakeGateway) ResolveRequest(_ context.Context, in gateway.ResolveRequestInput) (*entity.BorrowRequest, error) {
	f.calls++

	return f.store.Resolve(in)
}

func (f *fakeGateway) SubscribeMessages(_ context.Context, requestID uuid.UUID) (<-chan *entity.ChatMessage, func(), error) {
	f.calls++
	ch, stop := f.store.WatchMessages(requestID)

	return ch, stop, nil
}

func (f *fakeGateway) SendMessage(_ context.Context, in gateway.SendMessageInput) (*entity.ChatMessage, error) {
	f.calls++

	return f.store.AppendMessage(in)
}

func (f *fakeGateway) LoadProfile(_ context.Context, userID uuid.UUID) (*entity.User, error) {
	f.calls++

	return f.store.UserByID(userID)
}

func (f *fakeGateway) SaveProfile(_ context.Context, in gateway.SaveProfileInput) (*entity.User, error) {
	f.calls++

	return f.store.SaveProfile(in)
}

func (f *fakeGateway) Close() error {
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Proximity.NoLocationPolicy = "all"

	return cfg
}

func seedListingAt(t *testing.T, gw *fakeGateway, owner uuid.UUID, at orb.Point) *entity.Listing {
	t.Helper()

	listing, err := gw.store.CreateListing(gateway.CreateListingInput{
		OwnerID:  owner,
		Title:    "Cordless Drill",
		Category: "power tools",
		Location: at,
	})
	if err != nil {
		t.Fatalf("seed listing: %v", err)
	}

	return listing
}
