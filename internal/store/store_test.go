package store

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midvale99/ToolShare/internal/domain/entity"
	domainerrors "github.com/midvale99/ToolShare/internal/domain/errors"
	"github.com/midvale99/ToolShare/internal/domain/gateway"
)

// stepClock hands out strictly increasing timestamps.
type stepClock struct {
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Next() time.Time {
	c.now = c.now.Add(time.Second)

	return c.now
}

// seqIDs hands out lexicographically increasing uuids.
func seqIDs() func() uuid.UUID {
	n := 0

	return func() uuid.UUID {
		n++

		return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
	}
}

func newTestStore(t *testing.T, persist PersistFunc) *Store {
	t.Helper()

	return New(nil, persist, WithClock(newStepClock().Next), WithIDSource(seqIDs()))
}

func seedListing(t *testing.T, s *Store, owner uuid.UUID) *entity.Listing {
	t.Helper()

	listing, err := s.CreateListing(gateway.CreateListingInput{
		OwnerID:  owner,
		Title:    "Cordless Drill",
		Category: "power tools",
		Location: orb.Point{13.405, 52.52},
	})
	require.NoError(t, err)

	return listing
}

func TestEnsureProfileIdempotent(t *testing.T) {
	s := newTestStore(t, nil)

	first, err := s.EnsureProfile()
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultDisplayName, first.DisplayName)

	second, err := s.EnsureProfile()
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	profile, ok := s.Profile()
	require.True(t, ok)
	assert.Equal(t, first.ID, profile.ID)
}

func TestSaveProfile(t *testing.T) {
	s := newTestStore(t, nil)

	profile, err := s.EnsureProfile()
	require.NoError(t, err)

	updated, err := s.SaveProfile(gateway.SaveProfileInput{
		UserID:      profile.ID,
		DisplayName: "Alex",
		Street:      "Bergmannstrasse",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alex", updated.DisplayName)
	assert.Equal(t, "Bergmannstrasse", updated.Street)

	_, err = s.SaveProfile(gateway.SaveProfileInput{UserID: uuid.New(), DisplayName: "Ghost"})
	assert.True(t, domainerrors.IsNotFound(err))
}

func TestCreateListingRejectsInvalidCoordinate(t *testing.T) {
	s := newTestStore(t, nil)

	_, err := s.CreateListing(gateway.CreateListingInput{
		OwnerID:  uuid.New(),
		Title:    "Drill",
		Category: "tools",
		Location: orb.Point{math.NaN(), 0},
	})
	require.Error(t, err)
	assert.True(t, domainerrors.IsValidation(err))

	_, err = s.CreateListing(gateway.CreateListingInput{
		OwnerID:  uuid.New(),
		Title:    "Drill",
		Category: "tools",
		Location: orb.Point{0, 91},
	})
	assert.True(t, domainerrors.IsValidation(err))
}

func TestCreateBorrowRequestGuards(t *testing.T) {
	s := newTestStore(t, nil)
	owner := uuid.New()
	borrower := uuid.New()
	listing := seedListing(t, s, owner)

	req, err := s.CreateBorrowRequest(gateway.CreateRequestInput{
		ListingID:  listing.ID,
		BorrowerID: borrower,
		Note:       "weekend project",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestPending, req.Status)
	assert.Equal(t, owner, req.OwnerID)

	// Filing a request does not hold the listing.
	fresh, err := s.ListingByID(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingAvailable, fresh.Status)

	// But a second active request against the same listing is refused.
	_, err = s.CreateBorrowRequest(gateway.CreateRequestInput{
		ListingID:  listing.ID,
		BorrowerID: uuid.New(),
	})
	assert.True(t, domainerrors.IsInvariantViolation(err))

	_, err = s.CreateBorrowRequest(gateway.CreateRequestInput{
		ListingID:  uuid.New(),
		BorrowerID: borrower,
	})
	assert.True(t, domainerrors.IsNotFound(err))
}

func TestAcceptReservesListing(t *testing.T) {
	s := newTestStore(t, nil)
	owner := uuid.New()
	listing := seedListing(t, s, owner)

	req, err := s.CreateBorrowRequest(gateway.CreateRequestInput{ListingID: listing.ID, BorrowerID: uuid.New()})
	require.NoError(t, err)

	// Only the owner can accept.
	_, err = s.Resolve(gateway.ResolveRequestInput{RequestID: req.ID, ActorID: req.BorrowerID, Action: entity.ActionAccept})
	assert.True(t, domainerrors.IsInvariantViolation(err))

	accepted, err := s.Resolve(gateway.ResolveRequestInput{RequestID: req.ID, ActorID: owner, Action: entity.ActionAccept})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestAccepted, accepted.Status)

	fresh, err := s.ListingByID(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingReserved, fresh.Status)
}

func TestDeclineLeavesListingAvailable(t *testing.T) {
	s := newTestStore(t, nil)
	owner := uuid.New()
	listing := seedListing(t, s, owner)

	req, err := s.CreateBorrowRequest(gateway.CreateRequestInput{ListingID: listing.ID, BorrowerID: uuid.New()})
	require.NoError(t, err)

	declined, err := s.Resolve(gateway.ResolveRequestInput{RequestID: req.ID, ActorID: owner, Action: entity.ActionDecline})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestDeclined, declined.Status)

	fresh, err := s.ListingByID(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingAvailable, fresh.Status)

	// The listing is free for the next borrower.
	_, err = s.CreateBorrowRequest(gateway.CreateRequestInput{ListingID: listing.ID, BorrowerID: uuid.New()})
	assert.NoError(t, err)
}

func TestCompleteCreditsBothParties(t *testing.T) {
	s := newTestStore(t, nil)
	owner := uuid.New()
	borrower := uuid.New()
	listing := seedListing(t, s, owner)

	req, err := s.CreateBorrowRequest(gateway.CreateRequestInput{ListingID: listing.ID, BorrowerID: borrower})
	require.NoError(t, err)

	_, err = s.Resolve(gateway.ResolveRequestInput{RequestID: req.ID, ActorID: owner, Action: entity.ActionAccept})
	require.NoError(t, err)

	// The borrower may close the loan too.
	completed, err := s.Resolve(gateway.ResolveRequestInput{RequestID: req.ID, ActorID: borrower, Action: entity.ActionComplete})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestCompleted, completed.Status)

	fresh, err := s.ListingByID(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingAvailable, fresh.Status)

	ownerUser, err := s.UserByID(owner)
	require.NoError(t, err)
	assert.Equal(t, 1, ownerUser.ItemsLent)
	assert.Equal(t, 0, ownerUser.ItemsBorrowed)

	borrowerUser, err := s.UserByID(borrower)
	require.NoError(t, err)
	assert.Equal(t, 1, borrowerUser.ItemsBorrowed)
	assert.Equal(t, 0, borrowerUser.ItemsLent)
}

func TestHandOverMarksListingLent(t *testing.T) {
	s := newTestStore(t, nil)
	owner := uuid.New()
	listing := seedListing(t, s, owner)

	req, err := s.CreateBorrowRequest(gateway.CreateRequestInput{ListingID: listing.ID, BorrowerID: uuid.New()})
	require.NoError(t, err)

	// Hand-over before acceptance is not a thing.
	_, err = s.Resolve(gateway.ResolveRequestInput{RequestID: req.ID, ActorID: owner, Action: entity.ActionHandOver})
	assert.True(t, domainerrors.IsInvariantViolation(err))

	_, err = s.Resolve(gateway.ResolveRequestInput{RequestID: req.ID, ActorID: owner, Action: entity.ActionAccept})
	require.NoError(t, err)

	_, err = s.Resolve(gateway.ResolveRequestInput{RequestID: req.ID, ActorID: owner, Action: entity.ActionHandOver})
	require.NoError(t, err)

	fresh, err := s.ListingByID(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingLent, fresh.Status)

	// Completion still works from the lent state.
	_, err = s.Resolve(gateway.ResolveRequestInput{RequestID: req.ID, ActorID: owner, Action: entity.ActionComplete})
	assert.NoError(t, err)
}

func TestTerminalRequestsRejectActions(t *testing.T) {
	s := newTestStore(t, nil)
	owner := uuid.New()
	listing := seedListing(t, s, owner)

	req, err := s.CreateBorrowRequest(gateway.CreateRequestInput{ListingID: listing.ID, BorrowerID: uuid.New()})
	require.NoError(t, err)

	_, err = s.Resolve(gateway.ResolveRequestInput{RequestID: req.ID, ActorID: owner, Action: entity.ActionDecline})
	require.NoError(t, err)

	for _, action := range []entity.RequestAction{entity.ActionAccept, entity.ActionDecline, entity.ActionComplete} {
		_, err = s.Resolve(gateway.ResolveRequestInput{RequestID: req.ID, ActorID: owner, Action: action})
		assert.True(t, domainerrors.IsInvariantViolation(err), "action %s", action)
	}
}

func TestPersistFailureRollsBack(t *testing.T) {
	boom := errors.New("disk full")
	failing := false
	s := New(nil, func(*gateway.Record) error {
		if failing {
			return boom
		}

		return nil
	}, WithClock(newStepClock().Next), WithIDSource(seqIDs()))

	owner := uuid.New()
	listing := seedListing(t, s, owner)
	versionBefore := s.Version()

	failing = true
	_, err := s.CreateBorrowRequest(gateway.CreateRequestInput{ListingID: listing.ID, BorrowerID: uuid.New()})
	require.Error(t, err)
	assert.True(t, domainerrors.IsBackendUnavailable(err))

	// Nothing leaked out of the failed mutation.
	assert.Equal(t, versionBefore, s.Version())
	assert.Empty(t, s.RequestsForUser(owner))

	failing = false
	_, err = s.CreateBorrowRequest(gateway.CreateRequestInput{ListingID: listing.ID, BorrowerID: uuid.New()})
	assert.NoError(t, err)
}

func TestMessagesOrderedAndGuarded(t *testing.T) {
	clock := newStepClock()
	ids := seqIDs()
	s := New(nil, nil, WithClock(clock.Next), WithIDSource(ids))

	owner := uuid.New()
	borrower := uuid.New()
	listing := seedListing(t, s, owner)

	req, err := s.CreateBorrowRequest(gateway.CreateRequestInput{ListingID: listing.ID, BorrowerID: borrower})
	require.NoError(t, err)

	_, err = s.AppendMessage(gateway.SendMessageInput{RequestID: req.ID, SenderID: borrower, Text: "Is it free on Saturday?"})
	require.NoError(t, err)
	_, err = s.AppendMessage(gateway.SendMessageInput{RequestID: req.ID, SenderID: owner, Text: "Yes, pick it up after ten."})
	require.NoError(t, err)

	// Outsiders cannot write into the thread.
	_, err = s.AppendMessage(gateway.SendMessageInput{RequestID: req.ID, SenderID: uuid.New(), Text: "hi"})
	assert.True(t, domainerrors.IsInvariantViolation(err))

	got := s.MessagesForRequest(req.ID)
	require.Len(t, got, 2)
	assert.Equal(t, "Is it free on Saturday?", got[0].Text)
	assert.Equal(t, "Yes, pick it up after ten.", got[1].Text)
	assert.True(t, got[0].CreatedAt.Before(got[1].CreatedAt))
}

func TestMessageTiesKeepInsertionOrder(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := New(nil, nil, WithClock(func() time.Time { return fixed }), WithIDSource(seqIDs()))

	owner := uuid.New()
	borrower := uuid.New()
	listing := seedListing(t, s, owner)
	req, err := s.CreateBorrowRequest(gateway.CreateRequestInput{ListingID: listing.ID, BorrowerID: borrower})
	require.NoError(t, err)

	for i, text := range []string{"first", "second", "third"} {
		_, err = s.AppendMessage(gateway.SendMessageInput{RequestID: req.ID, SenderID: borrower, Text: text})
		require.NoError(t, err, "message %d", i)
	}

	got := s.MessagesForRequest(req.ID)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
	assert.Equal(t, "third", got[2].Text)
}

func TestWatchMessagesBacklogThenLive(t *testing.T) {
	s := newTestStore(t, nil)

	owner := uuid.New()
	borrower := uuid.New()
	listing := seedListing(t, s, owner)
	req, err := s.CreateBorrowRequest(gateway.CreateRequestInput{ListingID: listing.ID, BorrowerID: borrower})
	require.NoError(t, err)

	_, err = s.AppendMessage(gateway.SendMessageInput{RequestID: req.ID, SenderID: borrower, Text: "backlog"})
	require.NoError(t, err)

	ch, stop := s.WatchMessages(req.ID)
	defer stop()

	first := <-ch
	assert.Equal(t, "backlog", first.Text)

	_, err = s.AppendMessage(gateway.SendMessageInput{RequestID: req.ID, SenderID: owner, Text: "live"})
	require.NoError(t, err)

	select {
	case live := <-ch:
		assert.Equal(t, "live", live.Text)
	case <-time.After(time.Second):
		t.Fatal("live message not delivered")
	}
}

func TestWatchMessagesStopClosesChannel(t *testing.T) {
	s := newTestStore(t, nil)

	owner := uuid.New()
	listing := seedListing(t, s, owner)
	req, err := s.CreateBorrowRequest(gateway.CreateRequestInput{ListingID: listing.ID, BorrowerID: uuid.New()})
	require.NoError(t, err)

	ch, stop := s.WatchMessages(req.ID)
	stop()

	_, open := <-ch
	assert.False(t, open)

	// Stopping twice is harmless.
	stop()
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t, nil)

	profile, err := s.EnsureProfile()
	require.NoError(t, err)
	listing := seedListing(t, s, profile.ID)
	req, err := s.CreateBorrowRequest(gateway.CreateRequestInput{ListingID: listing.ID, BorrowerID: uuid.New()})
	require.NoError(t, err)
	_, err = s.AppendMessage(gateway.SendMessageInput{RequestID: req.ID, SenderID: req.BorrowerID, Text: "hello"})
	require.NoError(t, err)

	rec := s.Snapshot()

	reloaded := New(rec, nil)

	got, ok := reloaded.Profile()
	require.True(t, ok)
	assert.Equal(t, profile.ID, got.ID)

	fresh, err := reloaded.ListingByID(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.Title, fresh.Title)

	require.Len(t, reloaded.MessagesForRequest(req.ID), 1)
	assert.Equal(t, rec.Version, reloaded.Version())
}
