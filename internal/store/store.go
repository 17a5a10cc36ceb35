// Package store implements the authoritative entity store of the board:
// users, listings, borrow requests and chat messages, with the referential
// and status invariants enforced on every mutation.
//
// One mutex is the single mutation entry point. Each mutation is applied to
// a cloned state, the persist hook runs inside the same critical section,
// and only a fully persisted state is published. A failed durable write
// therefore leaves no partial state visible to readers, and mutations issued
// by the same caller apply in issuance order.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/midvale99/ToolShare/internal/domain/entity"
	domainerrors "github.com/midvale99/ToolShare/internal/domain/errors"
	"github.com/midvale99/ToolShare/internal/domain/gateway"
	"github.com/midvale99/ToolShare/internal/geomath"
)

// PersistFunc durably writes the whole board record. It is called inside the
// mutation boundary; returning an error aborts the mutation.
type PersistFunc func(*gateway.Record) error

// Option customizes a Store, mainly for deterministic tests.
type Option func(*Store)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDSource replaces the id generator.
func WithIDSource(newID func() uuid.UUID) Option {
	return func(s *Store) { s.newID = newID }
}

// Store owns the four entity collections. All access goes through its
// methods; no other component holds authoritative copies.
type Store struct {
	mu      sync.Mutex
	state   *boardState
	persist PersistFunc

	now   func() time.Time
	newID func() uuid.UUID

	watchers    map[uuid.UUID]map[int]chan *entity.ChatMessage
	nextWatcher int
}

// New builds a store seeded from an optional persisted record. persist may
// be nil for purely in-memory use (tests, ephemeral servers).
func New(initial *gateway.Record, persist PersistFunc, opts ...Option) *Store {
	s := &Store{
		state:    stateFromRecord(initial),
		persist:  persist,
		now:      time.Now,
		newID:    uuid.New,
		watchers: make(map[uuid.UUID]map[int]chan *entity.ChatMessage),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// boardState is the immutable-once-published value behind the store.
type boardState struct {
	version   int64
	profileID uuid.UUID
	users     map[uuid.UUID]entity.User
	listings  map[uuid.UUID]entity.Listing
	requests  map[uuid.UUID]entity.BorrowRequest
	messages  []entity.ChatMessage // insertion order
}

func stateFromRecord(rec *gateway.Record) *boardState {
	st := &boardState{
		users:    make(map[uuid.UUID]entity.User),
		listings: make(map[uuid.UUID]entity.Listing),
		requests: make(map[uuid.UUID]entity.BorrowRequest),
	}
	if rec == nil {
		return st
	}

	st.version = rec.Version
	st.profileID = rec.ProfileID
	for _, u := range rec.Users {
		st.users[u.ID] = *u
	}
	for _, l := range rec.Listings {
		st.listings[l.ID] = *l
	}
	for _, r := range rec.Requests {
		st.requests[r.ID] = *r
	}
	st.messages = make([]entity.ChatMessage, 0, len(rec.Messages))
	for _, m := range sortedMessages(rec.Messages) {
		st.messages = append(st.messages, *m)
	}

	return st
}

func (st *boardState) clone() *boardState {
	next := &boardState{
		version:   st.version,
		profileID: st.profileID,
		users:     make(map[uuid.UUID]entity.User, len(st.users)),
		listings:  make(map[uuid.UUID]entity.Listing, len(st.listings)),
		requests:  make(map[uuid.UUID]entity.BorrowRequest, len(st.requests)),
		messages:  make([]entity.ChatMessage, len(st.messages)),
	}
	for id, u := range st.users {
		next.users[id] = u
	}
	for id, l := range st.listings {
		next.listings[id] = l
	}
	for id, r := range st.requests {
		next.requests[id] = r
	}
	copy(next.messages, st.messages)

	return next
}

// record flattens the state into the persisted document. Collections are
// ordered deterministically so repeated writes of the same state are
// byte-identical.
func (st *boardState) record() *gateway.Record {
	rec := &gateway.Record{
		Version:   st.version,
		ProfileID: st.profileID,
		Users:     make([]*entity.User, 0, len(st.users)),
		Listings:  make([]*entity.Listing, 0, len(st.listings)),
		Requests:  make([]*entity.BorrowRequest, 0, len(st.requests)),
		Messages:  make([]*entity.ChatMessage, 0, len(st.messages)),
	}
	for id := range st.users {
		u := st.users[id]
		rec.Users = append(rec.Users, &u)
	}
	for id := range st.listings {
		l := st.listings[id]
		rec.Listings = append(rec.Listings, &l)
	}
	for id := range st.requests {
		r := st.requests[id]
		rec.Requests = append(rec.Requests, &r)
	}
	for i := range st.messages {
		m := st.messages[i]
		rec.Messages = append(rec.Messages, &m)
	}

	sort.Slice(rec.Users, func(i, j int) bool { return rec.Users[i].ID.String() < rec.Users[j].ID.String() })
	sort.Slice(rec.Listings, func(i, j int) bool { return rec.Listings[i].ID.String() < rec.Listings[j].ID.String() })
	sort.Slice(rec.Requests, func(i, j int) bool { return rec.Requests[i].ID.String() < rec.Requests[j].ID.String() })

	return rec
}

// mutate is the single mutation entry point: clone, apply, persist, publish.
func (s *Store) mutate(fn func(st *boardState) error) error {
	next := s.state.clone()
	next.version++

	if err := fn(next); err != nil {
		return err
	}

	if s.persist != nil {
		if err := s.persist(next.record()); err != nil {
			return domainerrors.NewBackendError(err, "persisting board record failed")
		}
	}

	s.state = next

	return nil
}

// --- Identity and profile ---

// EnsureProfile returns the local identity, bootstrapping an anonymous one
// on first use. Idempotent.
func (s *Store) EnsureProfile() (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.profileID != uuid.Nil {
		if u, ok := s.state.users[s.state.profileID]; ok {
			return &u, nil
		}
	}

	var created entity.User
	err := s.mutate(func(st *boardState) error {
		now := s.now()
		created = entity.User{
			ID:          s.newID(),
			DisplayName: entity.DefaultDisplayName,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		st.users[created.ID] = created
		st.profileID = created.ID

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// Profile returns the local identity, if bootstrapped.
func (s *Store) Profile() (*entity.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.state.users[s.state.profileID]
	if !ok {
		return nil, false
	}

	return &u, true
}

// UserByID returns a snapshot of one user.
func (s *Store) UserByID(id uuid.UUID) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.state.users[id]
	if !ok {
		return nil, domainerrors.ErrUserNotFound
	}

	return &u, nil
}

// SaveProfile updates the editable profile fields of a user.
func (s *Store) SaveProfile(in gateway.SaveProfileInput) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated entity.User
	err := s.mutate(func(st *boardState) error {
		u, ok := st.users[in.UserID]
		if !ok {
			return domainerrors.ErrUserNotFound
		}

		u.DisplayName = in.DisplayName
		u.Street = in.Street
		u.PhotoURL = in.PhotoURL
		u.UpdatedAt = s.now()
		st.users[u.ID] = u
		updated = u

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// --- Listings ---

// Listings returns a snapshot of all listings, unfiltered.
func (s *Store) Listings() []*entity.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entity.Listing, 0, len(s.state.listings))
	for id := range s.state.listings {
		l := s.state.listings[id]
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}

		return out[i].ID.String() < out[j].ID.String()
	})

	return out
}

// ListingByID returns a snapshot of one listing.
func (s *Store) ListingByID(id uuid.UUID) (*entity.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.state.listings[id]
	if !ok {
		return nil, domainerrors.ErrListingNotFound
	}

	return &l, nil
}

// CreateListing adds a new available listing owned by in.OwnerID.
func (s *Store) CreateListing(in gateway.CreateListingInput) (*entity.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !geomath.Valid(in.Location) {
		return nil, domainerrors.ErrInvalidCoordinate
	}

	var created entity.Listing
	err := s.mutate(func(st *boardState) error {
		ensureUser(st, in.OwnerID, s.now())

		now := s.now()
		created = entity.Listing{
			ID:          s.newID(),
			OwnerID:     in.OwnerID,
			Title:       in.Title,
			Category:    in.Category,
			Description: in.Description,
			PhotoURL:    in.PhotoURL,
			Location:    in.Location,
			Status:      entity.ListingAvailable,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		st.listings[created.ID] = created

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// --- Borrow requests ---

// RequestByID returns a snapshot of one request.
func (s *Store) RequestByID(id uuid.UUID) (*entity.BorrowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.state.requests[id]
	if !ok {
		return nil, domainerrors.ErrRequestNotFound
	}

	return &r, nil
}

// RequestsForUser returns all requests where the user is owner or borrower,
// most recent first.
func (s *Store) RequestsForUser(userID uuid.UUID) []*entity.BorrowRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entity.BorrowRequest, 0)
	for id := range s.state.requests {
		r := s.state.requests[id]
		if r.OwnerID == userID || r.BorrowerID == userID {
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}

		return out[i].ID.String() < out[j].ID.String()
	})

	return out
}

// CreateBorrowRequest files a pending request against an available listing.
// The availability check, the active-request check and the insertion happen
// in one mutation step; this is what prevents double-booking. The entry
// transition does not reserve the listing.
func (s *Store) CreateBorrowRequest(in gateway.CreateRequestInput) (*entity.BorrowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created entity.BorrowRequest
	err := s.mutate(func(st *boardState) error {
		listing, ok := st.listings[in.ListingID]
		if !ok {
			return domainerrors.ErrListingNotFound
		}
		if listing.Status != entity.ListingAvailable {
			return domainerrors.ErrListingUnavailable
		}
		if activeRequestFor(st, listing.ID) != nil {
			return domainerrors.ErrRequestConflict
		}

		ensureUser(st, in.BorrowerID, s.now())

		now := s.now()
		created = entity.BorrowRequest{
			ID:         s.newID(),
			ListingID:  listing.ID,
			OwnerID:    listing.OwnerID,
			BorrowerID: in.BorrowerID,
			Status:     entity.RequestPending,
			Note:       in.Note,
			FromDate:   in.FromDate,
			ToDate:     in.ToDate,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		st.requests[created.ID] = created

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// Resolve applies a lifecycle action to a request together with its listing
// side effects. The status transition, listing update and, on completion,
// the party counters are one atomic step.
func (s *Store) Resolve(in gateway.ResolveRequestInput) (*entity.BorrowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var resolved entity.BorrowRequest
	err := s.mutate(func(st *boardState) error {
		req, ok := st.requests[in.RequestID]
		if !ok {
			return domainerrors.ErrRequestNotFound
		}
		listing, ok := st.listings[req.ListingID]
		if !ok {
			return domainerrors.ErrListingNotFound
		}

		now := s.now()

		switch in.Action {
		case entity.ActionAccept:
			if in.ActorID != req.OwnerID {
				return domainerrors.ErrNotParticipant
			}
			if !req.Status.CanTransitionTo(entity.RequestAccepted) {
				return domainerrors.ErrInvalidTransition
			}
			if listing.Status != entity.ListingAvailable {
				return domainerrors.ErrListingUnavailable
			}
			req.Status = entity.RequestAccepted
			listing.Status = entity.ListingReserved
			listing.UpdatedAt = now
			st.listings[listing.ID] = listing

		case entity.ActionDecline:
			if in.ActorID != req.OwnerID {
				return domainerrors.ErrNotParticipant
			}
			if !req.Status.CanTransitionTo(entity.RequestDeclined) {
				return domainerrors.ErrInvalidTransition
			}
			// The listing was never held; it stays as it is.
			req.Status = entity.RequestDeclined

		case entity.ActionHandOver:
			if in.ActorID != req.OwnerID {
				return domainerrors.ErrNotParticipant
			}
			if req.Status != entity.RequestAccepted || listing.Status != entity.ListingReserved {
				return domainerrors.ErrInvalidTransition
			}
			listing.Status = entity.ListingLent
			listing.UpdatedAt = now
			st.listings[listing.ID] = listing

		case entity.ActionComplete:
			if in.ActorID != req.OwnerID && in.ActorID != req.BorrowerID {
				return domainerrors.ErrNotParticipant
			}
			if !req.Status.CanTransitionTo(entity.RequestCompleted) {
				return domainerrors.ErrInvalidTransition
			}
			req.Status = entity.RequestCompleted
			listing.Status = entity.ListingAvailable
			listing.UpdatedAt = now
			st.listings[listing.ID] = listing

			owner := ensureUser(st, req.OwnerID, now)
			owner.ItemsLent++
			owner.UpdatedAt = now
			st.users[owner.ID] = owner

			borrower := ensureUser(st, req.BorrowerID, now)
			borrower.ItemsBorrowed++
			borrower.UpdatedAt = now
			st.users[borrower.ID] = borrower

		default:
			return domainerrors.ErrValidationFailed.WithDetails("unknown lifecycle action")
		}

		req.UpdatedAt = now
		st.requests[req.ID] = req
		resolved = req

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &resolved, nil
}

// --- Messages ---

// MessagesForRequest returns the thread of a request in CreatedAt ascending
// order, insertion order breaking ties.
func (s *Store) MessagesForRequest(requestID uuid.UUID) []*entity.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.threadLocked(requestID)
}

func (s *Store) threadLocked(requestID uuid.UUID) []*entity.ChatMessage {
	out := make([]*entity.ChatMessage, 0)
	for i := range s.state.messages {
		if s.state.messages[i].RequestID == requestID {
			m := s.state.messages[i]
			out = append(out, &m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}

// AppendMessage appends one chat line to a request thread. Only the two
// parties of the request may write to it.
func (s *Store) AppendMessage(in gateway.SendMessageInput) (*entity.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created entity.ChatMessage
	err := s.mutate(func(st *boardState) error {
		req, ok := st.requests[in.RequestID]
		if !ok {
			return domainerrors.ErrRequestNotFound
		}
		if in.SenderID != req.OwnerID && in.SenderID != req.BorrowerID {
			return domainerrors.ErrNotParticipant
		}

		created = entity.ChatMessage{
			ID:        s.newID(),
			RequestID: in.RequestID,
			SenderID:  in.SenderID,
			Text:      in.Text,
			CreatedAt: s.now(),
		}
		st.messages = append(st.messages, created)

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyLocked(&created)

	return &created, nil
}

// WatchMessages opens a change feed for a request thread. The channel first
// receives the current history (already buffered when the call returns),
// then live messages. The feed is best effort: a subscriber that stops
// draining may miss lines and is expected to re-read the thread. The stop
// function releases the watcher; the channel is closed afterwards.
func (s *Store) WatchMessages(requestID uuid.UUID) (<-chan *entity.ChatMessage, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backlog := s.threadLocked(requestID)
	ch := make(chan *entity.ChatMessage, len(backlog)+watcherBuffer)
	for _, m := range backlog {
		ch <- m
	}

	id := s.nextWatcher
	s.nextWatcher++
	if s.watchers[requestID] == nil {
		s.watchers[requestID] = make(map[int]chan *entity.ChatMessage)
	}
	s.watchers[requestID][id] = ch

	stop := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if set, ok := s.watchers[requestID]; ok {
			if c, ok := set[id]; ok {
				delete(set, id)
				close(c)
			}
			if len(set) == 0 {
				delete(s.watchers, requestID)
			}
		}
	}

	return ch, stop
}

const watcherBuffer = 64

func (s *Store) notifyLocked(msg *entity.ChatMessage) {
	for _, ch := range s.watchers[msg.RequestID] {
		m := *msg
		select {
		case ch <- &m:
		default: // slow subscriber, it will re-read the thread
		}
	}
}

// --- Snapshots ---

// Snapshot returns a deep copy of the whole board record.
func (s *Store) Snapshot() *gateway.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.record()
}

// Version returns the monotonically increasing mutation counter.
func (s *Store) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.version
}

// --- helpers ---

// ensureUser returns the stored user, registering a placeholder identity for
// ids first seen through remote data (counters start at zero).
func ensureUser(st *boardState, id uuid.UUID, now time.Time) entity.User {
	if u, ok := st.users[id]; ok {
		return u
	}

	u := entity.User{
		ID:          id,
		DisplayName: entity.DefaultDisplayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	st.users[id] = u

	return u
}

// activeRequestFor finds the pending or accepted request holding a listing,
// if any. At most one exists at a time.
func activeRequestFor(st *boardState, listingID uuid.UUID) *entity.BorrowRequest {
	for id := range st.requests {
		if st.requests[id].ListingID == listingID && st.requests[id].Status.Active() {
			r := st.requests[id]

			return &r
		}
	}

	return nil
}

func sortedMessages(msgs []*entity.ChatMessage) []*entity.ChatMessage {
	out := make([]*entity.ChatMessage, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}
