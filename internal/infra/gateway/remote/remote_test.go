package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midvale99/ToolShare/internal/domain/entity"
	domainerrors "github.com/midvale99/ToolShare/internal/domain/errors"
	"github.com/midvale99/ToolShare/internal/domain/gateway"
)

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"code":    status,
		"message": "Success",
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"code":    status,
		"message": http.StatusText(status),
		"error":   map[string]string{"code": code, "details": details},
	})
}

func TestSignInDecodesUser(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/identity", r.URL.Path)
		writeEnvelope(w, http.StatusOK, entity.User{ID: id, DisplayName: "Neighbour"})
	}))
	defer srv.Close()

	g, err := New(srv.URL, nil, Options{})
	require.NoError(t, err)

	user, err := g.SignIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Neighbour", user.DisplayName)
}

func TestLoadListingsPassesViewer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/listings/raw", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		assert.NotEmpty(t, r.URL.Query().Get("lng"))
		writeEnvelope(w, http.StatusOK, []entity.Listing{
			{ID: uuid.New(), Title: "Drill", Status: entity.ListingAvailable},
		})
	}))
	defer srv.Close()

	g, err := New(srv.URL, nil, Options{})
	require.NoError(t, err)

	viewer := orb.Point{13.405, 52.52}
	listings, err := g.LoadListings(context.Background(), &viewer)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Drill", listings[0].Title)
}

func TestResolveRequestUsesActionPath(t *testing.T) {
	reqID := uuid.New()
	actor := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/requests/"+reqID.String()+"/accept", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, actor.String(), body["actor_id"])

		writeEnvelope(w, http.StatusOK, entity.BorrowRequest{ID: reqID, Status: entity.RequestAccepted})
	}))
	defer srv.Close()

	g, err := New(srv.URL, nil, Options{})
	require.NoError(t, err)

	resolved, err := g.ResolveRequest(context.Background(), gateway.ResolveRequestInput{
		RequestID: reqID,
		ActorID:   actor,
		Action:    entity.ActionAccept,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestAccepted, resolved.Status)
}

func TestBusinessErrorsMapBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusConflict, "LISTING_UNAVAILABLE", "")
	}))
	defer srv.Close()

	g, err := New(srv.URL, nil, Options{})
	require.NoError(t, err)

	_, err = g.CreateBorrowRequest(context.Background(), gateway.CreateRequestInput{
		ListingID:  uuid.New(),
		BorrowerID: uuid.New(),
	})
	require.Error(t, err)
	assert.True(t, domainerrors.IsInvariantViolation(err))
}

func TestUnreachableBoardIsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	g, err := New(srv.URL, nil, Options{Timeout: 500 * time.Millisecond})
	require.NoError(t, err)

	_, err = g.SignIn(context.Background())
	require.Error(t, err)
	assert.True(t, domainerrors.IsBackendUnavailable(err))
}

func TestSubscribeMessagesBacklogThenPoll(t *testing.T) {
	reqID := uuid.New()
	sender := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := entity.ChatMessage{ID: uuid.New(), RequestID: reqID, SenderID: sender, Text: "first", CreatedAt: base}
	second := entity.ChatMessage{ID: uuid.New(), RequestID: reqID, SenderID: sender, Text: "second", CreatedAt: base.Add(time.Second)}

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/requests/"+reqID.String()+"/messages", r.URL.Path)
		calls++
		if calls == 1 {
			writeEnvelope(w, http.StatusOK, []entity.ChatMessage{first})

			return
		}
		writeEnvelope(w, http.StatusOK, []entity.ChatMessage{first, second})
	}))
	defer srv.Close()

	g, err := New(srv.URL, nil, Options{PollInterval: 10 * time.Millisecond})
	require.NoError(t, err)

	ch, stop, err := g.SubscribeMessages(context.Background(), reqID)
	require.NoError(t, err)
	defer stop()

	got := <-ch
	assert.Equal(t, "first", got.Text)

	select {
	case got = <-ch:
		assert.Equal(t, "second", got.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("polled message not delivered")
	}
}
