package impl

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midvale99/ToolShare/internal/domain/entity"
	domainerrors "github.com/midvale99/ToolShare/internal/domain/errors"
	"github.com/midvale99/ToolShare/internal/usecase"
)

func TestRequestLifecycleThroughService(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	owner := uuid.New()
	borrower := uuid.New()
	listing := seedListingAt(t, gw, owner, orb.Point{13.4, 52.5})

	srv := NewRequestService(gw, testLogger())

	req, err := srv.Create(ctx, &usecase.CreateRequestInput{
		ListingID:  listing.ID,
		BorrowerID: borrower,
		Note:       "weekend project",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestPending, req.Status)

	accepted, err := srv.Resolve(ctx, req.ID, owner, entity.ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestAccepted, accepted.Status)

	completed, err := srv.Resolve(ctx, req.ID, borrower, entity.ActionComplete)
	require.NoError(t, err)
	assert.Equal(t, entity.RequestCompleted, completed.Status)

	mine, err := srv.ListForUser(ctx, borrower)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, req.ID, mine[0].ID)
}

func TestCreateRequestValidation(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	srv := NewRequestService(gw, testLogger())

	_, err := srv.Create(ctx, &usecase.CreateRequestInput{BorrowerID: uuid.New()})
	require.Error(t, err)
	assert.True(t, domainerrors.IsValidation(err))
	assert.Zero(t, gw.calls)

	from := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(-24 * time.Hour)
	_, err = srv.Create(ctx, &usecase.CreateRequestInput{
		ListingID:  uuid.New(),
		BorrowerID: uuid.New(),
		FromDate:   &from,
		ToDate:     &to,
	})
	require.Error(t, err)
	assert.True(t, domainerrors.IsValidation(err))
	assert.Zero(t, gw.calls)
}

func TestResolveValidation(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	srv := NewRequestService(gw, testLogger())

	_, err := srv.Resolve(ctx, uuid.New(), uuid.New(), entity.RequestAction("burn"))
	require.Error(t, err)
	assert.True(t, domainerrors.IsValidation(err))
	assert.Zero(t, gw.calls)

	_, err = srv.ListForUser(ctx, uuid.Nil)
	require.Error(t, err)
	assert.True(t, domainerrors.IsValidation(err))
}
