package proximity

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midvale99/ToolShare/internal/domain/entity"
)

func newListing(title, category, desc string, at orb.Point, status entity.ListingStatus, createdAt time.Time) *entity.Listing {
	return &entity.Listing{
		ID:          uuid.New(),
		OwnerID:     uuid.New(),
		Title:       title,
		Category:    category,
		Description: desc,
		Location:    at,
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestNearbyAvailable_RadiusAndStatus(t *testing.T) {
	viewer := orb.Point{0, 0}
	now := time.Now()

	near := newListing("Cordless Drill", "drill", "18V with charger", orb.Point{0.00179, 0}, entity.ListingAvailable, now)
	far := newListing("Ladder", "ladder", "", orb.Point{0.002, 0}, entity.ListingAvailable, now)
	reserved := newListing("Saw", "saw", "", orb.Point{0, 0}, entity.ListingReserved, now)
	lent := newListing("Sander", "sander", "", orb.Point{0, 0}, entity.ListingLent, now)

	got := NearbyAvailable([]*entity.Listing{near, far, reserved, lent}, &viewer, "", Options{})

	require.Len(t, got, 1)
	assert.Equal(t, near.ID, got[0].ID)
}

func TestNearbyAvailable_QueryMatchesAnyField(t *testing.T) {
	viewer := orb.Point{0, 0}
	now := time.Now()

	drill := newListing("Cordless Drill", "power tools", "18V with charger", orb.Point{0, 0}, entity.ListingAvailable, now)
	ladder := newListing("Ladder", "garden", "3m aluminium", orb.Point{0, 0}, entity.ListingAvailable, now)

	listings := []*entity.Listing{drill, ladder}

	// Title match, case-insensitive.
	got := NearbyAvailable(listings, &viewer, "DRILL", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, drill.ID, got[0].ID)

	// Category match.
	got = NearbyAvailable(listings, &viewer, "garden", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, ladder.ID, got[0].ID)

	// Description match.
	got = NearbyAvailable(listings, &viewer, "charger", Options{})
	require.Len(t, got, 1)
	assert.Equal(t, drill.ID, got[0].ID)

	// No match.
	assert.Empty(t, NearbyAvailable(listings, &viewer, "pressure washer", Options{}))

	// Blank query matches everything.
	assert.Len(t, NearbyAvailable(listings, &viewer, "   ", Options{}), 2)
}

func TestNearbyAvailable_Ordering(t *testing.T) {
	viewer := orb.Point{0, 0}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	oldest := newListing("Oldest", "tool", "", orb.Point{0, 0}, entity.ListingAvailable, base)
	newest := newListing("Newest", "tool", "", orb.Point{0, 0}, entity.ListingAvailable, base.Add(2*time.Hour))

	tieA := newListing("Tie A", "tool", "", orb.Point{0, 0}, entity.ListingAvailable, base.Add(time.Hour))
	tieB := newListing("Tie B", "tool", "", orb.Point{0, 0}, entity.ListingAvailable, base.Add(time.Hour))

	got := NearbyAvailable([]*entity.Listing{oldest, tieB, newest, tieA}, &viewer, "", Options{})
	require.Len(t, got, 4)

	assert.Equal(t, newest.ID, got[0].ID)
	assert.Equal(t, oldest.ID, got[3].ID)

	// Equal CreatedAt: ID ascending for determinism.
	assert.Less(t, got[1].ID.String(), got[2].ID.String())
}

func TestNearbyAvailable_NoViewerPolicies(t *testing.T) {
	now := time.Now()
	listing := newListing("Drill", "drill", "", orb.Point{0, 0}, entity.ListingAvailable, now)
	listings := []*entity.Listing{listing}

	assert.Empty(t, NearbyAvailable(listings, nil, "", Options{NoLocation: ShowNone}))
	assert.Len(t, NearbyAvailable(listings, nil, "", Options{NoLocation: ShowAll}), 1)

	// The query still applies under the friendly fallback.
	assert.Empty(t, NearbyAvailable(listings, nil, "ladder", Options{NoLocation: ShowAll}))
}

func TestNearbyAvailable_UnknownDistanceExcluded(t *testing.T) {
	viewer := orb.Point{0, 0}
	broken := newListing("Broken", "tool", "", orb.Point{math.NaN(), 0}, entity.ListingAvailable, time.Now())

	assert.Empty(t, NearbyAvailable([]*entity.Listing{broken}, &viewer, "", Options{}))
}

func TestNearbyAvailable_CustomRadius(t *testing.T) {
	viewer := orb.Point{0, 0}
	far := newListing("Far", "tool", "", orb.Point{0.002, 0}, entity.ListingAvailable, time.Now())

	assert.Empty(t, NearbyAvailable([]*entity.Listing{far}, &viewer, "", Options{}))
	assert.Len(t, NearbyAvailable([]*entity.Listing{far}, &viewer, "", Options{RadiusMeters: 500}), 1)
}
