// Package proximity derives the board view: the subset of listings visible
// to a viewer at a given coordinate, optionally narrowed by a text query.
// The filter is a pure function over its inputs and is safe to recompute on
// every location or query change.
package proximity

import (
	"sort"
	"strings"

	"github.com/paulmach/orb"

	"github.com/midvale99/ToolShare/internal/domain/entity"
	"github.com/midvale99/ToolShare/internal/geomath"
)

// NoLocationPolicy decides what the board shows before a viewer location is
// known. The two reference behaviors differ, so the policy is explicit per
// deployment and never mixed.
type NoLocationPolicy string

const (
	// ShowNone returns an empty board until a location arrives.
	ShowNone NoLocationPolicy = "none"
	// ShowAll returns every available listing as a friendly fallback.
	ShowAll NoLocationPolicy = "all"
)

// Valid reports whether p is a known policy.
func (p NoLocationPolicy) Valid() bool {
	return p == ShowNone || p == ShowAll
}

// Options tune the proximity filter.
type Options struct {
	// RadiusMeters is the visibility threshold; zero means the 200m default.
	RadiusMeters float64
	// NoLocation applies when the viewer coordinate is nil.
	NoLocation NoLocationPolicy
}

func (o Options) radius() float64 {
	if o.RadiusMeters > 0 {
		return o.RadiusMeters
	}

	return geomath.DefaultRadiusMeters
}

// NearbyAvailable filters listings down to the viewer's board:
//
//   - only status "available" listings are eligible;
//   - a listing must lie within the radius of the viewer (boundary
//     inclusive); listings with unknown distance (NaN) are excluded;
//   - a non-empty query must match title, category or description by
//     case-insensitive substring (OR across the three fields);
//   - results are ordered most-recently-created first, ties broken by ID
//     ascending for determinism.
//
// A nil viewer is resolved by the configured NoLocationPolicy. The input
// slice is never mutated.
func NearbyAvailable(listings []*entity.Listing, viewer *orb.Point, query string, opts Options) []*entity.Listing {
	if viewer == nil && opts.NoLocation == ShowNone {
		return nil
	}

	needle := strings.ToLower(strings.TrimSpace(query))

	matched := make([]*entity.Listing, 0, len(listings))
	for _, listing := range listings {
		if listing.Status != entity.ListingAvailable {
			continue
		}
		if viewer != nil && !geomath.WithinRadius(*viewer, listing.Location, opts.radius()) {
			continue
		}
		if needle != "" && !matchesQuery(listing, needle) {
			continue
		}

		matched = append(matched, listing)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}

		return matched[i].ID.String() < matched[j].ID.String()
	})

	return matched
}

func matchesQuery(listing *entity.Listing, needle string) bool {
	return strings.Contains(strings.ToLower(listing.Title), needle) ||
		strings.Contains(strings.ToLower(listing.Category), needle) ||
		strings.Contains(strings.ToLower(listing.Description), needle)
}
