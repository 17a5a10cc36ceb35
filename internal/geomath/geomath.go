// Package geomath provides pure great-circle distance computation and the
// proximity radius test used by the board. Points follow orb.Point ordering:
// longitude first, latitude second.
package geomath

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	// EarthRadiusMeters is the spherical earth radius used by Distance.
	EarthRadiusMeters = 6371000.0

	// DefaultRadiusMeters is the fixed proximity threshold defining
	// "nearby" for board visibility.
	DefaultRadiusMeters = 200.0
)

// Valid reports whether p carries finite, in-range coordinates.
func Valid(p orb.Point) bool {
	lng, lat := p[0], p[1]
	if math.IsNaN(lng) || math.IsNaN(lat) || math.IsInf(lng, 0) || math.IsInf(lat, 0) {
		return false
	}

	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Distance returns the haversine great-circle distance between a and b in
// meters. Invalid coordinates propagate as NaN; callers must treat NaN as
// "unknown" and exclude the point from proximity results.
func Distance(a, b orb.Point) float64 {
	if !Valid(a) || !Valid(b) {
		return math.NaN()
	}

	lat1Rad := a[1] * math.Pi / 180
	lng1Rad := a[0] * math.Pi / 180
	lat2Rad := b[1] * math.Pi / 180
	lng2Rad := b[0] * math.Pi / 180

	deltaLat := lat2Rad - lat1Rad
	deltaLng := lng2Rad - lng1Rad

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// WithinRadius reports whether point lies within radiusMeters of viewer,
// boundary inclusive. NaN distances never pass.
func WithinRadius(viewer, point orb.Point, radiusMeters float64) bool {
	return Distance(viewer, point) <= radiusMeters
}
