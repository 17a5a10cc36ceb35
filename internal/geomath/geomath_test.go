package geomath

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name        string
		a           orb.Point
		b           orb.Point
		expectedMin float64
		expectedMax float64
	}{
		{
			name:        "same point",
			a:           orb.Point{121.5654, 25.0330},
			b:           orb.Point{121.5654, 25.0330},
			expectedMin: 0,
			expectedMax: 0.01,
		},
		{
			name:        "about 200m east on the equator",
			a:           orb.Point{0, 0},
			b:           orb.Point{0.0018, 0},
			expectedMin: 195,
			expectedMax: 205,
		},
		{
			name:        "about 222m east on the equator",
			a:           orb.Point{0, 0},
			b:           orb.Point{0.002, 0},
			expectedMin: 218,
			expectedMax: 226,
		},
		{
			name:        "Taipei Station to Ximending (~5km)",
			a:           orb.Point{121.5170, 25.0478},
			b:           orb.Point{121.5654, 25.0330},
			expectedMin: 5000,
			expectedMax: 6000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Distance(tt.a, tt.b)
			assert.GreaterOrEqual(t, d, tt.expectedMin)
			assert.LessOrEqual(t, d, tt.expectedMax)
		})
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := orb.Point{13.3777, 52.5163}
	b := orb.Point{13.4050, 52.5200}

	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
	assert.Zero(t, Distance(a, a))
}

func TestDistanceInvalidCoordinates(t *testing.T) {
	valid := orb.Point{0, 0}

	for _, p := range []orb.Point{
		{math.NaN(), 0},
		{0, math.NaN()},
		{181, 0},
		{0, 91},
		{math.Inf(1), 0},
	} {
		assert.True(t, math.IsNaN(Distance(valid, p)), "point %v", p)
		assert.True(t, math.IsNaN(Distance(p, valid)), "point %v", p)
	}
}

func TestWithinRadius(t *testing.T) {
	viewer := orb.Point{0, 0}

	// ~199m east: inside the 200m default.
	near := orb.Point{0.00179, 0}
	assert.True(t, WithinRadius(viewer, near, DefaultRadiusMeters))

	// ~222m east: outside.
	far := orb.Point{0.002, 0}
	assert.False(t, WithinRadius(viewer, far, DefaultRadiusMeters))

	// Boundary is inclusive: a radius equal to the exact distance passes.
	d := Distance(viewer, far)
	assert.True(t, WithinRadius(viewer, far, d))

	// NaN distances never pass.
	assert.False(t, WithinRadius(viewer, orb.Point{math.NaN(), 0}, DefaultRadiusMeters))
}
