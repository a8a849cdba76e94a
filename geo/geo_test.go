package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMilesSymmetry(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"campus pair", 36.9916, -122.0608, 36.9741, -122.0308},
		{"cross hemisphere", -33.8688, 151.2093, 40.7128, -74.0060},
		{"tiny offset", 36.9916, -122.0608, 36.9917, -122.0608},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forward := DistanceMiles(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			backward := DistanceMiles(tt.lat2, tt.lon2, tt.lat1, tt.lon1)
			assert.Equal(t, forward, backward)
			assert.Greater(t, forward, 0.0)
		})
	}
}

func TestDistanceMilesZeroForIdenticalPoints(t *testing.T) {
	assert.Equal(t, 0.0, DistanceMiles(36.9916, -122.0608, 36.9916, -122.0608))
	assert.Equal(t, 0.0, DistanceMiles(0, 0, 0, 0))
}

func TestDistanceMilesKnownDistance(t *testing.T) {
	// One degree of latitude is ~69 miles on a 3956-mile sphere.
	d := DistanceMiles(36.0, -122.0, 37.0, -122.0)
	assert.InDelta(t, 69.05, d, 0.5)
}

func TestCellKey(t *testing.T) {
	key := CellKey(36.9916, -122.0608)
	assert.Len(t, key, 6)

	// Points a few meters apart land in the same cell.
	assert.Equal(t, key, CellKey(36.99161, -122.06081))

	// Points far apart do not.
	assert.NotEqual(t, key, CellKey(40.7128, -74.0060))
}
