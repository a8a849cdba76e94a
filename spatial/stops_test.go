package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shuttle-tracker/models"
)

func testStops() map[string]models.Stop {
	return map[string]models.Stop{
		"hill": {Name: "Science Hill", Lat: 36.9991, Lon: -122.0586},
		"book": {Name: "Bookstore", Lat: 36.9741, Lon: -122.0308},
		"east": {Name: "East Remote", Lat: 36.9910, Lon: -122.0530},
	}
}

func TestNearestStopsOrder(t *testing.T) {
	// Query from right on top of the bookstore.
	nearest := NearestStops(testStops(), 36.9741, -122.0308, 2)
	require.Len(t, nearest, 2)
	assert.Equal(t, "book", nearest[0].ID)
	assert.Equal(t, "east", nearest[1].ID)
}

func TestNearestStopsKLargerThanCollection(t *testing.T) {
	nearest := NearestStops(testStops(), 36.9741, -122.0308, 10)
	assert.Len(t, nearest, 3)
}

func TestNearestStopsEmptyCollection(t *testing.T) {
	nearest := NearestStops(map[string]models.Stop{}, 36.9741, -122.0308, 3)
	assert.Empty(t, nearest)
}

func TestNearestStopsNonPositiveK(t *testing.T) {
	nearest := NearestStops(testStops(), 36.9991, -122.0586, 0)
	require.Len(t, nearest, 1)
	assert.Equal(t, "hill", nearest[0].ID)
}
