package geo

import (
	"math"

	"github.com/mmcloughlin/geohash"
)

// earthRadiusMiles is the mean Earth radius used by the haversine formula.
const earthRadiusMiles = 3956.0

// cellPrecision gives ~1.2km geohash cells, coarse enough that riders
// standing near each other share a ranking cache entry.
const cellPrecision = 6

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// DistanceMiles returns the great-circle distance in miles between two
// coordinates given in degrees. Inputs are not range-checked; out-of-range
// coordinates produce a numerically valid but meaningless result.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusMiles * c
}

// CellKey encodes a position into its geohash cell, used to bucket nearby
// rider queries onto one cache key.
func CellKey(lat, lon float64) string {
	return geohash.EncodeWithPrecision(lat, lon, cellPrecision)
}
