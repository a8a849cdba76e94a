package eta

import (
	"math"

	"shuttle-tracker/geo"
	"shuttle-tracker/models"
)

// DefaultAverageSpeedMPH is the assumed shuttle speed when none is
// configured. ETAs are an approximation over a fixed speed, not a
// measurement of how fast the driver has actually been moving.
const DefaultAverageSpeedMPH = 20.0

type Calculator struct {
	averageSpeedMPH float64
}

func NewCalculator(averageSpeedMPH float64) *Calculator {
	if averageSpeedMPH <= 0 {
		averageSpeedMPH = DefaultAverageSpeedMPH
	}
	return &Calculator{averageSpeedMPH: averageSpeedMPH}
}

// EstimateMinutes returns the whole-minute ETA from the driver's position to
// the rider's. With route stops the driver is routed through the closest
// upcoming stop first; without, the estimate is the direct distance. The
// result is never below 1.
func (c *Calculator) EstimateMinutes(driverLat, driverLon, riderLat, riderLon float64, routeStops []models.StopWithID) int {
	var totalDistance float64
	if len(routeStops) > 0 {
		closest, _ := ClosestStopFrom(driverLat, driverLon, routeStops, 0)
		totalDistance = geo.DistanceMiles(driverLat, driverLon, closest.Lat, closest.Lon) +
			geo.DistanceMiles(closest.Lat, closest.Lon, riderLat, riderLon)
	} else {
		totalDistance = geo.DistanceMiles(driverLat, driverLon, riderLat, riderLon)
	}

	minutes := int(math.Round(totalDistance / c.averageSpeedMPH * 60))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// ClosestStopFrom scans stops from startIndex to the end and returns the one
// nearest the given position, with its index. Stops before startIndex are
// never candidates: a driver is assumed to only move forward along its
// route, so a driver that loops back is not detected.
func ClosestStopFrom(lat, lon float64, stops []models.StopWithID, startIndex int) (models.StopWithID, int) {
	var closest models.StopWithID
	closestIndex := startIndex
	minDistance := math.Inf(1)

	for i := startIndex; i < len(stops); i++ {
		d := geo.DistanceMiles(lat, lon, stops[i].Lat, stops[i].Lon)
		if d < minDistance {
			minDistance = d
			closest = stops[i]
			closestIndex = i
		}
	}
	return closest, closestIndex
}

// RouteProgress reports how far along its stop sequence a driver is, as the
// index of the closest upcoming stop and a percentage of the route covered.
// A single-stop route always reports 0%.
func RouteProgress(driverLat, driverLon float64, routeStops []models.StopWithID) models.RouteProgress {
	if len(routeStops) == 0 {
		return models.RouteProgress{}
	}

	closest, index := ClosestStopFrom(driverLat, driverLon, routeStops, 0)

	percent := float64(index) / math.Max(1, float64(len(routeStops)-1)) * 100
	percent = math.Min(100, math.Max(0, percent))

	next := closest
	return models.RouteProgress{
		CurrentStopIndex: index,
		ProgressPercent:  percent,
		NextStop:         &next,
		TotalStops:       len(routeStops),
	}
}
