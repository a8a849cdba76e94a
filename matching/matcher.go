package matching

import (
	"sort"

	"shuttle-tracker/eta"
	"shuttle-tracker/fleet"
	"shuttle-tracker/models"
)

// RankDrivers returns every active driver annotated with its ETA to the
// rider, sorted ascending by ETA. Ties keep the order drivers came out of
// the snapshot, which map iteration does not make deterministic.
func RankDrivers(registry *fleet.Registry, calc *eta.Calculator, riderLat, riderLon float64) []models.RankedDriver {
	drivers := registry.Drivers()
	stops := registry.Stops()
	routes := registry.Routes()
	assignments := registry.Assignments()

	ranked := make([]models.RankedDriver, 0)
	for name, driver := range drivers {
		if !driver.Active {
			continue
		}

		// The route id on the driver record wins; the assignment table is
		// the fallback. The two can diverge.
		routeID := driver.RouteID
		if routeID == "" {
			routeID = assignments[name]
		}

		var routeStops []models.StopWithID
		if routeID != "" {
			if stopIDs, ok := routes[routeID]; ok {
				routeStops = fleet.MaterializeStops(stopIDs, stops)
			}
		}

		entry := models.RankedDriver{
			Driver:     name,
			ETAMinutes: calc.EstimateMinutes(driver.Lat, driver.Lon, riderLat, riderLon, routeStops),
			Lat:        driver.Lat,
			Lon:        driver.Lon,
			RouteID:    routeID,
			Timestamp:  driver.Timestamp,
		}
		if len(routeStops) > 0 {
			progress := eta.RouteProgress(driver.Lat, driver.Lon, routeStops)
			entry.Progress = &progress
		}
		ranked = append(ranked, entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ETAMinutes < ranked[j].ETAMinutes
	})
	return ranked
}
