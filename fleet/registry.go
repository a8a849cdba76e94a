package fleet

import (
	"crypto/rand"
	"encoding/hex"
	"sort"
	"time"

	"shuttle-tracker/models"
	"shuttle-tracker/store"
)

// Registry exposes the domain operations over the four persisted
// collections. Each operation touches one collection per critical section;
// cross-category checks (route stops, assignment routes) read a snapshot
// first and write afterwards, so there is no cross-category atomicity.
type Registry struct {
	drivers     *store.Collection[models.Driver]
	stops       *store.Collection[models.Stop]
	routes      *store.Collection[[]string]
	assignments *store.Collection[string]
}

func NewRegistry(dataDir string) (*Registry, error) {
	drivers, err := store.Open[models.Driver](dataDir, "drivers")
	if err != nil {
		return nil, err
	}
	stops, err := store.Open[models.Stop](dataDir, "stops")
	if err != nil {
		return nil, err
	}
	routes, err := store.Open[[]string](dataDir, "routes")
	if err != nil {
		return nil, err
	}
	assignments, err := store.Open[string](dataDir, "assignments")
	if err != nil {
		return nil, err
	}
	return &Registry{drivers: drivers, stops: stops, routes: routes, assignments: assignments}, nil
}

// ---- drivers ----

// UpsertDriver replaces the driver record wholesale and stamps the current
// time. Callers updating only the location must re-supply the route id they
// want to keep; the registry does not merge fields.
func (r *Registry) UpsertDriver(name string, lat, lon float64, active bool, routeID string) (models.Driver, error) {
	if name == "" {
		return models.Driver{}, validationf("driver name is required")
	}
	driver := models.Driver{
		Name:      name,
		Lat:       lat,
		Lon:       lon,
		Timestamp: time.Now(),
		Active:    active,
		RouteID:   routeID,
	}
	err := r.drivers.Mutate(func(drivers map[string]models.Driver) {
		drivers[name] = driver
	})
	return driver, err
}

func (r *Registry) RemoveDriver(name string) error {
	found := false
	err := r.drivers.Mutate(func(drivers map[string]models.Driver) {
		if _, ok := drivers[name]; ok {
			found = true
			delete(drivers, name)
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (r *Registry) Drivers() map[string]models.Driver {
	return r.drivers.Load()
}

func (r *Registry) Driver(name string) (models.Driver, error) {
	driver, ok := r.drivers.Load()[name]
	if !ok {
		return models.Driver{}, ErrNotFound
	}
	return driver, nil
}

func (r *Registry) ActiveDrivers() map[string]models.Driver {
	active := make(map[string]models.Driver)
	for name, driver := range r.drivers.Load() {
		if driver.Active {
			active[name] = driver
		}
	}
	return active
}

// ---- stops ----

func (r *Registry) UpsertStop(id, name string, lat, lon float64) (models.StopWithID, error) {
	if name == "" {
		return models.StopWithID{}, validationf("stop name is required")
	}
	if id == "" {
		id = newID("stop")
	}
	stop := models.Stop{Name: name, Lat: lat, Lon: lon}
	err := r.stops.Mutate(func(stops map[string]models.Stop) {
		stops[id] = stop
	})
	return models.StopWithID{ID: id, Stop: stop}, err
}

// RemoveStop deletes the stop only. Routes that reference the id keep the
// dangling reference; there is no cascade.
func (r *Registry) RemoveStop(id string) error {
	found := false
	err := r.stops.Mutate(func(stops map[string]models.Stop) {
		if _, ok := stops[id]; ok {
			found = true
			delete(stops, id)
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (r *Registry) Stops() map[string]models.Stop {
	return r.stops.Load()
}

// ---- routes ----

// UpsertRoute replaces the route's stop sequence wholesale. Every stop id
// must exist at call time; the check is not repeated later, so a stop
// deleted afterwards leaves a dangling reference.
func (r *Registry) UpsertRoute(id string, stopIDs []string) (string, error) {
	if len(stopIDs) == 0 {
		return "", validationf("route must have at least one stop")
	}
	stops := r.stops.Load()
	var invalid []string
	for _, stopID := range stopIDs {
		if _, ok := stops[stopID]; !ok {
			invalid = append(invalid, stopID)
		}
	}
	if len(invalid) > 0 {
		return "", &ValidationError{Msg: "invalid stop ids", InvalidIDs: invalid}
	}
	if id == "" {
		id = newID("route")
	}
	err := r.routes.Mutate(func(routes map[string][]string) {
		routes[id] = stopIDs
	})
	return id, err
}

func (r *Registry) RemoveRoute(id string) error {
	found := false
	err := r.routes.Mutate(func(routes map[string][]string) {
		if _, ok := routes[id]; ok {
			found = true
			delete(routes, id)
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (r *Registry) Routes() map[string][]string {
	return r.routes.Load()
}

// RouteStops materializes a route's ordered stop records, skipping any stop
// id that no longer exists.
func (r *Registry) RouteStops(routeID string) ([]models.StopWithID, error) {
	stopIDs, ok := r.routes.Load()[routeID]
	if !ok {
		return nil, ErrNotFound
	}
	return MaterializeStops(stopIDs, r.stops.Load()), nil
}

// MaterializeStops resolves stop ids against a stop snapshot, preserving
// order and dropping ids with no record.
func MaterializeStops(stopIDs []string, stops map[string]models.Stop) []models.StopWithID {
	var resolved []models.StopWithID
	for _, id := range stopIDs {
		if stop, ok := stops[id]; ok {
			resolved = append(resolved, models.StopWithID{ID: id, Stop: stop})
		}
	}
	return resolved
}

// ---- assignments ----

// Assign binds a driver to a route in the assignment table. The route must
// exist when the call is made; the existence check and the write are
// separate critical sections.
func (r *Registry) Assign(driverName, routeID string) error {
	if driverName == "" || routeID == "" {
		return validationf("driver_name and route_id are required")
	}
	if _, ok := r.routes.Load()[routeID]; !ok {
		return validationf("route %s does not exist", routeID)
	}
	return r.assignments.Mutate(func(assignments map[string]string) {
		assignments[driverName] = routeID
	})
}

func (r *Registry) RemoveAssignment(driverName string) error {
	found := false
	err := r.assignments.Mutate(func(assignments map[string]string) {
		if _, ok := assignments[driverName]; ok {
			found = true
			delete(assignments, driverName)
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (r *Registry) Assignments() map[string]string {
	return r.assignments.Load()
}

// ---- status ----

type Status struct {
	ActiveDrivers     int      `json:"active_drivers"`
	TotalDrivers      int      `json:"total_drivers"`
	TotalStops        int      `json:"total_stops"`
	TotalRoutes       int      `json:"total_routes"`
	TotalAssignments  int      `json:"total_assignments"`
	ActiveDriverNames []string `json:"-"`
	UnassignedDrivers []string `json:"-"`
}

// SystemStatus aggregates collection counts plus which active drivers have
// no entry in the assignment table. Name lists are sorted for stable output.
func (r *Registry) SystemStatus() Status {
	drivers := r.drivers.Load()
	assignments := r.assignments.Load()

	status := Status{
		TotalDrivers:      len(drivers),
		TotalStops:        len(r.stops.Load()),
		TotalRoutes:       len(r.routes.Load()),
		TotalAssignments:  len(assignments),
		ActiveDriverNames: []string{},
		UnassignedDrivers: []string{},
	}
	for name, driver := range drivers {
		if !driver.Active {
			continue
		}
		status.ActiveDrivers++
		status.ActiveDriverNames = append(status.ActiveDriverNames, name)
		if _, ok := assignments[name]; !ok {
			status.UnassignedDrivers = append(status.UnassignedDrivers, name)
		}
	}
	sort.Strings(status.ActiveDriverNames)
	sort.Strings(status.UnassignedDrivers)
	return status
}

func newID(prefix string) string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return prefix + "_" + hex.EncodeToString(buf)
}
