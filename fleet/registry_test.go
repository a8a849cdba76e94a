package fleet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(t.TempDir())
	require.NoError(t, err)
	return r
}

func TestUpsertDriverReplacesWholesale(t *testing.T) {
	r := newTestRegistry(t)

	first, err := r.UpsertDriver("john", 36.99, -122.06, true, "route_1")
	require.NoError(t, err)
	assert.Equal(t, "route_1", first.RouteID)
	assert.False(t, first.Timestamp.IsZero())

	// A later upsert without the route id drops it; the registry does not
	// merge fields.
	second, err := r.UpsertDriver("john", 36.98, -122.05, true, "")
	require.NoError(t, err)
	assert.Empty(t, second.RouteID)

	stored, err := r.Driver("john")
	require.NoError(t, err)
	assert.Equal(t, 36.98, stored.Lat)
	assert.Empty(t, stored.RouteID)
}

func TestUpsertDriverRequiresName(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.UpsertDriver("", 36.99, -122.06, true, "")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRemoveDriver(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.UpsertDriver("john", 36.99, -122.06, true, "")
	require.NoError(t, err)

	assert.NoError(t, r.RemoveDriver("john"))
	assert.ErrorIs(t, r.RemoveDriver("john"), ErrNotFound)

	_, err = r.Driver("john")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActiveDriversFiltersInactive(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.UpsertDriver("active", 36.99, -122.06, true, "")
	require.NoError(t, err)
	_, err = r.UpsertDriver("parked", 36.98, -122.05, false, "")
	require.NoError(t, err)

	active := r.ActiveDrivers()
	assert.Len(t, active, 1)
	assert.Contains(t, active, "active")
}

func TestUpsertStopGeneratesID(t *testing.T) {
	r := newTestRegistry(t)

	stop, err := r.UpsertStop("", "Science Hill", 36.9991, -122.0586)
	require.NoError(t, err)
	assert.Regexp(t, `^stop_[0-9a-f]{8}$`, stop.ID)
	assert.Contains(t, r.Stops(), stop.ID)
}

func TestUpsertRouteValidatesStopsEagerly(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.UpsertStop("s1", "East Remote", 33.5684, -117.6320)
	require.NoError(t, err)

	_, err = r.UpsertRoute("loop", []string{"s1", "ghost"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"ghost"}, verr.InvalidIDs)
	assert.Contains(t, verr.Error(), "ghost")

	// Validation failure means the route was never created.
	assert.NotContains(t, r.Routes(), "loop")
}

func TestUpsertRouteRequiresStops(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.UpsertRoute("loop", nil)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRemoveStopLeavesDanglingRouteReference(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.UpsertStop("s1", "East Remote", 33.5684, -117.6320)
	require.NoError(t, err)
	_, err = r.UpsertStop("s2", "Roundabout", 33.5707, -117.6386)
	require.NoError(t, err)
	_, err = r.UpsertRoute("loop", []string{"s1", "s2"})
	require.NoError(t, err)

	require.NoError(t, r.RemoveStop("s1"))

	// Stop deletion does not cascade: the route keeps the dangling id.
	assert.Equal(t, []string{"s1", "s2"}, r.Routes()["loop"])

	// Materialization skips the missing stop.
	stops, err := r.RouteStops("loop")
	require.NoError(t, err)
	require.Len(t, stops, 1)
	assert.Equal(t, "s2", stops[0].ID)
}

func TestAssignRequiresExistingRoute(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Assign("john", "nope")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "nope")

	_, err = r.UpsertStop("s1", "CV1", 33.5664, -117.6319)
	require.NoError(t, err)
	_, err = r.UpsertRoute("loop", []string{"s1"})
	require.NoError(t, err)

	require.NoError(t, r.Assign("john", "loop"))
	assert.Equal(t, "loop", r.Assignments()["john"])
}

func TestRemoveAssignment(t *testing.T) {
	r := newTestRegistry(t)

	assert.ErrorIs(t, r.RemoveAssignment("john"), ErrNotFound)

	_, err := r.UpsertStop("s1", "CV1", 33.5664, -117.6319)
	require.NoError(t, err)
	_, err = r.UpsertRoute("loop", []string{"s1"})
	require.NoError(t, err)
	require.NoError(t, r.Assign("john", "loop"))

	assert.NoError(t, r.RemoveAssignment("john"))
	assert.Empty(t, r.Assignments())
}

func TestRouteStopsUnknownRoute(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.RouteStops("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSystemStatus(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.UpsertDriver("john", 36.99, -122.06, true, "")
	require.NoError(t, err)
	_, err = r.UpsertDriver("jane", 36.98, -122.05, true, "")
	require.NoError(t, err)
	_, err = r.UpsertDriver("sam", 36.97, -122.04, false, "")
	require.NoError(t, err)

	_, err = r.UpsertStop("s1", "CV1", 33.5664, -117.6319)
	require.NoError(t, err)
	_, err = r.UpsertRoute("loop", []string{"s1"})
	require.NoError(t, err)
	require.NoError(t, r.Assign("jane", "loop"))

	status := r.SystemStatus()
	assert.Equal(t, 2, status.ActiveDrivers)
	assert.Equal(t, 3, status.TotalDrivers)
	assert.Equal(t, 1, status.TotalStops)
	assert.Equal(t, 1, status.TotalRoutes)
	assert.Equal(t, 1, status.TotalAssignments)
	assert.Equal(t, []string{"jane", "john"}, status.ActiveDriverNames)
	assert.Equal(t, []string{"john"}, status.UnassignedDrivers)
}

func TestRegistryPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	r := mustRegistry(t, dir)
	_, err := r.UpsertStop("s1", "Bookstore", 36.9741, -122.0308)
	require.NoError(t, err)

	reopened := mustRegistry(t, dir)
	assert.Contains(t, reopened.Stops(), "s1")
}

func mustRegistry(t *testing.T, dir string) *Registry {
	t.Helper()
	r, err := NewRegistry(dir)
	require.NoError(t, err)
	return r
}
