package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"shuttle-tracker/eta"
	"shuttle-tracker/fleet"
	"shuttle-tracker/geo"
	"shuttle-tracker/matching"
	"shuttle-tracker/models"
	"shuttle-tracker/qrcode"
	"shuttle-tracker/spatial"
)

// Health is the root liveness check.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Shuttle tracker backend is running",
		"version": "1.0.0",
	})
}

func (s *Server) APIHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"api_version": "1.0.0",
		"endpoints": []string{
			"/api/driver/start",
			"/api/driver/stop",
			"/api/driver/location",
			"/api/rider/nearby",
			"/api/admin/stops",
			"/api/admin/routes",
			"/api/admin/assignments",
		},
	})
}

// ---- driver ----

type driverRequest struct {
	Name    string   `json:"name"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	RouteID string   `json:"route_id"`
}

// DriverStart begins tracking a driver, replacing any prior record.
func (s *Server) DriverStart(w http.ResponseWriter, r *http.Request) {
	var req driverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Name == "" || req.Lat == nil || req.Lon == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields: name, lat, lon")
		return
	}

	driver, err := s.Registry.UpsertDriver(req.Name, *req.Lat, *req.Lon, true, req.RouteID)
	if err != nil {
		writeFleetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Driver " + req.Name + " started tracking",
		"timestamp": driver.Timestamp,
	})
}

// DriverStop removes the driver from tracking.
func (s *Server) DriverStop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Missing driver name")
		return
	}

	if err := s.Registry.RemoveDriver(req.Name); err != nil {
		writeFleetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Driver " + req.Name + " stopped tracking",
		"timestamp": time.Now(),
	})
}

// DriverLocation updates a driver's position. The upsert replaces the whole
// record, so the existing route id is re-read here and supplied again.
func (s *Server) DriverLocation(w http.ResponseWriter, r *http.Request) {
	var req driverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Name == "" || req.Lat == nil || req.Lon == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields: name, lat, lon")
		return
	}

	routeID := ""
	if existing, err := s.Registry.Driver(req.Name); err == nil {
		routeID = existing.RouteID
	}

	driver, err := s.Registry.UpsertDriver(req.Name, *req.Lat, *req.Lon, true, routeID)
	if err != nil {
		writeFleetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"timestamp": driver.Timestamp,
	})
}

func (s *Server) DriverStatus(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	driver, err := s.Registry.Driver(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "Driver not found")
		return
	}

	var routeInfo map[string]interface{}
	if driver.RouteID != "" {
		if stops, err := s.Registry.RouteStops(driver.RouteID); err == nil {
			routeInfo = map[string]interface{}{
				"route_id": driver.RouteID,
				"stops":    stops,
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"driver":  driver,
		"route":   routeInfo,
	})
}

func (s *Server) DriverAll(w http.ResponseWriter, r *http.Request) {
	active := s.Registry.ActiveDrivers()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"drivers": active,
		"count":   len(active),
	})
}

// ---- rider ----

// RiderNearby ranks active drivers by ETA to the rider. Responses are cached
// per geohash cell for a few seconds when Redis is configured.
func (s *Server) RiderNearby(w http.ResponseWriter, r *http.Request) {
	riderLat, riderLon, ok := parseLatLon(w, r)
	if !ok {
		return
	}

	cell := geo.CellKey(riderLat, riderLon)
	if payload, hit := s.Rank.Get(r.Context(), cell); hit {
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
		return
	}

	ranked := matching.RankDrivers(s.Registry, s.ETA, riderLat, riderLon)

	resp := map[string]interface{}{
		"success":         true,
		"riders_location": map[string]float64{"lat": riderLat, "lon": riderLon},
		"drivers":         ranked,
	}
	if len(ranked) == 0 {
		resp["message"] = "No active drivers found"
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		writeFleetError(w, err)
		return
	}
	s.Rank.Set(r.Context(), cell, payload)

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// RiderDriverRoute returns one driver's route, materialized stops and
// progress, for the rider map view.
func (s *Server) RiderDriverRoute(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	driver, err := s.Registry.Driver(name)
	if err != nil || !driver.Active {
		writeError(w, http.StatusNotFound, "Driver not found or not active")
		return
	}

	driverInfo := map[string]interface{}{
		"name":      name,
		"lat":       driver.Lat,
		"lon":       driver.Lon,
		"timestamp": driver.Timestamp,
	}

	routeID := driver.RouteID
	if routeID == "" {
		routeID = s.Registry.Assignments()[name]
	}

	var stops []models.StopWithID
	if routeID != "" {
		stops, err = s.Registry.RouteStops(routeID)
	}
	if routeID == "" || err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"driver":  driverInfo,
			"route":   nil,
			"message": "No route assigned to this driver",
		})
		return
	}

	progress := eta.RouteProgress(driver.Lat, driver.Lon, stops)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"driver":  driverInfo,
		"route": map[string]interface{}{
			"id":       routeID,
			"stops":    stops,
			"progress": progress,
		},
	})
}

func (s *Server) RiderStops(w http.ResponseWriter, r *http.Request) {
	stops := stopList(s.Registry.Stops())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stops":   stops,
		"count":   len(stops),
	})
}

// RiderNearestStops returns the n stops closest to the rider.
func (s *Server) RiderNearestStops(w http.ResponseWriter, r *http.Request) {
	riderLat, riderLon, ok := parseLatLon(w, r)
	if !ok {
		return
	}
	n := 3
	if v, err := strconv.Atoi(r.URL.Query().Get("n")); err == nil && v > 0 {
		n = v
	}

	stops := spatial.NearestStops(s.Registry.Stops(), riderLat, riderLon, n)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stops":   stops,
		"count":   len(stops),
	})
}

// ---- admin: stops ----

type stopRequest struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

func (s *Server) AdminListStops(w http.ResponseWriter, r *http.Request) {
	stops := stopList(s.Registry.Stops())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stops":   stops,
		"count":   len(stops),
	})
}

func (s *Server) AdminCreateStop(w http.ResponseWriter, r *http.Request) {
	var req stopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Name == "" || req.Lat == nil || req.Lon == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields: name, lat, lon")
		return
	}

	stop, err := s.Registry.UpsertStop(req.ID, req.Name, *req.Lat, *req.Lon)
	if err != nil {
		writeFleetError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"stop":    stop,
		"message": "Stop \"" + req.Name + "\" added successfully",
	})
}

func (s *Server) AdminUpdateStop(w http.ResponseWriter, r *http.Request) {
	stopID := mux.Vars(r)["stop_id"]

	var req stopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Name == "" || req.Lat == nil || req.Lon == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields: name, lat, lon")
		return
	}

	stop, err := s.Registry.UpsertStop(stopID, req.Name, *req.Lat, *req.Lon)
	if err != nil {
		writeFleetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stop":    stop,
		"message": "Stop \"" + req.Name + "\" updated successfully",
	})
}

func (s *Server) AdminDeleteStop(w http.ResponseWriter, r *http.Request) {
	stopID := mux.Vars(r)["stop_id"]

	if err := s.Registry.RemoveStop(stopID); err != nil {
		writeFleetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Stop " + stopID + " deleted successfully",
	})
}

// AdminStopQRCode renders the printable QR code for a stop sign.
func (s *Server) AdminStopQRCode(w http.ResponseWriter, r *http.Request) {
	stopID := mux.Vars(r)["stop_id"]

	if _, ok := s.Registry.Stops()[stopID]; !ok {
		writeError(w, http.StatusNotFound, "Stop not found")
		return
	}

	size := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil {
		size = v
	}
	png, err := qrcode.StopPNG(s.PublicURL, stopID, size)
	if err != nil {
		writeFleetError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// ---- admin: routes ----

type routeRequest struct {
	ID    string   `json:"id"`
	Stops []string `json:"stops"`
}

func (s *Server) AdminListRoutes(w http.ResponseWriter, r *http.Request) {
	routes := s.Registry.Routes()
	stops := s.Registry.Stops()

	ids := make([]string, 0, len(routes))
	for id := range routes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	formatted := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		routeStops := fleet.MaterializeStops(routes[id], stops)
		formatted = append(formatted, map[string]interface{}{
			"id":         id,
			"stops":      routeStops,
			"stop_count": len(routeStops),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"routes":  formatted,
		"count":   len(formatted),
	})
}

func (s *Server) AdminCreateRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	routeID, err := s.Registry.UpsertRoute(req.ID, req.Stops)
	if err != nil {
		writeFleetError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"route":   map[string]interface{}{"id": routeID, "stops": req.Stops},
		"message": "Route " + routeID + " created successfully",
	})
}

func (s *Server) AdminUpdateRoute(w http.ResponseWriter, r *http.Request) {
	routeID := mux.Vars(r)["route_id"]

	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if _, err := s.Registry.UpsertRoute(routeID, req.Stops); err != nil {
		writeFleetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"route":   map[string]interface{}{"id": routeID, "stops": req.Stops},
		"message": "Route " + routeID + " updated successfully",
	})
}

func (s *Server) AdminDeleteRoute(w http.ResponseWriter, r *http.Request) {
	routeID := mux.Vars(r)["route_id"]

	if err := s.Registry.RemoveRoute(routeID); err != nil {
		writeFleetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Route " + routeID + " deleted successfully",
	})
}

// ---- admin: assignments ----

func (s *Server) AdminListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments := s.Registry.Assignments()
	drivers := s.Registry.Drivers()
	routes := s.Registry.Routes()

	names := make([]string, 0, len(assignments))
	for name := range assignments {
		names = append(names, name)
	}
	sort.Strings(names)

	formatted := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		routeID := assignments[name]
		driver, hasDriver := drivers[name]
		_, routeExists := routes[routeID]

		entry := map[string]interface{}{
			"driver_name":   name,
			"route_id":      routeID,
			"driver_active": hasDriver && driver.Active,
			"route_exists":  routeExists,
		}
		if hasDriver {
			entry["last_seen"] = driver.Timestamp
		}
		formatted = append(formatted, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"assignments": formatted,
		"count":       len(formatted),
	})
}

func (s *Server) AdminCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DriverName string `json:"driver_name"`
		RouteID    string `json:"route_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := s.Registry.Assign(req.DriverName, req.RouteID); err != nil {
		writeFleetError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"assignment": map[string]string{
			"driver_name": req.DriverName,
			"route_id":    req.RouteID,
		},
		"message": "Driver " + req.DriverName + " assigned to route " + req.RouteID,
	})
}

func (s *Server) AdminDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	driverName := mux.Vars(r)["driver_name"]

	if err := s.Registry.RemoveAssignment(driverName); err != nil {
		writeFleetError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Assignment for driver " + driverName + " removed",
	})
}

func (s *Server) AdminStatus(w http.ResponseWriter, r *http.Request) {
	status := s.Registry.SystemStatus()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":            true,
		"system_status":      status,
		"active_drivers":     status.ActiveDriverNames,
		"unassigned_drivers": status.UnassignedDrivers,
	})
}

// ---- helpers ----

func parseLatLon(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")
	if latStr == "" || lonStr == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters: lat, lon")
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "Invalid lat/lon values")
		return 0, 0, false
	}
	return lat, lon, true
}

func stopList(stops map[string]models.Stop) []models.StopWithID {
	ids := make([]string, 0, len(stops))
	for id := range stops {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	list := make([]models.StopWithID, 0, len(ids))
	for _, id := range ids {
		list = append(list, models.StopWithID{ID: id, Stop: stops[id]})
	}
	return list
}
