package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"shuttle-tracker/cache"
	"shuttle-tracker/eta"
	"shuttle-tracker/fleet"
)

// Server holds the dependencies the HTTP layer needs. Everything stateful
// is injected; the handlers themselves only translate between HTTP and the
// core operations.
type Server struct {
	Registry       *fleet.Registry
	ETA            *eta.Calculator
	Rank           *cache.RankCache
	PublicURL      string
	AllowedOrigins []string
}

func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", s.Health).Methods("GET")
	router.HandleFunc("/api/health", s.APIHealth).Methods("GET")

	// Driver endpoints
	router.HandleFunc("/api/driver/start", s.DriverStart).Methods("POST")
	router.HandleFunc("/api/driver/stop", s.DriverStop).Methods("POST")
	router.HandleFunc("/api/driver/location", s.DriverLocation).Methods("POST")
	router.HandleFunc("/api/driver/status/{name}", s.DriverStatus).Methods("GET")
	router.HandleFunc("/api/driver/all", s.DriverAll).Methods("GET")

	// Rider endpoints
	router.HandleFunc("/api/rider/nearby", s.RiderNearby).Methods("GET")
	router.HandleFunc("/api/rider/driver/{name}/route", s.RiderDriverRoute).Methods("GET")
	router.HandleFunc("/api/rider/stops", s.RiderStops).Methods("GET")
	router.HandleFunc("/api/rider/stops/nearest", s.RiderNearestStops).Methods("GET")

	// Admin endpoints
	router.HandleFunc("/api/admin/stops", s.AdminListStops).Methods("GET")
	router.HandleFunc("/api/admin/stops", s.AdminCreateStop).Methods("POST")
	router.HandleFunc("/api/admin/stops/{stop_id}", s.AdminUpdateStop).Methods("PUT")
	router.HandleFunc("/api/admin/stops/{stop_id}", s.AdminDeleteStop).Methods("DELETE")
	router.HandleFunc("/api/admin/stops/{stop_id}/qrcode", s.AdminStopQRCode).Methods("GET")
	router.HandleFunc("/api/admin/routes", s.AdminListRoutes).Methods("GET")
	router.HandleFunc("/api/admin/routes", s.AdminCreateRoute).Methods("POST")
	router.HandleFunc("/api/admin/routes/{route_id}", s.AdminUpdateRoute).Methods("PUT")
	router.HandleFunc("/api/admin/routes/{route_id}", s.AdminDeleteRoute).Methods("DELETE")
	router.HandleFunc("/api/admin/assignments", s.AdminListAssignments).Methods("GET")
	router.HandleFunc("/api/admin/assignments", s.AdminCreateAssignment).Methods("POST")
	router.HandleFunc("/api/admin/assignments/{driver_name}", s.AdminDeleteAssignment).Methods("DELETE")
	router.HandleFunc("/api/admin/status", s.AdminStatus).Methods("GET")

	// CORS for the rider and admin frontends
	cors := handlers.CORS(
		handlers.AllowedOrigins(s.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	return cors(router)
}
