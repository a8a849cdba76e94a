package models

import "time"

// RouteProgress describes how far along its assigned route a driver is.
type RouteProgress struct {
	CurrentStopIndex int         `json:"current_stop_index"`
	ProgressPercent  float64     `json:"progress_percent"`
	NextStop         *StopWithID `json:"next_stop,omitempty"`
	TotalStops       int         `json:"total_stops"`
}

// RankedDriver is one entry of a rider's ETA-sorted driver list.
type RankedDriver struct {
	Driver     string         `json:"driver"`
	ETAMinutes int            `json:"eta_minutes"`
	Lat        float64        `json:"lat"`
	Lon        float64        `json:"lon"`
	RouteID    string         `json:"route_id,omitempty"`
	Progress   *RouteProgress `json:"route_progress,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
