package models

import "time"

type Driver struct {
	Name      string    `json:"name"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Timestamp time.Time `json:"timestamp"`
	Active    bool      `json:"active"`
	RouteID   string    `json:"route_id,omitempty"`
}
