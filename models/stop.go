package models

type Stop struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// StopWithID is the rider/admin-facing shape, the collection key folded in.
type StopWithID struct {
	ID string `json:"id"`
	Stop
}
