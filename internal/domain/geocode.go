package domain

import "context"

// Coordinates is a geocoded latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves a free-text address to coordinates.
// A nil result with a nil error means the address could not be resolved;
// callers treat both outcomes as "proceed without coordinates".
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Coordinates, error)
}
