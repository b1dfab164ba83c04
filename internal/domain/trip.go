// Package domain contains the core data types for the visa route planner.
// This package has no dependencies on other internal packages and is
// imported by every other internal package.
package domain

// Coordinates is a [longitude, latitude] pair in degrees.
type Coordinates [2]float64

// Lon returns the longitude component.
func (c Coordinates) Lon() float64 { return c[0] }

// Lat returns the latitude component.
func (c Coordinates) Lat() float64 { return c[1] }

// Dates holds the optional arrival and departure dates of a route entry as
// ISO "2006-01-02" strings. No ordering is enforced between them or against
// neighbouring entries.
type Dates struct {
	Arrival   string `json:"arrival,omitempty"`
	Departure string `json:"departure,omitempty"`
}

// Country is a single country selected into a route.
// ID is the geometry-native identifier of the map layer and is unique within
// a route. ISO is resolved once at selection time and may be empty when the
// geometry id has no mapping.
type Country struct {
	Name        string      `json:"name"`
	ID          string      `json:"id"`
	ISO         string      `json:"iso,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	Dates       *Dates      `json:"dates,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

// CountryPatch carries the editable fields of a route entry.
// Nil fields are left untouched.
type CountryPatch struct {
	Dates *Dates
	Notes *string
}

// Snapshot is the persisted form of a trip: one per nationality.
type Snapshot struct {
	Route     []Country `json:"route"`
	IsPlanned bool      `json:"isPlanned"`
}
