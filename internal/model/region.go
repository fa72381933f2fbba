package model

import (
	"math"

	"github.com/rotisserie/eris"
)

// ErrInvalidRegion is returned when a region fails validation at add time.
var ErrInvalidRegion = eris.New("model: invalid region")

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Region is a named circular geofence: a center coordinate plus a radius in
// meters. Regions are immutable once added to a candidate set; callers replace
// a region by removing and re-adding it. IDs are caller-supplied and are not
// required to be unique.
type Region struct {
	ID     string     `json:"id"`
	Center Coordinate `json:"center"`
	Radius float64    `json:"radius_m"`
}

// Validate checks that the region has a usable ID, finite coordinates within
// WGS84 bounds, and a positive radius.
func (r Region) Validate() error {
	if r.ID == "" {
		return eris.Wrap(ErrInvalidRegion, "empty id")
	}
	if math.IsNaN(r.Center.Latitude) || r.Center.Latitude < -90 || r.Center.Latitude > 90 {
		return eris.Wrapf(ErrInvalidRegion, "latitude %v out of range", r.Center.Latitude)
	}
	if math.IsNaN(r.Center.Longitude) || math.IsInf(r.Center.Longitude, 0) {
		return eris.Wrapf(ErrInvalidRegion, "longitude %v not finite", r.Center.Longitude)
	}
	if math.IsNaN(r.Radius) || r.Radius <= 0 {
		return eris.Wrapf(ErrInvalidRegion, "radius %v not positive", r.Radius)
	}
	return nil
}

// Equal reports structural equality: same id, center, and radius.
func (r Region) Equal(other Region) bool {
	return r.ID == other.ID &&
		r.Center.Latitude == other.Center.Latitude &&
		r.Center.Longitude == other.Center.Longitude &&
		r.Radius == other.Radius
}
