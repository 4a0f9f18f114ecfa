// Package geo converts between the simulator's planar metre coordinates and
// geographic coordinates.
package geo

import (
	"fmt"
	"math"

	"github.com/stevengo-git/jbotevolver/internal/geom"
)

const earthRadius = 6371000.0

// Default origin of the simulated arena.
const (
	DefaultOriginLatitude  = 38.749365
	DefaultOriginLongitude = -9.153418
)

type LatLon struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l LatLon) String() string {
	return fmt.Sprintf("%.7f,%.7f", l.Latitude, l.Longitude)
}

type Converter interface {
	ToGPS(p geom.Vec2) LatLon
	FromGPS(l LatLon) geom.Vec2
}

// FlatEarth is an equirectangular projection around an origin; x grows east
// and y grows north. Accurate to well under a metre across a few kilometres.
type FlatEarth struct {
	Origin LatLon
}

func NewFlatEarth(origin LatLon) FlatEarth {
	return FlatEarth{Origin: origin}
}

func DefaultConverter() FlatEarth {
	return FlatEarth{Origin: LatLon{Latitude: DefaultOriginLatitude, Longitude: DefaultOriginLongitude}}
}

func (f FlatEarth) ToGPS(p geom.Vec2) LatLon {
	lat0 := geom.Radians(f.Origin.Latitude)
	dLat := p.Y / earthRadius
	dLon := p.X / (earthRadius * math.Cos(lat0))
	return LatLon{
		Latitude:  f.Origin.Latitude + geom.Degrees(dLat),
		Longitude: f.Origin.Longitude + geom.Degrees(dLon),
	}
}

func (f FlatEarth) FromGPS(l LatLon) geom.Vec2 {
	lat0 := geom.Radians(f.Origin.Latitude)
	y := geom.Radians(l.Latitude-f.Origin.Latitude) * earthRadius
	x := geom.Radians(l.Longitude-f.Origin.Longitude) * earthRadius * math.Cos(lat0)
	return geom.V(x, y)
}
