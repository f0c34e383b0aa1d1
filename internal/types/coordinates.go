package types

import "math"

// keyScale fixes the precision of CoordKey to 4 decimal places (~11 m)
const keyScale = 1e4

type Coords struct {
	Latitude  float64
	Longitude float64
}

func NewCoords(latitude, longitude float64) Coords {
	return Coords{
		Latitude:  latitude,
		Longitude: longitude,
	}
}

// CoordKey identifies a coordinate rounded to 4 decimal places.
// It is comparable and safe to use as a map key.
type CoordKey struct {
	Lat int64
	Lon int64
}

// Key returns the rounded identity of the coordinate
func (c Coords) Key() CoordKey {
	return CoordKey{
		Lat: int64(math.Round(c.Latitude * keyScale)),
		Lon: int64(math.Round(c.Longitude * keyScale)),
	}
}

// GeoJSON returns the coordinate in GeoJSON [longitude, latitude] order
func (c Coords) GeoJSON() [2]float64 {
	return [2]float64{c.Longitude, c.Latitude}
}
