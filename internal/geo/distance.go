// Package geo provides great-circle distance math and a static gazetteer for
// resolving Philippine place names to coordinates and back.
package geo

import "math"

// earthRadiusKm is the mean spherical Earth radius used by the haversine
// formula.
const earthRadiusKm = 6371

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceKm returns the great-circle distance in kilometres between two
// coordinates using the haversine formula. NaN inputs propagate as NaN;
// validation is the caller's responsibility.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
