// Package geo provides the great-circle distance primitive and a bounded,
// memoizing cache for it.
package geo

import (
	"math"

	"github.com/z3r0privacy/santasleigh/internal/model"
)

// EarthRadiusKM is the sphere radius used for the haversine formula.
const EarthRadiusKM = 6371.0

// Haversine returns the great-circle distance between a and b, in
// kilometers, using Earth radius 6371km. It is symmetric and
// Haversine(a, a) == 0.
func Haversine(a, b model.Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKM * c
}
