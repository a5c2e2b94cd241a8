package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

func TestHaversineSymmetricAndZero(t *testing.T) {
	a := model.Point{Lat: 10, Lon: 20}
	b := model.Point{Lat: -5, Lon: 100}

	assert.InDelta(t, Haversine(a, b), Haversine(b, a), 1e-9)
	assert.InDelta(t, 0, Haversine(a, a), 1e-9)
}

func TestHaversineNorthPoleToOrigin(t *testing.T) {
	d := Haversine(model.NorthPole, model.Point{Lat: 0, Lon: 0})
	// A quarter great-circle: (pi/2) * R
	expected := (EarthRadiusKM * 3.14159265358979) / 2
	assert.InDelta(t, expected, d, 5)
}

func TestCacheHitsAndMisses(t *testing.T) {
	c := NewCache(8)
	a := model.Point{Lat: 1, Lon: 1}
	b := model.Point{Lat: 2, Lon: 2}

	d1 := c.Distance(a, b)
	assert.EqualValues(t, 0, c.Hits())
	assert.EqualValues(t, 1, c.Misses())

	d2 := c.Distance(b, a) // reversed order must hit the same slot
	assert.Equal(t, d1, d2)
	assert.EqualValues(t, 1, c.Hits())
	assert.EqualValues(t, 1, c.Misses())
	assert.Equal(t, 1, c.Len())
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(2)
	p := func(i int) model.Point { return model.Point{Lat: float64(i), Lon: float64(i)} }
	origin := model.Point{Lat: 0, Lon: 0}

	c.Distance(origin, p(1))
	c.Distance(origin, p(2))
	c.Distance(origin, p(3)) // evicts (origin,p(1))

	assert.Equal(t, 2, c.Len())

	missesBefore := c.Misses()
	c.Distance(origin, p(1)) // must miss again, was evicted
	assert.Equal(t, missesBefore+1, c.Misses())
}
