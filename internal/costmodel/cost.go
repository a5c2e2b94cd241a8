// Package costmodel computes weighted-trip-length and the incremental
// deltas the neighbor operators need.
package costmodel

import (
	"github.com/z3r0privacy/santasleigh/internal/geo"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

// TripCost computes the full weighted trip length: the sum, over every
// segment P->s1->s2->...->sn->P, of segment length times the weight still
// on board (remaining gifts plus sleigh tare), the return leg included.
func TripCost(cache *geo.Cache, t *model.Trip) float64 {
	if len(t.Stops) == 0 {
		return 0
	}

	total := t.Weight() + model.SleighWeight
	prev := model.NorthPole
	onBoard := total
	cost := 0.0

	for _, s := range t.Stops {
		cost += cache.Distance(prev, s.Gift.Point) * onBoard
		onBoard -= s.Gift.Weight
		prev = s.Gift.Point
	}
	cost += cache.Distance(prev, model.NorthPole) * model.SleighWeight

	return cost
}

// TourOfThree computes d(a,b)*wA + d(b,c)*(wA-wB), the cost of visiting b
// then c, carrying weight wA on the a->b leg and dropping wB at b.
func TourOfThree(cache *geo.Cache, a, b, c model.Point, wA, wB float64) float64 {
	return cache.Distance(a, b)*wA + cache.Distance(b, c)*(wA-wB)
}

// SwapAdjacentDelta is the closed-form cost change from swapping the two
// middle stops b and c of the 4-point segment a->b->c->d, where wA is the
// on-board weight carried on the a->b leg, and wB, wC are the weights of b
// and c.
func SwapAdjacentDelta(cache *geo.Cache, a, b, c, d model.Point, wA, wB, wC float64) float64 {
	before := TourOfThree(cache, a, b, c, wA, wB) + cache.Distance(c, d)*(wA-wB-wC)
	after := TourOfThree(cache, a, c, b, wA, wC) + cache.Distance(b, d)*(wA-wB-wC)
	return after - before
}

// PrevPoint returns the location preceding index i in the trip, or
// NorthPole when i is 0.
func PrevPoint(t *model.Trip, i int) model.Point {
	if i == 0 {
		return model.NorthPole
	}
	return t.Stops[i-1].Gift.Point
}

// NextPoint returns the location following index i in the trip, or
// NorthPole when i is the last stop.
func NextPoint(t *model.Trip, i int) model.Point {
	if i == len(t.Stops)-1 {
		return model.NorthPole
	}
	return t.Stops[i+1].Gift.Point
}

// WeightFromPrefix returns the total weight of stops at index i and after,
// plus sleigh tare — the weight carried on the segment arriving at i.
func WeightFromPrefix(t *model.Trip, i int) float64 {
	w := model.SleighWeight
	for _, s := range t.Stops[i:] {
		w += s.Gift.Weight
	}
	return w
}

var prevPoint = PrevPoint
var nextPoint = NextPoint
var weightFromPrefix = WeightFromPrefix

// InsertCost computes the marginal delta of inserting gift before position
// i in trip (0 <= i < len(trip.Stops)). Insertion after the last stop is
// never considered — the formulation only evaluates insertion before an
// existing position.
func InsertCost(cache *geo.Cache, t *model.Trip, i int, gift model.Gift) float64 {
	prev := prevPoint(t, i)
	next := t.Stops[i].Gift.Point

	// Weight already on board arriving at i, before the insertion.
	onBoardBefore := weightFromPrefix(t, i)

	// (i) the added weight is carried across the entire prefix distance
	// from the origin to the point preceding i.
	prefixDetour := 0.0
	cur := model.NorthPole
	for _, s := range t.Stops[:i] {
		prefixDetour += cache.Distance(cur, s.Gift.Point) * gift.Weight
		cur = s.Gift.Point
	}

	// (ii) local detour around position i, minus (iii) the removed direct
	// edge prev->next.
	detour := TourOfThree(cache, prev, gift.Point, next, onBoardBefore+gift.Weight, gift.Weight) -
		cache.Distance(prev, next)*onBoardBefore

	return prefixDetour + detour
}

// RemoveCost computes the marginal delta of removing the stop at index i.
func RemoveCost(cache *geo.Cache, t *model.Trip, i int) float64 {
	s := t.Stops[i]
	prev := prevPoint(t, i)
	next := nextPoint(t, i)

	onBoardAfter := weightFromPrefix(t, i) - s.Gift.Weight

	// Weight relief across the prefix distance.
	relief := 0.0
	cur := model.NorthPole
	for _, st := range t.Stops[:i] {
		relief -= cache.Distance(cur, st.Gift.Point) * s.Gift.Weight
		cur = st.Gift.Point
	}

	// Remove the old tour-of-three around i, add the new direct edge.
	oldTour := TourOfThree(cache, prev, s.Gift.Point, next, onBoardAfter+s.Gift.Weight, s.Gift.Weight)
	newEdge := cache.Distance(prev, next) * onBoardAfter

	return relief + newEdge - oldTour
}
