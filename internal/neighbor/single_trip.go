package neighbor

import (
	"math/rand"

	"github.com/z3r0privacy/santasleigh/internal/costmodel"
	"github.com/z3r0privacy/santasleigh/internal/geo"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

// RandomSwap exchanges two distinct, uniformly chosen stops within one
// trip. Cannot violate capacity since it moves no weight between trips.
type RandomSwap struct {
	cache     *geo.Cache
	partition *model.Partition
	tripIdx   int
	i, j      int
	ok        bool
	delta     *float64
}

// NewRandomSwap picks a trip with >= 2 stops and two distinct indices.
func NewRandomSwap(cache *geo.Cache, p *model.Partition, rng *rand.Rand) *RandomSwap {
	n := &RandomSwap{cache: cache, partition: p}
	idx, found := pickTripIndex(p, rng, func(t *model.Trip) bool { return t.Len() >= 2 })
	if !found {
		return n
	}
	trip := p.Trips[idx]
	i := rng.Intn(trip.Len())
	j := distinctIntn(rng, trip.Len(), i)
	if i > j {
		i, j = j, i
	}
	n.tripIdx, n.i, n.j, n.ok = idx, i, j, true
	return n
}

func (n *RandomSwap) CostDelta() float64 {
	if n.delta != nil {
		return *n.delta
	}
	var d float64
	if n.ok && n.i != n.j {
		trip := n.partition.Trips[n.tripIdx]
		d = swapCostDelta(n.cache, trip, n.i, n.j)
	}
	n.delta = &d
	return d
}

func (n *RandomSwap) Apply() error {
	n.CostDelta()
	if !n.ok || n.i == n.j {
		return nil
	}
	if n.tripIdx >= len(n.partition.Trips) {
		return ErrInfeasible
	}
	trip := n.partition.Trips[n.tripIdx]
	if n.j >= trip.Len() {
		return ErrInfeasible
	}
	trip.Stops[n.i], trip.Stops[n.j] = trip.Stops[n.j], trip.Stops[n.i]
	trip.Stops[n.i].TripID = trip.ID
	trip.Stops[n.j].TripID = trip.ID
	return nil
}

// OptimalSwap scans all other stops in the same trip as a chosen first
// stop and selects the best swap partner.
type OptimalSwap struct {
	cache     *geo.Cache
	partition *model.Partition
	tripIdx   int
	i         int
	bestJ     int
	ok        bool
	delta     *float64
}

// NewOptimalSwap picks a trip with >= 2 stops and a first stop index.
func NewOptimalSwap(cache *geo.Cache, p *model.Partition, rng *rand.Rand) *OptimalSwap {
	n := &OptimalSwap{cache: cache, partition: p, bestJ: -1}
	idx, found := pickTripIndex(p, rng, func(t *model.Trip) bool { return t.Len() >= 2 })
	if !found {
		return n
	}
	trip := p.Trips[idx]
	n.tripIdx = idx
	n.i = rng.Intn(trip.Len())
	n.ok = true
	return n
}

func (n *OptimalSwap) CostDelta() float64 {
	if n.delta != nil {
		return *n.delta
	}
	best := 0.0
	if n.ok {
		trip := n.partition.Trips[n.tripIdx]
		for j := 0; j < trip.Len(); j++ {
			if j == n.i {
				continue
			}
			lo, hi := n.i, j
			if lo > hi {
				lo, hi = hi, lo
			}
			d := swapCostDelta(n.cache, trip, lo, hi)
			if n.bestJ == -1 || d < best {
				best = d
				n.bestJ = j
			}
		}
	}
	n.delta = &best
	return best
}

func (n *OptimalSwap) Apply() error {
	n.CostDelta()
	if !n.ok || n.bestJ == -1 {
		return nil
	}
	if n.tripIdx >= len(n.partition.Trips) {
		return ErrInfeasible
	}
	trip := n.partition.Trips[n.tripIdx]
	if n.i >= trip.Len() || n.bestJ >= trip.Len() {
		return ErrInfeasible
	}
	trip.Stops[n.i], trip.Stops[n.bestJ] = trip.Stops[n.bestJ], trip.Stops[n.i]
	trip.Stops[n.i].TripID = trip.ID
	trip.Stops[n.bestJ].TripID = trip.ID
	return nil
}

// OptimalMoveWithinTrip removes a chosen stop and re-inserts it at the
// best position elsewhere in the same trip.
type OptimalMoveWithinTrip struct {
	cache       *geo.Cache
	partition   *model.Partition
	tripIdx     int
	i           int
	bestInsert  int
	found       bool
	ok          bool
	delta       *float64
}

// NewOptimalMoveWithinTrip picks a trip with >= 4 stops and a stop index.
func NewOptimalMoveWithinTrip(cache *geo.Cache, p *model.Partition, rng *rand.Rand) *OptimalMoveWithinTrip {
	n := &OptimalMoveWithinTrip{cache: cache, partition: p}
	idx, ok := pickTripIndex(p, rng, func(t *model.Trip) bool { return t.Len() >= 4 })
	if !ok {
		return n
	}
	trip := p.Trips[idx]
	n.tripIdx = idx
	n.i = rng.Intn(trip.Len())
	n.ok = true
	return n
}

func (n *OptimalMoveWithinTrip) CostDelta() float64 {
	if n.delta != nil {
		return *n.delta
	}
	total := 0.0
	if n.ok {
		trip := n.partition.Trips[n.tripIdx]
		removeCost := costmodel.RemoveCost(n.cache, trip, n.i)

		residual := cloneTrip(trip)
		removed := residual.DeleteAt(n.i)

		best := 0.0
		bestSet := false
		for pos := 0; pos < residual.Len(); pos++ {
			// No-op position: inserting back where it came from.
			if pos == n.i {
				continue
			}
			c := costmodel.InsertCost(n.cache, residual, pos, removed.Gift)
			if !bestSet || c < best {
				best = c
				bestSet = true
				n.bestInsert = pos
				n.found = true
			}
		}
		if n.found {
			total = removeCost + best
		}
	}
	n.delta = &total
	return total
}

func (n *OptimalMoveWithinTrip) Apply() error {
	n.CostDelta()
	if !n.ok || !n.found {
		return nil
	}
	if n.tripIdx >= len(n.partition.Trips) {
		return ErrInfeasible
	}
	trip := n.partition.Trips[n.tripIdx]
	if n.i >= trip.Len() {
		return ErrInfeasible
	}
	s := trip.DeleteAt(n.i)
	pos := n.bestInsert
	if pos > trip.Len() {
		pos = trip.Len()
	}
	trip.InsertAt(pos, s)
	return nil
}
