// Package neighbor implements the closed family of local-move operators
// ("neighbors") the simulated-annealing controller selects from each
// iteration. Every neighbor follows the same two-phase contract: CostDelta
// computes (and memoizes) the cost change its move would cause, Apply
// mutates the bound partition to realize it.
package neighbor

import (
	"errors"
	"math/rand"

	"github.com/z3r0privacy/santasleigh/internal/costmodel"
	"github.com/z3r0privacy/santasleigh/internal/geo"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

// ErrInfeasible is returned by Apply when, due to concurrent evaluation of
// other candidates, the move computed during CostDelta is no longer valid
// against the current partition state.
var ErrInfeasible = errors.New("neighbor: infeasible move")

// Neighbor is the contract every move operator implements.
type Neighbor interface {
	// CostDelta is idempotent and memoized: the first call computes the
	// delta (and any derived indices Apply needs); later calls return the
	// same value. Returns 0 when no valid move exists for the chosen
	// parameters.
	CostDelta() float64
	// Apply mutates the bound partition to realize the move computed by
	// CostDelta. Undefined behavior if called before CostDelta.
	Apply() error
}

// Class identifies a neighbor's kind for deterministic tie-breaking and
// statistics histograms.
type Class int

const (
	ClassRandomSwap Class = iota
	ClassOptimalSwap
	ClassOptimalMoveWithinTrip
	ClassMoveToAnotherTrip
	ClassMoveToOptimalTrip
	ClassSwapAcrossTrips
	ClassSplitAtBestIndex
	ClassOptimalHorizontalSplit
	ClassOptimalVerticalSplit
	ClassOptimalMergeIntoAdjacent
	classCount
)

func (c Class) String() string {
	names := [...]string{
		"random_swap",
		"optimal_swap",
		"optimal_move_within_trip",
		"move_to_another_trip",
		"move_to_optimal_trip",
		"swap_across_trips",
		"split_at_best_index",
		"optimal_horizontal_split",
		"optimal_vertical_split",
		"optimal_merge_into_adjacent",
	}
	if int(c) < 0 || int(c) >= len(names) {
		return "unknown"
	}
	return names[c]
}

// ClassCount is the number of neighbor classes in the closed registry.
const ClassCount = int(classCount)

// maxDrawAttempts bounds "pick a random trip until it satisfies some
// precondition" loops before falling back to a deterministic scan.
const maxDrawAttempts = 50

// cloneTrip returns a deep-enough copy of t (new Stops slice, same Gift
// values) so a candidate can be evaluated in a working copy.
func cloneTrip(t *model.Trip) *model.Trip {
	stops := make([]model.Stop, len(t.Stops))
	copy(stops, t.Stops)
	return &model.Trip{ID: t.ID, Stops: stops}
}

// pickTripIndex returns the index of a trip satisfying pred, drawn
// uniformly at random with bounded retries, falling back to the first
// matching trip found by a deterministic scan.
func pickTripIndex(p *model.Partition, rng *rand.Rand, pred func(*model.Trip) bool) (int, bool) {
	n := len(p.Trips)
	if n == 0 {
		return -1, false
	}
	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		i := rng.Intn(n)
		if pred(p.Trips[i]) {
			return i, true
		}
	}
	for i, t := range p.Trips {
		if pred(t) {
			return i, true
		}
	}
	return -1, false
}

// pickTwoTripIndices returns two distinct trip indices both satisfying
// pred, drawn with bounded retries and a deterministic fallback.
func pickTwoTripIndices(p *model.Partition, rng *rand.Rand, pred func(*model.Trip) bool) (int, int, bool) {
	first, ok := pickTripIndex(p, rng, pred)
	if !ok {
		return -1, -1, false
	}
	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		j := rng.Intn(len(p.Trips))
		if j != first && pred(p.Trips[j]) {
			return first, j, true
		}
	}
	for j, t := range p.Trips {
		if j != first && pred(t) {
			return first, j, true
		}
	}
	return -1, -1, false
}

// distinctIntn draws an int in [0,n) different from exclude, with bounded
// retries then deterministic fallback.
func distinctIntn(rng *rand.Rand, n, exclude int) int {
	if n <= 1 {
		return 0
	}
	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		v := rng.Intn(n)
		if v != exclude {
			return v
		}
	}
	for v := 0; v < n; v++ {
		if v != exclude {
			return v
		}
	}
	return exclude
}

// swapCostDelta computes the cost delta of exchanging stops at indices i
// and j (i<j) within trip, using the closed-form adjacent formula when
// j==i+1 and a before/after full recomputation otherwise.
func swapCostDelta(cache *geo.Cache, t *model.Trip, i, j int) float64 {
	if j == i+1 {
		a := costmodel.PrevPoint(t, i)
		b := t.Stops[i].Gift.Point
		c := t.Stops[j].Gift.Point
		d := costmodel.NextPoint(t, j)
		wA := costmodel.WeightFromPrefix(t, i)
		wB := t.Stops[i].Gift.Weight
		wC := t.Stops[j].Gift.Weight
		return costmodel.SwapAdjacentDelta(cache, a, b, c, d, wA, wB, wC)
	}

	before := costmodel.TripCost(cache, t)
	swapped := cloneTrip(t)
	swapped.Stops[i], swapped.Stops[j] = swapped.Stops[j], swapped.Stops[i]
	after := costmodel.TripCost(cache, swapped)
	return after - before
}
