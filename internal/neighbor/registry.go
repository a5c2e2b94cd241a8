package neighbor

import (
	"math/rand"

	"github.com/z3r0privacy/santasleigh/internal/geo"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

// Candidate pairs a neighbor instance with its class, for the controller's
// deterministic (Δ, classIndex) tie-break and per-class statistics.
type Candidate struct {
	Class Class
	N     Neighbor
}

// NewFastCandidates builds one instance of each neighborhood-radius class
// from 4.3.1-4.3.3 (single-trip, two-trip, new-trip splits) — the classes
// cheap enough to evaluate every iteration in parallel.
func NewFastCandidates(cache *geo.Cache, p *model.Partition, rng *rand.Rand) []Candidate {
	return []Candidate{
		{ClassRandomSwap, NewRandomSwap(cache, p, rng)},
		{ClassOptimalSwap, NewOptimalSwap(cache, p, rng)},
		{ClassOptimalMoveWithinTrip, NewOptimalMoveWithinTrip(cache, p, rng)},
		{ClassMoveToAnotherTrip, NewMoveGiftToAnotherTrip(cache, p, rng)},
		{ClassMoveToOptimalTrip, NewMoveGiftToOptimalTrip(cache, p, rng)},
		{ClassSwapAcrossTrips, NewSwapGiftsAcrossTrips(cache, p, rng)},
		{ClassSplitAtBestIndex, NewSplitAtBestIndex(cache, p, rng)},
		{ClassOptimalHorizontalSplit, NewOptimalHorizontalSplit(cache, p, rng)},
		{ClassOptimalVerticalSplit, NewOptimalVerticalSplit(cache, p, rng)},
	}
}

// NewSlowCandidates builds the smaller set of expensive-to-evaluate
// candidates (4.3.4, trip merges) considered only when no fast candidate
// improves on the incumbent.
func NewSlowCandidates(cache *geo.Cache, p *model.Partition, rng *rand.Rand) []Candidate {
	return []Candidate{
		{ClassOptimalMergeIntoAdjacent, NewOptimalMergeIntoAdjacent(cache, p, rng)},
	}
}

// NewFocusedFastCandidates builds the within-trip subset of the fast
// candidate set (the classes that operate on a single trip) targeting
// tripIdx specifically, rather than a uniformly-drawn trip. Used by the
// controller's bad-trip-focus phase, which biases neighbor selection
// toward the partition's current least-efficient trip.
func NewFocusedFastCandidates(cache *geo.Cache, p *model.Partition, rng *rand.Rand, tripIdx int) []Candidate {
	if tripIdx < 0 || tripIdx >= len(p.Trips) {
		return nil
	}
	trip := p.Trips[tripIdx]
	var out []Candidate

	if trip.Len() >= 2 {
		i := rng.Intn(trip.Len())
		j := distinctIntn(rng, trip.Len(), i)
		if i > j {
			i, j = j, i
		}
		out = append(out, Candidate{ClassRandomSwap, &RandomSwap{cache: cache, partition: p, tripIdx: tripIdx, i: i, j: j, ok: true}})
		out = append(out, Candidate{ClassOptimalSwap, &OptimalSwap{cache: cache, partition: p, tripIdx: tripIdx, i: i, bestJ: -1, ok: true}})
	}
	if trip.Len() >= 4 {
		i := rng.Intn(trip.Len())
		out = append(out, Candidate{ClassOptimalMoveWithinTrip, &OptimalMoveWithinTrip{cache: cache, partition: p, tripIdx: tripIdx, i: i, ok: true}})
		out = append(out, Candidate{ClassSplitAtBestIndex, &SplitAtBestIndex{cache: cache, partition: p, tripIdx: tripIdx, ok: true}})
		out = append(out, Candidate{ClassOptimalHorizontalSplit, &OptimalHorizontalSplit{cache: cache, partition: p, tripIdx: tripIdx, ok: true}})
		out = append(out, Candidate{ClassOptimalVerticalSplit, &OptimalVerticalSplit{cache: cache, partition: p, tripIdx: tripIdx, ok: true}})
	}
	return out
}
