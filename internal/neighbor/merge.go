package neighbor

import (
	"math/rand"
	"sort"

	"github.com/z3r0privacy/santasleigh/internal/costmodel"
	"github.com/z3r0privacy/santasleigh/internal/geo"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

// median returns the median of xs, computed on a sorted copy; xs itself is
// left unchanged.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func minOf(xs ...float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// mergeCandidateTrip finds a trip that is both lighter and shorter than
// the partition's typical trip, per the merge heuristic: weight <=
// min(500, median weight, mean weight) and length <= min(50, median
// length, mean length), chosen by a bounded random scan.
func mergeCandidateTrip(p *model.Partition, rng *rand.Rand) (int, bool) {
	if len(p.Trips) < 2 {
		return -1, false
	}
	weights := make([]float64, len(p.Trips))
	lengths := make([]float64, len(p.Trips))
	for i, t := range p.Trips {
		weights[i] = t.Weight()
		lengths[i] = float64(t.Len())
	}
	weightCap := minOf(500, median(weights), mean(weights))
	lengthCap := minOf(50, median(lengths), mean(lengths))

	return pickTripIndex(p, rng, func(t *model.Trip) bool {
		return t.Weight() <= weightCap && float64(t.Len()) <= lengthCap
	})
}

// OptimalMergeIntoAdjacent collapses a lightly-loaded candidate trip by
// redistributing its stops, heaviest first, into the geographically
// nearest trips with capacity to spare. Fails atomically (Δ=0, no-op) if
// any stop cannot be placed.
type OptimalMergeIntoAdjacent struct {
	cache        *geo.Cache
	partition    *model.Partition
	candidateIdx int
	ok, found    bool
	working      *model.Partition
	candidateID  int64
	delta        *float64
}

// NewOptimalMergeIntoAdjacent selects a merge candidate trip via the
// weight/length heuristic scan.
func NewOptimalMergeIntoAdjacent(cache *geo.Cache, p *model.Partition, rng *rand.Rand) *OptimalMergeIntoAdjacent {
	n := &OptimalMergeIntoAdjacent{cache: cache, partition: p}
	idx, ok := mergeCandidateTrip(p, rng)
	if !ok {
		return n
	}
	n.candidateIdx, n.ok = idx, true
	return n
}


func clonePartition(p *model.Partition) *model.Partition {
	trips := make([]*model.Trip, len(p.Trips))
	for i, t := range p.Trips {
		trips[i] = cloneTrip(t)
	}
	return model.NewPartition(trips)
}

func (n *OptimalMergeIntoAdjacent) CostDelta() float64 {
	if n.delta != nil {
		return *n.delta
	}
	total := 0.0
	if n.ok {
		n.candidateID = n.partition.Trips[n.candidateIdx].ID
		working := clonePartition(n.partition)
		candIdx := working.TripIndex(n.candidateID)
		candidate := working.Trips[candIdx]

		order := make([]int, candidate.Len())
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(i, j int) bool {
			return candidate.Stops[order[i]].Gift.Weight > candidate.Stops[order[j]].Gift.Weight
		})

		ok := true
		// Remove stops from the candidate in descending-weight order,
		// re-inserting each into the best geographically-filtered
		// destination among the OTHER working trips.
		remaining := append([]model.Stop(nil), candidate.Stops...)
		for _, idx := range order {
			gift := remaining[idx].Gift

			removeCost := costmodel.RemoveCost(n.cache, candidate, indexOfGift(candidate, gift.ID))
			destIdx, pos, insertCost, found := bestMergeDestination(n.cache, working, n.candidateID, gift)
			if !found {
				ok = false
				break
			}
			total += removeCost + insertCost

			candidate.DeleteAt(indexOfGift(candidate, gift.ID))
			dest := working.Trips[destIdx]
			if pos > dest.Len() {
				pos = dest.Len()
			}
			dest.InsertAt(pos, model.Stop{Gift: gift})
		}

		if ok && candidate.Len() == 0 {
			n.found = true
			n.working = working
		}
	}
	if !n.found {
		total = 0
	}
	n.delta = &total
	return total
}

// indexOfGift returns the index of the stop carrying the given gift id, or
// -1. Linear scan: candidate trips are small by the merge heuristic.
func indexOfGift(t *model.Trip, giftID int64) int {
	for i, s := range t.Stops {
		if s.Gift.ID == giftID {
			return i
		}
	}
	return -1
}

func bestMergeDestination(cache *geo.Cache, working *model.Partition, excludeTripID int64, gift model.Gift) (destIdx, pos int, cost float64, found bool) {
	for _, tol := range []float64{0, 1, 2, 5, 10, 30, 60, 180} {
		bestSet := false
		for idx, t := range working.Trips {
			if t.ID == excludeTripID {
				continue
			}
			if t.Weight()+gift.Weight > model.WeightLimit {
				continue
			}
			minLon, maxLon := tripLonRange(t)
			if !lonOverlap(minLon, maxLon, gift.Point.Lon, tol) {
				continue
			}
			p, c, ok := bestInsertIndex(cache, t, gift, nil)
			if !ok {
				continue
			}
			if !bestSet || c < cost {
				destIdx, pos, cost, found, bestSet = idx, p, c, true, true
			}
		}
		if found {
			return
		}
	}
	return 0, 0, 0, false
}

func (n *OptimalMergeIntoAdjacent) Apply() error {
	n.CostDelta()
	if !n.ok || !n.found {
		return nil
	}
	newCandIdx := n.working.TripIndex(n.candidateID)
	if newCandIdx >= 0 {
		n.working.DropTrip(newCandIdx)
	}
	n.partition.Trips = n.working.Trips
	return nil
}
