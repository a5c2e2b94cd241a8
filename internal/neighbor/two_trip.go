package neighbor

import (
	"math/rand"

	"github.com/z3r0privacy/santasleigh/internal/costmodel"
	"github.com/z3r0privacy/santasleigh/internal/geo"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

// bestInsertIndex returns the lowest-cost position (and its cost) to
// insert gift into trip, skipping any position in exclude. Only positions
// before an existing stop are considered — inserting after the last stop
// is never evaluated.
func bestInsertIndex(cache *geo.Cache, trip *model.Trip, gift model.Gift, exclude map[int]bool) (int, float64, bool) {
	best := 0.0
	bestPos := -1
	for pos := 0; pos < trip.Len(); pos++ {
		if exclude[pos] {
			continue
		}
		c := costmodel.InsertCost(cache, trip, pos, gift)
		if bestPos == -1 || c < best {
			best = c
			bestPos = pos
		}
	}
	return bestPos, best, bestPos != -1
}

// MoveGiftToAnotherTrip moves one stop from a source trip to a uniformly
// chosen destination trip with enough spare capacity.
type MoveGiftToAnotherTrip struct {
	cache       *geo.Cache
	partition   *model.Partition
	srcIdx      int
	srcStop     int
	dstIdx      int
	dstInsert   int
	ok          bool
	found       bool
	delta       *float64
}

// NewMoveGiftToAnotherTrip picks a source trip with >= 2 stops and a stop
// within it, then a uniformly chosen destination with capacity to spare.
func NewMoveGiftToAnotherTrip(cache *geo.Cache, p *model.Partition, rng *rand.Rand) *MoveGiftToAnotherTrip {
	n := &MoveGiftToAnotherTrip{cache: cache, partition: p, dstInsert: -1}
	srcIdx, ok := pickTripIndex(p, rng, func(t *model.Trip) bool { return t.Len() >= 2 })
	if !ok {
		return n
	}
	src := p.Trips[srcIdx]
	stopIdx := rng.Intn(src.Len())
	gift := src.Stops[stopIdx].Gift

	dstIdx, ok := pickTripIndex(p, rng, func(t *model.Trip) bool {
		return t.ID != src.ID && t.Weight()+gift.Weight <= model.WeightLimit
	})
	if !ok {
		return n
	}

	n.srcIdx, n.srcStop, n.dstIdx, n.ok = srcIdx, stopIdx, dstIdx, true
	return n
}

func (n *MoveGiftToAnotherTrip) CostDelta() float64 {
	if n.delta != nil {
		return *n.delta
	}
	total := 0.0
	if n.ok {
		src := n.partition.Trips[n.srcIdx]
		dst := n.partition.Trips[n.dstIdx]
		gift := src.Stops[n.srcStop].Gift

		removeCost := costmodel.RemoveCost(n.cache, src, n.srcStop)
		pos, insertCost, found := bestInsertIndex(n.cache, dst, gift, nil)
		if found {
			n.dstInsert = pos
			n.found = true
			total = removeCost + insertCost
		}
	}
	n.delta = &total
	return total
}

func (n *MoveGiftToAnotherTrip) Apply() error {
	n.CostDelta()
	if !n.ok || !n.found {
		return nil
	}
	if n.srcIdx >= len(n.partition.Trips) || n.dstIdx >= len(n.partition.Trips) {
		return ErrInfeasible
	}
	src := n.partition.Trips[n.srcIdx]
	dst := n.partition.Trips[n.dstIdx]
	if n.srcStop >= src.Len() {
		return ErrInfeasible
	}
	gift := src.Stops[n.srcStop].Gift
	if dst.Weight()+gift.Weight > model.WeightLimit {
		return ErrInfeasible
	}
	s := src.DeleteAt(n.srcStop)
	pos := n.dstInsert
	if pos > dst.Len() {
		pos = dst.Len()
	}
	dst.InsertAt(pos, s)
	return nil
}

// lonOverlap reports whether lon falls within [minLon-tol, maxLon+tol].
func lonOverlap(minLon, maxLon, lon, tol float64) bool {
	return lon >= minLon-tol && lon <= maxLon+tol
}

func tripLonRange(t *model.Trip) (float64, float64) {
	if t.Len() == 0 {
		return 0, 0
	}
	minLon, maxLon := t.Stops[0].Gift.Point.Lon, t.Stops[0].Gift.Point.Lon
	for _, s := range t.Stops[1:] {
		if s.Gift.Point.Lon < minLon {
			minLon = s.Gift.Point.Lon
		}
		if s.Gift.Point.Lon > maxLon {
			maxLon = s.Gift.Point.Lon
		}
	}
	return minLon, maxLon
}

// MoveGiftToOptimalTrip moves one stop from a source trip to the
// geographically-filtered, minimum-insert-cost destination trip.
type MoveGiftToOptimalTrip struct {
	cache     *geo.Cache
	partition *model.Partition
	srcIdx    int
	srcStop   int
	dstIdx    int
	dstInsert int
	ok        bool
	found     bool
	delta     *float64
}

// NewMoveGiftToOptimalTrip picks a source trip with >= 2 stops and a stop
// within it.
func NewMoveGiftToOptimalTrip(cache *geo.Cache, p *model.Partition, rng *rand.Rand) *MoveGiftToOptimalTrip {
	n := &MoveGiftToOptimalTrip{cache: cache, partition: p, dstInsert: -1}
	srcIdx, ok := pickTripIndex(p, rng, func(t *model.Trip) bool { return t.Len() >= 2 })
	if !ok {
		return n
	}
	n.srcIdx = srcIdx
	n.srcStop = rng.Intn(p.Trips[srcIdx].Len())
	n.ok = true
	return n
}

func (n *MoveGiftToOptimalTrip) CostDelta() float64 {
	if n.delta != nil {
		return *n.delta
	}
	total := 0.0
	if n.ok {
		src := n.partition.Trips[n.srcIdx]
		gift := src.Stops[n.srcStop].Gift

		// Widen the longitude tolerance until at least one destination
		// candidate satisfies both the geographic and capacity filters.
		var candidates []int
		for _, tol := range []float64{0, 1, 2, 5, 10, 30, 60, 180} {
			candidates = candidates[:0]
			for idx, t := range n.partition.Trips {
				if t.ID == src.ID {
					continue
				}
				if t.Weight()+gift.Weight > model.WeightLimit {
					continue
				}
				minLon, maxLon := tripLonRange(t)
				if lonOverlap(minLon, maxLon, gift.Point.Lon, tol) {
					candidates = append(candidates, idx)
				}
			}
			if len(candidates) > 0 {
				break
			}
		}

		bestDelta := 0.0
		bestSet := false
		removeCost := costmodel.RemoveCost(n.cache, src, n.srcStop)
		for _, idx := range candidates {
			pos, insertCost, found := bestInsertIndex(n.cache, n.partition.Trips[idx], gift, nil)
			if !found {
				continue
			}
			d := removeCost + insertCost
			if !bestSet || d < bestDelta {
				bestDelta = d
				bestSet = true
				n.dstIdx = idx
				n.dstInsert = pos
				n.found = true
			}
		}
		total = bestDelta
	}
	n.delta = &total
	return total
}

func (n *MoveGiftToOptimalTrip) Apply() error {
	n.CostDelta()
	if !n.ok || !n.found {
		return nil
	}
	if n.srcIdx >= len(n.partition.Trips) || n.dstIdx >= len(n.partition.Trips) {
		return ErrInfeasible
	}
	src := n.partition.Trips[n.srcIdx]
	dst := n.partition.Trips[n.dstIdx]
	if n.srcStop >= src.Len() {
		return ErrInfeasible
	}
	gift := src.Stops[n.srcStop].Gift
	if dst.Weight()+gift.Weight > model.WeightLimit {
		return ErrInfeasible
	}
	s := src.DeleteAt(n.srcStop)
	pos := n.dstInsert
	if pos > dst.Len() {
		pos = dst.Len()
	}
	dst.InsertAt(pos, s)
	return nil
}

// SwapGiftsAcrossTrips exchanges one stop between two distinct trips,
// reinserting each at its best position in the other trip.
type SwapGiftsAcrossTrips struct {
	cache       *geo.Cache
	partition   *model.Partition
	aIdx, bIdx  int
	aStop, bStop int
	aInsert, bInsert int
	ok, found   bool
	delta       *float64
}

// NewSwapGiftsAcrossTrips picks two distinct trips with >= 3 stops each
// and a stop within each.
func NewSwapGiftsAcrossTrips(cache *geo.Cache, p *model.Partition, rng *rand.Rand) *SwapGiftsAcrossTrips {
	n := &SwapGiftsAcrossTrips{cache: cache, partition: p, aInsert: -1, bInsert: -1}
	aIdx, bIdx, ok := pickTwoTripIndices(p, rng, func(t *model.Trip) bool { return t.Len() >= 3 })
	if !ok {
		return n
	}
	n.aIdx, n.bIdx = aIdx, bIdx
	n.aStop = rng.Intn(p.Trips[aIdx].Len())
	n.bStop = rng.Intn(p.Trips[bIdx].Len())
	n.ok = true
	return n
}

func (n *SwapGiftsAcrossTrips) CostDelta() float64 {
	if n.delta != nil {
		return *n.delta
	}
	total := 0.0
	if n.ok {
		a := n.partition.Trips[n.aIdx]
		b := n.partition.Trips[n.bIdx]
		giftA := a.Stops[n.aStop].Gift
		giftB := b.Stops[n.bStop].Gift

		if a.Weight()-giftA.Weight+giftB.Weight <= model.WeightLimit &&
			b.Weight()-giftB.Weight+giftA.Weight <= model.WeightLimit {

			removeA := costmodel.RemoveCost(n.cache, a, n.aStop)
			removeB := costmodel.RemoveCost(n.cache, b, n.bStop)

			// Insert giftB into a working copy of a (minus giftA), giftA
			// into a working copy of b (minus giftB), so inserted indices
			// reconcile against the post-removal trip shape.
			aResidual := cloneTrip(a)
			aResidual.DeleteAt(n.aStop)
			bResidual := cloneTrip(b)
			bResidual.DeleteAt(n.bStop)

			exclude := map[int]bool{}
			if n.aStop <= aResidual.Len() {
				exclude[n.aStop] = true
			}
			posA, insertB, foundA := bestInsertIndex(n.cache, aResidual, giftB, exclude)

			exclude2 := map[int]bool{}
			if n.bStop <= bResidual.Len() {
				exclude2[n.bStop] = true
			}
			posB, insertA, foundB := bestInsertIndex(n.cache, bResidual, giftA, exclude2)

			if foundA && foundB {
				n.aInsert, n.bInsert, n.found = posA, posB, true
				total = insertA + insertB + removeA + removeB
			}
		}
	}
	n.delta = &total
	return total
}

func (n *SwapGiftsAcrossTrips) Apply() error {
	n.CostDelta()
	if !n.ok || !n.found {
		return nil
	}
	if n.aIdx >= len(n.partition.Trips) || n.bIdx >= len(n.partition.Trips) {
		return ErrInfeasible
	}
	a := n.partition.Trips[n.aIdx]
	b := n.partition.Trips[n.bIdx]
	if n.aStop >= a.Len() || n.bStop >= b.Len() {
		return ErrInfeasible
	}
	giftA := a.Stops[n.aStop].Gift
	giftB := b.Stops[n.bStop].Gift
	if a.Weight()-giftA.Weight+giftB.Weight > model.WeightLimit ||
		b.Weight()-giftB.Weight+giftA.Weight > model.WeightLimit {
		return ErrInfeasible
	}

	a.DeleteAt(n.aStop)
	b.DeleteAt(n.bStop)

	posA := n.aInsert
	if posA > a.Len() {
		posA = a.Len()
	}
	posB := n.bInsert
	if posB > b.Len() {
		posB = b.Len()
	}
	a.InsertAt(posA, model.Stop{Gift: giftB})
	b.InsertAt(posB, model.Stop{Gift: giftA})
	return nil
}
