package neighbor

import (
	"math/rand"
	"sort"

	"github.com/z3r0privacy/santasleigh/internal/costmodel"
	"github.com/z3r0privacy/santasleigh/internal/geo"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

// SplitAtBestIndex breaks a trip into a prefix/suffix pair at whichever
// interior index minimizes the resulting total cost.
type SplitAtBestIndex struct {
	cache      *geo.Cache
	partition  *model.Partition
	tripIdx    int
	bestSplit  int
	ok, found  bool
	delta      *float64
}

// NewSplitAtBestIndex picks a trip with >= 2 stops.
func NewSplitAtBestIndex(cache *geo.Cache, p *model.Partition, rng *rand.Rand) *SplitAtBestIndex {
	n := &SplitAtBestIndex{cache: cache, partition: p}
	idx, ok := pickTripIndex(p, rng, func(t *model.Trip) bool { return t.Len() >= 2 })
	if !ok {
		return n
	}
	n.tripIdx, n.ok = idx, true
	return n
}

func (n *SplitAtBestIndex) CostDelta() float64 {
	if n.delta != nil {
		return *n.delta
	}
	d := 0.0
	if n.ok {
		trip := n.partition.Trips[n.tripIdx]
		original := costmodel.TripCost(n.cache, trip)

		bestSum := 0.0
		bestSet := false
		for split := 1; split < trip.Len(); split++ {
			prefix := &model.Trip{ID: trip.ID, Stops: trip.Stops[:split]}
			suffix := &model.Trip{ID: trip.ID + 1, Stops: trip.Stops[split:]}
			sum := costmodel.TripCost(n.cache, prefix) + costmodel.TripCost(n.cache, suffix)
			if !bestSet || sum < bestSum {
				bestSum = sum
				bestSet = true
				n.bestSplit = split
				n.found = true
			}
		}
		if n.found {
			d = bestSum - original
		}
	}
	n.delta = &d
	return d
}

func (n *SplitAtBestIndex) Apply() error {
	n.CostDelta()
	if !n.ok || !n.found {
		return nil
	}
	if n.tripIdx >= len(n.partition.Trips) {
		return ErrInfeasible
	}
	trip := n.partition.Trips[n.tripIdx]
	if n.bestSplit <= 0 || n.bestSplit >= trip.Len() {
		return ErrInfeasible
	}

	newID := n.partition.NextTripID()
	suffixStops := make([]model.Stop, len(trip.Stops[n.bestSplit:]))
	copy(suffixStops, trip.Stops[n.bestSplit:])
	for i := range suffixStops {
		suffixStops[i].TripID = newID
	}
	newTrip := &model.Trip{ID: newID, Stops: suffixStops}

	trip.Stops = trip.Stops[:n.bestSplit]
	n.partition.AppendTrip(newTrip)
	return nil
}

// middleThird returns the sorted values restricted to the middle third of
// the sorted range.
func middleThird(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	lo := n / 3
	hi := n - n/3
	if lo >= hi {
		return nil
	}
	return sorted[lo:hi]
}

// OptimalHorizontalSplit partitions a trip's stops by a candidate
// longitude drawn from the middle third of its sorted longitudes,
// sorting each side by descending latitude, and keeps the cheapest split.
type OptimalHorizontalSplit struct {
	cache     *geo.Cache
	partition *model.Partition
	tripIdx   int
	ok, found bool
	leftStops, rightStops []model.Stop
	delta     *float64
}

// NewOptimalHorizontalSplit picks a trip with >= 4 stops.
func NewOptimalHorizontalSplit(cache *geo.Cache, p *model.Partition, rng *rand.Rand) *OptimalHorizontalSplit {
	n := &OptimalHorizontalSplit{cache: cache, partition: p}
	idx, ok := pickTripIndex(p, rng, func(t *model.Trip) bool { return t.Len() >= 4 })
	if !ok {
		return n
	}
	n.tripIdx, n.ok = idx, true
	return n
}

func sortByLatDesc(stops []model.Stop) {
	sort.Slice(stops, func(i, j int) bool { return stops[i].Gift.Point.Lat > stops[j].Gift.Point.Lat })
}

func sortByLonDesc(stops []model.Stop) {
	sort.Slice(stops, func(i, j int) bool { return stops[i].Gift.Point.Lon > stops[j].Gift.Point.Lon })
}

func (n *OptimalHorizontalSplit) CostDelta() float64 {
	if n.delta != nil {
		return *n.delta
	}
	d := 0.0
	if n.ok {
		trip := n.partition.Trips[n.tripIdx]
		original := costmodel.TripCost(n.cache, trip)

		lons := make([]float64, trip.Len())
		for i, s := range trip.Stops {
			lons[i] = s.Gift.Point.Lon
		}
		candidates := middleThird(lons)

		bestSum := 0.0
		bestSet := false
		for _, lonSplit := range candidates {
			var left, right []model.Stop
			for _, s := range trip.Stops {
				if s.Gift.Point.Lon < lonSplit {
					left = append(left, s)
				} else {
					right = append(right, s)
				}
			}
			if len(left) == 0 || len(right) == 0 {
				continue
			}
			sortByLatDesc(left)
			sortByLatDesc(right)

			leftTrip := &model.Trip{ID: trip.ID, Stops: left}
			rightTrip := &model.Trip{ID: trip.ID + 1, Stops: right}
			sum := costmodel.TripCost(n.cache, leftTrip) + costmodel.TripCost(n.cache, rightTrip)
			if !bestSet || sum < bestSum {
				bestSum = sum
				bestSet = true
				n.leftStops = left
				n.rightStops = right
				n.found = true
			}
		}
		if n.found {
			d = bestSum - original
		}
	}
	n.delta = &d
	return d
}

func (n *OptimalHorizontalSplit) Apply() error {
	n.CostDelta()
	if !n.ok || !n.found {
		return nil
	}
	if n.tripIdx >= len(n.partition.Trips) {
		return ErrInfeasible
	}
	trip := n.partition.Trips[n.tripIdx]
	newID := n.partition.NextTripID()

	for i := range n.rightStops {
		n.rightStops[i].TripID = newID
	}
	for i := range n.leftStops {
		n.leftStops[i].TripID = trip.ID
	}
	trip.Stops = n.leftStops
	n.partition.AppendTrip(&model.Trip{ID: newID, Stops: n.rightStops})
	return nil
}

// OptimalVerticalSplit is the latitude-based dual of OptimalHorizontalSplit:
// it splits by latitude and sorts each resulting side by descending
// longitude.
type OptimalVerticalSplit struct {
	cache     *geo.Cache
	partition *model.Partition
	tripIdx   int
	ok, found bool
	lowStops, highStops []model.Stop
	delta     *float64
}

// NewOptimalVerticalSplit picks a trip with >= 4 stops.
func NewOptimalVerticalSplit(cache *geo.Cache, p *model.Partition, rng *rand.Rand) *OptimalVerticalSplit {
	n := &OptimalVerticalSplit{cache: cache, partition: p}
	idx, ok := pickTripIndex(p, rng, func(t *model.Trip) bool { return t.Len() >= 4 })
	if !ok {
		return n
	}
	n.tripIdx, n.ok = idx, true
	return n
}

func (n *OptimalVerticalSplit) CostDelta() float64 {
	if n.delta != nil {
		return *n.delta
	}
	d := 0.0
	if n.ok {
		trip := n.partition.Trips[n.tripIdx]
		original := costmodel.TripCost(n.cache, trip)

		lats := make([]float64, trip.Len())
		for i, s := range trip.Stops {
			lats[i] = s.Gift.Point.Lat
		}
		candidates := middleThird(lats)

		bestSum := 0.0
		bestSet := false
		for _, latSplit := range candidates {
			var low, high []model.Stop
			for _, s := range trip.Stops {
				if s.Gift.Point.Lat < latSplit {
					low = append(low, s)
				} else {
					high = append(high, s)
				}
			}
			if len(low) == 0 || len(high) == 0 {
				continue
			}
			sortByLonDesc(low)
			sortByLonDesc(high)

			lowTrip := &model.Trip{ID: trip.ID, Stops: low}
			highTrip := &model.Trip{ID: trip.ID + 1, Stops: high}
			sum := costmodel.TripCost(n.cache, lowTrip) + costmodel.TripCost(n.cache, highTrip)
			if !bestSet || sum < bestSum {
				bestSum = sum
				bestSet = true
				n.lowStops = low
				n.highStops = high
				n.found = true
			}
		}
		if n.found {
			d = bestSum - original
		}
	}
	n.delta = &d
	return d
}

func (n *OptimalVerticalSplit) Apply() error {
	n.CostDelta()
	if !n.ok || !n.found {
		return nil
	}
	if n.tripIdx >= len(n.partition.Trips) {
		return ErrInfeasible
	}
	trip := n.partition.Trips[n.tripIdx]
	newID := n.partition.NextTripID()

	for i := range n.highStops {
		n.highStops[i].TripID = newID
	}
	for i := range n.lowStops {
		n.lowStops[i].TripID = trip.ID
	}
	trip.Stops = n.lowStops
	n.partition.AppendTrip(&model.Trip{ID: newID, Stops: n.highStops})
	return nil
}
