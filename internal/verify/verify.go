// Package verify implements the post-move invariant checks the controller
// can run after every accepted move, or in a standalone pass against a
// loaded checkpoint.
package verify

import (
	"fmt"
	"math"

	"github.com/z3r0privacy/santasleigh/internal/costmodel"
	"github.com/z3r0privacy/santasleigh/internal/geo"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

// ErrCostMismatch reports a neighbor-reported cost_delta that disagrees
// with the full recomputed before/after trip costs beyond tolerance.
type ErrCostMismatch struct {
	Class      string
	NeighborDelta float64
	ActualDelta   float64
}

func (e *ErrCostMismatch) Error() string {
	return fmt.Sprintf("verify: %s reported delta %.4f, actual recomputed delta %.4f",
		e.Class, e.NeighborDelta, e.ActualDelta)
}

// reconcileTolerance is the maximum acceptable drift between a neighbor's
// memoized cost_delta and a full before/after recomputation.
const reconcileTolerance = 0.1

// Coverage reports whether the set of gift ids present across all trips
// equals universe exactly — no gift missing, none duplicated.
func Coverage(p *model.Partition, universe map[int64]struct{}) error {
	seen := make(map[int64]int, len(universe))
	for _, t := range p.Trips {
		for _, s := range t.Stops {
			seen[s.Gift.ID]++
		}
	}
	for id := range universe {
		if seen[id] == 0 {
			return fmt.Errorf("verify: gift %d missing from partition", id)
		}
		if seen[id] > 1 {
			return fmt.Errorf("verify: gift %d appears %d times", id, seen[id])
		}
	}
	for id := range seen {
		if _, ok := universe[id]; !ok {
			return fmt.Errorf("verify: gift %d not in universe", id)
		}
	}
	return nil
}

// Capacity reports whether every trip's summed weight stays strictly
// below model.WeightLimit.
func Capacity(p *model.Partition) error {
	for _, t := range p.Trips {
		if t.Weight() >= model.WeightLimit {
			return fmt.Errorf("verify: trip %d weight %.2f exceeds limit %.2f", t.ID, t.Weight(), model.WeightLimit)
		}
	}
	return nil
}

// TripIDConsistency reports whether every stop's TripID equals the id of
// its containing trip.
func TripIDConsistency(p *model.Partition) error {
	for _, t := range p.Trips {
		for i, s := range t.Stops {
			if s.TripID != t.ID {
				return fmt.Errorf("verify: trip %d stop %d carries TripID %d", t.ID, i, s.TripID)
			}
		}
	}
	return nil
}

// All runs Coverage, Capacity, and TripIDConsistency, returning the first
// failure encountered.
func All(p *model.Partition, universe map[int64]struct{}) error {
	if err := Coverage(p, universe); err != nil {
		return err
	}
	if err := Capacity(p); err != nil {
		return err
	}
	if err := TripIDConsistency(p); err != nil {
		return err
	}
	return nil
}

// ReconcileApply recomputes the full cost of every trip touched between
// before and after and compares the difference against reportedDelta,
// returning ErrCostMismatch if they disagree beyond tolerance. touchedIDs
// is the union of trip ids present in either snapshot.
func ReconcileApply(cache *geo.Cache, class string, before, after map[int64]*model.Trip, touchedIDs []int64, reportedDelta float64) error {
	var beforeCost, afterCost float64
	for _, id := range touchedIDs {
		if t, ok := before[id]; ok {
			beforeCost += costmodel.TripCost(cache, t)
		}
		if t, ok := after[id]; ok {
			afterCost += costmodel.TripCost(cache, t)
		}
	}
	actual := afterCost - beforeCost
	if math.Abs(actual-reportedDelta) > reconcileTolerance {
		return &ErrCostMismatch{Class: class, NeighborDelta: reportedDelta, ActualDelta: actual}
	}
	return nil
}
