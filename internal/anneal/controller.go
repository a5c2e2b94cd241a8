// Package anneal implements the simulated-annealing controller: the
// iteration loop that selects neighbor candidates, evaluates their cost
// deltas in parallel, applies the Metropolis acceptance test, and drives
// checkpointing and logging.
package anneal

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/z3r0privacy/santasleigh/internal/costmodel"
	"github.com/z3r0privacy/santasleigh/internal/geo"
	"github.com/z3r0privacy/santasleigh/internal/model"
	"github.com/z3r0privacy/santasleigh/internal/neighbor"
	"github.com/z3r0privacy/santasleigh/internal/verify"
)

// Metrics is the time-series tuple persisted in every checkpoint bundle.
type Metrics struct {
	IterationsCompleted int
	LogInterval         int
	TemperatureSeries   []float64
	GoodSeries          []int
	AcceptedSeries      []int
	RejectedSeries      []int
	CostDeltaSeries     []float64
}

// Config holds the controller's hyperparameters and cadences.
type Config struct {
	T0    float64
	Alpha float64
	Seed  int64

	CoolingEvery    int
	CheckpointEvery int
	LogEvery        int
	ReheatEvery     int
	Workers         int
	Iterations      int

	// BadTripFocusFraction is the leading fraction of Iterations (0..1)
	// during which neighbor selection is biased toward the partition's
	// current least-efficient trip.
	BadTripFocusFraction float64

	// Verify enables the debug-mode full-recompute reconciliation of
	// every applied move's reported cost_delta.
	Verify bool
}

// Controller runs the main loop of spec.md §4.4 against a bound partition
// and distance cache.
type Controller struct {
	Partition *model.Partition
	Cache     *geo.Cache

	cfg         Config
	rng         *rand.Rand
	universeIDs map[int64]struct{}

	T     float64
	Stats Stats

	// CheckpointFn, when set, is invoked at the checkpoint cadence with
	// the current partition and accumulated metrics.
	CheckpointFn func(iteration int, p *model.Partition, m Metrics) error
	// StatusFn, when set, is invoked at the log cadence with the live
	// counters, for pushing a status snapshot to an external cache.
	StatusFn func(iteration int, s Stats, temperature float64)
}

// NewController builds a Controller seeded from cfg.Seed.
func NewController(p *model.Partition, cache *geo.Cache, cfg Config) *Controller {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.CoolingEvery <= 0 {
		cfg.CoolingEvery = 1
	}
	universe := make(map[int64]struct{}, p.GiftCount())
	for _, t := range p.Trips {
		for _, s := range t.Stops {
			universe[s.Gift.ID] = struct{}{}
		}
	}
	return &Controller{
		Partition:   p,
		Cache:       cache,
		cfg:         cfg,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		universeIDs: universe,
		T:           cfg.T0,
	}
}

// scored pairs an evaluated candidate with its computed delta for sorting.
type scored struct {
	delta float64
	class neighbor.Class
	n     neighbor.Neighbor
}

// evaluateParallel computes CostDelta for every candidate across a bounded
// worker pool, then returns them sorted by (Δ, classIndex) for
// deterministic tie-breaking under a fixed seed.
func evaluateParallel(ctx context.Context, workers int, cands []neighbor.Candidate) []scored {
	out := make([]scored, len(cands))
	for i, c := range cands {
		out[i] = scored{class: c.Class, n: c.N}
	}

	g, _ := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)
	for i := range out {
		i := i
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			out[i].delta = out[i].n.CostDelta()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(out, func(i, j int) bool {
		if out[i].delta != out[j].delta {
			return out[i].delta < out[j].delta
		}
		return out[i].class < out[j].class
	})
	return out
}

// leastEfficientTrip returns the index of the trip with the lowest
// cost-to-weight ratio, per spec.md §4.4's definition of "least-efficient".
func (c *Controller) leastEfficientTrip() (int, bool) {
	best := -1
	bestRatio := math.Inf(1)
	for i, t := range c.Partition.Trips {
		w := t.Weight()
		if w <= 0 {
			continue
		}
		ratio := costmodel.TripCost(c.Cache, t) / w
		if ratio < bestRatio {
			bestRatio = ratio
			best = i
		}
	}
	return best, best != -1
}

func snapshotTrips(p *model.Partition) map[int64]*model.Trip {
	m := make(map[int64]*model.Trip, len(p.Trips))
	for _, t := range p.Trips {
		stops := make([]model.Stop, len(t.Stops))
		copy(stops, t.Stops)
		m[t.ID] = &model.Trip{ID: t.ID, Stops: stops}
	}
	return m
}

func unionTripIDs(a, b map[int64]*model.Trip) []int64 {
	seen := make(map[int64]struct{}, len(a)+len(b))
	var ids []int64
	for id := range a {
		seen[id] = struct{}{}
	}
	for id := range b {
		seen[id] = struct{}{}
	}
	for id := range seen {
		ids = append(ids, id)
	}
	return ids
}

// Run executes the iteration loop until ctx is cancelled or the configured
// iteration budget is exhausted. Returns the number of iterations
// completed.
func (c *Controller) Run(ctx context.Context) (int, error) {
	focusIterations := int(float64(c.cfg.Iterations) * c.cfg.BadTripFocusFraction)

	for iter := 1; iter <= c.cfg.Iterations; iter++ {
		select {
		case <-ctx.Done():
			return iter - 1, nil
		default:
		}

		if c.cfg.LogEvery > 0 && iter%c.cfg.LogEvery == 0 {
			log.Printf("anneal: iter=%d T=%.4f good=%d accepted=%d rejected=%d", iter, c.T, c.Stats.Good, c.Stats.Accepted, c.Stats.Rejected)
			c.Stats.recordWindow(c.T)
			if c.StatusFn != nil {
				c.StatusFn(iter, c.Stats, c.T)
			}
		}

		if c.cfg.CheckpointEvery > 0 && iter%c.cfg.CheckpointEvery == 0 {
			if err := verify.All(c.Partition, c.universeIDs); err != nil {
				return iter - 1, fmt.Errorf("anneal: checkpoint verification failed at iteration %d: %w", iter, err)
			}
			if c.CheckpointFn != nil {
				m := Metrics{
					IterationsCompleted: c.Stats.IterationsCompleted,
					LogInterval:         c.cfg.LogEvery,
					TemperatureSeries:   c.Stats.TemperatureSeries,
					GoodSeries:          c.Stats.GoodSeries,
					AcceptedSeries:      c.Stats.AcceptedSeries,
					RejectedSeries:      c.Stats.RejectedSeries,
					CostDeltaSeries:     c.Stats.CostDeltaSeries,
				}
				if err := c.CheckpointFn(iter, c.Partition, m); err != nil {
					log.Printf("anneal: checkpoint write failed at iteration %d: %v", iter, err)
				}
			}
		}

		if iter%c.cfg.CoolingEvery == 0 {
			c.T *= c.cfg.Alpha
		}
		if c.Stats.reheatDue(c.cfg.ReheatEvery) {
			c.T = c.cfg.T0
			log.Printf("anneal: reheat at iteration %d (accepted+rejected=%d)", iter, c.Stats.Accepted+c.Stats.Rejected)
		}

		var fast []neighbor.Candidate
		if iter <= focusIterations {
			if idx, ok := c.leastEfficientTrip(); ok {
				fast = neighbor.NewFocusedFastCandidates(c.Cache, c.Partition, c.rng, idx)
			}
		}
		if len(fast) == 0 {
			fast = neighbor.NewFastCandidates(c.Cache, c.Partition, c.rng)
		}
		slow := neighbor.NewSlowCandidates(c.Cache, c.Partition, c.rng)

		fastScored := evaluateParallel(ctx, c.cfg.Workers, fast)
		winner := fastScored[0]

		if winner.delta >= 0 && len(slow) > 0 {
			slowScored := evaluateParallel(ctx, c.cfg.Workers, slow)
			if slowScored[0].delta < winner.delta {
				winner = slowScored[0]
			}
		}

		accepted := winner.delta < 0
		if !accepted {
			prob := math.Exp(-winner.delta / c.T)
			accepted = c.rng.Float64() < prob
		}

		if !accepted {
			c.Stats.recordMove(winner.class, winner.delta, false)
			continue
		}

		before := snapshotTrips(c.Partition)
		if err := winner.n.Apply(); err != nil {
			log.Printf("anneal: iteration %d: %s move infeasible, skipping: %v", iter, winner.class, err)
			continue
		}

		if c.cfg.Verify {
			after := snapshotTrips(c.Partition)
			if err := verify.ReconcileApply(c.Cache, winner.class.String(), before, after, unionTripIDs(before, after), winner.delta); err != nil {
				return iter, fmt.Errorf("anneal: %w", err)
			}
		}

		c.Stats.recordMove(winner.class, winner.delta, true)
	}

	return c.cfg.Iterations, nil
}
