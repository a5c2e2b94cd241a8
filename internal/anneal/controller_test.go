package anneal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/z3r0privacy/santasleigh/internal/costmodel"
	"github.com/z3r0privacy/santasleigh/internal/geo"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

func buildPartition() *model.Partition {
	mk := func(id int64, lat, lon, w float64) model.Gift {
		return model.Gift{ID: id, Point: model.Point{Lat: lat, Lon: lon}, Weight: w}
	}
	trip1 := &model.Trip{ID: 1}
	for i, g := range []model.Gift{mk(1, 10, 10, 30), mk(2, 11, 11, 20), mk(3, 9, 9, 10), mk(4, 10, 12, 15)} {
		trip1.InsertAt(i, model.Stop{Gift: g})
	}
	trip2 := &model.Trip{ID: 2}
	for i, g := range []model.Gift{mk(5, -10, -10, 25), mk(6, -11, -11, 20), mk(7, -9, -9, 10), mk(8, -10, -12, 15)} {
		trip2.InsertAt(i, model.Stop{Gift: g})
	}
	return model.NewPartition([]*model.Trip{trip1, trip2})
}

func TestControllerRunCompletesIterationBudget(t *testing.T) {
	p := buildPartition()
	cache := geo.NewCache(0)
	cfg := Config{
		T0: 50, Alpha: 0.999, Seed: 1,
		CoolingEvery: 10, CheckpointEvery: 0, LogEvery: 0,
		ReheatEvery: 0, Workers: 2, Iterations: 50,
	}
	c := NewController(p, cache, cfg)

	n, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, n)
	assert.Equal(t, 50, c.Stats.IterationsCompleted)
}

func TestControllerPreservesGiftCoverage(t *testing.T) {
	p := buildPartition()
	cache := geo.NewCache(0)
	universe := map[int64]struct{}{}
	for _, tr := range p.Trips {
		for _, s := range tr.Stops {
			universe[s.Gift.ID] = struct{}{}
		}
	}

	cfg := Config{
		T0: 100, Alpha: 0.99, Seed: 7,
		CoolingEvery: 5, Workers: 2, Iterations: 100,
	}
	c := NewController(p, cache, cfg)
	_, err := c.Run(context.Background())
	require.NoError(t, err)

	seen := map[int64]int{}
	for _, tr := range p.Trips {
		for _, s := range tr.Stops {
			seen[s.Gift.ID]++
		}
	}
	assert.Len(t, seen, len(universe))
	for id := range universe {
		assert.Equal(t, 1, seen[id])
	}
}

func TestControllerHonorsContextCancellation(t *testing.T) {
	p := buildPartition()
	cache := geo.NewCache(0)
	cfg := Config{T0: 10, Alpha: 0.99, Seed: 3, CoolingEvery: 1, Workers: 2, Iterations: 1000}
	c := NewController(p, cache, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := c.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestControllerRunsWithVerifyReconciliation(t *testing.T) {
	p := buildPartition()
	cache := geo.NewCache(0)
	cfg := Config{
		T0: 30, Alpha: 0.995, Seed: 11,
		CoolingEvery: 5, Workers: 2, Iterations: 30, Verify: true,
	}
	c := NewController(p, cache, cfg)
	_, err := c.Run(context.Background())
	require.NoError(t, err)
}

func TestControllerCheckpointCallbackInvoked(t *testing.T) {
	p := buildPartition()
	cache := geo.NewCache(0)
	calls := 0
	cfg := Config{
		T0: 20, Alpha: 0.99, Seed: 5,
		CoolingEvery: 5, CheckpointEvery: 10, Workers: 2, Iterations: 30,
	}
	c := NewController(p, cache, cfg)
	c.CheckpointFn = func(iteration int, partition *model.Partition, m Metrics) error {
		calls++
		return nil
	}
	_, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestReheatDueEveryInterval(t *testing.T) {
	var s Stats
	s.Accepted, s.Rejected = 3, 2
	assert.True(t, s.reheatDue(5))
	s.Accepted = 4
	assert.False(t, s.reheatDue(5))
}

func TestReheatDueFiresOnceWhileTotalIsParked(t *testing.T) {
	var s Stats
	s.Accepted, s.Rejected = 3, 2
	assert.True(t, s.reheatDue(5), "first time total hits the interval, reheat fires")
	assert.False(t, s.reheatDue(5), "repeated checks with total unchanged must not re-fire")
	assert.False(t, s.reheatDue(5), "still parked on the same total")

	s.Accepted = 4
	assert.False(t, s.reheatDue(5), "total=6 is not a multiple of 5")
	s.Rejected = 6
	assert.True(t, s.reheatDue(5), "total advanced to the next multiple of 5")
}

func TestLeastEfficientTripPicksLowestRatio(t *testing.T) {
	p := buildPartition()
	cache := geo.NewCache(0)
	c := NewController(p, cache, Config{T0: 1, Alpha: 1, Iterations: 0})

	idx, ok := c.leastEfficientTrip()
	require.True(t, ok)
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, len(p.Trips))

	picked := costmodel.TripCost(cache, p.Trips[idx]) / p.Trips[idx].Weight()
	for _, tr := range p.Trips {
		assert.LessOrEqual(t, picked, costmodel.TripCost(cache, tr)/tr.Weight())
	}
}
