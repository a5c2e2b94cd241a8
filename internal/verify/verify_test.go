package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/z3r0privacy/santasleigh/internal/geo"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

func mkGift(id int64, lat, lon, w float64) model.Gift {
	return model.Gift{ID: id, Point: model.Point{Lat: lat, Lon: lon}, Weight: w}
}

func TestCoveragePasses(t *testing.T) {
	g1, g2 := mkGift(1, 0, 0, 10), mkGift(2, 1, 1, 20)
	p := model.NewPartition([]*model.Trip{
		{ID: 1, Stops: []model.Stop{{Gift: g1, TripID: 1}, {Gift: g2, TripID: 1}}},
	})
	universe := map[int64]struct{}{1: {}, 2: {}}
	assert.NoError(t, Coverage(p, universe))
}

func TestCoverageDetectsMissing(t *testing.T) {
	g1 := mkGift(1, 0, 0, 10)
	p := model.NewPartition([]*model.Trip{{ID: 1, Stops: []model.Stop{{Gift: g1, TripID: 1}}}})
	universe := map[int64]struct{}{1: {}, 2: {}}
	assert.Error(t, Coverage(p, universe))
}

func TestCoverageDetectsDuplicate(t *testing.T) {
	g1 := mkGift(1, 0, 0, 10)
	p := model.NewPartition([]*model.Trip{
		{ID: 1, Stops: []model.Stop{{Gift: g1, TripID: 1}, {Gift: g1, TripID: 1}}},
	})
	universe := map[int64]struct{}{1: {}}
	assert.Error(t, Coverage(p, universe))
}

func TestCapacityDetectsOverweight(t *testing.T) {
	heavy := mkGift(1, 0, 0, model.WeightLimit)
	p := model.NewPartition([]*model.Trip{{ID: 1, Stops: []model.Stop{{Gift: heavy, TripID: 1}}}})
	assert.Error(t, Capacity(p))
}

func TestCapacityPassesUnderLimit(t *testing.T) {
	light := mkGift(1, 0, 0, 500)
	p := model.NewPartition([]*model.Trip{{ID: 1, Stops: []model.Stop{{Gift: light, TripID: 1}}}})
	assert.NoError(t, Capacity(p))
}

func TestTripIDConsistencyDetectsMismatch(t *testing.T) {
	g1 := mkGift(1, 0, 0, 10)
	p := model.NewPartition([]*model.Trip{{ID: 1, Stops: []model.Stop{{Gift: g1, TripID: 2}}}})
	assert.Error(t, TripIDConsistency(p))
}

func TestReconcileApplyDetectsMismatch(t *testing.T) {
	cache := geo.NewCache(0)
	g1 := mkGift(1, 0, 0, 10)
	before := &model.Trip{ID: 1, Stops: []model.Stop{{Gift: g1, TripID: 1}}}
	g2 := mkGift(2, 5, 5, 10)
	after := &model.Trip{ID: 1, Stops: []model.Stop{{Gift: g1, TripID: 1}, {Gift: g2, TripID: 1}}}

	err := ReconcileApply(cache, "test_class",
		map[int64]*model.Trip{1: before}, map[int64]*model.Trip{1: after},
		[]int64{1}, 0) // reported delta of 0 is wrong, real insertion changes cost
	require.Error(t, err)
	var mismatch *ErrCostMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "test_class", mismatch.Class)
}

func TestReconcileApplyAcceptsMatchingDelta(t *testing.T) {
	cache := geo.NewCache(0)
	g1 := mkGift(1, 0, 0, 10)
	before := &model.Trip{ID: 1, Stops: []model.Stop{{Gift: g1, TripID: 1}}}
	after := &model.Trip{ID: 1, Stops: []model.Stop{{Gift: g1, TripID: 1}}}

	err := ReconcileApply(cache, "noop",
		map[int64]*model.Trip{1: before}, map[int64]*model.Trip{1: after},
		[]int64{1}, 0)
	assert.NoError(t, err)
}
