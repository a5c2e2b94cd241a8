package costmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/z3r0privacy/santasleigh/internal/geo"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

func TestTripCostSingleStop(t *testing.T) {
	cache := geo.NewCache(0)
	gift := model.Gift{ID: 1, Point: model.Point{Lat: 0, Lon: 0}, Weight: 5}
	trip := &model.Trip{ID: 1, Stops: []model.Stop{{Gift: gift, TripID: 1}}}

	got := TripCost(cache, trip)

	d := geo.Haversine(model.NorthPole, gift.Point)
	want := d*(5+model.SleighWeight) + d*model.SleighWeight
	assert.InDelta(t, want, got, 1e-6)
}

func TestTripCostEmpty(t *testing.T) {
	cache := geo.NewCache(0)
	trip := &model.Trip{ID: 1}
	assert.Equal(t, 0.0, TripCost(cache, trip))
}

func TestInsertThenRemoveIsIdentity(t *testing.T) {
	cache := geo.NewCache(0)
	trip := &model.Trip{ID: 1, Stops: []model.Stop{
		{Gift: model.Gift{ID: 1, Point: model.Point{Lat: 1, Lon: 1}, Weight: 10}, TripID: 1},
		{Gift: model.Gift{ID: 2, Point: model.Point{Lat: 2, Lon: 2}, Weight: 20}, TripID: 1},
	}}
	before := TripCost(cache, trip)

	gift := model.Gift{ID: 3, Point: model.Point{Lat: 1.5, Lon: 1.5}, Weight: 7}
	insertDelta := InsertCost(cache, trip, 1, gift)
	trip.InsertAt(1, model.Stop{Gift: gift})
	after := TripCost(cache, trip)

	assert.InDelta(t, after-before, insertDelta, 0.1)

	removeDelta := RemoveCost(cache, trip, 1)
	trip.DeleteAt(1)
	final := TripCost(cache, trip)

	assert.InDelta(t, before, final, 1e-6)
	assert.InDelta(t, final-after, removeDelta, 0.1)
}

func TestSumOfIncrementalInsertsEqualsFullCost(t *testing.T) {
	// InsertCost only accepts positions before an existing stop (0 <= i <
	// len(trip.Stops)), so the trip needs a seed stop before any insert;
	// every gift below is inserted before that anchor, never appended.
	cache := geo.NewCache(0)
	anchor := model.Gift{ID: 0, Point: model.Point{Lat: 0, Lon: 0}, Weight: 5}
	trip := &model.Trip{ID: 1, Stops: []model.Stop{{Gift: anchor, TripID: 1}}}
	before := TripCost(cache, trip)

	gifts := []model.Gift{
		{ID: 1, Point: model.Point{Lat: 10, Lon: 0}, Weight: 30},
		{ID: 2, Point: model.Point{Lat: 20, Lon: 10}, Weight: 20},
		{ID: 3, Point: model.Point{Lat: 5, Lon: -5}, Weight: 10},
	}

	running := 0.0
	for _, g := range gifts {
		running += InsertCost(cache, trip, 0, g)
		trip.InsertAt(0, model.Stop{Gift: g})
	}

	full := TripCost(cache, trip)
	assert.InDelta(t, full-before, running, 0.1)
}

func TestOptimalSwapPrefersHeavierCargoEarlier(t *testing.T) {
	cache := geo.NewCache(0)
	// Three co-linear stops at lon 0,10,20; weights 10,20,30.
	g0 := model.Gift{ID: 1, Point: model.Point{Lat: 0, Lon: 0}, Weight: 10}
	g1 := model.Gift{ID: 2, Point: model.Point{Lat: 0, Lon: 10}, Weight: 20}
	g2 := model.Gift{ID: 3, Point: model.Point{Lat: 0, Lon: 20}, Weight: 30}

	makeTrip := func(order ...model.Gift) *model.Trip {
		tr := &model.Trip{ID: 1}
		for i, g := range order {
			tr.InsertAt(i, model.Stop{Gift: g})
		}
		return tr
	}

	original := makeTrip(g0, g1, g2)
	swapped := makeTrip(g2, g1, g0)

	assert.Less(t, TripCost(cache, swapped), TripCost(cache, original))
}
