// Package model holds the core data types manipulated by the
// neighborhood-search engine: gifts, stops, trips and the partition that
// groups them.
package model

import "fmt"

// WeightLimit is the maximum total gift weight a single trip may carry.
// Neighbor construction admits a destination trip at exactly WeightLimit
// (<=), while verify.Capacity rejects it (>= is already over); a move can
// therefore land a trip at precisely WeightLimit, which verify.Capacity
// then reports as a capacity violation.
const WeightLimit = 1000.0

// SleighWeight is the constant tare weight carried on every trip segment.
const SleighWeight = 10.0

// NorthPole is the fixed origin every trip departs from and returns to.
var NorthPole = Point{Lat: 90.0, Lon: 0.0}

// Point is a latitude/longitude pair on the sphere.
type Point struct {
	Lat float64
	Lon float64
}

// Gift holds the immutable attributes of a delivery point.
type Gift struct {
	ID     int64
	Point  Point
	Weight float64
}

// Stop is a Gift placed within a specific trip. TripID is mutable: it is
// updated whenever a neighbor moves the stop to another trip.
type Stop struct {
	Gift   Gift
	TripID int64
}

// Trip is an ordered sequence of stops sharing the same trip id.
type Trip struct {
	ID    int64
	Stops []Stop
}

// Weight returns the sum of the trip's stop weights (sleigh tare excluded).
func (t *Trip) Weight() float64 {
	var w float64
	for _, s := range t.Stops {
		w += s.Gift.Weight
	}
	return w
}

// Len returns the number of stops in the trip.
func (t *Trip) Len() int { return len(t.Stops) }

// InsertAt inserts stop before position i, shifting the remainder right.
// i must be in [0, len(Stops)].
func (t *Trip) InsertAt(i int, s Stop) {
	s.TripID = t.ID
	t.Stops = append(t.Stops, Stop{})
	copy(t.Stops[i+1:], t.Stops[i:])
	t.Stops[i] = s
}

// DeleteAt removes and returns the stop at position i.
func (t *Trip) DeleteAt(i int) Stop {
	s := t.Stops[i]
	t.Stops = append(t.Stops[:i], t.Stops[i+1:]...)
	return s
}

// Partition is the ordered collection of trips under optimization.
type Partition struct {
	Trips  []*Trip
	nextID int64
}

// NewPartition builds a partition from already-grouped trips. The next
// fresh trip id is seeded to one past the largest trip id present.
func NewPartition(trips []*Trip) *Partition {
	p := &Partition{Trips: trips}
	for _, t := range trips {
		if t.ID >= p.nextID {
			p.nextID = t.ID + 1
		}
	}
	return p
}

// NextTripID reserves and returns a fresh trip id (max existing + 1, then
// incremented for next use).
func (p *Partition) NextTripID() int64 {
	id := p.nextID
	p.nextID++
	return id
}

// AppendTrip adds a new trip to the partition.
func (p *Partition) AppendTrip(t *Trip) {
	p.Trips = append(p.Trips, t)
}

// DropTrip removes the trip at index i from the partition.
func (p *Partition) DropTrip(i int) {
	p.Trips = append(p.Trips[:i], p.Trips[i+1:]...)
}

// TripIndex returns the index of the trip with the given id, or -1.
func (p *Partition) TripIndex(tripID int64) int {
	for i, t := range p.Trips {
		if t.ID == tripID {
			return i
		}
	}
	return -1
}

// GiftCount returns the total number of stops across all trips.
func (p *Partition) GiftCount() int {
	n := 0
	for _, t := range p.Trips {
		n += len(t.Stops)
	}
	return n
}

// String renders a short summary, useful in log lines.
func (p *Partition) String() string {
	return fmt.Sprintf("Partition{trips=%d, gifts=%d}", len(p.Trips), p.GiftCount())
}
