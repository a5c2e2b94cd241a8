package anneal

import "github.com/z3r0privacy/santasleigh/internal/neighbor"

// currentBestLogThreshold is an inert diagnostic constant: nothing in the
// package reads it, so no log line, acceptance decision or termination
// check depends on it — the source hard-coded a similarly inert constant.
const currentBestLogThreshold = 0.0

// Stats accumulates the windowed and lifetime counters the controller logs
// and checkpoints.
type Stats struct {
	IterationsCompleted int
	Good                int
	Accepted            int
	Rejected            int

	windowGood     int
	windowAccepted int
	windowRejected int

	ClassHistogram [neighbor.ClassCount]int

	TemperatureSeries []float64
	GoodSeries        []int
	AcceptedSeries    []int
	RejectedSeries    []int
	CostDeltaSeries   []float64

	bestCost float64
	haveBest bool

	lastReheatTotal int
}

// recordWindow appends the current windowed snapshot and resets it; called
// at every log cadence.
func (s *Stats) recordWindow(temperature float64) {
	s.TemperatureSeries = append(s.TemperatureSeries, temperature)
	s.GoodSeries = append(s.GoodSeries, s.windowGood)
	s.AcceptedSeries = append(s.AcceptedSeries, s.windowAccepted)
	s.RejectedSeries = append(s.RejectedSeries, s.windowRejected)
	s.windowGood, s.windowAccepted, s.windowRejected = 0, 0, 0
}

// recordMove updates the lifetime and windowed counters for one resolved
// iteration: good (Δ<0, always accepted), accepted-bad, or rejected-bad.
func (s *Stats) recordMove(class neighbor.Class, delta float64, accepted bool) {
	s.IterationsCompleted++
	s.CostDeltaSeries = append(s.CostDeltaSeries, delta)
	s.ClassHistogram[class]++

	if delta < 0 {
		s.Good++
		s.windowGood++
	} else if accepted {
		s.Accepted++
		s.windowAccepted++
	} else {
		s.Rejected++
		s.windowRejected++
	}

	if !s.haveBest || delta < s.bestCost {
		s.bestCost = delta
		s.haveBest = true
	}
}

// reheatDue implements the corrected reheat gate: every reheatInterval bad
// solutions (accepted or rejected), not the source's always-truthy `% N`.
// Gated on lastReheatTotal so that a run of iterations where Apply()
// rejects infeasible moves (leaving total unchanged while parked on a
// multiple of reheatInterval) triggers exactly one reheat, not one per
// iteration it stays parked there.
func (s *Stats) reheatDue(reheatInterval int) bool {
	if reheatInterval <= 0 {
		return false
	}
	total := s.Accepted + s.Rejected
	if total == 0 || total%reheatInterval != 0 || total == s.lastReheatTotal {
		return false
	}
	s.lastReheatTotal = total
	return true
}
