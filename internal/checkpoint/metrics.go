package checkpoint

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/z3r0privacy/santasleigh/internal/anneal"
)

// MetricsBlob is the tuple persisted alongside each partition checkpoint:
// iterations_completed, log_interval, and the windowed time series.
type MetricsBlob struct {
	IterationsCompleted int
	LogInterval         int
	TemperatureSeries   []float64
	GoodSeries          []int
	AcceptedSeries      []int
	RejectedSeries      []int
	CostDeltaSeries     []float64
}

func fromControllerMetrics(m anneal.Metrics) MetricsBlob {
	return MetricsBlob{
		IterationsCompleted: m.IterationsCompleted,
		LogInterval:         m.LogInterval,
		TemperatureSeries:   m.TemperatureSeries,
		GoodSeries:          m.GoodSeries,
		AcceptedSeries:      m.AcceptedSeries,
		RejectedSeries:      m.RejectedSeries,
		CostDeltaSeries:     m.CostDeltaSeries,
	}
}

// WriteMetrics gob-encodes m to path. No serialization library appears
// anywhere in the corpus for a domain-neutral binary blob like this one,
// so encoding/gob is the justified standard-library choice (see DESIGN.md).
func WriteMetrics(path string, m anneal.Metrics) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("checkpoint: create %s: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(fromControllerMetrics(m)); err != nil {
		return fmt.Errorf("checkpoint: encode metrics: %w", err)
	}
	return nil
}

// ReadMetrics decodes a metrics blob previously written by WriteMetrics.
func ReadMetrics(path string) (MetricsBlob, error) {
	f, err := os.Open(path)
	if err != nil {
		return MetricsBlob{}, fmt.Errorf("checkpoint: open %s: %w", path, err)
	}
	defer f.Close()

	var blob MetricsBlob
	if err := gob.NewDecoder(f).Decode(&blob); err != nil {
		return MetricsBlob{}, fmt.Errorf("checkpoint: decode metrics: %w", err)
	}
	return blob, nil
}
