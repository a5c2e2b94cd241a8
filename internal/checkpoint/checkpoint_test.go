package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/z3r0privacy/santasleigh/internal/anneal"
	"github.com/z3r0privacy/santasleigh/internal/ingest"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

func TestWriteThenReadPartitionCSVRoundTrips(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(catalogPath, []byte("GiftId,Latitude,Longitude,Weight\n1,10,10,5\n2,20,20,8\n"), 0o644))
	catalog, err := ingest.LoadCatalog(catalogPath)
	require.NoError(t, err)

	g1, _ := catalog.Lookup(1)
	g2, _ := catalog.Lookup(2)
	p := model.NewPartition([]*model.Trip{
		{ID: 1, Stops: []model.Stop{{Gift: g1, TripID: 1}, {Gift: g2, TripID: 1}}},
	})

	path := filepath.Join(dir, "checkpoint.csv")
	require.NoError(t, WritePartitionCSV(path, p))

	got, err := ReadPartitionCSV(path, catalog)
	require.NoError(t, err)
	require.Len(t, got.Trips, 1)
	assert.Equal(t, 2, got.Trips[0].Len())
}

func TestBundleNaming(t *testing.T) {
	assert.Equal(t, "run1_42_1000.csv", BundleName("run1", 42, 1000))
	assert.Equal(t, "metrics_run1_42_1000.gob", MetricsBundleName("run1", 42, 1000))
}

func TestWriteThenReadMetricsRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.gob")

	m := anneal.Metrics{
		IterationsCompleted: 100,
		LogInterval:         10,
		TemperatureSeries:   []float64{50, 45, 40},
		GoodSeries:          []int{3, 4, 5},
		AcceptedSeries:      []int{1, 0, 2},
		RejectedSeries:      []int{6, 5, 3},
		CostDeltaSeries:     []float64{-1.2, 0.5, -0.3},
	}
	require.NoError(t, WriteMetrics(path, m))

	got, err := ReadMetrics(path)
	require.NoError(t, err)
	assert.Equal(t, 100, got.IterationsCompleted)
	assert.Equal(t, []float64{50, 45, 40}, got.TemperatureSeries)
	assert.Equal(t, []int{1, 0, 2}, got.AcceptedSeries)
}
