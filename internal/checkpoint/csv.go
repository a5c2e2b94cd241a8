// Package checkpoint implements periodic durability for a running solve:
// CSV partition snapshots, a binary metrics blob, and optional Postgres /
// Redis mirrors for the status API.
package checkpoint

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/z3r0privacy/santasleigh/internal/ingest"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

// WritePartitionCSV writes the partition to path with header GiftId,TripId,
// one row per stop in trip order.
func WritePartitionCSV(path string, p *model.Partition) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("checkpoint: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"GiftId", "TripId"}); err != nil {
		return fmt.Errorf("checkpoint: write header: %w", err)
	}
	for _, t := range p.Trips {
		for _, s := range t.Stops {
			row := []string{strconv.FormatInt(s.Gift.ID, 10), strconv.FormatInt(t.ID, 10)}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("checkpoint: write row: %w", err)
			}
		}
	}
	w.Flush()
	return w.Error()
}

// ReadPartitionCSV reads a GiftId,TripId checkpoint file, resolving gift
// attributes against catalog — the same schema and join used for the
// initial partition.
func ReadPartitionCSV(path string, catalog *ingest.Catalog) (*model.Partition, error) {
	return ingest.LoadPartition(path, catalog)
}

// BundleName returns the partition CSV filename for a checkpoint, per
// spec.md §6: <run-id>_<seed>_<iter>.csv.
func BundleName(runID string, seed int64, iteration int) string {
	return fmt.Sprintf("%s_%d_%d.csv", runID, seed, iteration)
}

// MetricsBundleName returns the metrics blob filename for a checkpoint:
// metrics_<run-id>_<seed>_<iter>.gob.
func MetricsBundleName(runID string, seed int64, iteration int) string {
	return fmt.Sprintf("metrics_%s_%d_%d.gob", runID, seed, iteration)
}
