package checkpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/z3r0privacy/santasleigh/internal/anneal"
	"github.com/z3r0privacy/santasleigh/internal/cache"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

// Store persists checkpoint assignments into Postgres and mirrors the
// live run counters into Redis, additive to the CSV/gob checkpoint files
// written directly to disk.
type Store struct {
	pool      *pgxpool.Pool
	runID     string
	seed      int64
	statusTTL time.Duration
}

// NewStore binds a Store to an already-initialized pool (see
// internal/db.GetDB), a run id and seed used to tag persisted rows.
func NewStore(pool *pgxpool.Pool, runID string, seed int64, statusTTL time.Duration) *Store {
	return &Store{pool: pool, runID: runID, seed: seed, statusTTL: statusTTL}
}

// EnsureSchema creates the checkpoint_assignment table if it doesn't
// already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS checkpoint_assignment (
			run_id    TEXT NOT NULL,
			seed      BIGINT NOT NULL,
			iteration INTEGER NOT NULL,
			gift_id   BIGINT NOT NULL,
			trip_id   BIGINT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("checkpoint: ensure schema: %w", err)
	}
	return nil
}

// PersistPartition writes one row per gift for this checkpoint iteration.
func (s *Store) PersistPartition(ctx context.Context, iteration int, p *model.Partition) error {
	batch := make([][]interface{}, 0, p.GiftCount())
	for _, t := range p.Trips {
		for _, st := range t.Stops {
			batch = append(batch, []interface{}{s.runID, s.seed, iteration, st.Gift.ID, t.ID})
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("checkpoint: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM checkpoint_assignment WHERE run_id=$1 AND seed=$2 AND iteration=$3`, s.runID, s.seed, iteration); err != nil {
		return fmt.Errorf("checkpoint: clear prior rows: %w", err)
	}

	for _, row := range batch {
		if _, err := tx.Exec(ctx, `INSERT INTO checkpoint_assignment (run_id, seed, iteration, gift_id, trip_id) VALUES ($1,$2,$3,$4,$5)`, row...); err != nil {
			return fmt.Errorf("checkpoint: insert row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("checkpoint: commit tx: %w", err)
	}
	return nil
}

// Assignment is one gift→trip row of a persisted checkpoint.
type Assignment struct {
	GiftID int64
	TripID int64
}

// LatestIteration returns the highest checkpointed iteration for this run,
// or (0, false, nil) if nothing has been persisted yet.
func (s *Store) LatestIteration(ctx context.Context) (int, bool, error) {
	var iteration int
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(iteration), -1) FROM checkpoint_assignment WHERE run_id=$1 AND seed=$2`,
		s.runID, s.seed).Scan(&iteration)
	if err != nil {
		return 0, false, fmt.Errorf("checkpoint: query latest iteration: %w", err)
	}
	if iteration < 0 {
		return 0, false, nil
	}
	return iteration, true, nil
}

// FetchPartition returns the persisted gift→trip assignments for a given
// checkpoint iteration.
func (s *Store) FetchPartition(ctx context.Context, iteration int) ([]Assignment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT gift_id, trip_id FROM checkpoint_assignment WHERE run_id=$1 AND seed=$2 AND iteration=$3`,
		s.runID, s.seed, iteration)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: query partition: %w", err)
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.GiftID, &a.TripID); err != nil {
			return nil, fmt.Errorf("checkpoint: scan assignment row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// PushStatus mirrors the controller's live counters into the Redis status
// cache, keyed by evaluation id, with the configured TTL.
func (s *Store) PushStatus(ctx context.Context, evaluationID string, stats anneal.Stats, temperature float64) error {
	status := cache.RunStatus{
		EvaluationID:        evaluationID,
		IterationsCompleted: stats.IterationsCompleted,
		Temperature:         temperature,
		Good:                stats.Good,
		Accepted:            stats.Accepted,
		Rejected:            stats.Rejected,
	}
	return cache.SetRunStatus(ctx, evaluationID, status, s.statusTTL)
}
