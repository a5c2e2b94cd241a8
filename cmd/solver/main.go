// Command solver runs the simulated-annealing engine over a given gift
// catalog and initial partition, checkpointing progress to disk and
// optionally to Postgres/Redis, until the run budget is exhausted or it
// is interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/z3r0privacy/santasleigh/internal/anneal"
	"github.com/z3r0privacy/santasleigh/internal/cache"
	"github.com/z3r0privacy/santasleigh/internal/checkpoint"
	"github.com/z3r0privacy/santasleigh/internal/db"
	"github.com/z3r0privacy/santasleigh/internal/geo"
	"github.com/z3r0privacy/santasleigh/internal/ingest"
	"github.com/z3r0privacy/santasleigh/internal/model"
)

func main() {
	fromFile := flag.String("from-file", "", "initial partition CSV (GiftId,TripId)")
	catalogPath := flag.String("catalog", "", "gift catalog CSV (GiftId,Latitude,Longitude,Weight)")
	temperature := flag.Float64("temperature", 1000.0, "initial temperature T0")
	alpha := flag.Float64("alpha", 0.995, "cooling factor applied every cooling-every iterations")
	randomSeed := flag.Int64("random-seed", 1, "seed for the neighbor/acceptance RNG")
	evaluationID := flag.String("evaluation-id", "", "run identifier; used for checkpoint naming and status keys")
	iterations := flag.Int("iterations", 100000, "number of SA iterations to run")
	checkpointEvery := flag.Int("checkpoint-every", 1000, "iterations between checkpoints")
	logEvery := flag.Int("log-every", 100, "iterations between log lines / status pushes")
	coolingEvery := flag.Int("cooling-every", 50, "iterations between temperature decay steps")
	reheatEvery := flag.Int("reheat-every", 5000, "accepted+rejected count between reheats")
	workers := flag.Int("workers", 4, "fast-candidate evaluation pool size")
	badTripFocus := flag.Float64("bad-trip-focus", 0.1, "leading fraction of the run biased toward the least-efficient trip")
	statusAddr := flag.String("status-addr", "", "if set, push live status into Redis for this evaluation id (requires --persist)")
	verify := flag.Bool("verify", false, "enable debug-mode full-recompute cost-delta reconciliation")
	out := flag.String("out", "", "final solution CSV path (default <evaluation-id>_<seed>_final.csv)")
	checkpointDir := flag.String("checkpoint-dir", ".", "directory for periodic checkpoint bundles")
	persist := flag.Bool("persist", false, "mirror checkpoints into Postgres and run status into Redis")
	flag.Parse()

	method := "anneal"
	if flag.NArg() > 0 {
		method = flag.Arg(0)
	}
	if method != "anneal" {
		log.Fatalf("unknown method %q: only \"anneal\" is registered", method)
	}
	if *fromFile == "" || *catalogPath == "" {
		log.Fatal("--from-file and --catalog are required")
	}
	if *evaluationID == "" {
		*evaluationID = fmt.Sprintf("run-%d", *randomSeed)
	}
	if *out == "" {
		*out = fmt.Sprintf("%s_%d_final.csv", *evaluationID, *randomSeed)
	}

	log.Printf("Loading catalog from %s...", *catalogPath)
	catalog, err := ingest.LoadCatalog(*catalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Printf("✓ Catalog loaded: %d gifts", catalog.Len())

	log.Printf("Loading initial partition from %s...", *fromFile)
	partition, err := ingest.LoadPartition(*fromFile, catalog)
	if err != nil {
		log.Fatalf("Failed to load initial partition: %v", err)
	}
	log.Printf("✓ Partition loaded: %d trips, %d gifts", len(partition.Trips), partition.GiftCount())

	distanceCache := geo.NewCache(65536)

	cfg := anneal.Config{
		T0:                   *temperature,
		Alpha:                *alpha,
		Seed:                 *randomSeed,
		CoolingEvery:         *coolingEvery,
		CheckpointEvery:      *checkpointEvery,
		LogEvery:             *logEvery,
		ReheatEvery:          *reheatEvery,
		Workers:              *workers,
		Iterations:           *iterations,
		BadTripFocusFraction: *badTripFocus,
		Verify:               *verify,
	}
	controller := anneal.NewController(partition, distanceCache, cfg)

	var store *checkpoint.Store
	if *persist {
		pool, err := db.GetDB()
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("✓ Database connection established")

		if _, err := cache.GetClient(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer cache.Close()
		log.Println("✓ Redis connection established")

		redisCfg := cache.LoadConfigFromEnv()
		store = checkpoint.NewStore(pool, *evaluationID, *randomSeed, redisCfg.TTL)
		if err := store.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to prepare checkpoint schema: %v", err)
		}
	}

	controller.CheckpointFn = checkpointCallback(*checkpointDir, *evaluationID, *randomSeed, catalog, store)
	if *persist || *statusAddr != "" {
		controller.StatusFn = statusCallback(*evaluationID, store)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting anneal run %s: T0=%.2f alpha=%.4f seed=%d iterations=%d workers=%d",
		*evaluationID, cfg.T0, cfg.Alpha, cfg.Seed, cfg.Iterations, cfg.Workers)

	completed, err := controller.Run(ctx)
	if err != nil {
		log.Fatalf("Run aborted after %d iterations: %v", completed, err)
	}
	log.Printf("✓ Run finished after %d iterations (final temperature %.4f)", completed, controller.T)

	if err := checkpoint.WritePartitionCSV(*out, partition); err != nil {
		log.Fatalf("Failed to write final solution: %v", err)
	}
	log.Printf("✓ Final solution written to %s", *out)
}

// checkpointCallback writes a CSV + metrics bundle under dir on every
// checkpoint cadence, additionally persisting into Postgres when store is
// non-nil.
func checkpointCallback(dir, evaluationID string, seed int64, catalog *ingest.Catalog, store *checkpoint.Store) func(int, *model.Partition, anneal.Metrics) error {
	_ = catalog
	return func(iteration int, p *model.Partition, m anneal.Metrics) error {
		csvPath := filepath.Join(dir, checkpoint.BundleName(evaluationID, seed, iteration))
		if err := checkpoint.WritePartitionCSV(csvPath, p); err != nil {
			return fmt.Errorf("write partition checkpoint: %w", err)
		}

		metricsPath := filepath.Join(dir, checkpoint.MetricsBundleName(evaluationID, seed, iteration))
		if err := checkpoint.WriteMetrics(metricsPath, m); err != nil {
			return fmt.Errorf("write metrics checkpoint: %w", err)
		}

		if store != nil {
			if err := store.PersistPartition(context.Background(), iteration, p); err != nil {
				return fmt.Errorf("persist partition to postgres: %w", err)
			}
		}
		return nil
	}
}

func statusCallback(evaluationID string, store *checkpoint.Store) func(int, anneal.Stats, float64) {
	return func(iteration int, stats anneal.Stats, temperature float64) {
		if store == nil {
			return
		}
		if err := store.PushStatus(context.Background(), evaluationID, stats, temperature); err != nil {
			log.Printf("status push failed at iteration %d: %v", iteration, err)
		}
	}
}
