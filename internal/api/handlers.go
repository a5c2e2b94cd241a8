// Package api exposes the read-only status surface for a running or
// completed solve: health, live counters, and the latest persisted
// partition. It never mutates a run — wired standalone in cmd/statusd and
// never imported by cmd/solver.
package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/z3r0privacy/santasleigh/internal/cache"
	"github.com/z3r0privacy/santasleigh/internal/checkpoint"
	"github.com/z3r0privacy/santasleigh/internal/db"
)

// Deps holds the collaborators the status handlers read from. cmd/statusd
// constructs one at startup; storeFor derives a per-request checkpoint.Store
// from it for the run id and seed named in the path.
type Deps struct {
	Pool *pgxpool.Pool
}

// storeFor builds a checkpoint.Store for the run/seed named in the request,
// mirroring cmd/solver's own construction so both read the same rows.
func (d Deps) storeFor(c *fiber.Ctx) (*checkpoint.Store, error) {
	runID := c.Params("id")
	if runID == "" {
		return nil, fmt.Errorf("missing run id")
	}
	seed, err := c.ParamsInt("seed", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	return checkpoint.NewStore(d.Pool, runID, int64(seed), 0), nil
}

// Health reports whether Postgres and Redis are reachable.
func Health(c *fiber.Ctx) error {
	ctx := c.Context()

	dbStatus := "ok"
	if err := db.HealthCheck(ctx); err != nil {
		dbStatus = err.Error()
	}

	redisStatus := "ok"
	if err := cache.HealthCheck(ctx); err != nil {
		redisStatus = err.Error()
	}

	status := "healthy"
	httpStatus := fiber.StatusOK
	if dbStatus != "ok" || redisStatus != "ok" {
		status = "unhealthy"
		httpStatus = fiber.StatusServiceUnavailable
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}

// Status returns the most recently pushed live-run snapshot for
// /status/:id, e.g. iteration count, temperature, acceptance counters.
func Status(c *fiber.Ctx) error {
	evaluationID := c.Params("id")
	if evaluationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing run id"})
	}

	status, found, err := cache.GetRunStatus(c.Context(), evaluationID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no status cached for this run"})
	}
	return c.JSON(status)
}

// Partition returns the latest Postgres-persisted checkpoint for
// /partition/:id/:seed, as a flat gift_id/trip_id row list.
func Partition(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store, err := deps.storeFor(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		iteration, found, err := store.LatestIteration(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if !found {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no checkpoint persisted for this run"})
		}

		rows, err := store.FetchPartition(c.Context(), iteration)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		return c.JSON(fiber.Map{
			"iteration":   iteration,
			"assignments": rows,
		})
	}
}
