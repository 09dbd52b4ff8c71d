// Package testutil provides helpers for tests that need a live Postgres.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/meridian-travel/itinerary-api/internal/adapters/postgres"
)

// EnvDatabaseURL names the env var pointing at a disposable test database.
const EnvDatabaseURL = "ITINERARY_TEST_DATABASE_URL"

// OpenMigratedPool connects to the test database, applies all migrations and
// truncates the schema so every test starts clean. Tests are skipped when no
// test database is configured.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		t.Skipf("set %s to run postgres tests", EnvDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.MigrateUp(ctx, dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, `
		TRUNCATE trips, versions, segments, variants, selections,
		         flight_statuses, idempotency_keys CASCADE
	`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}
