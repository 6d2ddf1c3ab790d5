// Package testdb provides utilities for database-backed tests. It depends
// only on database/sql, the pgx driver and the settings migrations, so any
// package can pull it in without import cycles.
package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"

	"github.com/confstack/confstack/internal/platform/postgres"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// IsIntegrationTestEnvironment reports whether a test database is available,
// indicated by the DATABASE_URL or CONFSTACK_TEST_DB_URL environment
// variable.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// GetTestDatabaseURL returns the database URL for tests: DATABASE_URL first,
// CONFSTACK_TEST_DB_URL as the fallback.
func GetTestDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("CONFSTACK_TEST_DB_URL")
}

// Open connects to the test database and brings the settings schema up to
// date. Tests without a configured database are skipped, not failed. The
// connection is closed automatically when the test finishes.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("skipping database test: DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database connection")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")

	require.NoError(t, postgres.RunMigrations(db), "failed to apply settings migrations")

	return db
}

// ResetSettings clears every settings row in the given namespace so a test
// starts from a known-empty store.
func ResetSettings(t *testing.T, db *sql.DB, namespace string) {
	t.Helper()

	_, err := db.Exec(`DELETE FROM settings WHERE namespace = $1`, namespace)
	require.NoError(t, err, "failed to reset settings namespace %q", namespace)
}
