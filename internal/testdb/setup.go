//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"
)

// Timeout bounds each setup step.
const Timeout = 30 * time.Second

// MigrateFunc brings the schema of db up to date.
type MigrateFunc func(ctx context.Context, db *sql.DB) error

// Open connects to the test database and runs migrate against it. The test
// is skipped when no database URL is set. The handle is closed when t ends.
func Open(t *testing.T, migrate MigrateFunc) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skipf("%s not set", EnvTestDatabaseURL)
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	require.NoError(t, db.PingContext(ctx), "test database is unreachable")
	if migrate != nil {
		require.NoError(t, migrate(ctx, db), "failed to migrate test database")
	}
	return db
}

// Reset empties tables. Tests that call it must not run in parallel with
// other tests on the same database.
func Reset(t *testing.T, db *sql.DB, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	_, err := db.ExecContext(ctx, fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(tables, ", ")))
	require.NoError(t, err)
}
