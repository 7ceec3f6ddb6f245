//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/testdb"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to the test database, applies migrations and
// truncates all tables. Tests using it must not run in parallel with each other.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db := testdb.Open(t, func(ctx context.Context, db *sql.DB) error {
		return Migrate(ctx, db, "up", nil)
	})
	testdb.Reset(t, db, "tasks", "users")
	return db
}

func mustCreateUser(t *testing.T, s *PostgresUserStore, name, email string) *domain.User {
	t.Helper()

	user, err := domain.NewUser(name, email, "$2a$04$examplehashexamplehashexamplehashexampleha")
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), user))
	return user
}
