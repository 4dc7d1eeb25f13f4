package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/platform/database"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// IsIntegrationTestEnvironment returns true if the DATABASE_URL environment
// variable is set, indicating that integration tests can be run.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// GetTestDatabaseURL returns the PostgreSQL URL for tests from DATABASE_URL.
func GetTestDatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// Open returns a migrated in-memory SQLite database closed at test cleanup.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()
	return open(t, config.DatabaseConfig{Driver: "sqlite", URL: "file::memory:"})
}

// OpenPostgres returns the migrated PostgreSQL database named by
// DATABASE_URL. The test is skipped when the variable is not set.
func OpenPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("DATABASE_URL not set - skipping integration test")
	}
	return open(t, config.DatabaseConfig{Driver: "postgres", URL: url})
}

func open(t *testing.T, cfg config.DatabaseConfig) *sqlx.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := database.Open(ctx, cfg, nil)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(ctx, db, database.MigrateUp, nil), "failed to migrate test database")
	return db
}

// WithTx executes a test function within a transaction, automatically rolling back
// after the test completes. This ensures test isolation and prevents side effects.
func WithTx(t *testing.T, db *sqlx.DB, fn func(t *testing.T, tx *sqlx.Tx)) {
	t.Helper()

	tx, err := db.Beginx()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		// sql.ErrTxDone is expected if fn already committed or rolled back
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}
