// Package testdb connects integration tests to a real Postgres instance.
//
// Tests that exercise the SQL itself (unique indexes, conditional updates,
// ON CONFLICT arbitration) cannot be served by mocks; they opt in through
// this package and are skipped when no database is configured.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"

	"github.com/loujainjnad/taskboard-api/internal/platform/postgres"
)

// EnvDatabaseURL names the environment variable holding the connection
// string for the integration test database.
const EnvDatabaseURL = "TASKBOARD_TEST_DATABASE_URL"

var (
	openOnce sync.Once
	shared   *sql.DB
	openErr  error
)

// MustOpen returns a connection to the test database with all migrations
// applied, skipping the calling test when EnvDatabaseURL is unset. The
// connection is shared across the whole test binary; callers must not close
// it and must isolate their writes with WithTx.
func MustOpen(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv(EnvDatabaseURL)
	if url == "" {
		t.Skipf("%s not set, skipping database integration test", EnvDatabaseURL)
	}

	openOnce.Do(func() {
		shared, openErr = open(url)
	})
	require.NoError(t, openErr, "failed to prepare test database")
	return shared
}

func open(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping test database: %w", err)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := postgres.RunMigrations(db, quiet); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return db, nil
}

// WithTx runs fn inside a transaction that is always rolled back, so
// parallel tests share one database without seeing each other's rows and
// without any cleanup of their own.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin test transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
