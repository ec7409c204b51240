package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// quietLogger discards store logging so test output stays readable.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// insertUser seeds a user row and returns its ID. The email embeds a UUID
// so parallel tests never contend on the users.email unique constraint.
func insertUser(ctx context.Context, t *testing.T, tx *sql.Tx) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, hashed_password)
		VALUES ($1, $2, $3, $4)`,
		id,
		fmt.Sprintf("user-%s@example.com", id),
		"Test User",
		"not-a-real-hash",
	)
	require.NoError(t, err, "failed to insert test user")
	return id
}

// insertProject seeds an active project owned by ownerID and returns its ID.
func insertProject(ctx context.Context, t *testing.T, tx *sql.Tx, ownerID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO projects (id, name, owner_id)
		VALUES ($1, $2, $3)`,
		id, "Test Project", ownerID,
	)
	require.NoError(t, err, "failed to insert test project")
	return id
}

// taskSeed holds the fields the scanner queries discriminate on.
type taskSeed struct {
	status     string
	dueDate    *time.Time
	reminderAt *time.Time
}

// insertTask seeds a task row for createdBy and returns its ID. A done task
// gets a completed_at stamp to satisfy the status check constraint.
func insertTask(ctx context.Context, t *testing.T, tx *sql.Tx, createdBy uuid.UUID, seed taskSeed) uuid.UUID {
	t.Helper()

	status := seed.status
	if status == "" {
		status = "todo"
	}
	var completedAt *time.Time
	if status == "done" {
		now := time.Now().UTC()
		completedAt = &now
	}

	id := uuid.New()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (id, title, status, due_date, reminder_at, created_by, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, "Test Task", status, seed.dueDate, seed.reminderAt, createdBy, completedAt,
	)
	require.NoError(t, err, "failed to insert test task")
	return id
}
