package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if a referenced user or project does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update saves changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListForUser retrieves tasks the user created or is assigned to,
	// most recently created first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// FindDueWithin retrieves unfinished tasks with an assignee or creator to
	// alert whose due date is at or before now+window, overdue tasks
	// included. The reminder scanner re-derives this set every cycle;
	// duplicate suppression is the dispatcher's job, not this query's.
	FindDueWithin(ctx context.Context, now time.Time, window time.Duration) ([]*domain.Task, error)

	// FindReminderElapsed retrieves unfinished tasks whose reminder instant
	// is at or before now.
	FindReminderElapsed(ctx context.Context, now time.Time) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
