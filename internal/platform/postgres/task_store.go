package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/platform/logger"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// taskColumns is the column list shared by every task SELECT in this file.
const taskColumns = `id, title, status, priority, due_date, reminder_at,
	assigned_to, created_by, project_id, completed_at, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if a referenced user or project does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, title, status, priority, due_date, reminder_at,
			assigned_to, created_by, project_id, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Status,
		task.Priority,
		task.DueDate,
		task.ReminderAt,
		task.AssignedTo,
		task.CreatedBy,
		task.ProjectID,
		task.CompletedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("created_by", task.CreatedBy.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, status = $2, priority = $3, due_date = $4, reminder_at = $5,
			assigned_to = $6, project_id = $7, completed_at = $8, updated_at = $9
		WHERE id = $10
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Status,
		task.Priority,
		task.DueDate,
		task.ReminderAt,
		task.AssignedTo,
		task.ProjectID,
		task.CompletedAt,
		task.UpdatedAt,
		task.ID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		log.Debug("task not found for update",
			slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

// ListForUser implements store.TaskStore.ListForUser
func (s *PostgresTaskStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE created_by = $1 OR assigned_to = $1
		ORDER BY created_at DESC
	`
	return s.queryTasks(ctx, query, userID)
}

// FindDueWithin implements store.TaskStore.FindDueWithin
// Returns unfinished tasks whose due date is at or before now+window. There
// is deliberately no lower bound: a task that is already overdue, or whose
// due instant passed while no scanner was running, stays in the candidate
// set until it is done. The dispatcher's dedup key makes re-emission for an
// already-alerted due date a no-op.
func (s *PostgresTaskStore) FindDueWithin(
	ctx context.Context,
	now time.Time,
	window time.Duration,
) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status <> 'done'
		  AND due_date IS NOT NULL
		  AND due_date <= $1
		ORDER BY due_date ASC
	`
	return s.queryTasks(ctx, query, now.Add(window))
}

// FindReminderElapsed implements store.TaskStore.FindReminderElapsed
// Returns unfinished tasks whose reminder instant is at or before now.
func (s *PostgresTaskStore) FindReminderElapsed(
	ctx context.Context,
	now time.Time,
) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status <> 'done'
		  AND reminder_at IS NOT NULL
		  AND reminder_at <= $1
		ORDER BY reminder_at ASC
	`
	return s.queryTasks(ctx, query, now)
}

// queryTasks runs a task SELECT and scans all rows.
func (s *PostgresTaskStore) queryTasks(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return tasks, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans a task row in taskColumns order, converting the nullable
// columns through sql.Null* carriers.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status, priority string
	var dueDate, reminderAt, completedAt sql.NullTime
	var assignedTo, projectID uuid.NullUUID

	err := row.Scan(
		&task.ID,
		&task.Title,
		&status,
		&priority,
		&dueDate,
		&reminderAt,
		&assignedTo,
		&task.CreatedBy,
		&projectID,
		&completedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	if reminderAt.Valid {
		task.ReminderAt = &reminderAt.Time
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}
	if assignedTo.Valid {
		task.AssignedTo = &assignedTo.UUID
	}
	if projectID.Valid {
		task.ProjectID = &projectID.UUID
	}
	return &task, nil
}
