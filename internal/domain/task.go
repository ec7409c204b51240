package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the progress state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority represents the urgency of a task
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID            = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle         = errors.New("task title cannot be empty")
	ErrEmptyTaskCreator       = errors.New("task creator ID cannot be empty")
	ErrCompletedAtMismatch    = errors.New("completedAt must be set exactly when status is done")
	ErrTaskAlreadyInThatState = errors.New("task is already in the requested status")
)

// Task represents a single unit of work. A task may belong to a project and
// may be assigned to a user other than its creator.
//
// Invariant: CompletedAt is non-nil iff Status == done. All status changes go
// through SetStatus so the invariant cannot drift.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	ReminderAt  *time.Time   `json:"reminder_at,omitempty"`
	AssignedTo  *uuid.UUID   `json:"assigned_to,omitempty"`
	CreatedBy   uuid.UUID    `json:"created_by"`
	ProjectID   *uuid.UUID   `json:"project_id,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a new Task in todo status with medium priority defaults.
// Returns an error if validation fails.
func NewTask(createdBy uuid.UUID, title string) (*Task, error) {
	task := &Task{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		Status:    TaskStatusTodo,
		Priority:  TaskPriorityMedium,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data, including the completion
// invariant. Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if t.CreatedBy == uuid.Nil {
		return ErrEmptyTaskCreator
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if !isValidTaskPriority(t.Priority) {
		return ErrInvalidTaskPriority
	}

	if (t.Status == TaskStatusDone) != (t.CompletedAt != nil) {
		return ErrCompletedAtMismatch
	}

	return nil
}

// SetStatus transitions the task to the given status, stamping CompletedAt
// when the task enters done and clearing it when the task leaves done.
// Returns an error if the status is invalid.
func (t *Task) SetStatus(status TaskStatus, now time.Time) error {
	if !isValidTaskStatus(status) {
		return ErrInvalidTaskStatus
	}

	if status == TaskStatusDone && t.Status != TaskStatusDone {
		completed := now.UTC()
		t.CompletedAt = &completed
	} else if status != TaskStatusDone {
		t.CompletedAt = nil
	}

	t.Status = status
	t.UpdatedAt = now.UTC()
	return nil
}

// IsDone reports whether the task has been completed.
func (t *Task) IsDone() bool {
	return t.Status == TaskStatusDone
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// isValidTaskPriority checks if the given priority is a valid TaskPriority.
func isValidTaskPriority(priority TaskPriority) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}
