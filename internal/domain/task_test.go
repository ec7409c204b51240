package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	t.Run("creates a task with todo status and medium priority", func(t *testing.T) {
		t.Parallel()

		creatorID := uuid.New()
		task, err := NewTask(creatorID, "  Write release notes  ")
		require.NoError(t, err)

		assert.Equal(t, "Write release notes", task.Title, "title should be trimmed")
		assert.Equal(t, TaskStatusTodo, task.Status)
		assert.Equal(t, TaskPriorityMedium, task.Priority)
		assert.Equal(t, creatorID, task.CreatedBy)
		assert.Nil(t, task.CompletedAt)
	})

	t.Run("rejects an empty title", func(t *testing.T) {
		t.Parallel()

		_, err := NewTask(uuid.New(), "   ")
		assert.ErrorIs(t, err, ErrEmptyTaskTitle)
	})

	t.Run("rejects a nil creator", func(t *testing.T) {
		t.Parallel()

		_, err := NewTask(uuid.Nil, "Write release notes")
		assert.ErrorIs(t, err, ErrEmptyTaskCreator)
	})
}

func TestTaskCompletionInvariant(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("done without a completion time fails validation", func(t *testing.T) {
		t.Parallel()

		task, err := NewTask(uuid.New(), "Write release notes")
		require.NoError(t, err)

		task.Status = TaskStatusDone
		assert.ErrorIs(t, task.Validate(), ErrCompletedAtMismatch)
	})

	t.Run("a completion time without done fails validation", func(t *testing.T) {
		t.Parallel()

		task, err := NewTask(uuid.New(), "Write release notes")
		require.NoError(t, err)

		task.CompletedAt = &now
		assert.ErrorIs(t, task.Validate(), ErrCompletedAtMismatch)
	})
}

func TestSetStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("entering done stamps the completion time", func(t *testing.T) {
		t.Parallel()

		task, err := NewTask(uuid.New(), "Write release notes")
		require.NoError(t, err)

		require.NoError(t, task.SetStatus(TaskStatusDone, now))

		assert.Equal(t, TaskStatusDone, task.Status)
		require.NotNil(t, task.CompletedAt)
		assert.Equal(t, now, *task.CompletedAt)
		assert.NoError(t, task.Validate())
	})

	t.Run("re-entering done keeps the original completion time", func(t *testing.T) {
		t.Parallel()

		task, err := NewTask(uuid.New(), "Write release notes")
		require.NoError(t, err)

		require.NoError(t, task.SetStatus(TaskStatusDone, now))
		later := now.Add(time.Hour)
		require.NoError(t, task.SetStatus(TaskStatusDone, later))

		assert.Equal(t, now, *task.CompletedAt)
	})

	t.Run("leaving done clears the completion time", func(t *testing.T) {
		t.Parallel()

		task, err := NewTask(uuid.New(), "Write release notes")
		require.NoError(t, err)

		require.NoError(t, task.SetStatus(TaskStatusDone, now))
		require.NoError(t, task.SetStatus(TaskStatusInProgress, now.Add(time.Hour)))

		assert.Nil(t, task.CompletedAt)
		assert.NoError(t, task.Validate())
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		t.Parallel()

		task, err := NewTask(uuid.New(), "Write release notes")
		require.NoError(t, err)

		assert.ErrorIs(t, task.SetStatus(TaskStatus("paused"), now), ErrInvalidTaskStatus)
	})
}
