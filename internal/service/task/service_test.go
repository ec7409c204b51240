package task

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/events"
	"github.com/loujainjnad/taskboard-api/internal/service/membership"
	"github.com/loujainjnad/taskboard-api/internal/service/notification"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type taskTestDeps struct {
	tasks    *MockTaskStore
	projects *MockProjectStore
	emitter  *recordingEmitter
	svc      *serviceImpl
}

func newTestService(t *testing.T) *taskTestDeps {
	t.Helper()

	d := &taskTestDeps{
		tasks:    new(MockTaskStore),
		projects: new(MockProjectStore),
		emitter:  &recordingEmitter{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	guard := membership.NewGuard(d.projects, logger)
	hooks := notification.NewHooks(d.emitter, logger)

	svc := NewService(d.tasks, guard, hooks, logger)
	impl := svc.(*serviceImpl)
	impl.now = func() time.Time { return fixedNow }
	d.svc = impl

	return d
}

func strPtr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	t.Parallel()

	creatorID := uuid.New()
	projectID := uuid.New()
	project := &domain.Project{ID: projectID, Name: "Launch Plan", OwnerID: creatorID, Status: domain.ProjectStatusActive}

	t.Run("creates a standalone task with defaults", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)

		d.tasks.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

		task, err := d.svc.Create(context.Background(), creatorID, CreateInput{Title: "Write release notes"})
		require.NoError(t, err)

		assert.Equal(t, domain.TaskStatusTodo, task.Status)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
		assert.Equal(t, creatorID, task.CreatedBy)
		assert.Nil(t, task.ProjectID)
		assert.Empty(t, d.emitter.events, "no assignment means no event")
	})

	t.Run("creating in a project requires membership", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)

		d.projects.On("GetByID", mock.Anything, projectID).Return(project, nil)
		d.projects.On("IsMember", mock.Anything, projectID, mock.AnythingOfType("uuid.UUID")).Return(false, nil)

		_, err := d.svc.Create(context.Background(), uuid.New(), CreateInput{
			Title:     "Write release notes",
			ProjectID: &projectID,
		})
		assert.ErrorIs(t, err, ErrNotProjectMember)
		d.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("assigning a project task to a member fires the hook", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)

		memberID := uuid.New()
		d.projects.On("GetByID", mock.Anything, projectID).Return(project, nil)
		d.projects.On("IsMember", mock.Anything, projectID, memberID).Return(true, nil)
		d.tasks.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

		task, err := d.svc.Create(context.Background(), creatorID, CreateInput{
			Title:      "Write release notes",
			ProjectID:  &projectID,
			AssigneeID: &memberID,
		})
		require.NoError(t, err)
		require.NotNil(t, task.AssignedTo)

		require.Len(t, d.emitter.events, 1)
		assert.Equal(t, events.TypeTaskAssigned, d.emitter.events[0].Type)
	})

	t.Run("rejects an assignee outside the project", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)

		outsiderID := uuid.New()
		d.projects.On("GetByID", mock.Anything, projectID).Return(project, nil)
		d.projects.On("IsMember", mock.Anything, projectID, outsiderID).Return(false, nil)

		_, err := d.svc.Create(context.Background(), creatorID, CreateInput{
			Title:      "Write release notes",
			ProjectID:  &projectID,
			AssigneeID: &outsiderID,
		})
		assert.ErrorIs(t, err, ErrAssigneeNotMember)
	})

	t.Run("a standalone task may only be self-assigned", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)

		otherID := uuid.New()
		_, err := d.svc.Create(context.Background(), creatorID, CreateInput{
			Title:      "Write release notes",
			AssigneeID: &otherID,
		})
		assert.ErrorIs(t, err, ErrAssigneeNotMember)
	})
}

func TestGet(t *testing.T) {
	t.Parallel()

	creatorID := uuid.New()
	assigneeID := uuid.New()
	task := &domain.Task{
		ID:         uuid.New(),
		Title:      "Write release notes",
		Status:     domain.TaskStatusTodo,
		Priority:   domain.TaskPriorityMedium,
		CreatedBy:  creatorID,
		AssignedTo: &assigneeID,
	}

	t.Run("creator and assignee can read", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)

		d.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

		for _, userID := range []uuid.UUID{creatorID, assigneeID} {
			got, err := d.svc.Get(context.Background(), task.ID, userID)
			require.NoError(t, err)
			assert.Equal(t, task.ID, got.ID)
		}
	})

	t.Run("anyone else sees not found", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)

		d.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

		_, err := d.svc.Get(context.Background(), task.ID, uuid.New())
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("missing task reads as not found", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)

		d.tasks.On("GetByID", mock.Anything, task.ID).Return(nil, store.ErrTaskNotFound)

		_, err := d.svc.Get(context.Background(), task.ID, creatorID)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	creatorID := uuid.New()

	freshTask := func() *domain.Task {
		return &domain.Task{
			ID:        uuid.New(),
			Title:     "Write release notes",
			Status:    domain.TaskStatusTodo,
			Priority:  domain.TaskPriorityMedium,
			CreatedBy: creatorID,
			CreatedAt: fixedNow.Add(-time.Hour),
			UpdatedAt: fixedNow.Add(-time.Hour),
		}
	}

	t.Run("applies partial fields and leaves the rest alone", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)
		task := freshTask()
		due := fixedNow.Add(48 * time.Hour)
		task.DueDate = &due

		d.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		d.tasks.On("Update", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

		updated, err := d.svc.Update(context.Background(), task.ID, creatorID, UpdateInput{
			Title: strPtr("Write better release notes"),
		})
		require.NoError(t, err)

		assert.Equal(t, "Write better release notes", updated.Title)
		assert.Equal(t, domain.TaskPriorityMedium, updated.Priority)
		require.NotNil(t, updated.DueDate, "untouched due date must survive")
		assert.Equal(t, fixedNow, updated.UpdatedAt)
	})

	t.Run("clear flags unset fields a nil pointer would leave alone", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)
		task := freshTask()
		due := fixedNow.Add(48 * time.Hour)
		task.DueDate = &due

		d.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		d.tasks.On("Update", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

		updated, err := d.svc.Update(context.Background(), task.ID, creatorID, UpdateInput{ClearDueDate: true})
		require.NoError(t, err)
		assert.Nil(t, updated.DueDate)
	})

	t.Run("transition into done stamps completion and emits", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)
		task := freshTask()
		done := domain.TaskStatusDone

		d.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		d.tasks.On("Update", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

		updated, err := d.svc.Update(context.Background(), task.ID, creatorID, UpdateInput{Status: &done})
		require.NoError(t, err)

		assert.Equal(t, domain.TaskStatusDone, updated.Status)
		require.NotNil(t, updated.CompletedAt)
		assert.Equal(t, fixedNow, *updated.CompletedAt)

		require.Len(t, d.emitter.events, 1)
		assert.Equal(t, events.TypeTaskCompleted, d.emitter.events[0].Type)
	})

	t.Run("reopening a done task clears the completion time", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)
		task := freshTask()
		completed := fixedNow.Add(-time.Hour)
		task.Status = domain.TaskStatusDone
		task.CompletedAt = &completed
		todo := domain.TaskStatusTodo

		d.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		d.tasks.On("Update", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

		updated, err := d.svc.Update(context.Background(), task.ID, creatorID, UpdateInput{Status: &todo})
		require.NoError(t, err)

		assert.Equal(t, domain.TaskStatusTodo, updated.Status)
		assert.Nil(t, updated.CompletedAt)
		assert.Empty(t, d.emitter.events, "reopening is not a completion")
	})

	t.Run("assignee change notifies the new assignee", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)
		task := freshTask()
		projectID := uuid.New()
		task.ProjectID = &projectID
		newAssignee := uuid.New()

		project := &domain.Project{ID: projectID, Name: "Launch Plan", OwnerID: creatorID, Status: domain.ProjectStatusActive}
		d.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		d.projects.On("GetByID", mock.Anything, projectID).Return(project, nil)
		d.projects.On("IsMember", mock.Anything, projectID, newAssignee).Return(true, nil)
		d.tasks.On("Update", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

		_, err := d.svc.Update(context.Background(), task.ID, creatorID, UpdateInput{AssigneeID: &newAssignee})
		require.NoError(t, err)

		require.Len(t, d.emitter.events, 1)
		assert.Equal(t, events.TypeTaskAssigned, d.emitter.events[0].Type)

		var payload events.TaskAssignedPayload
		require.NoError(t, d.emitter.events[0].UnmarshalPayload(&payload))
		assert.Equal(t, newAssignee, payload.AssigneeID)
		assert.Nil(t, payload.PreviousAssigneeID)
	})

	t.Run("a stranger cannot update and cannot learn the task exists", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)
		task := freshTask()

		d.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

		_, err := d.svc.Update(context.Background(), task.ID, uuid.New(), UpdateInput{Title: strPtr("hijack")})
		assert.ErrorIs(t, err, ErrTaskNotFound)
		d.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	creatorID := uuid.New()
	assigneeID := uuid.New()
	task := &domain.Task{
		ID:         uuid.New(),
		Title:      "Write release notes",
		Status:     domain.TaskStatusTodo,
		Priority:   domain.TaskPriorityMedium,
		CreatedBy:  creatorID,
		AssignedTo: &assigneeID,
	}

	t.Run("creator may delete", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)

		d.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		d.tasks.On("Delete", mock.Anything, task.ID).Return(nil)

		require.NoError(t, d.svc.Delete(context.Background(), task.ID, creatorID))
	})

	t.Run("assignee may read but not delete", func(t *testing.T) {
		t.Parallel()
		d := newTestService(t)

		d.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

		err := d.svc.Delete(context.Background(), task.ID, assigneeID)
		assert.ErrorIs(t, err, ErrNotAuthorized)
		d.tasks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
