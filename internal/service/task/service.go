// Package task implements task CRUD with creator/assignee authorization and
// the notification hooks that fire after successful writes.
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/platform/logger"
	"github.com/loujainjnad/taskboard-api/internal/service/membership"
	"github.com/loujainjnad/taskboard-api/internal/service/notification"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// CreateInput carries the fields for a new task.
type CreateInput struct {
	Title      string
	Priority   domain.TaskPriority // Zero value defaults to medium
	DueDate    *time.Time
	ReminderAt *time.Time
	ProjectID  *uuid.UUID
	AssigneeID *uuid.UUID
}

// UpdateInput carries a partial task update. Nil pointer fields are left
// unchanged; the Clear flags distinguish "unset this" from "leave alone".
type UpdateInput struct {
	Title         *string
	Priority      *domain.TaskPriority
	Status        *domain.TaskStatus
	DueDate       *time.Time
	ClearDueDate  bool
	ReminderAt    *time.Time
	ClearReminder bool
	AssigneeID    *uuid.UUID
	ClearAssignee bool
}

// Service provides task operations.
type Service interface {
	// Create creates a task for the given user. When ProjectID is set the
	// creator must belong to the project; when AssigneeID is set the assignee
	// must belong to the project too (or be the creator for a standalone task).
	Create(ctx context.Context, creatorID uuid.UUID, in CreateInput) (*domain.Task, error)

	// Get returns the task if the user created it or is assigned to it;
	// otherwise ErrTaskNotFound.
	Get(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error)

	// List returns tasks the user created or is assigned to.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// Update applies a partial update. Creators and assignees may update;
	// a transition into done stamps the completion time and notifies the
	// creator, a changed assignee notifies the new assignee.
	Update(ctx context.Context, taskID, userID uuid.UUID, in UpdateInput) (*domain.Task, error)

	// Delete removes the task. Only the creator may delete.
	Delete(ctx context.Context, taskID, userID uuid.UUID) error
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	taskStore store.TaskStore
	guard     *membership.Guard
	hooks     *notification.Hooks
	now       func() time.Time
	logger    *slog.Logger
}

// NewService creates a new task Service.
func NewService(
	taskStore store.TaskStore,
	guard *membership.Guard,
	hooks *notification.Hooks,
	logger *slog.Logger,
) Service {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if guard == nil {
		panic("guard cannot be nil")
	}
	if hooks == nil {
		panic("hooks cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		taskStore: taskStore,
		guard:     guard,
		hooks:     hooks,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.With(slog.String("component", "task_service")),
	}
}

// Create implements Service.Create.
func (s *serviceImpl) Create(ctx context.Context, creatorID uuid.UUID, in CreateInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(creatorID, in.Title)
	if err != nil {
		return nil, err
	}

	if in.Priority != "" {
		task.Priority = in.Priority
	}
	task.DueDate = in.DueDate
	task.ReminderAt = in.ReminderAt
	task.ProjectID = in.ProjectID
	task.AssignedTo = in.AssigneeID

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if task.ProjectID != nil && !s.guard.IsProjectMember(ctx, creatorID, *task.ProjectID) {
		return nil, ErrNotProjectMember
	}
	if err := s.checkAssignee(ctx, task); err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, &ServiceError{Operation: "create", Message: "failed to store task", Err: err}
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("created_by", creatorID.String()))

	s.hooks.OnTaskAssigned(ctx, task, nil)

	return task, nil
}

// Get implements Service.Get.
func (s *serviceImpl) Get(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, &ServiceError{Operation: "get", Message: "failed to load task", Err: err}
	}

	// Unauthorized reads look identical to missing tasks.
	if !s.guard.CanAccessTask(userID, task) {
		return nil, ErrTaskNotFound
	}

	return task, nil
}

// List implements Service.List.
func (s *serviceImpl) List(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListForUser(ctx, userID)
	if err != nil {
		return nil, &ServiceError{Operation: "list", Message: "failed to list tasks", Err: err}
	}
	return tasks, nil
}

// Update implements Service.Update.
func (s *serviceImpl) Update(ctx context.Context, taskID, userID uuid.UUID, in UpdateInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, &ServiceError{Operation: "update", Message: "failed to load task", Err: err}
	}

	if !s.guard.CanAccessTask(userID, task) {
		return nil, ErrTaskNotFound
	}
	if !s.guard.CanMutateTask(userID, task) {
		return nil, ErrNotAuthorized
	}

	previousStatus := task.Status
	previousAssignee := task.AssignedTo
	now := s.now()

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.ClearDueDate {
		task.DueDate = nil
	} else if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	if in.ClearReminder {
		task.ReminderAt = nil
	} else if in.ReminderAt != nil {
		task.ReminderAt = in.ReminderAt
	}
	if in.ClearAssignee {
		task.AssignedTo = nil
	} else if in.AssigneeID != nil {
		task.AssignedTo = in.AssigneeID
	}
	if in.Status != nil {
		if err := task.SetStatus(*in.Status, now); err != nil {
			return nil, err
		}
	}
	task.UpdatedAt = now

	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, task); err != nil {
		return nil, err
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, &ServiceError{Operation: "update", Message: "failed to store task", Err: err}
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("updated_by", userID.String()))

	// Hooks fire only after the write succeeded, so notifications never
	// describe a state that was rolled back.
	s.hooks.OnTaskAssigned(ctx, task, previousAssignee)
	s.hooks.OnTaskStatusChanged(ctx, task, previousStatus, userID)

	return task, nil
}

// Delete implements Service.Delete.
func (s *serviceImpl) Delete(ctx context.Context, taskID, userID uuid.UUID) error {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrTaskNotFound
		}
		return &ServiceError{Operation: "delete", Message: "failed to load task", Err: err}
	}

	if !s.guard.CanAccessTask(userID, task) {
		return ErrTaskNotFound
	}
	if !s.guard.CanDeleteTask(userID, task) {
		return ErrNotAuthorized
	}

	if err := s.taskStore.Delete(ctx, taskID); err != nil {
		if store.IsNotFoundError(err) {
			return ErrTaskNotFound
		}
		return &ServiceError{Operation: "delete", Message: "failed to delete task", Err: err}
	}

	return nil
}

// checkAssignee validates the task's assignee against its project. A task in
// a project may be assigned to any project member (the owner included); a
// standalone task may only be self-assigned.
func (s *serviceImpl) checkAssignee(ctx context.Context, task *domain.Task) error {
	if task.AssignedTo == nil {
		return nil
	}

	if task.ProjectID == nil {
		if *task.AssignedTo != task.CreatedBy {
			return ErrAssigneeNotMember
		}
		return nil
	}

	if !s.guard.IsProjectMember(ctx, *task.AssignedTo, *task.ProjectID) {
		return ErrAssigneeNotMember
	}
	return nil
}
