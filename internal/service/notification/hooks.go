package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/events"
	"github.com/loujainjnad/taskboard-api/internal/platform/logger"
)

// Hooks translate successful CRUD writes into domain events. Services call
// them after the write commits, so a notification can never describe a state
// that was rolled back. Hook failures are logged and swallowed: the mutation
// already succeeded, and a missed alert must not fail the request.
type Hooks struct {
	emitter events.Emitter
	logger  *slog.Logger
}

// NewHooks creates mutation hooks publishing through the given emitter.
func NewHooks(emitter events.Emitter, logger *slog.Logger) *Hooks {
	if emitter == nil {
		panic("emitter cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Hooks{
		emitter: emitter,
		logger:  logger.With(slog.String("component", "notification_hooks")),
	}
}

// OnTaskAssigned fires after a task write that set or changed the assignee.
// No event is emitted when the assignee was cleared or unchanged.
func (h *Hooks) OnTaskAssigned(ctx context.Context, task *domain.Task, previousAssignee *uuid.UUID) {
	if task.AssignedTo == nil {
		return
	}
	if previousAssignee != nil && *previousAssignee == *task.AssignedTo {
		return
	}

	h.emit(ctx, events.TypeTaskAssigned, events.TaskAssignedPayload{
		TaskID:             task.ID,
		TaskTitle:          task.Title,
		ProjectID:          task.ProjectID,
		AssigneeID:         *task.AssignedTo,
		PreviousAssigneeID: previousAssignee,
	})
}

// OnTaskStatusChanged fires after a task write that changed the status.
// Only the transition into done produces an event.
func (h *Hooks) OnTaskStatusChanged(ctx context.Context, task *domain.Task, previousStatus domain.TaskStatus, actingUserID uuid.UUID) {
	if previousStatus == task.Status || !task.IsDone() {
		return
	}
	if task.CompletedAt == nil {
		// Status and CompletedAt move together; a done task without a
		// completion time never left the domain layer.
		return
	}

	h.emit(ctx, events.TypeTaskCompleted, events.TaskCompletedPayload{
		TaskID:      task.ID,
		TaskTitle:   task.Title,
		ProjectID:   task.ProjectID,
		CreatorID:   task.CreatedBy,
		CompletedBy: actingUserID,
		CompletedAt: *task.CompletedAt,
	})
}

func (h *Hooks) emit(ctx context.Context, eventType events.EventType, payload any) {
	log := logger.FromContextOrDefault(ctx, h.logger)

	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		log.Error("failed to build event",
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
		return
	}

	if err := h.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit event",
			slog.String("event_type", string(eventType)),
			slog.String("event_id", event.ID.String()),
			slog.String("error", fmt.Sprintf("%v", err)))
	}
}
