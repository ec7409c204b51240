// Package notification implements the notification dispatch engine: the
// dedup-guarded dispatcher, the mutation hooks that feed it from CRUD
// writes, and the read API for the resulting records.
//
// The dispatcher guarantees at most one stored notification per
// (recipient, type, task, project, occasion) key. The occasion string is
// what separates "the same trigger fired again" from "a genuinely new
// event on the same entity": a task_due alert is keyed by the specific due
// instant, so re-saving an unchanged task or re-running the scanner stays
// silent while moving the deadline alerts again.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/events"
	"github.com/loujainjnad/taskboard-api/internal/platform/logger"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// Input describes one notification to dispatch.
type Input struct {
	RecipientID uuid.UUID
	Type        domain.NotificationType
	Title       string
	Message     string
	TaskID      *uuid.UUID
	ProjectID   *uuid.UUID

	// Occasion disambiguates repeated triggers of the same type on the same
	// entity. Empty is a valid occasion (one-shot semantics).
	Occasion string
}

// Dispatcher turns domain events into deduplicated notification rows.
// It is registered as an event handler; mutation hooks and the reminder
// scanner are both just emitters, so event-driven and time-driven triggers
// share one dedup contract.
type Dispatcher struct {
	notificationStore store.NotificationStore
	userStore         store.UserStore
	logger            *slog.Logger
}

// NewDispatcher creates a new notification Dispatcher.
func NewDispatcher(
	notificationStore store.NotificationStore,
	userStore store.UserStore,
	logger *slog.Logger,
) *Dispatcher {
	if notificationStore == nil {
		panic("notificationStore cannot be nil")
	}
	if userStore == nil {
		panic("userStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		notificationStore: notificationStore,
		userStore:         userStore,
		logger:            logger.With(slog.String("component", "notification_dispatcher")),
	}
}

// Ensure Dispatcher implements events.Handler
var _ events.Handler = (*Dispatcher)(nil)

// Notify creates a notification unless one with the same dedup key already
// exists. Returns whether a row was created. Safe to call repeatedly and
// concurrently with identical input; the storage layer's unique index
// arbitrates.
func (d *Dispatcher) Notify(ctx context.Context, in Input) (bool, error) {
	n, err := domain.NewNotification(in.RecipientID, in.Type, in.Title, in.Message)
	if err != nil {
		return false, fmt.Errorf("failed to build notification: %w", err)
	}
	n.TaskID = in.TaskID
	n.ProjectID = in.ProjectID
	n.Occasion = in.Occasion

	return d.notificationStore.CreateIfAbsent(ctx, n)
}

// HandleEvent implements events.Handler. Unknown event types are ignored so
// the emitter can grow new producers without touching the dispatcher.
func (d *Dispatcher) HandleEvent(ctx context.Context, event *events.Event) error {
	log := logger.FromContextOrDefault(ctx, d.logger)

	switch event.Type {
	case events.TypeTaskAssigned:
		return d.handleTaskAssigned(ctx, event)
	case events.TypeTaskCompleted:
		return d.handleTaskCompleted(ctx, event)
	case events.TypeInviteIssued:
		return d.handleInviteIssued(ctx, event)
	case events.TypeTaskDue:
		return d.handleTaskDue(ctx, event)
	case events.TypeTaskReminder:
		return d.handleTaskReminder(ctx, event)
	default:
		log.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}
}

func (d *Dispatcher) handleTaskAssigned(ctx context.Context, event *events.Event) error {
	var p events.TaskAssignedPayload
	if err := event.UnmarshalPayload(&p); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	// Keyed by the previous assignee: a double-fired hook or an unchanged
	// re-save dedups away, while a real hand-off back to an earlier
	// assignee forms a new key.
	occasion := "from:none"
	if p.PreviousAssigneeID != nil {
		occasion = "from:" + p.PreviousAssigneeID.String()
	}

	_, err := d.Notify(ctx, Input{
		RecipientID: p.AssigneeID,
		Type:        domain.NotificationTaskAssigned,
		Title:       "Task assigned to you",
		Message:     fmt.Sprintf("You have been assigned the task %q", p.TaskTitle),
		TaskID:      &p.TaskID,
		ProjectID:   p.ProjectID,
		Occasion:    occasion,
	})
	return err
}

func (d *Dispatcher) handleTaskCompleted(ctx context.Context, event *events.Event) error {
	log := logger.FromContextOrDefault(ctx, d.logger)

	var p events.TaskCompletedPayload
	if err := event.UnmarshalPayload(&p); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	// No self-notification: a creator completing their own task already
	// knows about it.
	if p.CompletedBy == p.CreatorID {
		log.Debug("skipping self-notification for task completion",
			"task_id", p.TaskID)
		return nil
	}

	_, err := d.Notify(ctx, Input{
		RecipientID: p.CreatorID,
		Type:        domain.NotificationTaskCompleted,
		Title:       "Task completed",
		Message:     fmt.Sprintf("The task %q has been completed", p.TaskTitle),
		TaskID:      &p.TaskID,
		ProjectID:   p.ProjectID,
		Occasion:    "done:" + p.CompletedAt.UTC().Format(time.RFC3339),
	})
	return err
}

func (d *Dispatcher) handleInviteIssued(ctx context.Context, event *events.Event) error {
	log := logger.FromContextOrDefault(ctx, d.logger)

	var p events.InviteIssuedPayload
	if err := event.UnmarshalPayload(&p); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	// Only registered users can receive an in-app notification; for anyone
	// else the invite email itself is the only channel, and that delivery
	// is outside this system.
	invitee, err := d.userStore.GetByEmail(ctx, p.Email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("invitee not registered, no notification",
				"invite_id", p.InviteID)
			return nil
		}
		return fmt.Errorf("failed to look up invitee: %w", err)
	}

	_, err = d.Notify(ctx, Input{
		RecipientID: invitee.ID,
		Type:        domain.NotificationProjectInvite,
		Title:       "Project invitation",
		Message:     fmt.Sprintf("You have been invited to join the project %q", p.ProjectName),
		ProjectID:   &p.ProjectID,
		Occasion:    p.InviteID.String(),
	})
	return err
}

func (d *Dispatcher) handleTaskDue(ctx context.Context, event *events.Event) error {
	var p events.TaskDuePayload
	if err := event.UnmarshalPayload(&p); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	_, err := d.Notify(ctx, Input{
		RecipientID: p.RecipientID,
		Type:        domain.NotificationTaskDue,
		Title:       "Task due soon",
		Message:     fmt.Sprintf("The task %q is due at %s", p.TaskTitle, p.DueAt.UTC().Format(time.RFC3339)),
		TaskID:      &p.TaskID,
		ProjectID:   p.ProjectID,
		Occasion:    "due:" + p.DueAt.UTC().Format(time.RFC3339),
	})
	return err
}

func (d *Dispatcher) handleTaskReminder(ctx context.Context, event *events.Event) error {
	var p events.TaskReminderPayload
	if err := event.UnmarshalPayload(&p); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	_, err := d.Notify(ctx, Input{
		RecipientID: p.RecipientID,
		Type:        domain.NotificationTaskReminder,
		Title:       "Task reminder",
		Message:     fmt.Sprintf("Reminder for the task %q", p.TaskTitle),
		TaskID:      &p.TaskID,
		ProjectID:   p.ProjectID,
		Occasion:    "remind:" + p.ReminderAt.UTC().Format(time.RFC3339),
	})
	return err
}
