package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies what happened in the domain.
type EventType string

// Event types consumed by the notification dispatcher. The first three are
// fired by mutation hooks after a successful CRUD write; the last two are
// produced by the reminder scanner. Both sources flow through the same
// emitter and the same dedup contract.
const (
	TypeTaskAssigned  EventType = "task_assigned"
	TypeTaskCompleted EventType = "task_completed"
	TypeInviteIssued  EventType = "invite_issued"
	TypeTaskDue       EventType = "task_due"
	TypeTaskReminder  EventType = "task_reminder"
)

// Event is a domain event with a serialized payload. Handlers decode the
// payload by type, keeping the emitter free of dependencies on the packages
// that produce or consume events.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates what happened
	Type EventType `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType EventType, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// TaskAssignedPayload carries a task assignment change.
type TaskAssignedPayload struct {
	TaskID             uuid.UUID  `json:"task_id"`
	TaskTitle          string     `json:"task_title"`
	ProjectID          *uuid.UUID `json:"project_id,omitempty"`
	AssigneeID         uuid.UUID  `json:"assignee_id"`
	PreviousAssigneeID *uuid.UUID `json:"previous_assignee_id,omitempty"`
}

// TaskCompletedPayload carries a task's transition into done.
type TaskCompletedPayload struct {
	TaskID      uuid.UUID  `json:"task_id"`
	TaskTitle   string     `json:"task_title"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty"`
	CreatorID   uuid.UUID  `json:"creator_id"`
	CompletedBy uuid.UUID  `json:"completed_by"`
	CompletedAt time.Time  `json:"completed_at"`
}

// InviteIssuedPayload carries a freshly issued project invite.
type InviteIssuedPayload struct {
	InviteID    uuid.UUID `json:"invite_id"`
	ProjectID   uuid.UUID `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Email       string    `json:"email"`
	InviterID   uuid.UUID `json:"inviter_id"`
}

// TaskDuePayload carries a scanner finding: a task due within the lookahead
// window or already overdue. DueAt is part of the notification dedup key, so
// re-scans and unchanged re-saves stay silent while a genuinely new due date
// alerts again.
type TaskDuePayload struct {
	TaskID      uuid.UUID  `json:"task_id"`
	TaskTitle   string     `json:"task_title"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	DueAt       time.Time  `json:"due_at"`
}

// TaskReminderPayload carries a scanner finding: a task whose reminder
// instant has passed.
type TaskReminderPayload struct {
	TaskID      uuid.UUID  `json:"task_id"`
	TaskTitle   string     `json:"task_title"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	ReminderAt  time.Time  `json:"reminder_at"`
}

// Handler defines an interface for components that can handle events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// Emitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type Emitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *Event) error
}
