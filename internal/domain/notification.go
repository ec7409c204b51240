package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what kind of event a notification reports.
type NotificationType string

// Possible notification type values
const (
	NotificationTaskAssigned  NotificationType = "task_assigned"
	NotificationTaskDue       NotificationType = "task_due"
	NotificationTaskReminder  NotificationType = "task_reminder"
	NotificationProjectInvite NotificationType = "project_invite"
	NotificationTaskCompleted NotificationType = "task_completed"
)

// Common validation errors for Notification
var (
	ErrEmptyNotificationID        = errors.New("notification ID cannot be empty")
	ErrEmptyNotificationRecipient = errors.New("notification recipient ID cannot be empty")
	ErrEmptyNotificationTitle     = errors.New("notification title cannot be empty")
)

// Notification is a durable, user-facing alert produced by the dispatcher.
// The tuple (recipient, type, task, project, occasion) is unique: repeated
// triggers for the same occasion never produce a second row. Delivery
// (email, push) is outside this system; the row itself is the product.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	TaskID      *uuid.UUID       `json:"task_id,omitempty"`
	ProjectID   *uuid.UUID       `json:"project_id,omitempty"`
	Occasion    string           `json:"-"` // Dedup discriminator, not client-facing
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewNotification creates an unread notification for the given recipient.
// Returns an error if validation fails.
func NewNotification(
	recipientID uuid.UUID,
	notifType NotificationType,
	title, message string,
) (*Notification, error) {
	n := &Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		Read:        false,
		CreatedAt:   time.Now().UTC(),
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// Validate checks if the Notification has valid data.
// Returns an error if any field fails validation.
func (n *Notification) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNotificationID
	}

	if n.RecipientID == uuid.Nil {
		return ErrEmptyNotificationRecipient
	}

	if n.Title == "" {
		return ErrEmptyNotificationTitle
	}

	if !isValidNotificationType(n.Type) {
		return ErrInvalidNotificationType
	}

	return nil
}

// isValidNotificationType checks if the given type is a valid NotificationType.
func isValidNotificationType(t NotificationType) bool {
	switch t {
	case NotificationTaskAssigned, NotificationTaskDue, NotificationTaskReminder,
		NotificationProjectInvite, NotificationTaskCompleted:
		return true
	default:
		return false
	}
}
