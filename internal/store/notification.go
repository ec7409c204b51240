package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
)

// NotificationStore defines the interface for notification persistence.
type NotificationStore interface {
	// CreateIfAbsent inserts the notification unless a row with the same
	// dedup key (recipient, type, task, project, occasion) already exists.
	// The insert rides on a unique index with ON CONFLICT DO NOTHING, so
	// concurrent callers with the same key produce exactly one row.
	// The boolean reports whether a row was actually created.
	CreateIfAbsent(ctx context.Context, notification *domain.Notification) (bool, error)

	// ListByRecipient retrieves the recipient's notifications, newest first.
	// When unreadOnly is true, read notifications are filtered out.
	ListByRecipient(
		ctx context.Context,
		recipientID uuid.UUID,
		unreadOnly bool,
		limit, offset int,
	) ([]*domain.Notification, error)

	// MarkRead marks a single notification as read. The recipient is part of
	// the predicate so one user can never flip another user's notification.
	// Returns ErrNotificationNotFound if no matching row exists.
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error

	// MarkAllRead marks all of the recipient's unread notifications as read
	// and returns how many rows changed.
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)

	// WithTx returns a new NotificationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) NotificationStore
}
