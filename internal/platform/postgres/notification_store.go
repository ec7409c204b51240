package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/platform/logger"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// notificationColumns is the column list shared by notification SELECTs.
const notificationColumns = `id, recipient_id, type, title, message,
	task_id, project_id, occasion, read, created_at`

// PostgresNotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a new PostgreSQL implementation of
// the NotificationStore interface.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

// Ensure PostgresNotificationStore implements store.NotificationStore interface
var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// WithTx implements store.NotificationStore.WithTx
func (s *PostgresNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return &PostgresNotificationStore{
		db:     tx,
		logger: s.logger,
	}
}

// CreateIfAbsent implements store.NotificationStore.CreateIfAbsent
// The dedup unique index plus ON CONFLICT DO NOTHING makes this safe to call
// any number of times, from any number of processes, for the same key.
func (s *PostgresNotificationStore) CreateIfAbsent(
	ctx context.Context,
	notification *domain.Notification,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := notification.Validate(); err != nil {
		log.Warn("notification validation failed during create",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return false, err
	}

	query := `
		INSERT INTO notifications (id, recipient_id, type, title, message,
			task_id, project_id, occasion, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (recipient_id, type, dedup_task_id, dedup_project_id, occasion)
			DO NOTHING
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		notification.ID,
		notification.RecipientID,
		notification.Type,
		notification.Title,
		notification.Message,
		notification.TaskID,
		notification.ProjectID,
		notification.Occasion,
		notification.Read,
		notification.CreatedAt,
	)

	if err != nil {
		log.Error("failed to create notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()),
			slog.String("type", string(notification.Type)))
		return false, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	created := rowsAffected > 0
	if created {
		log.Info("notification created",
			slog.String("notification_id", notification.ID.String()),
			slog.String("recipient_id", notification.RecipientID.String()),
			slog.String("type", string(notification.Type)))
	} else {
		log.Debug("notification suppressed by dedup key",
			slog.String("recipient_id", notification.RecipientID.String()),
			slog.String("type", string(notification.Type)),
			slog.String("occasion", notification.Occasion))
	}
	return created, nil
}

// ListByRecipient implements store.NotificationStore.ListByRecipient
func (s *PostgresNotificationStore) ListByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
	unreadOnly bool,
	limit, offset int,
) ([]*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1 AND (NOT $2 OR NOT read)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := s.db.QueryContext(ctx, query, recipientID, unreadOnly, limit, offset)
	if err != nil {
		log.Error("failed to list notifications",
			slog.String("error", err.Error()),
			slog.String("recipient_id", recipientID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	notifications := []*domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		var notifType string
		var taskID, projectID uuid.NullUUID

		err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&notifType,
			&n.Title,
			&n.Message,
			&taskID,
			&projectID,
			&n.Occasion,
			&n.Read,
			&n.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan notification row",
				slog.String("error", err.Error()))
			return nil, err
		}

		n.Type = domain.NotificationType(notifType)
		if taskID.Valid {
			n.TaskID = &taskID.UUID
		}
		if projectID.Valid {
			n.ProjectID = &projectID.UUID
		}
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return notifications, nil
}

// MarkRead implements store.NotificationStore.MarkRead
// Returns store.ErrNotificationNotFound if no row matches both the id and
// the recipient.
func (s *PostgresNotificationStore) MarkRead(
	ctx context.Context,
	id, recipientID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1 AND recipient_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		log.Error("failed to mark notification read",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		log.Debug("notification not found for mark read",
			slog.String("notification_id", id.String()),
			slog.String("recipient_id", recipientID.String()))
		return store.ErrNotificationNotFound
	}

	return nil
}

// MarkAllRead implements store.NotificationStore.MarkAllRead
func (s *PostgresNotificationStore) MarkAllRead(
	ctx context.Context,
	recipientID uuid.UUID,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE recipient_id = $1 AND NOT read
	`

	result, err := s.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		log.Error("failed to mark all notifications read",
			slog.String("error", err.Error()),
			slog.String("recipient_id", recipientID.String()))
		return 0, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	log.Info("marked all notifications read",
		slog.String("recipient_id", recipientID.String()),
		slog.Int64("count", rowsAffected))
	return rowsAffected, nil
}
