package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/platform/logger"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// ErrNotificationNotFound indicates the notification does not exist or does
// not belong to the acting user. The two cases are deliberately
// indistinguishable so callers cannot probe other users' notification IDs.
var ErrNotificationNotFound = errors.New("notification not found")

// Service defines the read side of the notification engine. Writes go
// through the Dispatcher only.
type Service interface {
	// List returns the user's notifications, newest first. unreadOnly
	// restricts to unread rows; limit and offset page the result.
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*domain.Notification, error)

	// MarkRead marks one of the user's notifications as read. Idempotent.
	// Returns ErrNotificationNotFound if the notification does not exist or
	// belongs to someone else.
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error

	// MarkAllRead marks all of the user's unread notifications as read and
	// returns how many rows changed.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type serviceImpl struct {
	notificationStore store.NotificationStore
	logger            *slog.Logger
}

// NewService creates a notification read service backed by the given store.
func NewService(notificationStore store.NotificationStore, logger *slog.Logger) Service {
	if notificationStore == nil {
		panic("notificationStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		notificationStore: notificationStore,
		logger:            logger.With(slog.String("component", "notification_service")),
	}
}

// Ensure serviceImpl implements Service
var _ Service = (*serviceImpl)(nil)

func (s *serviceImpl) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*domain.Notification, error) {
	notifications, err := s.notificationStore.ListByRecipient(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *serviceImpl) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	err := s.notificationStore.MarkRead(ctx, notificationID, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *serviceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notificationStore.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("marked notifications read",
		slog.String("user_id", userID.String()),
		slog.Int64("count", count))

	return count, nil
}
