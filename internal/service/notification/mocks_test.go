package notification

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/events"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// MockNotificationStore mocks the store.NotificationStore interface
type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) CreateIfAbsent(ctx context.Context, notification *domain.Notification) (bool, error) {
	args := m.Called(ctx, notification)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationStore) ListByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
	unreadOnly bool,
	limit, offset int,
) ([]*domain.Notification, error) {
	args := m.Called(ctx, recipientID, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationStore) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

func (m *MockNotificationStore) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return m
}

// MockUserStore mocks the store.UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	events []*events.Event
	err    error
}

func (e *recordingEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	e.events = append(e.events, event)
	return e.err
}
