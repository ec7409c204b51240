package invite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/events"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// MockInviteStore mocks the store.InviteStore interface
type MockInviteStore struct {
	mock.Mock
}

func (m *MockInviteStore) Create(ctx context.Context, invite *domain.ProjectInvite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *MockInviteStore) GetByToken(ctx context.Context, token string) (*domain.ProjectInvite, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectInvite), args.Error(1)
}

func (m *MockInviteStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectInvite, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ProjectInvite), args.Error(1)
}

func (m *MockInviteStore) MarkAccepted(ctx context.Context, id uuid.UUID, acceptedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, acceptedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockInviteStore) MarkRejected(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockInviteStore) MarkExpired(ctx context.Context, id uuid.UUID, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

func (m *MockInviteStore) ExpireStalePending(ctx context.Context, projectID uuid.UUID, email string, now time.Time) error {
	args := m.Called(ctx, projectID, email, now)
	return args.Error(0)
}

func (m *MockInviteStore) WithTx(tx *sql.Tx) store.InviteStore {
	return m
}

// MockProjectStore mocks the store.ProjectStore interface
type MockProjectStore struct {
	mock.Mock
}

func (m *MockProjectStore) Create(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectStore) Update(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Project), args.Error(1)
}

func (m *MockProjectStore) IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, projectID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectStore) AddMember(ctx context.Context, projectID, userID uuid.UUID) error {
	args := m.Called(ctx, projectID, userID)
	return args.Error(0)
}

func (m *MockProjectStore) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	args := m.Called(ctx, projectID, userID)
	return args.Error(0)
}

func (m *MockProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
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
