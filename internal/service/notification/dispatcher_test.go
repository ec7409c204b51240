package notification

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/events"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *MockNotificationStore, *MockUserStore) {
	t.Helper()
	notifications := new(MockNotificationStore)
	users := new(MockUserStore)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDispatcher(notifications, users, logger), notifications, users
}

func mustEvent(t *testing.T, eventType events.EventType, payload any) *events.Event {
	t.Helper()
	event, err := events.NewEvent(eventType, payload)
	require.NoError(t, err)
	return event
}

// capturedNotification returns the notification passed to the store's last
// CreateIfAbsent call.
func capturedNotification(t *testing.T, m *MockNotificationStore) *domain.Notification {
	t.Helper()
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Method == "CreateIfAbsent" {
			return m.Calls[i].Arguments.Get(1).(*domain.Notification)
		}
	}
	t.Fatal("CreateIfAbsent was never called")
	return nil
}

func TestNotify(t *testing.T) {
	t.Parallel()

	t.Run("reports whether a row was created", func(t *testing.T) {
		t.Parallel()
		dispatcher, notifications, _ := newTestDispatcher(t)

		notifications.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*domain.Notification")).
			Return(false, nil)

		created, err := dispatcher.Notify(context.Background(), Input{
			RecipientID: uuid.New(),
			Type:        domain.NotificationTaskAssigned,
			Title:       "Task assigned to you",
			Occasion:    "from:none",
		})
		require.NoError(t, err)
		assert.False(t, created, "a dedup hit must not read as a new notification")
	})

	t.Run("rejects invalid input before touching the store", func(t *testing.T) {
		t.Parallel()
		dispatcher, notifications, _ := newTestDispatcher(t)

		_, err := dispatcher.Notify(context.Background(), Input{
			RecipientID: uuid.Nil,
			Type:        domain.NotificationTaskAssigned,
			Title:       "Task assigned to you",
		})
		require.Error(t, err)
		notifications.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
	})
}

func TestHandleTaskAssigned(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	projectID := uuid.New()
	assigneeID := uuid.New()

	t.Run("first assignment keys the occasion as from:none", func(t *testing.T) {
		t.Parallel()
		dispatcher, notifications, _ := newTestDispatcher(t)

		notifications.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*domain.Notification")).
			Return(true, nil)

		event := mustEvent(t, events.TypeTaskAssigned, events.TaskAssignedPayload{
			TaskID:     taskID,
			TaskTitle:  "Write release notes",
			ProjectID:  &projectID,
			AssigneeID: assigneeID,
		})
		require.NoError(t, dispatcher.HandleEvent(context.Background(), event))

		n := capturedNotification(t, notifications)
		assert.Equal(t, assigneeID, n.RecipientID)
		assert.Equal(t, domain.NotificationTaskAssigned, n.Type)
		assert.Equal(t, "from:none", n.Occasion)
		require.NotNil(t, n.TaskID)
		assert.Equal(t, taskID, *n.TaskID)
	})

	t.Run("reassignment keys the occasion by the previous assignee", func(t *testing.T) {
		t.Parallel()
		dispatcher, notifications, _ := newTestDispatcher(t)

		notifications.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*domain.Notification")).
			Return(true, nil)

		previous := uuid.New()
		event := mustEvent(t, events.TypeTaskAssigned, events.TaskAssignedPayload{
			TaskID:             taskID,
			TaskTitle:          "Write release notes",
			AssigneeID:         assigneeID,
			PreviousAssigneeID: &previous,
		})
		require.NoError(t, dispatcher.HandleEvent(context.Background(), event))

		n := capturedNotification(t, notifications)
		assert.Equal(t, "from:"+previous.String(), n.Occasion)
	})
}

func TestHandleTaskCompleted(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	creatorID := uuid.New()
	completedAt := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("notifies the creator keyed by the completion instant", func(t *testing.T) {
		t.Parallel()
		dispatcher, notifications, _ := newTestDispatcher(t)

		notifications.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*domain.Notification")).
			Return(true, nil)

		event := mustEvent(t, events.TypeTaskCompleted, events.TaskCompletedPayload{
			TaskID:      taskID,
			TaskTitle:   "Write release notes",
			CreatorID:   creatorID,
			CompletedBy: uuid.New(),
			CompletedAt: completedAt,
		})
		require.NoError(t, dispatcher.HandleEvent(context.Background(), event))

		n := capturedNotification(t, notifications)
		assert.Equal(t, creatorID, n.RecipientID)
		assert.Equal(t, domain.NotificationTaskCompleted, n.Type)
		assert.Equal(t, "done:2025-06-15T12:00:00Z", n.Occasion)
	})

	t.Run("skips self-notification when the creator completes their own task", func(t *testing.T) {
		t.Parallel()
		dispatcher, notifications, _ := newTestDispatcher(t)

		event := mustEvent(t, events.TypeTaskCompleted, events.TaskCompletedPayload{
			TaskID:      taskID,
			TaskTitle:   "Write release notes",
			CreatorID:   creatorID,
			CompletedBy: creatorID,
			CompletedAt: completedAt,
		})
		require.NoError(t, dispatcher.HandleEvent(context.Background(), event))

		notifications.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
	})
}

func TestHandleInviteIssued(t *testing.T) {
	t.Parallel()

	inviteID := uuid.New()
	projectID := uuid.New()

	t.Run("notifies a registered invitee keyed by the invite ID", func(t *testing.T) {
		t.Parallel()
		dispatcher, notifications, users := newTestDispatcher(t)

		invitee := &domain.User{ID: uuid.New(), Email: "invitee@example.com"}
		users.On("GetByEmail", mock.Anything, "invitee@example.com").Return(invitee, nil)
		notifications.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*domain.Notification")).
			Return(true, nil)

		event := mustEvent(t, events.TypeInviteIssued, events.InviteIssuedPayload{
			InviteID:    inviteID,
			ProjectID:   projectID,
			ProjectName: "Launch Plan",
			Email:       "invitee@example.com",
			InviterID:   uuid.New(),
		})
		require.NoError(t, dispatcher.HandleEvent(context.Background(), event))

		n := capturedNotification(t, notifications)
		assert.Equal(t, invitee.ID, n.RecipientID)
		assert.Equal(t, domain.NotificationProjectInvite, n.Type)
		assert.Equal(t, inviteID.String(), n.Occasion)
		assert.Nil(t, n.TaskID)
		require.NotNil(t, n.ProjectID)
		assert.Equal(t, projectID, *n.ProjectID)
	})

	t.Run("an unregistered invitee is a silent no-op", func(t *testing.T) {
		t.Parallel()
		dispatcher, notifications, users := newTestDispatcher(t)

		users.On("GetByEmail", mock.Anything, "stranger@example.com").Return(nil, store.ErrUserNotFound)

		event := mustEvent(t, events.TypeInviteIssued, events.InviteIssuedPayload{
			InviteID:    inviteID,
			ProjectID:   projectID,
			ProjectName: "Launch Plan",
			Email:       "stranger@example.com",
			InviterID:   uuid.New(),
		})
		require.NoError(t, dispatcher.HandleEvent(context.Background(), event))

		notifications.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
	})
}

func TestHandleScannerEvents(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	recipientID := uuid.New()
	instant := time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)

	t.Run("task due is keyed by the due instant", func(t *testing.T) {
		t.Parallel()
		dispatcher, notifications, _ := newTestDispatcher(t)

		notifications.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*domain.Notification")).
			Return(true, nil)

		event := mustEvent(t, events.TypeTaskDue, events.TaskDuePayload{
			TaskID:      taskID,
			TaskTitle:   "Write release notes",
			RecipientID: recipientID,
			DueAt:       instant,
		})
		require.NoError(t, dispatcher.HandleEvent(context.Background(), event))

		n := capturedNotification(t, notifications)
		assert.Equal(t, domain.NotificationTaskDue, n.Type)
		assert.Equal(t, "due:2025-06-15T18:30:00Z", n.Occasion)
	})

	t.Run("task reminder is keyed by the reminder instant", func(t *testing.T) {
		t.Parallel()
		dispatcher, notifications, _ := newTestDispatcher(t)

		notifications.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*domain.Notification")).
			Return(true, nil)

		event := mustEvent(t, events.TypeTaskReminder, events.TaskReminderPayload{
			TaskID:      taskID,
			TaskTitle:   "Write release notes",
			RecipientID: recipientID,
			ReminderAt:  instant,
		})
		require.NoError(t, dispatcher.HandleEvent(context.Background(), event))

		n := capturedNotification(t, notifications)
		assert.Equal(t, domain.NotificationTaskReminder, n.Type)
		assert.Equal(t, "remind:2025-06-15T18:30:00Z", n.Occasion)
	})
}

func TestHandleEventIgnoresUnknownTypes(t *testing.T) {
	t.Parallel()
	dispatcher, notifications, _ := newTestDispatcher(t)

	event := mustEvent(t, events.EventType("something_else"), map[string]string{"k": "v"})
	require.NoError(t, dispatcher.HandleEvent(context.Background(), event))

	notifications.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}
