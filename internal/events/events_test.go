package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	// Define a sample payload
	type testPayload struct {
		ID     uuid.UUID `json:"id"`
		Action string    `json:"action"`
	}

	payload := testPayload{
		ID:     uuid.New(),
		Action: "test_action",
	}

	// Create a new event
	event, err := NewEvent(TypeTaskAssigned, payload)

	// Assert creation was successful
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeTaskAssigned, event.Type)
	assert.NotNil(t, event.Payload)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	// Verify payload was correctly serialized
	var decodedPayload testPayload
	err = json.Unmarshal(event.Payload, &decodedPayload)
	require.NoError(t, err)
	assert.Equal(t, payload.ID, decodedPayload.ID)
	assert.Equal(t, payload.Action, decodedPayload.Action)
}

func TestUnmarshalPayload(t *testing.T) {
	original := TaskDuePayload{
		TaskID:      uuid.New(),
		TaskTitle:   "Write release notes",
		RecipientID: uuid.New(),
		DueAt:       time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC),
	}

	event, err := NewEvent(TypeTaskDue, original)
	require.NoError(t, err)

	var decoded TaskDuePayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, original, decoded)
}

// MockEventHandler implements the Handler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *Event
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the Handler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEventHandler(t *testing.T) {
	// Create a mock handler
	handler := &MockEventHandler{}

	// Create a test event
	event, err := NewEvent(TypeInviteIssued, map[string]string{"key": "value"})
	require.NoError(t, err)

	// Handle the event
	err = handler.HandleEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.Equal(t, 1, handler.HandledCount)
	assert.Equal(t, event, handler.LastEvent)

	// Test error case
	expectedErr := errors.New("handler error")
	handler.HandlerError = expectedErr
	err = handler.HandleEvent(context.Background(), event)
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 2, handler.HandledCount)
}
