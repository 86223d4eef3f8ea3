package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	type testPayload struct {
		ID     uuid.UUID `json:"id"`
		Action string    `json:"action"`
	}
	payload := testPayload{ID: uuid.New(), Action: "test_action"}
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	event, err := NewEvent("test_event", payload, at)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "test_event", event.Type)
	assert.True(t, event.CreatedAt.Equal(at))
	assert.Equal(t, time.UTC, event.CreatedAt.Location())

	var decoded testPayload
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEventRejectsUnencodablePayload(t *testing.T) {
	t.Parallel()
	_, err := NewEvent("bad", make(chan int), time.Now())
	assert.Error(t, err)
}

func TestReviewRecordedRoundTrip(t *testing.T) {
	t.Parallel()
	reviewed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	payload := ReviewRecorded{
		CardID:          "c1",
		SubjectID:       "math",
		Quality:         5,
		Interval:        6,
		RepetitionCount: 2,
		EaseFactor:      2.7,
		ReviewedAt:      reviewed,
		NextReviewAt:    reviewed.AddDate(0, 0, 6),
	}

	event, err := NewReviewRecordedEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, TypeReviewRecorded, event.Type)
	assert.True(t, event.CreatedAt.Equal(reviewed))

	var decoded ReviewRecorded
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload.CardID, decoded.CardID)
	assert.Equal(t, payload.Interval, decoded.Interval)
	assert.True(t, decoded.NextReviewAt.Equal(payload.NextReviewAt))
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	LastEvent    *Event
	HandlerError error
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}
