package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TypeReviewRecorded is emitted after a grade has been committed to a card.
const TypeReviewRecorded = "review.recorded"

// Event is a typed envelope around a JSON payload.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type names the payload schema, e.g. TypeReviewRecorded
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the time the event describes, supplied by the emitter's clock
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the given type and payload stamped at createdAt.
func NewEvent(eventType string, payload interface{}, createdAt time.Time) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: createdAt.UTC(),
	}, nil
}

// ReviewRecorded is the payload of a TypeReviewRecorded event.
// It carries the card's scheduling state after the grade was applied.
type ReviewRecorded struct {
	CardID          string    `json:"card_id"`
	SubjectID       string    `json:"subject_id"`
	Quality         int       `json:"quality"`
	Interval        int       `json:"interval"`
	RepetitionCount int       `json:"repetition_count"`
	EaseFactor      float64   `json:"ease_factor"`
	ReviewedAt      time.Time `json:"reviewed_at"`
	NextReviewAt    time.Time `json:"next_review_at"`
}

// NewReviewRecordedEvent wraps payload in an Event stamped at payload.ReviewedAt.
func NewReviewRecordedEvent(payload ReviewRecorded) (*Event, error) {
	return NewEvent(TypeReviewRecorded, payload, payload.ReviewedAt)
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Handlers ignore event types they do not understand.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a plain function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}
