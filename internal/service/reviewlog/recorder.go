// Package reviewlog keeps the history of committed grades.
package reviewlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/events"
	"github.com/phrazzld/studydeck/internal/platform/logger"
	"github.com/phrazzld/studydeck/internal/store"
)

// Recorder persists a domain.ReviewLog for every review.recorded event.
// It implements events.EventHandler.
type Recorder struct {
	store  store.ReviewLogStore
	logger *slog.Logger
}

var _ events.EventHandler = (*Recorder)(nil)

// NewRecorder creates a Recorder writing to s.
func NewRecorder(s store.ReviewLogStore, log *slog.Logger) *Recorder {
	if s == nil {
		panic("review log store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{
		store:  s,
		logger: log.With(slog.String("component", "review_log_recorder")),
	}
}

// HandleEvent stores the log entry carried by a review.recorded event.
// The event ID becomes the entry ID, so a redelivered event is stored once.
func (r *Recorder) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeReviewRecorded {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, r.logger)

	var payload events.ReviewRecorded
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}

	entry := &domain.ReviewLog{
		ID:           event.ID,
		CardID:       payload.CardID,
		Quality:      domain.Quality(payload.Quality),
		Interval:     payload.Interval,
		EaseFactor:   payload.EaseFactor,
		ReviewedAt:   payload.ReviewedAt.UTC(),
		NextReviewAt: payload.NextReviewAt.UTC(),
	}

	if err := r.store.Create(ctx, entry); err != nil {
		if errors.Is(err, store.ErrReviewLogExists) {
			log.Debug("review log already recorded", slog.String("event_id", event.ID.String()))
			return nil
		}
		return fmt.Errorf("failed to record review for card %s: %w", payload.CardID, err)
	}

	log.Debug("review log recorded",
		slog.String("card_id", entry.CardID),
		slog.Int("quality", int(entry.Quality)))
	return nil
}

// List returns up to limit review logs for cardID, newest first.
func (r *Recorder) List(ctx context.Context, cardID string, limit int) ([]*domain.ReviewLog, error) {
	return r.store.ListByCard(ctx, cardID, limit)
}
