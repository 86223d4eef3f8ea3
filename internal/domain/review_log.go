package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrReviewLogCardIDEmpty is returned when a review log does not reference a card.
var ErrReviewLogCardIDEmpty = errors.New("review log card ID cannot be empty")

// ReviewLog records one committed grading event and the schedule it produced.
type ReviewLog struct {
	ID           uuid.UUID `json:"id"`
	CardID       string    `json:"card_id"`
	Quality      Quality   `json:"quality"`
	Interval     int       `json:"interval"`
	EaseFactor   float64   `json:"ease_factor"`
	ReviewedAt   time.Time `json:"reviewed_at"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// NewReviewLog creates a log entry for a card that was graded at reviewedAt.
func NewReviewLog(card Card, q Quality, reviewedAt time.Time) (*ReviewLog, error) {
	log := &ReviewLog{
		ID:           uuid.New(),
		CardID:       card.ID,
		Quality:      q,
		Interval:     card.Interval,
		EaseFactor:   card.EaseFactor,
		ReviewedAt:   reviewedAt.UTC(),
		NextReviewAt: card.NextReviewAt.UTC(),
	}

	if err := log.Validate(); err != nil {
		return nil, err
	}
	return log, nil
}

// Validate checks if the ReviewLog has valid data.
func (l *ReviewLog) Validate() error {
	if l.CardID == "" {
		return ErrReviewLogCardIDEmpty
	}
	if !l.Quality.Valid() {
		return ErrInvalidGrade
	}
	return nil
}
