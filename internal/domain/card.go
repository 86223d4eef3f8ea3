package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Initial scheduling values for a card that has never been graded.
const (
	InitialInterval   = 1
	InitialEaseFactor = 2.5

	// MinEaseFactor is the hard floor for a card's ease factor.
	MinEaseFactor = 1.3
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card has no question text.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardSubjectEmpty is returned when a card does not reference a subject.
	ErrCardSubjectEmpty = errors.New("card subject ID cannot be empty")

	// ErrInvalidInterval is returned when a card's interval is below one day.
	ErrInvalidInterval = errors.New("interval must be at least 1 day")

	// ErrInvalidRepetitionCount is returned when a repetition count is negative.
	ErrInvalidRepetitionCount = errors.New("repetition count cannot be negative")

	// ErrInvalidEaseFactor is returned when an ease factor is below MinEaseFactor.
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")

	// ErrInvalidDifficultyLabel is returned for labels other than easy, medium and hard.
	ErrInvalidDifficultyLabel = errors.New("invalid difficulty label")
)

// SchedulingState is the part of a card the scheduler reads.
type SchedulingState struct {
	Interval        int
	RepetitionCount int
	EaseFactor      float64
}

// Schedule is the scheduler's output for a single grading event.
type Schedule struct {
	SchedulingState
	NextReviewAt time.Time
}

// Card is a study item together with its spaced repetition state.
// Front and Back are opaque to the scheduler; SubjectID is only used for filtering.
type Card struct {
	ID              string          `json:"id"`
	Front           string          `json:"front"`
	Back            string          `json:"back"`
	SubjectID       string          `json:"subject_id"`
	DifficultyLabel DifficultyLabel `json:"difficulty_label"`
	Interval        int             `json:"interval"`         // Days until the next review
	RepetitionCount int             `json:"repetition_count"` // Consecutive passing reviews since the last lapse
	EaseFactor      float64         `json:"ease_factor"`
	NextReviewAt    time.Time       `json:"next_review_at"`
}

// NewCard creates an unrated card that is due at now.
// An empty id is replaced with a generated UUID.
func NewCard(id, subjectID, front, back string, now time.Time) (*Card, error) {
	if strings.TrimSpace(id) == "" {
		id = uuid.New().String()
	}

	card := &Card{
		ID:              id,
		Front:           front,
		Back:            back,
		SubjectID:       subjectID,
		DifficultyLabel: DifficultyUnrated,
		Interval:        InitialInterval,
		RepetitionCount: 0,
		EaseFactor:      InitialEaseFactor,
		NextReviewAt:    now.UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrCardIDEmpty
	}

	if strings.TrimSpace(c.Front) == "" {
		return ErrCardFrontEmpty
	}

	if strings.TrimSpace(c.SubjectID) == "" {
		return ErrCardSubjectEmpty
	}

	if c.Interval < 1 {
		return ErrInvalidInterval
	}

	if c.RepetitionCount < 0 {
		return ErrInvalidRepetitionCount
	}

	if !(c.EaseFactor >= MinEaseFactor) || math.IsInf(c.EaseFactor, 1) {
		return ErrInvalidEaseFactor
	}

	if !c.DifficultyLabel.Valid() {
		return ErrInvalidDifficultyLabel
	}

	return nil
}

// IsDue reports whether the card's review time has been reached at asOf.
func (c *Card) IsDue(asOf time.Time) bool {
	return !c.NextReviewAt.After(asOf)
}

// SchedulingState returns the fields the scheduler consumes.
func (c *Card) SchedulingState() SchedulingState {
	return SchedulingState{
		Interval:        c.Interval,
		RepetitionCount: c.RepetitionCount,
		EaseFactor:      c.EaseFactor,
	}
}

// WithSchedule returns a copy of the card carrying the schedule produced by
// grading it with quality q. The receiver is left untouched.
func (c Card) WithSchedule(s Schedule, q Quality) Card {
	c.Interval = s.Interval
	c.RepetitionCount = s.RepetitionCount
	c.EaseFactor = s.EaseFactor
	c.NextReviewAt = s.NextReviewAt.UTC()
	c.DifficultyLabel = LabelForQuality(q)
	return c
}
