package domain

import (
	"fmt"
	"time"
)

// CardRecord is the flat, storage-agnostic representation of a Card.
// NextReviewAt is an RFC 3339 timestamp so the record survives any text-based format.
type CardRecord struct {
	ID              string  `json:"id"               mapstructure:"id"`
	Front           string  `json:"front"            mapstructure:"front"`
	Back            string  `json:"back"             mapstructure:"back"`
	SubjectID       string  `json:"subject_id"       mapstructure:"subject_id"`
	Interval        int     `json:"interval"         mapstructure:"interval"`
	RepetitionCount int     `json:"repetition_count" mapstructure:"repetition_count"`
	EaseFactor      float64 `json:"ease_factor"      mapstructure:"ease_factor"`
	NextReviewAt    string  `json:"next_review_at"   mapstructure:"next_review_at"`
	DifficultyLabel string  `json:"difficulty_label" mapstructure:"difficulty_label"`
}

// ToRecord flattens the card into a CardRecord.
func (c *Card) ToRecord() CardRecord {
	return CardRecord{
		ID:              c.ID,
		Front:           c.Front,
		Back:            c.Back,
		SubjectID:       c.SubjectID,
		Interval:        c.Interval,
		RepetitionCount: c.RepetitionCount,
		EaseFactor:      c.EaseFactor,
		NextReviewAt:    c.NextReviewAt.UTC().Format(time.RFC3339Nano),
		DifficultyLabel: string(c.DifficultyLabel),
	}
}

// CardFromRecord rebuilds a Card from its flat record and validates it.
func CardFromRecord(r CardRecord) (*Card, error) {
	next, err := time.Parse(time.RFC3339Nano, r.NextReviewAt)
	if err != nil {
		return nil, NewValidationError(
			"next_review_at",
			fmt.Sprintf("is not an RFC 3339 timestamp: %q", r.NextReviewAt),
			ErrInvalidFormat,
		)
	}

	card := &Card{
		ID:              r.ID,
		Front:           r.Front,
		Back:            r.Back,
		SubjectID:       r.SubjectID,
		DifficultyLabel: DifficultyLabel(r.DifficultyLabel),
		Interval:        r.Interval,
		RepetitionCount: r.RepetitionCount,
		EaseFactor:      r.EaseFactor,
		NextReviewAt:    next.UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, fmt.Errorf("card %q: %w", r.ID, err)
	}

	return card, nil
}
