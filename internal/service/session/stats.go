package session

import "time"

// State is the lifecycle phase of a session.
type State string

const (
	StateIdle     State = "idle"
	StateActive   State = "active"
	StateComplete State = "complete"
)

// Stats counts the grades submitted since Start.
type Stats struct {
	StartedAt         time.Time `json:"started_at"`
	CardsReviewed     int       `json:"cards_reviewed"`
	SuccessfulReviews int       `json:"successful_reviews"`
}

// Elapsed is the time since the session started, or zero if it never did.
func (s Stats) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() || now.Before(s.StartedAt) {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// SuccessRate is the share of passing grades in [0, 1].
func (s Stats) SuccessRate() float64 {
	if s.CardsReviewed == 0 {
		return 0
	}
	return float64(s.SuccessfulReviews) / float64(s.CardsReviewed)
}
