package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/service/session"
)

// StartSessionRequest is the payload for POST /api/sessions.
type StartSessionRequest struct {
	SubjectIDs []string `json:"subject_ids" validate:"omitempty,dive,required"`
}

// GradeRequest is the payload for POST /api/sessions/{id}/grade.
// Pointers tell a missing field apart from zero.
type GradeRequest struct {
	Position *int `json:"position" validate:"required"`
	Quality  *int `json:"quality"  validate:"required"`
}

// SessionResponse is a session snapshot with its ID.
type SessionResponse struct {
	ID uuid.UUID `json:"id"`
	session.Snapshot
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	SuccessRate    float64 `json:"success_rate"`
}

// RevealResponse reports the reveal flag after a toggle.
type RevealResponse struct {
	Revealed bool `json:"revealed"`
}

// GradeResponse is returned after a successful grade.
type GradeResponse struct {
	Card    domain.CardRecord `json:"card"`
	Session SessionResponse   `json:"session"`
}

// ReviewLogResponse is one entry of a card's review history.
type ReviewLogResponse struct {
	ID           uuid.UUID `json:"id"`
	Quality      int       `json:"quality"`
	Interval     int       `json:"interval"`
	EaseFactor   float64   `json:"ease_factor"`
	ReviewedAt   time.Time `json:"reviewed_at"`
	NextReviewAt time.Time `json:"next_review_at"`
}

func newSessionResponse(id uuid.UUID, snap session.Snapshot, now time.Time) SessionResponse {
	return SessionResponse{
		ID:             id,
		Snapshot:       snap,
		ElapsedSeconds: snap.Stats.Elapsed(now).Seconds(),
		SuccessRate:    snap.Stats.SuccessRate(),
	}
}

func cardRecords(cards []domain.Card) []domain.CardRecord {
	out := make([]domain.CardRecord, 0, len(cards))
	for i := range cards {
		out = append(out, cards[i].ToRecord())
	}
	return out
}

func reviewLogResponses(logs []*domain.ReviewLog) []ReviewLogResponse {
	out := make([]ReviewLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, ReviewLogResponse{
			ID:           l.ID,
			Quality:      int(l.Quality),
			Interval:     l.Interval,
			EaseFactor:   l.EaseFactor,
			ReviewedAt:   l.ReviewedAt,
			NextReviewAt: l.NextReviewAt,
		})
	}
	return out
}
