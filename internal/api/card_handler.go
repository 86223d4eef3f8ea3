package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/studydeck/internal/api/shared"
	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/platform/logger"
	"github.com/phrazzld/studydeck/internal/service/deck"
)

// CardReader is the read-only query surface of the card repository.
type CardReader interface {
	AllCards() []domain.Card
	Card(id string) (domain.Card, error)
	CardsBySubject(subjects domain.SubjectSet) []domain.Card
	DueCardsForSubjects(asOf time.Time, subjects domain.SubjectSet) []domain.Card
	Metrics(now time.Time) deck.Metrics
}

// ReviewLister returns a card's review history, newest first.
type ReviewLister interface {
	List(ctx context.Context, cardID string, limit int) ([]*domain.ReviewLog, error)
}

// Clock returns the current time. Handlers never read the wall clock directly.
type Clock func() time.Time

// CardHandler serves the card, subject and metrics queries.
type CardHandler struct {
	cards    CardReader
	reviews  ReviewLister
	subjects []domain.Subject
	now      Clock
	logger   *slog.Logger
}

// NewCardHandler creates a CardHandler. reviews may be nil, in which case
// review history is always empty.
func NewCardHandler(
	cards CardReader,
	reviews ReviewLister,
	subjects []domain.Subject,
	now Clock,
	log *slog.Logger,
) *CardHandler {
	if cards == nil {
		panic("card reader cannot be nil for CardHandler")
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &CardHandler{
		cards:    cards,
		reviews:  reviews,
		subjects: subjects,
		now:      now,
		logger:   log.With(slog.String("component", "card_handler")),
	}
}

// ListSubjects handles GET /api/subjects.
func (h *CardHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects := h.subjects
	if subjects == nil {
		subjects = []domain.Subject{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, subjects)
}

// ListCards handles GET /api/cards.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards := h.cards.CardsBySubject(subjectsFromQuery(r))
	shared.RespondWithJSON(w, r, http.StatusOK, cardRecords(cards))
}

// ListDueCards handles GET /api/cards/due.
func (h *CardHandler) ListDueCards(w http.ResponseWriter, r *http.Request) {
	cards := h.cards.DueCardsForSubjects(h.now(), subjectsFromQuery(r))
	shared.RespondWithJSON(w, r, http.StatusOK, cardRecords(cards))
}

// GetCard handles GET /api/cards/{id}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.Card(chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card.ToRecord())
}

// ListReviews handles GET /api/cards/{id}/reviews[?limit=n].
func (h *CardHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	cardID := chi.URLParam(r, "id")

	if _, err := h.cards.Card(cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to list reviews")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			HandleAPIError(w, r, domain.NewValidationError("limit", "must be a non-negative integer", nil), "")
			return
		}
		limit = n
	}

	if h.reviews == nil {
		shared.RespondWithJSON(w, r, http.StatusOK, []ReviewLogResponse{})
		return
	}

	logs, err := h.reviews.List(r.Context(), cardID, limit)
	if err != nil {
		log.Error("failed to list review logs",
			slog.String("card_id", cardID),
			slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "Failed to list reviews")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, reviewLogResponses(logs))
}

// GetStats handles GET /api/stats.
func (h *CardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.cards.Metrics(h.now()))
}
