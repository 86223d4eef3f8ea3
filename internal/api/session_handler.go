package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studydeck/internal/api/shared"
	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/platform/logger"
	"github.com/phrazzld/studydeck/internal/service/session"
)

// SessionHandler exposes session commands over HTTP.
type SessionHandler struct {
	sessions *session.Manager
	now      Clock
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions *session.Manager, now Clock, log *slog.Logger) *SessionHandler {
	if sessions == nil {
		panic("session manager cannot be nil for SessionHandler")
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &SessionHandler{
		sessions: sessions,
		now:      now,
		logger:   log.With(slog.String("component", "session_handler")),
	}
}

// Create handles POST /api/sessions. It creates and starts a session in one
// step; when nothing is due it answers 204 and keeps no session.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	req, ok := decodeStartRequest(w, r)
	if !ok {
		return
	}

	id, ctrl := h.sessions.Create()
	now := h.now()
	if err := ctrl.Start(r.Context(), now, session.StartOptions{SubjectIDs: req.SubjectIDs}); err != nil {
		_ = h.sessions.Delete(id)
		if errors.Is(err, session.ErrNoCardsDue) {
			log.Debug("no cards due, session discarded")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}

	log.Info("session created", slog.String("session_id", id.String()))
	w.Header().Set("Location", "/api/sessions/"+id.String())
	shared.RespondWithJSON(w, r, http.StatusCreated, newSessionResponse(id, ctrl.Snapshot(), now))
}

// Start handles POST /api/sessions/{id}/start. It restarts an idle session,
// typically after a reset, with a fresh snapshot of the due cards. When nothing
// is due it answers 204 and the session stays idle.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	req, ok := decodeStartRequest(w, r)
	if !ok {
		return
	}

	now := h.now()
	if err := ctrl.Start(r.Context(), now, session.StartOptions{SubjectIDs: req.SubjectIDs}); err != nil {
		if errors.Is(err, session.ErrNoCardsDue) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}

	log.Info("session restarted", slog.String("session_id", id.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(id, ctrl.Snapshot(), now))
}

// decodeStartRequest reads the optional start body. An empty body starts over
// every subject.
func decodeStartRequest(w http.ResponseWriter, r *http.Request) (StartSessionRequest, bool) {
	var req StartSessionRequest
	if r.ContentLength != 0 {
		if err := shared.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err, "")
			return req, false
		}
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return req, false
	}
	return req, true
}

// Get handles GET /api/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(id, ctrl.Snapshot(), h.now()))
}

// Reveal handles POST /api/sessions/{id}/reveal.
func (h *SessionHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	_, ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	revealed, err := ctrl.Reveal()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, RevealResponse{Revealed: revealed})
}

// Grade handles POST /api/sessions/{id}/grade.
func (h *SessionHandler) Grade(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req GradeRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	now := h.now()
	card, err := ctrl.GradeAt(r.Context(), *req.Position, domain.Quality(*req.Quality), now)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to grade card")
		return
	}

	log.Debug("card graded",
		slog.String("session_id", id.String()),
		slog.String("card_id", card.ID),
		slog.Int("quality", *req.Quality))
	shared.RespondWithJSON(w, r, http.StatusOK, GradeResponse{
		Card:    card.ToRecord(),
		Session: newSessionResponse(id, ctrl.Snapshot(), now),
	})
}

// Back handles POST /api/sessions/{id}/back.
func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*session.Controller).Back)
}

// Forward handles POST /api/sessions/{id}/forward.
func (h *SessionHandler) Forward(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*session.Controller).Forward)
}

func (h *SessionHandler) navigate(w http.ResponseWriter, r *http.Request, move func(*session.Controller) error) {
	id, ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := move(ctrl); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(id, ctrl.Snapshot(), h.now()))
}

// Reset handles POST /api/sessions/{id}/reset. The session returns to idle and
// stays registered; POST /api/sessions/{id}/start begins it again.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ctrl, ok := h.lookup(w, r)
	if !ok {
		return
	}
	ctrl.Reset()
	shared.RespondWithJSON(w, r, http.StatusOK, newSessionResponse(id, ctrl.Snapshot(), h.now()))
}

// Delete handles DELETE /api/sessions/{id}. Applied grades are kept.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.sessions.Delete(id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (uuid.UUID, *session.Controller, bool) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, nil, false
	}
	ctrl, err := h.sessions.Get(id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, nil, false
	}
	return id, ctrl, true
}
