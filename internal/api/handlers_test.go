package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studydeck/internal/api"
	"github.com/phrazzld/studydeck/internal/api/middleware"
	"github.com/phrazzld/studydeck/internal/api/shared"
	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/domain/srs"
	"github.com/phrazzld/studydeck/internal/events"
	"github.com/phrazzld/studydeck/internal/mocks"
	"github.com/phrazzld/studydeck/internal/service/deck"
	"github.com/phrazzld/studydeck/internal/service/reviewlog"
	"github.com/phrazzld/studydeck/internal/service/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC)

type testServer struct {
	router http.Handler
	repo   *deck.Repository
}

func newTestServer(t *testing.T, withReviews bool) *testServer {
	t.Helper()

	scheduler, err := srs.NewDefaultService()
	require.NoError(t, err)

	var (
		opts    []deck.Option
		reviews api.ReviewLister
	)
	if withReviews {
		emitter := events.NewInMemoryEventEmitter(nil)
		rec := reviewlog.NewRecorder(&mocks.MockReviewLogStore{}, nil)
		emitter.RegisterHandler(rec)
		opts = append(opts, deck.WithEmitter(emitter))
		reviews = rec
	}

	repo := deck.NewRepository(scheduler, opts...)
	for _, c := range []struct{ id, subject string }{{"c1", "bio"}, {"c2", "chem"}, {"c3", "bio"}} {
		card, err := domain.NewCard(c.id, c.subject, "Q "+c.id, "A "+c.id, fixedNow.Add(-time.Hour))
		require.NoError(t, err)
		require.NoError(t, repo.Add(*card))
	}
	later, err := domain.NewCard("later", "bio", "Q", "A", fixedNow.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Add(*later))

	clock := func() time.Time { return fixedNow }
	subjects := []domain.Subject{{ID: "bio", DisplayName: "Biology"}, {ID: "chem", DisplayName: "Chemistry"}}

	r := chi.NewRouter()
	r.Use(middleware.Trace(nil))
	api.Mount(r,
		api.NewCardHandler(repo, reviews, subjects, clock, nil),
		api.NewSessionHandler(session.NewManager(repo, nil), clock, nil))

	return &testServer{router: r, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCardQueries(t *testing.T) {
	t.Parallel() // Enable parallel execution
	s := newTestServer(t, false)

	tests := []struct {
		name    string
		path    string
		wantIDs []string
	}{
		{"all cards", "/api/cards", []string{"c1", "c2", "c3", "later"}},
		{"cards by subject", "/api/cards?subject=chem", []string{"c2"}},
		{"due cards", "/api/cards/due", []string{"c1", "c2", "c3"}},
		{"due cards by subject", "/api/cards/due?subject=bio", []string{"c1", "c3"}},
		{"comma separated subjects", "/api/cards?subject=bio,chem", []string{"c1", "c2", "c3", "later"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, w.Code)

			records := decode[[]domain.CardRecord](t, w)
			ids := make([]string, 0, len(records))
			for _, r := range records {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestGetCard(t *testing.T) {
	t.Parallel() // Enable parallel execution
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/api/cards/c2", "")
	require.Equal(t, http.StatusOK, w.Code)
	rec := decode[domain.CardRecord](t, w)
	assert.Equal(t, "chem", rec.SubjectID)
	assert.Equal(t, 2.5, rec.EaseFactor)

	w = s.do(t, http.MethodGet, "/api/cards/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	errResp := decode[shared.ErrorResponse](t, w)
	assert.Equal(t, "Card not found", errResp.Error)
	assert.NotEmpty(t, errResp.TraceID)
}

func TestSubjectsAndStats(t *testing.T) {
	t.Parallel() // Enable parallel execution
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/api/subjects", "")
	require.Equal(t, http.StatusOK, w.Code)
	subjects := decode[[]domain.Subject](t, w)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Biology", subjects[0].DisplayName)

	w = s.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, deck.Metrics{Total: 4, ToReview: 3}, decode[deck.Metrics](t, w))
}

func TestSessionFlow(t *testing.T) {
	t.Parallel() // Enable parallel execution
	s := newTestServer(t, true)

	w := s.do(t, http.MethodPost, "/api/sessions", `{"subject_ids": ["bio"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[api.SessionResponse](t, w)
	assert.Equal(t, session.StateActive, created.State)
	assert.Equal(t, 2, created.Total)
	require.NotNil(t, created.Current)
	assert.Equal(t, "c1", created.Current.ID)
	base := "/api/sessions/" + created.ID.String()
	assert.Equal(t, base, w.Header().Get("Location"))

	// Grading before reveal
	w = s.do(t, http.MethodPost, base+"/grade", `{"position": 0, "quality": 5}`)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = s.do(t, http.MethodPost, base+"/reveal", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[api.RevealResponse](t, w).Revealed)

	// Out of range grade
	w = s.do(t, http.MethodPost, base+"/grade", `{"position": 0, "quality": 7}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Quality must be between 0 and 5", decode[shared.ErrorResponse](t, w).Error)

	w = s.do(t, http.MethodPost, base+"/grade", `{"position": 0, "quality": 5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	graded := decode[api.GradeResponse](t, w)
	assert.Equal(t, "c1", graded.Card.ID)
	assert.Equal(t, 1, graded.Card.RepetitionCount)
	assert.Equal(t, 1, graded.Session.Position)
	assert.Equal(t, 1, graded.Session.Stats.CardsReviewed)

	// Replayed submission
	w = s.do(t, http.MethodPost, base+"/grade", `{"position": 0, "quality": 5}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Quality zero is a valid grade, not a missing field
	w = s.do(t, http.MethodPost, base+"/reveal", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, base+"/grade", `{"position": 1, "quality": 0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	final := decode[api.GradeResponse](t, w)
	assert.Equal(t, session.StateComplete, final.Session.State)
	assert.Equal(t, 2, final.Session.Stats.CardsReviewed)
	assert.Equal(t, 1, final.Session.Stats.SuccessfulReviews)
	assert.InDelta(t, 0.5, final.Session.SuccessRate, 1e-9)

	// Review history was recorded through the event pipeline
	w = s.do(t, http.MethodGet, "/api/cards/c1/reviews", "")
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[[]api.ReviewLogResponse](t, w)
	require.Len(t, logs, 1)
	assert.Equal(t, 5, logs[0].Quality)

	w = s.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.StateComplete, decode[api.SessionResponse](t, w).State)

	w = s.do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Abandoning kept the grades
	c1, err := s.repo.Card("c1")
	require.NoError(t, err)
	assert.Equal(t, 1, c1.RepetitionCount)
}

func TestSessionNavigationAndReset(t *testing.T) {
	t.Parallel() // Enable parallel execution
	s := newTestServer(t, false)

	w := s.do(t, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/api/sessions/" + decode[api.SessionResponse](t, w).ID.String()

	w = s.do(t, http.MethodPost, base+"/forward", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[api.SessionResponse](t, w).Position)

	w = s.do(t, http.MethodPost, base+"/back", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[api.SessionResponse](t, w).Position)

	w = s.do(t, http.MethodPost, base+"/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.StateIdle, decode[api.SessionResponse](t, w).State)

	w = s.do(t, http.MethodPost, base+"/reveal", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// A reset session can be started again over a new subject filter
	w = s.do(t, http.MethodPost, base+"/start", `{"subject_ids": ["physics"]}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPost, base+"/start", `{"subject_ids": ["chem"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	restarted := decode[api.SessionResponse](t, w)
	assert.Equal(t, session.StateActive, restarted.State)
	assert.Equal(t, 1, restarted.Total)
	require.NotNil(t, restarted.Current)
	assert.Equal(t, "c2", restarted.Current.ID)

	w = s.do(t, http.MethodPost, base+"/start", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionRequestErrors(t *testing.T) {
	t.Parallel() // Enable parallel execution
	s := newTestServer(t, false)

	w := s.do(t, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/api/sessions/" + decode[api.SessionResponse](t, w).ID.String()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"no cards due for subject", http.MethodPost, "/api/sessions", `{"subject_ids": ["physics"]}`, http.StatusNoContent},
		{"blank subject id", http.MethodPost, "/api/sessions", `{"subject_ids": [""]}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/sessions", `{"subjects": ["bio"]}`, http.StatusBadRequest},
		{"malformed session id", http.MethodGet, "/api/sessions/not-a-uuid", "", http.StatusBadRequest},
		{"unknown session", http.MethodGet, "/api/sessions/" + uuid.NewString(), "", http.StatusNotFound},
		{"unknown session delete", http.MethodDelete, "/api/sessions/" + uuid.NewString(), "", http.StatusNotFound},
		{"grade without body", http.MethodPost, base + "/grade", "", http.StatusBadRequest},
		{"grade missing quality", http.MethodPost, base + "/grade", `{"position": 0}`, http.StatusBadRequest},
		{"grade malformed json", http.MethodPost, base + "/grade", `{"position":`, http.StatusBadRequest},
		{"grade negative position", http.MethodPost, base + "/grade", `{"position": -1, "quality": 3}`, http.StatusBadRequest},
		{"grade position past the end", http.MethodPost, base + "/grade", `{"position": 3, "quality": 3}`, http.StatusBadRequest},
		{"start active session", http.MethodPost, base + "/start", "", http.StatusConflict},
		{"start unknown session", http.MethodPost, "/api/sessions/" + uuid.NewString() + "/start", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestListReviewsWithoutHistory(t *testing.T) {
	t.Parallel() // Enable parallel execution
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/api/cards/c1/reviews", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())

	w = s.do(t, http.MethodGet, "/api/cards/c1/reviews?limit=-2", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/cards/missing/reviews", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type failingLister struct{}

func (failingLister) List(context.Context, string, int) ([]*domain.ReviewLog, error) {
	return nil, errors.New("query failed: SELECT id FROM review_logs WHERE card_id = $1")
}

func TestListReviewsStoreFailureIsRedacted(t *testing.T) {
	t.Parallel() // Enable parallel execution
	scheduler, err := srs.NewDefaultService()
	require.NoError(t, err)
	repo := deck.NewRepository(scheduler)
	card, err := domain.NewCard("c1", "bio", "Q", "A", fixedNow)
	require.NoError(t, err)
	require.NoError(t, repo.Add(*card))

	r := chi.NewRouter()
	h := api.NewCardHandler(repo, failingLister{}, nil, nil, nil)
	r.Get("/api/cards/{id}/reviews", h.ListReviews)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cards/c1/reviews", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "SELECT")
	assert.Contains(t, w.Body.String(), "Failed to list reviews")
}
