package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/platform/logger"
)

// CardSource is the part of the card repository a session needs.
type CardSource interface {
	// DueCardsForSubjects returns due cards in stable order. An empty set matches all subjects.
	DueCardsForSubjects(asOf time.Time, subjects domain.SubjectSet) []domain.Card

	// ApplyGrade schedules one grade and returns the updated card.
	ApplyGrade(ctx context.Context, cardID string, q domain.Quality, now time.Time) (domain.Card, error)

	// PassingQuality is the lowest grade counted as a successful review.
	PassingQuality() domain.Quality
}

// StartOptions narrows the due set captured by Start.
type StartOptions struct {
	// SubjectIDs limits the session to these subjects. Empty means all.
	SubjectIDs []string
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	State    State        `json:"state"`
	Position int          `json:"position"`
	Total    int          `json:"total"`
	Graded   int          `json:"graded"`
	Revealed bool         `json:"revealed"`
	Current  *domain.Card `json:"current,omitempty"`
	Stats    Stats        `json:"stats"`
}

// Controller drives one study session. All methods are safe for concurrent
// use; commands are applied one at a time.
type Controller struct {
	source CardSource
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	cards    []domain.Card
	graded   []bool
	cursor   int
	revealed bool
	stats    Stats
}

// NewController creates an idle session over source.
func NewController(source CardSource, log *slog.Logger) *Controller {
	if source == nil {
		panic("card source cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		source: source,
		logger: log.With(slog.String("component", "session_controller")),
		state:  StateIdle,
	}
}

// Start snapshots the cards due at now and makes the session active.
// It returns ErrNoCardsDue, leaving the session idle, when nothing is due.
func (c *Controller) Start(ctx context.Context, now time.Time, opts StartOptions) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return fmt.Errorf("%w: state is %s", ErrNotIdle, c.state)
	}

	cards := c.source.DueCardsForSubjects(now, domain.NewSubjectSet(opts.SubjectIDs...))
	if len(cards) == 0 {
		log.Info("no cards due, session not started", slog.Any("subject_ids", opts.SubjectIDs))
		return ErrNoCardsDue
	}

	c.cards = cards
	c.graded = make([]bool, len(cards))
	c.cursor = 0
	c.revealed = false
	c.stats = Stats{StartedAt: now}
	c.state = StateActive

	log.Info("session started",
		slog.Int("card_count", len(cards)),
		slog.Any("subject_ids", opts.SubjectIDs))
	return nil
}

// Reveal toggles the back side of the current card.
func (c *Controller) Reveal() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return false, ErrNotActive
	}
	c.revealed = !c.revealed
	return c.revealed, nil
}

// Grade submits q for the current card. See GradeAt for the error contract.
func (c *Controller) Grade(ctx context.Context, q domain.Quality, now time.Time) (domain.Card, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gradeLocked(ctx, c.cursor, q, now)
}

// GradeAt submits q for the card at position. A position outside the snapshot
// is rejected with ErrInvalidPosition; any other position than the current one
// is treated as a stale submission and rejected with ErrAlreadyGraded.
//
// Checks run in order: ErrNotActive, ErrInvalidGrade, ErrInvalidPosition,
// ErrAlreadyGraded, ErrNotRevealed. Errors from the card source are returned as is and leave
// the session untouched.
func (c *Controller) GradeAt(ctx context.Context, position int, q domain.Quality, now time.Time) (domain.Card, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gradeLocked(ctx, position, q, now)
}

func (c *Controller) gradeLocked(ctx context.Context, position int, q domain.Quality, now time.Time) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if c.state != StateActive {
		return domain.Card{}, ErrNotActive
	}
	if !q.Valid() {
		return domain.Card{}, fmt.Errorf("%w: got %d", ErrInvalidGrade, q)
	}
	if position < 0 || position >= len(c.cards) {
		return domain.Card{}, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidPosition, position, len(c.cards))
	}
	if position != c.cursor || c.graded[c.cursor] {
		log.Debug("rejected stale grade",
			slog.Int("position", position),
			slog.Int("cursor", c.cursor))
		return domain.Card{}, ErrAlreadyGraded
	}
	if !c.revealed {
		return domain.Card{}, ErrNotRevealed
	}

	card, err := c.source.ApplyGrade(ctx, c.cards[c.cursor].ID, q, now)
	if err != nil {
		log.Warn("grade not applied",
			slog.String("error", err.Error()),
			slog.String("card_id", c.cards[c.cursor].ID))
		return domain.Card{}, err
	}

	c.cards[c.cursor] = card
	c.graded[c.cursor] = true
	c.stats.CardsReviewed++
	if q >= c.source.PassingQuality() {
		c.stats.SuccessfulReviews++
	}

	c.revealed = false
	c.cursor++
	if c.cursor >= len(c.cards) {
		c.state = StateComplete
		log.Info("session complete",
			slog.Int("cards_reviewed", c.stats.CardsReviewed),
			slog.Int("successful_reviews", c.stats.SuccessfulReviews),
			slog.Duration("elapsed", c.stats.Elapsed(now)))
	}
	return card, nil
}

// Back moves to the previous card. It is a no-op on the first card.
func (c *Controller) Back() error {
	return c.move(-1)
}

// Forward moves to the next card without grading. It is a no-op on the last card.
func (c *Controller) Forward() error {
	return c.move(1)
}

func (c *Controller) move(delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return ErrNotActive
	}
	next := c.cursor + delta
	if next < 0 || next >= len(c.cards) {
		return nil
	}
	c.cursor = next
	c.revealed = false
	return nil
}

// Reset discards the snapshot and stats and returns to idle. Grades already
// applied stay applied.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateIdle
	c.cards = nil
	c.graded = nil
	c.cursor = 0
	c.revealed = false
	c.stats = Stats{}
}

// Current returns the card under the cursor.
func (c *Controller) Current() (domain.Card, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return domain.Card{}, ErrNotActive
	}
	return c.cards[c.cursor], nil
}

// State returns the lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns the counters since Start.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Snapshot returns the full session view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:    c.state,
		Position: c.cursor,
		Total:    len(c.cards),
		Revealed: c.revealed,
		Stats:    c.stats,
	}
	for _, g := range c.graded {
		if g {
			s.Graded++
		}
	}
	if c.state == StateActive {
		card := c.cards[c.cursor]
		s.Current = &card
	}
	return s
}
