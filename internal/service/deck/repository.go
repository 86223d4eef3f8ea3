package deck

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/domain/srs"
	"github.com/phrazzld/studydeck/internal/events"
	"github.com/phrazzld/studydeck/internal/platform/logger"
	"github.com/phrazzld/studydeck/internal/store"
)

// entry guards one card. Only one grade per card is in flight at a time;
// different cards can be graded concurrently.
type entry struct {
	mu   sync.Mutex
	card domain.Card
}

func (e *entry) snapshot() domain.Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.card
}

// Repository owns the cards and their scheduling state.
// All reads return copies; callers never hold a reference into the repository.
type Repository struct {
	scheduler        srs.Service
	store            store.CardStore
	emitter          events.EventEmitter
	logger           *slog.Logger
	masteredInterval int

	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

// Option configures a Repository.
type Option func(*Repository)

// WithStore makes the repository durable. Without it cards live only in memory.
func WithStore(s store.CardStore) Option {
	return func(r *Repository) { r.store = s }
}

// WithEmitter publishes a review.recorded event after every committed grade.
func WithEmitter(e events.EventEmitter) Option {
	return func(r *Repository) { r.emitter = e }
}

// WithLogger sets the repository's base logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMasteredInterval changes the interval at which Metrics counts a card as mastered.
func WithMasteredInterval(days int) Option {
	return func(r *Repository) {
		if days > 1 {
			r.masteredInterval = days
		}
	}
}

// NewRepository creates an empty repository that schedules with scheduler.
func NewRepository(scheduler srs.Service, opts ...Option) *Repository {
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}

	r := &Repository{
		scheduler:        scheduler,
		logger:           slog.Default(),
		masteredInterval: DefaultMasteredInterval,
		entries:          make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("component", "card_repository"))
	return r
}

// PassingQuality is the lowest grade the scheduler treats as a successful recall.
func (r *Repository) PassingQuality() domain.Quality {
	return r.scheduler.Params().PassingQuality
}

// Load replaces the in-memory cards with the store's contents.
// It is a no-op without a store.
func (r *Repository) Load(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, r.logger)

	cards, err := r.store.GetAll(ctx)
	if err != nil {
		log.Error("failed to load cards", slog.String("error", err.Error()))
		return newServiceError("load", "failed to read cards from store", err)
	}

	entries := make(map[string]*entry, len(cards))
	order := make([]string, 0, len(cards))
	for _, c := range cards {
		if _, dup := entries[c.ID]; dup {
			continue
		}
		entries[c.ID] = &entry{card: *c}
		order = append(order, c.ID)
	}

	r.mu.Lock()
	r.entries = entries
	r.order = order
	r.mu.Unlock()

	log.Info("cards loaded", slog.Int("count", len(order)))
	return nil
}

// Add inserts cards into memory only. Every card must validate and have a new ID.
func (r *Repository) Add(cards ...domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(cards))
	for i := range cards {
		if err := cards[i].Validate(); err != nil {
			return fmt.Errorf("card %q: %w", cards[i].ID, err)
		}
		if _, ok := r.entries[cards[i].ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateCard, cards[i].ID)
		}
		if _, ok := seen[cards[i].ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateCard, cards[i].ID)
		}
		seen[cards[i].ID] = struct{}{}
	}

	for _, c := range cards {
		r.entries[c.ID] = &entry{card: c}
		r.order = append(r.order, c.ID)
	}
	return nil
}

// Seed adds the cards whose IDs the repository does not know yet, persisting
// them first when a store is configured. It returns how many were added.
func (r *Repository) Seed(ctx context.Context, cards []*domain.Card) (int, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	r.mu.Lock()
	defer r.mu.Unlock()

	fresh := make([]*domain.Card, 0, len(cards))
	seen := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		if _, ok := r.entries[c.ID]; ok {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("%w: card %q: %w", ErrInvalidSeed, c.ID, err)
		}
		seen[c.ID] = struct{}{}
		fresh = append(fresh, c)
	}

	if len(fresh) == 0 {
		return 0, nil
	}

	if r.store != nil {
		if err := r.store.CreateMultiple(ctx, fresh); err != nil {
			log.Error("failed to persist seed cards",
				slog.String("error", err.Error()),
				slog.Int("count", len(fresh)))
			return 0, newServiceError("seed", "failed to persist cards", err)
		}
	}

	for _, c := range fresh {
		r.entries[c.ID] = &entry{card: *c}
		r.order = append(r.order, c.ID)
	}

	log.Info("seeded cards", slog.Int("added", len(fresh)), slog.Int("skipped", len(cards)-len(fresh)))
	return len(fresh), nil
}

// entriesInOrder returns the entries under a read lock, in insertion order.
func (r *Repository) entriesInOrder() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

// filter copies the cards that satisfy keep, in insertion order.
func (r *Repository) filter(keep func(*domain.Card) bool) []domain.Card {
	entries := r.entriesInOrder()
	cards := make([]domain.Card, 0, len(entries))
	for _, e := range entries {
		c := e.snapshot()
		if keep == nil || keep(&c) {
			cards = append(cards, c)
		}
	}
	return cards
}

// AllCards returns every card in stable insertion order.
func (r *Repository) AllCards() []domain.Card {
	return r.filter(nil)
}

// Card returns a copy of the card with id.
func (r *Repository) Card(id string) (domain.Card, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return domain.Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	return e.snapshot(), nil
}

// DueCards returns the cards due at asOf, in insertion order.
// It is computed fresh on every call.
func (r *Repository) DueCards(asOf time.Time) []domain.Card {
	return r.filter(func(c *domain.Card) bool { return c.IsDue(asOf) })
}

// CardsBySubject returns the cards that belong to subjects. An empty set matches all.
func (r *Repository) CardsBySubject(subjects domain.SubjectSet) []domain.Card {
	return r.filter(func(c *domain.Card) bool { return subjects.Contains(c.SubjectID) })
}

// DueCardsForSubjects combines DueCards and CardsBySubject.
func (r *Repository) DueCardsForSubjects(asOf time.Time, subjects domain.SubjectSet) []domain.Card {
	return r.filter(func(c *domain.Card) bool {
		return c.IsDue(asOf) && subjects.Contains(c.SubjectID)
	})
}

// ApplyGrade runs the scheduler for one grading event and commits the result.
//
// The update is all-or-nothing: the new state is persisted first (when a store
// is configured) and only then written to memory. It returns a copy of the
// updated card. Errors: domain.ErrInvalidGrade, ErrCardNotFound, or a
// *ServiceError wrapping the store failure.
func (r *Repository) ApplyGrade(
	ctx context.Context,
	cardID string,
	q domain.Quality,
	now time.Time,
) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if !q.Valid() {
		log.Warn("rejected invalid grade",
			slog.String("card_id", cardID),
			slog.Int("quality", int(q)))
		return domain.Card{}, fmt.Errorf("%w: got %d", domain.ErrInvalidGrade, q)
	}

	r.mu.RLock()
	e, ok := r.entries[cardID]
	r.mu.RUnlock()
	if !ok {
		log.Warn("card not found for grading", slog.String("card_id", cardID))
		return domain.Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}

	e.mu.Lock()
	schedule, err := r.scheduler.NextState(e.card.SchedulingState(), q, now)
	if err != nil {
		e.mu.Unlock()
		return domain.Card{}, err
	}
	next := e.card.WithSchedule(schedule, q)

	if r.store != nil {
		if err := r.store.Save(ctx, &next); err != nil {
			e.mu.Unlock()
			log.Error("failed to persist graded card",
				slog.String("error", err.Error()),
				slog.String("card_id", cardID))
			return domain.Card{}, newServiceError("apply_grade", "failed to persist card", err)
		}
	}

	e.card = next
	e.mu.Unlock()

	log.Debug("grade applied",
		slog.String("card_id", cardID),
		slog.Int("quality", int(q)),
		slog.Int("interval", next.Interval),
		slog.Int("repetition_count", next.RepetitionCount),
		slog.Float64("ease_factor", next.EaseFactor),
		slog.Time("next_review_at", next.NextReviewAt))

	r.emitReviewRecorded(ctx, next, q, now)
	return next, nil
}

// emitReviewRecorded publishes the committed grade. Failures are logged only;
// the grade itself has already been applied.
func (r *Repository) emitReviewRecorded(ctx context.Context, card domain.Card, q domain.Quality, now time.Time) {
	if r.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, r.logger)

	event, err := events.NewReviewRecordedEvent(events.ReviewRecorded{
		CardID:          card.ID,
		SubjectID:       card.SubjectID,
		Quality:         int(q),
		Interval:        card.Interval,
		RepetitionCount: card.RepetitionCount,
		EaseFactor:      card.EaseFactor,
		ReviewedAt:      now,
		NextReviewAt:    card.NextReviewAt,
	})
	if err != nil {
		log.Error("failed to build review event", slog.String("error", err.Error()))
		return
	}

	if err := r.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("review event handler failed",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID))
	}
}

// Metrics counts mastered, learning and due cards as of now.
func (r *Repository) Metrics(now time.Time) Metrics {
	var m Metrics
	for _, e := range r.entriesInOrder() {
		c := e.snapshot()
		m.add(c.Interval, c.IsDue(now), r.masteredInterval)
	}
	return m
}
