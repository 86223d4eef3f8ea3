package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/platform/logger"
	"github.com/phrazzld/studydeck/internal/store"
)

const cardColumns = `id, front, back, subject_id, difficulty_label,
	interval_days, repetition_count, ease_factor, next_review_at`

// CardStore implements store.CardStore on SQLite.
type CardStore struct {
	db     store.DBTX
	sqlDB  *sql.DB // nil when the store is bound to a transaction
	logger *slog.Logger
}

// NewCardStore creates a CardStore over db, which may be a *sql.DB or a *sql.Tx.
// If logger is nil, a default logger will be used.
func NewCardStore(db store.DBTX, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &CardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
	if sqlDB, ok := db.(*sql.DB); ok {
		s.sqlDB = sqlDB
	}
	return s
}

var _ store.CardStore = (*CardStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var label, next string

	if err := row.Scan(
		&card.ID,
		&card.Front,
		&card.Back,
		&card.SubjectID,
		&label,
		&card.Interval,
		&card.RepetitionCount,
		&card.EaseFactor,
		&next,
	); err != nil {
		return nil, err
	}

	nextReviewAt, err := parseTime(next)
	if err != nil {
		return nil, err
	}
	card.DifficultyLabel = domain.DifficultyLabel(label)
	card.NextReviewAt = nextReviewAt
	return &card, nil
}

// GetAll returns every card in insertion order.
func (s *CardStore) GetAll(ctx context.Context) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY rowid`)
	if err != nil {
		log.Error("failed to query cards", slog.String("error", err.Error()))
		return nil, store.NewStoreError("card", "get_all", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("card", "get_all", "scan failed", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "get_all", "row iteration failed", MapError(err))
	}

	log.Debug("loaded cards", slog.Int("count", len(cards)))
	return cards, nil
}

// GetByID returns the card with id or store.ErrCardNotFound.
func (s *CardStore) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	card, err := scanCard(s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id))
		return nil, store.NewStoreError("card", "get", "query failed", MapError(err))
	}
	return card, nil
}

// Save upserts the card. The row keeps its original position in GetAll.
func (s *CardStore) Save(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during save",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			front = excluded.front,
			back = excluded.back,
			subject_id = excluded.subject_id,
			difficulty_label = excluded.difficulty_label,
			interval_days = excluded.interval_days,
			repetition_count = excluded.repetition_count,
			ease_factor = excluded.ease_factor,
			next_review_at = excluded.next_review_at
	`
	if _, err := s.db.ExecContext(ctx, query, cardArgs(card)...); err != nil {
		log.Error("failed to save card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID))
		return store.NewStoreError("card", "save", "upsert failed", MapError(err))
	}

	log.Debug("card saved", slog.String("card_id", card.ID), slog.Int("interval", card.Interval))
	return nil
}

// CreateMultiple inserts the cards atomically, opening a transaction when needed.
func (s *CardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	if len(cards) == 0 {
		return nil
	}

	if s.sqlDB != nil {
		return store.RunInTransaction(ctx, s.sqlDB, func(ctx context.Context, tx *sql.Tx) error {
			return s.WithTx(tx).CreateMultiple(ctx, cards)
		})
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	query := `INSERT INTO cards (` + cardColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
		if _, err := s.db.ExecContext(ctx, query, cardArgs(card)...); err != nil {
			log.Error("failed to insert card",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID))
			return store.NewStoreError("card", "create_multiple", "insert failed",
				mapUniqueViolation(err, store.ErrCardExists))
		}
	}

	log.Info("cards created", slog.Int("count", len(cards)))
	return nil
}

// WithTx returns a CardStore bound to tx.
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{
		db:     tx,
		logger: s.logger,
	}
}

func cardArgs(card *domain.Card) []any {
	return []any{
		card.ID,
		card.Front,
		card.Back,
		card.SubjectID,
		string(card.DifficultyLabel),
		card.Interval,
		card.RepetitionCount,
		card.EaseFactor,
		formatTime(card.NextReviewAt),
	}
}
