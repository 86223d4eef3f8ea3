package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/platform/logger"
	"github.com/phrazzld/studydeck/internal/store"
)

const cardColumns = `id, front, back, subject_id, difficulty_label,
	interval_days, repetition_count, ease_factor, next_review_at`

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	sqlDB  *sql.DB // nil when the store is bound to a transaction
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
	if sqlDB, ok := db.(*sql.DB); ok {
		s.sqlDB = sqlDB
	}
	return s
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var label string
	var next time.Time

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

	card.DifficultyLabel = domain.DifficultyLabel(label)
	card.NextReviewAt = next.UTC()
	return &card, nil
}

// GetAll implements store.CardStore.GetAll
func (s *PostgresCardStore) GetAll(ctx context.Context) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY seq`)
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

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := scanCard(s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id))
		return nil, store.NewStoreError("card", "get", "query failed", MapError(err))
	}
	return card, nil
}

// Save implements store.CardStore.Save
func (s *PostgresCardStore) Save(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during save",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			front = EXCLUDED.front,
			back = EXCLUDED.back,
			subject_id = EXCLUDED.subject_id,
			difficulty_label = EXCLUDED.difficulty_label,
			interval_days = EXCLUDED.interval_days,
			repetition_count = EXCLUDED.repetition_count,
			ease_factor = EXCLUDED.ease_factor,
			next_review_at = EXCLUDED.next_review_at,
			updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, cardArgs(card)...); err != nil {
		log.Error("failed to save card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID))
		return store.NewStoreError("card", "save", "upsert failed", MapError(err))
	}

	log.Debug("card saved",
		slog.String("card_id", card.ID),
		slog.Int("interval", card.Interval),
		slog.Time("next_review_at", card.NextReviewAt))
	return nil
}

// CreateMultiple implements store.CardStore.CreateMultiple
func (s *PostgresCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	if len(cards) == 0 {
		return nil
	}

	// Not bound to a transaction yet: open one so the batch is atomic
	if s.sqlDB != nil {
		return store.RunInTransaction(ctx, s.sqlDB, func(ctx context.Context, tx *sql.Tx) error {
			return s.WithTx(tx).CreateMultiple(ctx, cards)
		})
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	query := `INSERT INTO cards (` + cardColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID))
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
		if _, err := s.db.ExecContext(ctx, query, cardArgs(card)...); err != nil {
			log.Error("failed to insert card",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID))
			return store.NewStoreError("card", "create_multiple", "insert failed",
				MapUniqueViolation(err, store.ErrCardExists))
		}
	}

	log.Info("cards created", slog.Int("count", len(cards)))
	return nil
}

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
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
		card.NextReviewAt.UTC(),
	}
}
