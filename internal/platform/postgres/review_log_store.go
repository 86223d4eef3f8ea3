package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/platform/logger"
	"github.com/phrazzld/studydeck/internal/store"
)

// PostgresReviewLogStore implements store.ReviewLogStore on PostgreSQL.
type PostgresReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewLogStore creates a new PostgresReviewLogStore.
// If logger is nil, a default logger will be used.
func NewPostgresReviewLogStore(db store.DBTX, logger *slog.Logger) *PostgresReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// Create implements store.ReviewLogStore.Create
func (s *PostgresReviewLogStore) Create(ctx context.Context, entry *domain.ReviewLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_logs (id, card_id, quality, interval_days, ease_factor, reviewed_at, next_review_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.CardID,
		int(entry.Quality),
		entry.Interval,
		entry.EaseFactor,
		entry.ReviewedAt.UTC(),
		entry.NextReviewAt.UTC(),
	)
	if err != nil {
		log.Error("failed to create review log",
			slog.String("error", err.Error()),
			slog.String("card_id", entry.CardID))
		return store.NewStoreError("review_log", "create", "insert failed",
			MapUniqueViolation(err, store.ErrReviewLogExists))
	}

	log.Debug("review log created",
		slog.String("review_log_id", entry.ID.String()),
		slog.String("card_id", entry.CardID))
	return nil
}

// ListByCard implements store.ReviewLogStore.ListByCard
func (s *PostgresReviewLogStore) ListByCard(
	ctx context.Context,
	cardID string,
	limit int,
) ([]*domain.ReviewLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, card_id, quality, interval_days, ease_factor, reviewed_at, next_review_at
		FROM review_logs
		WHERE card_id = $1
		ORDER BY reviewed_at DESC
	`
	args := []any{cardID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review logs",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID))
		return nil, store.NewStoreError("review_log", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	entries := []*domain.ReviewLog{}
	for rows.Next() {
		var entry domain.ReviewLog
		var quality int
		if err := rows.Scan(
			&entry.ID,
			&entry.CardID,
			&quality,
			&entry.Interval,
			&entry.EaseFactor,
			&entry.ReviewedAt,
			&entry.NextReviewAt,
		); err != nil {
			return nil, store.NewStoreError("review_log", "list", "scan failed", err)
		}
		entry.Quality = domain.Quality(quality)
		entry.ReviewedAt = entry.ReviewedAt.UTC()
		entry.NextReviewAt = entry.NextReviewAt.UTC()
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_log", "list", "row iteration failed", MapError(err))
	}

	return entries, nil
}

// WithTx implements store.ReviewLogStore.WithTx
func (s *PostgresReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &PostgresReviewLogStore{
		db:     tx,
		logger: s.logger,
	}
}
