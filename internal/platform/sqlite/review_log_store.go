package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/platform/logger"
	"github.com/phrazzld/studydeck/internal/store"
)

// ReviewLogStore implements store.ReviewLogStore on SQLite.
type ReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewLogStore creates a ReviewLogStore over db.
func NewReviewLogStore(db store.DBTX, logger *slog.Logger) *ReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

var _ store.ReviewLogStore = (*ReviewLogStore)(nil)

// Create appends entry.
func (s *ReviewLogStore) Create(ctx context.Context, entry *domain.ReviewLog) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_logs (id, card_id, quality, interval_days, ease_factor, reviewed_at, next_review_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(),
		entry.CardID,
		int(entry.Quality),
		entry.Interval,
		entry.EaseFactor,
		formatTime(entry.ReviewedAt),
		formatTime(entry.NextReviewAt),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create review log",
			slog.String("error", err.Error()),
			slog.String("card_id", entry.CardID))
		return store.NewStoreError("review_log", "create", "insert failed",
			mapUniqueViolation(err, store.ErrReviewLogExists))
	}
	return nil
}

// ListByCard returns the newest entries for cardID first.
func (s *ReviewLogStore) ListByCard(ctx context.Context, cardID string, limit int) ([]*domain.ReviewLog, error) {
	query := `
		SELECT id, card_id, quality, interval_days, ease_factor, reviewed_at, next_review_at
		FROM review_logs
		WHERE card_id = ?
		ORDER BY reviewed_at DESC, rowid DESC
	`
	args := []any{cardID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("review_log", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	entries := []*domain.ReviewLog{}
	for rows.Next() {
		var (
			entry              domain.ReviewLog
			id                 string
			quality            int
			reviewed, nextTime string
		)
		if err := rows.Scan(&id, &entry.CardID, &quality, &entry.Interval, &entry.EaseFactor,
			&reviewed, &nextTime); err != nil {
			return nil, store.NewStoreError("review_log", "list", "scan failed", err)
		}

		if entry.ID, err = uuid.Parse(id); err != nil {
			return nil, store.NewStoreError("review_log", "list", "invalid stored id", err)
		}
		if entry.ReviewedAt, err = parseTime(reviewed); err != nil {
			return nil, store.NewStoreError("review_log", "list", "invalid reviewed_at", err)
		}
		if entry.NextReviewAt, err = parseTime(nextTime); err != nil {
			return nil, store.NewStoreError("review_log", "list", "invalid next_review_at", err)
		}
		entry.Quality = domain.Quality(quality)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_log", "list", "row iteration failed", MapError(err))
	}
	return entries, nil
}

// WithTx returns a ReviewLogStore bound to tx.
func (s *ReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &ReviewLogStore{db: tx, logger: s.logger}
}
