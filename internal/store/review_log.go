package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/studydeck/internal/domain"
)

// ReviewLogStore persists the history of grading events.
type ReviewLogStore interface {
	// Create appends a review log entry.
	// Returns ErrInvalidEntity if the entry fails validation.
	Create(ctx context.Context, entry *domain.ReviewLog) error

	// ListByCard returns up to limit entries for cardID, newest first.
	// A limit of zero or less returns every entry.
	ListByCard(ctx context.Context, cardID string, limit int) ([]*domain.ReviewLog, error)

	// WithTx returns a ReviewLogStore that runs its statements inside tx.
	WithTx(tx *sql.Tx) ReviewLogStore
}
