package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/studydeck/internal/domain"
)

// CardStore defines the interface for card persistence.
//
// The deck repository keeps the working set in memory; a CardStore is the
// durable copy behind it. It is read once at startup and written on every grade.
type CardStore interface {
	// GetAll returns every stored card in insertion order.
	GetAll(ctx context.Context) ([]*domain.Card, error)

	// GetByID retrieves a card by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id string) (*domain.Card, error)

	// Save writes the card's content and scheduling fields, inserting it when
	// it is not stored yet. Returns ErrInvalidEntity if the card fails validation.
	Save(ctx context.Context, card *domain.Card) error

	// CreateMultiple inserts cards atomically. When the store is not bound to a
	// transaction it opens one itself, so either every card is stored or none is.
	// Returns ErrCardExists if any ID is already stored.
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// WithTx returns a CardStore that runs its statements inside tx.
	//
	// Example usage:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       return cardStore.WithTx(tx).Save(ctx, card)
	//   })
	WithTx(tx *sql.Tx) CardStore
}
