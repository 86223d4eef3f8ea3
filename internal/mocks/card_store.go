package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockCardStore is a mock of store.CardStore for use with testify/mock.
type TestifyMockCardStore struct {
	mock.Mock
}

var _ store.CardStore = (*TestifyMockCardStore)(nil)

// GetAll is a mock implementation of store.CardStore.GetAll
func (m *TestifyMockCardStore) GetAll(ctx context.Context) ([]*domain.Card, error) {
	args := m.Called(ctx)
	if cards, ok := args.Get(0).([]*domain.Card); ok {
		return cards, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByID is a mock implementation of store.CardStore.GetByID
func (m *TestifyMockCardStore) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	args := m.Called(ctx, id)
	if card, ok := args.Get(0).(*domain.Card); ok {
		return card, args.Error(1)
	}
	return nil, args.Error(1)
}

// Save is a mock implementation of store.CardStore.Save
func (m *TestifyMockCardStore) Save(ctx context.Context, card *domain.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

// CreateMultiple is a mock implementation of store.CardStore.CreateMultiple
func (m *TestifyMockCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	args := m.Called(ctx, cards)
	return args.Error(0)
}

// WithTx is a mock implementation of store.CardStore.WithTx
func (m *TestifyMockCardStore) WithTx(tx *sql.Tx) store.CardStore {
	args := m.Called(tx)
	if ret, ok := args.Get(0).(store.CardStore); ok {
		return ret
	}
	return m
}
