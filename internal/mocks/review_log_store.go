package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/store"
)

// MockReviewLogStore implements store.ReviewLogStore.
// Without function overrides it keeps entries in memory.
type MockReviewLogStore struct {
	CreateFn     func(ctx context.Context, entry *domain.ReviewLog) error
	ListByCardFn func(ctx context.Context, cardID string, limit int) ([]*domain.ReviewLog, error)

	mu      sync.Mutex
	entries []*domain.ReviewLog

	// CreateCalls records every entry passed to Create.
	CreateCalls []*domain.ReviewLog
}

var _ store.ReviewLogStore = (*MockReviewLogStore)(nil)

// Create implements store.ReviewLogStore.
func (m *MockReviewLogStore) Create(ctx context.Context, entry *domain.ReviewLog) error {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, entry)
	m.mu.Unlock()

	if m.CreateFn != nil {
		return m.CreateFn(ctx, entry)
	}
	if err := entry.Validate(); err != nil {
		return store.ErrInvalidEntity
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == entry.ID {
			return store.ErrReviewLogExists
		}
	}
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

// ListByCard implements store.ReviewLogStore.
func (m *MockReviewLogStore) ListByCard(ctx context.Context, cardID string, limit int) ([]*domain.ReviewLog, error) {
	if m.ListByCardFn != nil {
		return m.ListByCardFn(ctx, cardID, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.ReviewLog
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].CardID == cardID {
			cp := *m.entries[i]
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReviewedAt.After(out[j].ReviewedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// WithTx returns the same mock.
func (m *MockReviewLogStore) WithTx(_ *sql.Tx) store.ReviewLogStore {
	return m
}

// CreateCount returns the number of Create calls.
func (m *MockReviewLogStore) CreateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CreateCalls)
}
