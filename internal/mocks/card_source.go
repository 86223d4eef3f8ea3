package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phrazzld/studydeck/internal/domain"
)

// GradeCall is one recorded ApplyGrade invocation.
type GradeCall struct {
	CardID  string
	Quality domain.Quality
	Now     time.Time
}

// MockCardSource implements session.CardSource over a fixed card list.
// Without overrides ApplyGrade echoes the stored card back unchanged.
type MockCardSource struct {
	Cards   []domain.Card
	Passing domain.Quality

	ApplyGradeFn func(ctx context.Context, cardID string, q domain.Quality, now time.Time) (domain.Card, error)

	mu         sync.Mutex
	GradeCalls []GradeCall
}

// DueCardsForSubjects returns copies of the cards due at asOf.
func (m *MockCardSource) DueCardsForSubjects(asOf time.Time, subjects domain.SubjectSet) []domain.Card {
	var out []domain.Card
	for _, c := range m.Cards {
		if c.IsDue(asOf) && subjects.Contains(c.SubjectID) {
			out = append(out, c)
		}
	}
	return out
}

// ApplyGrade records the call and delegates to ApplyGradeFn when set.
func (m *MockCardSource) ApplyGrade(ctx context.Context, cardID string, q domain.Quality, now time.Time) (domain.Card, error) {
	m.mu.Lock()
	m.GradeCalls = append(m.GradeCalls, GradeCall{CardID: cardID, Quality: q, Now: now})
	m.mu.Unlock()

	if m.ApplyGradeFn != nil {
		return m.ApplyGradeFn(ctx, cardID, q, now)
	}
	for _, c := range m.Cards {
		if c.ID == cardID {
			return c, nil
		}
	}
	return domain.Card{}, fmt.Errorf("card %s not found", cardID)
}

// PassingQuality returns Passing, or the default threshold when unset.
func (m *MockCardSource) PassingQuality() domain.Quality {
	if m.Passing == 0 {
		return domain.DefaultPassingQuality
	}
	return m.Passing
}

// GradeCount returns the number of ApplyGrade calls.
func (m *MockCardSource) GradeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GradeCalls)
}
