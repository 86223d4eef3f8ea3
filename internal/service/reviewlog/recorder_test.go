package reviewlog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/domain/srs"
	"github.com/phrazzld/studydeck/internal/events"
	"github.com/phrazzld/studydeck/internal/mocks"
	"github.com/phrazzld/studydeck/internal/service/deck"
	"github.com/phrazzld/studydeck/internal/service/reviewlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewedAt = time.Date(2025, 6, 1, 7, 45, 0, 0, time.UTC)

func reviewEvent(t *testing.T, cardID string, q int) *events.Event {
	t.Helper()
	e, err := events.NewReviewRecordedEvent(events.ReviewRecorded{
		CardID:       cardID,
		SubjectID:    "bio",
		Quality:      q,
		Interval:     6,
		EaseFactor:   2.6,
		ReviewedAt:   reviewedAt,
		NextReviewAt: reviewedAt.AddDate(0, 0, 6),
	})
	require.NoError(t, err)
	return e
}

func TestRecorderStoresReviewLogs(t *testing.T) {
	t.Parallel() // Enable parallel execution
	logs := &mocks.MockReviewLogStore{}
	rec := reviewlog.NewRecorder(logs, nil)
	ctx := context.Background()

	event := reviewEvent(t, "c1", 5)
	require.NoError(t, rec.HandleEvent(ctx, event))

	// Redelivery is absorbed
	require.NoError(t, rec.HandleEvent(ctx, event))
	assert.Equal(t, 2, logs.CreateCount())

	entries, err := rec.List(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, event.ID, entries[0].ID)
	assert.Equal(t, domain.Quality(5), entries[0].Quality)
	assert.Equal(t, 6, entries[0].Interval)
	assert.True(t, entries[0].ReviewedAt.Equal(reviewedAt))
}

func TestRecorderIgnoresOtherEvents(t *testing.T) {
	t.Parallel() // Enable parallel execution
	logs := &mocks.MockReviewLogStore{}
	rec := reviewlog.NewRecorder(logs, nil)

	other, err := events.NewEvent("card.created", map[string]string{"id": "c1"}, reviewedAt)
	require.NoError(t, err)
	require.NoError(t, rec.HandleEvent(context.Background(), other))
	assert.Zero(t, logs.CreateCount())
}

func TestRecorderErrors(t *testing.T) {
	t.Parallel() // Enable parallel execution

	t.Run("bad payload", func(t *testing.T) {
		rec := reviewlog.NewRecorder(&mocks.MockReviewLogStore{}, nil)
		err := rec.HandleEvent(context.Background(), &events.Event{
			Type:    events.TypeReviewRecorded,
			Payload: []byte(`{"quality": "high"}`),
		})
		assert.Error(t, err)
	})

	t.Run("store failure", func(t *testing.T) {
		storeErr := errors.New("connection reset")
		rec := reviewlog.NewRecorder(&mocks.MockReviewLogStore{
			CreateFn: func(context.Context, *domain.ReviewLog) error { return storeErr },
		}, nil)
		err := rec.HandleEvent(context.Background(), reviewEvent(t, "c1", 3))
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("nil store panics", func(t *testing.T) {
		assert.Panics(t, func() { reviewlog.NewRecorder(nil, nil) })
	})
}

func TestRecorderWiredToRepository(t *testing.T) {
	t.Parallel() // Enable parallel execution
	logs := &mocks.MockReviewLogStore{}
	emitter := events.NewInMemoryEventEmitter(nil)
	rec := reviewlog.NewRecorder(logs, nil)
	emitter.RegisterHandler(rec)

	scheduler, err := srs.NewDefaultService()
	require.NoError(t, err)
	repo := deck.NewRepository(scheduler, deck.WithEmitter(emitter))
	c, err := domain.NewCard("c1", "bio", "Q", "A", reviewedAt)
	require.NoError(t, err)
	require.NoError(t, repo.Add(*c))

	ctx := context.Background()
	_, err = repo.ApplyGrade(ctx, "c1", 5, reviewedAt)
	require.NoError(t, err)
	graded, err := repo.ApplyGrade(ctx, "c1", 2, reviewedAt.AddDate(0, 0, 1))
	require.NoError(t, err)

	entries, err := rec.List(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.Quality(2), entries[0].Quality, "newest first")
	assert.Equal(t, graded.Interval, entries[0].Interval)

	limited, err := rec.List(ctx, "c1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
