package deck_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/phrazzld/studydeck/internal/platform/sqlite"
	"github.com/phrazzld/studydeck/internal/service/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const yamlSeed = `
subjects:
  - id: bio
    display_name: Biology
  - id: chem
    display_name: Chemistry
cards:
  - id: mitochondria
    subject_id: bio
    front: What is the powerhouse of the cell?
    back: The mitochondria
  - id: avogadro
    subject_id: chem
    front: Avogadro's number?
    back: "6.022e23"
    interval: 6
    repetition_count: 2
    ease_factor: 2.6
    next_review_at: "2025-03-16T09:00:00Z"
    difficulty_label: easy
`

func TestLoadSeedYAML(t *testing.T) {
	t.Parallel() // Enable parallel execution
	seed, err := deck.LoadSeed(writeSeed(t, "deck.yaml", yamlSeed))
	require.NoError(t, err)

	require.Len(t, seed.Subjects, 2)
	assert.Equal(t, "Chemistry", seed.Subjects[1].DisplayName)

	cards, err := seed.BuildCards(baseTime)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	fresh := cards[0]
	assert.Equal(t, "mitochondria", fresh.ID)
	assert.Equal(t, domain.InitialEaseFactor, fresh.EaseFactor)
	assert.Equal(t, domain.DifficultyUnrated, fresh.DifficultyLabel)
	assert.True(t, fresh.NextReviewAt.Equal(baseTime))

	graded := cards[1]
	assert.Equal(t, 6, graded.Interval)
	assert.Equal(t, 2, graded.RepetitionCount)
	assert.Equal(t, domain.DifficultyEasy, graded.DifficultyLabel)
	assert.True(t, graded.NextReviewAt.Equal(baseTime.AddDate(0, 0, 6)))
}

func TestLoadSeedJSON(t *testing.T) {
	t.Parallel() // Enable parallel execution
	seed, err := deck.LoadSeed(writeSeed(t, "deck.json", `{
		"cards": [{"id": "c1", "subject_id": "any", "front": "Q", "back": "A"}]
	}`))
	require.NoError(t, err)

	cards, err := seed.BuildCards(baseTime)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "any", cards[0].SubjectID, "no subject list means any subject is accepted")
}

func TestLoadSeedErrors(t *testing.T) {
	t.Parallel() // Enable parallel execution

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "subject without display name",
			file:    "deck.yaml",
			content: "subjects:\n  - id: bio\n",
		},
		{
			name:    "malformed yaml",
			file:    "deck.yaml",
			content: "cards: [\n",
		},
		{
			name:    "unsupported extension",
			file:    "deck.txt",
			content: "cards: []",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := deck.LoadSeed(writeSeed(t, tt.file, tt.content))
			assert.ErrorIs(t, err, deck.ErrInvalidSeed)
		})
	}

	_, err := deck.LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, deck.ErrInvalidSeed)
}

func TestBuildCardsErrors(t *testing.T) {
	t.Parallel() // Enable parallel execution

	tests := []struct {
		name string
		seed deck.SeedFile
	}{
		{
			name: "unknown subject",
			seed: deck.SeedFile{
				Subjects: []domain.Subject{{ID: "bio", DisplayName: "Biology"}},
				Cards:    []domain.CardRecord{{ID: "c1", SubjectID: "chem", Front: "Q"}},
			},
		},
		{
			name: "empty front",
			seed: deck.SeedFile{
				Cards: []domain.CardRecord{{ID: "c1", SubjectID: "bio"}},
			},
		},
		{
			name: "bad timestamp on a graded card",
			seed: deck.SeedFile{
				Cards: []domain.CardRecord{{
					ID: "c1", SubjectID: "bio", Front: "Q",
					Interval: 3, EaseFactor: 2.5, NextReviewAt: "tomorrow", DifficultyLabel: "easy",
				}},
			},
		},
		{
			name: "ease factor NaN",
			seed: deck.SeedFile{
				Cards: []domain.CardRecord{{
					ID: "c1", SubjectID: "bio", Front: "Q",
					Interval: 3, EaseFactor: math.NaN(), NextReviewAt: "2025-03-16T09:00:00Z",
				}},
			},
		},
		{
			name: "duplicate explicit ids",
			seed: deck.SeedFile{
				Cards: []domain.CardRecord{
					{ID: "c1", SubjectID: "bio", Front: "Q1"},
					{ID: "c1", SubjectID: "bio", Front: "Q2"},
				},
			},
		},
		{
			name: "same subject and front without ids",
			seed: deck.SeedFile{
				Cards: []domain.CardRecord{
					{SubjectID: "bio", Front: "Q"},
					{SubjectID: "bio", Front: "Q", Back: "other"},
				},
			},
		},
		{
			name: "ease factor below floor",
			seed: deck.SeedFile{
				Cards: []domain.CardRecord{{
					ID: "c1", SubjectID: "bio", Front: "Q",
					Interval: 3, EaseFactor: 1.1, NextReviewAt: "2025-03-16T09:00:00Z",
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := tt.seed.BuildCards(baseTime)
			assert.ErrorIs(t, err, deck.ErrInvalidSeed)
			assert.Nil(t, cards)
		})
	}
}

func TestBuildCardsDerivesStableIDs(t *testing.T) {
	t.Parallel() // Enable parallel execution
	seed := deck.SeedFile{Cards: []domain.CardRecord{
		{SubjectID: "bio", Front: "What is ATP?", Back: "Energy currency"},
		{SubjectID: "chem", Front: "What is ATP?", Back: "Adenosine triphosphate"},
		{ID: "explicit", SubjectID: "bio", Front: "Kept as is"},
	}}

	first, err := seed.BuildCards(baseTime)
	require.NoError(t, err)
	second, err := seed.BuildCards(baseTime.AddDate(0, 0, 3))
	require.NoError(t, err)

	assert.Equal(t, deck.SeedCardID("bio", "What is ATP?"), first[0].ID)
	assert.NotEqual(t, first[0].ID, first[1].ID, "subject is part of the id")
	assert.Equal(t, "explicit", first[2].ID)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

// Seeding the same file on every boot must not grow a persistent deck.
func TestSeedWithoutIDsIsIdempotentAcrossRestarts(t *testing.T) {
	t.Parallel() // Enable parallel execution
	ctx := context.Background()
	path := writeSeed(t, "deck.yaml", `
cards:
  - subject_id: bio
    front: What is the powerhouse of the cell?
    back: The mitochondria
  - subject_id: bio
    front: Where are proteins made?
    back: The ribosome
`)

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "deck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(ctx, db, nil))

	for boot, wantAdded := range []int{2, 0, 0} {
		repo := deck.NewRepository(newScheduler(t), deck.WithStore(sqlite.NewCardStore(db, nil)))
		require.NoError(t, repo.Load(ctx))

		file, err := deck.LoadSeed(path)
		require.NoError(t, err)
		cards, err := file.BuildCards(baseTime.AddDate(0, 0, boot))
		require.NoError(t, err)

		added, err := repo.Seed(ctx, cards)
		require.NoError(t, err)
		assert.Equal(t, wantAdded, added, "boot %d", boot+1)
		assert.Len(t, repo.AllCards(), 2, "boot %d", boot+1)
	}
}
