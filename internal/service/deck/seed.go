package deck

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/studydeck/internal/domain"
	"github.com/spf13/viper"
)

// seedNamespace scopes the name-based IDs given to seed cards without an id.
var seedNamespace = uuid.MustParse("6f1c2d4e-8a3b-5c7d-9e0f-1a2b3c4d5e6f")

// SeedCardID returns the ID a seed card without an explicit id receives. It
// depends only on the subject and the front text, so reloading the same seed
// yields the same IDs.
func SeedCardID(subjectID, front string) string {
	name := strings.TrimSpace(subjectID) + "\x00" + strings.TrimSpace(front)
	return uuid.NewSHA1(seedNamespace, []byte(name)).String()
}

// SeedFile is the decoded contents of a seed file.
type SeedFile struct {
	Subjects []domain.Subject    `mapstructure:"subjects" validate:"dive"`
	Cards    []domain.CardRecord `mapstructure:"cards"`
}

// LoadSeed reads a YAML, JSON or TOML seed file; the format follows the extension.
func LoadSeed(path string) (*SeedFile, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrInvalidSeed, path, err)
	}

	var seed SeedFile
	if err := v.Unmarshal(&seed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %w", ErrInvalidSeed, path, err)
	}

	if err := validator.New().Struct(&seed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	return &seed, nil
}

// BuildCards turns the seed entries into validated cards. Entries without an
// ease factor are new cards, due at now; the rest are full records. Entries
// without an id get SeedCardID. When the seed lists subjects, every card must
// reference one of them, and no two entries may share an ID.
func (s *SeedFile) BuildCards(now time.Time) ([]*domain.Card, error) {
	known := domain.NewSubjectSet(domain.SubjectIDs(s.Subjects)...)

	cards := make([]*domain.Card, 0, len(s.Cards))
	ids := make(map[string]int, len(s.Cards))
	for i, rec := range s.Cards {
		if !known.Contains(rec.SubjectID) {
			return nil, fmt.Errorf("%w: card %d references unknown subject %q", ErrInvalidSeed, i, rec.SubjectID)
		}
		if strings.TrimSpace(rec.ID) == "" && strings.TrimSpace(rec.Front) != "" {
			rec.ID = SeedCardID(rec.SubjectID, rec.Front)
		}
		if prev, dup := ids[rec.ID]; dup && rec.ID != "" {
			return nil, fmt.Errorf("%w: cards %d and %d share id %q", ErrInvalidSeed, prev, i, rec.ID)
		}
		ids[rec.ID] = i

		var (
			card *domain.Card
			err  error
		)
		if rec.EaseFactor == 0 {
			card, err = domain.NewCard(rec.ID, rec.SubjectID, rec.Front, rec.Back, now)
		} else {
			card, err = domain.CardFromRecord(rec)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: card %d: %w", ErrInvalidSeed, i, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}
