package domain

// Quality is a self-assessed recall grade in the range [MinQuality, MaxQuality].
type Quality int

// Quality bounds and the grades a simple reviewer UI emits.
const (
	MinQuality Quality = 0
	MaxQuality Quality = 5

	QualityHard   Quality = 1
	QualityMedium Quality = 3
	QualityEasy   Quality = 5
)

// DefaultPassingQuality is the lowest grade that counts as a successful review.
const DefaultPassingQuality Quality = 3

// Valid reports whether q is inside the accepted grading range.
func (q Quality) Valid() bool {
	return q >= MinQuality && q <= MaxQuality
}

// Passing reports whether q counts as a successful review under the default threshold.
func (q Quality) Passing() bool {
	return q >= DefaultPassingQuality
}

// DifficultyLabel is an informational view of the most recent grade.
type DifficultyLabel string

// Possible difficulty labels. DifficultyUnrated marks a card that was never graded.
const (
	DifficultyUnrated DifficultyLabel = ""
	DifficultyEasy    DifficultyLabel = "easy"
	DifficultyMedium  DifficultyLabel = "medium"
	DifficultyHard    DifficultyLabel = "hard"
)

// LabelForQuality maps a grade to its difficulty label.
func LabelForQuality(q Quality) DifficultyLabel {
	switch {
	case q <= 2:
		return DifficultyHard
	case q == 3:
		return DifficultyMedium
	default:
		return DifficultyEasy
	}
}

// Valid reports whether l is one of the known labels.
func (l DifficultyLabel) Valid() bool {
	switch l {
	case DifficultyUnrated, DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}
