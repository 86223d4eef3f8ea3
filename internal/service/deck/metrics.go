package deck

// DefaultMasteredInterval is the interval in days at which a card counts as mastered.
const DefaultMasteredInterval = 21

// Metrics summarises the deck at one instant.
type Metrics struct {
	Total    int `json:"total"`
	Mastered int `json:"mastered"`  // interval >= mastered threshold
	Learning int `json:"learning"`  // 1 < interval < mastered threshold
	ToReview int `json:"to_review"` // due now
}

func (m *Metrics) add(interval int, due bool, mastered int) {
	m.Total++
	switch {
	case interval >= mastered:
		m.Mastered++
	case interval > 1:
		m.Learning++
	}
	if due {
		m.ToReview++
	}
}
