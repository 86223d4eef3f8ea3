package domain

// Subject is a read-only reference to a category owned by the subject registry.
type Subject struct {
	ID          string `json:"id"           mapstructure:"id"           validate:"required"`
	DisplayName string `json:"display_name" mapstructure:"display_name" validate:"required"`
}

// SubjectSet is a lookup over an ordered subject sequence.
// A nil or empty set matches every subject.
type SubjectSet map[string]struct{}

// NewSubjectSet builds a set from subject IDs.
func NewSubjectSet(ids ...string) SubjectSet {
	if len(ids) == 0 {
		return nil
	}
	set := make(SubjectSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id belongs to the set.
func (s SubjectSet) Contains(id string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[id]
	return ok
}

// SubjectIDs returns the IDs of subjects in registry order.
func SubjectIDs(subjects []Subject) []string {
	ids := make([]string, 0, len(subjects))
	for _, s := range subjects {
		ids = append(ids, s.ID)
	}
	return ids
}
