package models

// MatchKind classifies how an identity relates across the two versions.
type MatchKind string

const (
	MatchMatched MatchKind = "matched"
	MatchAdded   MatchKind = "added"
	MatchDeleted MatchKind = "deleted"
)

// MatchResult pairs one identity across the two indices. Every identity
// present in either version appears in exactly one MatchResult.
type MatchResult struct {
	ID   string
	Kind MatchKind
	Old  *Element // nil for Added
	New  *Element // nil for Deleted
}

// Element returns the element payload regardless of which side carries it,
// preferring the newer version for matched pairs.
func (m MatchResult) Element() *Element {
	if m.New != nil {
		return m.New
	}
	return m.Old
}
