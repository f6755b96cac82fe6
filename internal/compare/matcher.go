// Package compare implements the multi-tier diffing engine: element
// matching, the semantic/geometric/shape comparators, verdict aggregation,
// and the comparison run orchestration.
package compare

import (
	"sort"

	"github.com/ahmedmhm/bimdiff/internal/index"
	"github.com/ahmedmhm/bimdiff/internal/models"
)

// Match pairs elements across the two indices by identity equi-join. Every
// identity present in either index appears in exactly one MatchResult, in
// sorted identity order. No fuzzy matching is attempted: an element whose
// identity does not survive across versions is a deletion plus an addition.
func Match(old, new *index.ElementIndex) []models.MatchResult {
	seen := make(map[string]struct{}, old.Len()+new.Len())
	ids := make([]string, 0, old.Len()+new.Len())
	for _, id := range old.IDs() {
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, id := range new.IDs() {
		if _, ok := seen[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	results := make([]models.MatchResult, 0, len(ids))
	for _, id := range ids {
		oldEl, inOld := old.Get(id)
		newEl, inNew := new.Get(id)

		switch {
		case inOld && inNew:
			results = append(results, models.MatchResult{ID: id, Kind: models.MatchMatched, Old: oldEl, New: newEl})
		case inNew:
			results = append(results, models.MatchResult{ID: id, Kind: models.MatchAdded, New: newEl})
		default:
			results = append(results, models.MatchResult{ID: id, Kind: models.MatchDeleted, Old: oldEl})
		}
	}
	return results
}
