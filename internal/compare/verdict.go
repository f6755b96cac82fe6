package compare

import "github.com/ahmedmhm/bimdiff/internal/models"

// Aggregate combines one match result and its tier diffs into the final
// per-element verdict. Added and deleted elements pass through with no tier
// diffs attached. A matched pair is Modified iff any evaluated tier reports
// a change; a skipped shape tier is recorded as skipped, which is "no
// evidence of shape change", not evidence of an unchanged shape. A tier
// whose comparison failed flags the element for manual review instead of
// silently counting as unchanged.
func Aggregate(m models.MatchResult, semantic, geometric models.TierDiff, shape *models.TierDiff) models.ElementVerdict {
	el := m.Element()
	verdict := models.ElementVerdict{
		ID:   m.ID,
		Type: el.Type,
		Name: el.Name,
	}

	switch m.Kind {
	case models.MatchAdded:
		verdict.Classification = models.ClassAdded
		return verdict
	case models.MatchDeleted:
		verdict.Classification = models.ClassDeleted
		return verdict
	}

	tiers := []models.TierDiff{semantic, geometric}
	if shape != nil {
		tiers = append(tiers, *shape)
		verdict.ShapeStatus = models.ShapeChecked
		verdict.ShapeDistance = shape.Distance
	} else {
		verdict.ShapeStatus = models.ShapeSkipped
	}

	modified := false
	for _, t := range tiers {
		if t.Failed {
			verdict.NeedsReview = true
		}
		if t.Changed {
			modified = true
		}
	}

	if !modified {
		verdict.Classification = models.ClassUnchanged
		return verdict
	}

	verdict.Classification = models.ClassModified
	for _, t := range tiers {
		if t.Changed || t.Failed {
			verdict.Tiers = append(verdict.Tiers, t)
		}
	}
	return verdict
}
