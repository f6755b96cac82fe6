// Package report renders a comparison result as tabular change lists and
// structured change logs for downstream consumers.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ahmedmhm/bimdiff/internal/models"
)

// WriteCSV writes one row per element verdict. The row order follows the
// (identity-ordered) comparison result, so the output is reproducible across
// runs.
func WriteCSV(w io.Writer, res *models.ComparisonResult) error {
	cw := csv.NewWriter(w)

	header := []string{
		"id", "type", "name", "classification",
		"semantic_changed", "geometric_changed", "shape_status", "shape_distance",
		"needs_review",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range res.Verdicts {
		v := &res.Verdicts[i]
		row := []string{
			v.ID,
			v.Type,
			v.Name,
			string(v.Classification),
			tierChanged(v, models.TierSemantic),
			tierChanged(v, models.TierGeometric),
			string(v.ShapeStatus),
			shapeDistance(v),
			strconv.FormatBool(v.NeedsReview),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", v.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func tierChanged(v *models.ElementVerdict, tier models.Tier) string {
	if v.Classification != models.ClassModified && v.Classification != models.ClassUnchanged {
		return ""
	}
	t := v.Tier(tier)
	if t == nil {
		// Unchanged verdicts carry no tier diffs; the tier was evaluated
		// and found clean.
		return "false"
	}
	return strconv.FormatBool(t.Changed)
}

func shapeDistance(v *models.ElementVerdict) string {
	if v.ShapeStatus != models.ShapeChecked {
		return ""
	}
	if v.ShapeDistance.Inf() {
		return "inf"
	}
	return strconv.FormatFloat(float64(v.ShapeDistance), 'g', -1, 64)
}
