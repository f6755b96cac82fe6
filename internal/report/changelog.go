package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ahmedmhm/bimdiff/internal/models"
)

// ChangeLog is the structured change record for one run, carrying every
// tier diff entry for modified elements plus per-type counts.
type ChangeLog struct {
	OldVersion string                  `json:"old_version,omitempty"`
	NewVersion string                  `json:"new_version,omitempty"`
	Summary    models.Summary          `json:"summary"`
	ByType     []TypeSummary           `json:"by_type,omitempty"`
	Changes    []models.ElementVerdict `json:"changes"`
}

// TypeSummary is the classification breakdown for one element type.
type TypeSummary struct {
	Type string `json:"type"`
	models.Summary
}

// BuildChangeLog filters a comparison result down to its changes (added,
// deleted, modified, and review-flagged elements) with deterministic
// ordering.
func BuildChangeLog(res *models.ComparisonResult) *ChangeLog {
	log := &ChangeLog{
		OldVersion: res.OldVersion,
		NewVersion: res.NewVersion,
		Summary:    res.Summary,
		Changes:    make([]models.ElementVerdict, 0, res.Summary.Total()-res.Summary.Unchanged),
	}

	for _, v := range res.Verdicts {
		if v.Classification != models.ClassUnchanged || v.NeedsReview {
			log.Changes = append(log.Changes, v)
		}
	}

	byType := res.ByType()
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		log.ByType = append(log.ByType, TypeSummary{Type: t, Summary: byType[t]})
	}

	return log
}

// WriteChangeLog writes the JSON change log for a comparison result.
func WriteChangeLog(w io.Writer, res *models.ComparisonResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(BuildChangeLog(res)); err != nil {
		return fmt.Errorf("failed to write change log: %w", err)
	}
	return nil
}
