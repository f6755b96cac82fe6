package models

import (
	"encoding/json"
	"math"
)

// Tier is one of the three comparison levels, escalating in cost.
type Tier string

const (
	TierSemantic  Tier = "semantic"
	TierGeometric Tier = "geometric"
	TierShape     Tier = "shape"
)

// FieldDiff is one divergent path found by a comparator.
type FieldDiff struct {
	Path string `json:"path"`
	Old  any    `json:"old,omitempty"`
	New  any    `json:"new,omitempty"`
}

// Distance is a shape distance that survives JSON round-trips when infinite.
// Degenerate geometry is reported with an infinite distance sentinel, which
// encoding/json cannot represent as a number.
type Distance float64

// Inf reports whether the distance is the degenerate-geometry sentinel.
func (d Distance) Inf() bool { return math.IsInf(float64(d), 1) }

func (d Distance) MarshalJSON() ([]byte, error) {
	if d.Inf() {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(float64(d))
}

func (d *Distance) UnmarshalJSON(data []byte) error {
	if string(data) == `"inf"` {
		*d = Distance(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*d = Distance(f)
	return nil
}

// TierDiff is the structured outcome of one comparison tier for one matched
// pair. For the shape tier it additionally carries the measured distance and
// the sampling parameters used.
type TierDiff struct {
	Tier    Tier        `json:"tier"`
	Changed bool        `json:"changed"`
	Failed  bool        `json:"failed,omitempty"` // comparison itself failed; element needs manual review
	Entries []FieldDiff `json:"entries,omitempty"`

	// Shape tier only.
	Distance       Distance `json:"distance,omitempty"`
	GridResolution int      `json:"grid_resolution,omitempty"`
	Threshold      float64  `json:"threshold,omitempty"`
}

// Classification is the final per-element category.
type Classification string

const (
	ClassAdded     Classification = "added"
	ClassDeleted   Classification = "deleted"
	ClassModified  Classification = "modified"
	ClassUnchanged Classification = "unchanged"
)

// ShapeStatus records what happened to the shape tier for a matched pair. A
// skipped shape tier is only "no evidence of shape change", never positive
// evidence of an unchanged shape.
type ShapeStatus string

const (
	ShapeChecked ShapeStatus = "checked"
	ShapeSkipped ShapeStatus = "skipped"
)

// ElementVerdict is the final output for one identity: its classification
// plus the tier diffs that justify a Modified classification. Tiers is empty
// for Added, Deleted and Unchanged verdicts.
type ElementVerdict struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Name           string         `json:"name,omitempty"`
	Classification Classification `json:"classification"`
	Tiers          []TierDiff     `json:"tiers,omitempty"`
	ShapeStatus    ShapeStatus    `json:"shape_status,omitempty"` // matched pairs only
	ShapeDistance  Distance       `json:"shape_distance,omitempty"`
	NeedsReview    bool           `json:"needs_review,omitempty"` // a tier comparison failed
}

// Tier returns the diff for the given tier, or nil if it is not attached.
func (v *ElementVerdict) Tier(t Tier) *TierDiff {
	for i := range v.Tiers {
		if v.Tiers[i].Tier == t {
			return &v.Tiers[i]
		}
	}
	return nil
}

// Summary holds classification counts for one comparison run.
type Summary struct {
	Added     int `json:"added"`
	Deleted   int `json:"deleted"`
	Modified  int `json:"modified"`
	Unchanged int `json:"unchanged"`
}

// Total returns the number of classified elements.
func (s Summary) Total() int { return s.Added + s.Deleted + s.Modified + s.Unchanged }

// ComparisonResult is the complete, ordered output of one comparison run.
// Verdicts are ordered by identity and the result is immutable once the run
// completes, so repeated runs over the same inputs are byte-for-byte equal.
type ComparisonResult struct {
	OldVersion string           `json:"old_version,omitempty"`
	NewVersion string           `json:"new_version,omitempty"`
	Verdicts   []ElementVerdict `json:"verdicts"`
	Summary    Summary          `json:"summary"`
}

// ByType aggregates classification counts per element type.
func (r *ComparisonResult) ByType() map[string]Summary {
	out := make(map[string]Summary)
	for _, v := range r.Verdicts {
		s := out[v.Type]
		switch v.Classification {
		case ClassAdded:
			s.Added++
		case ClassDeleted:
			s.Deleted++
		case ClassModified:
			s.Modified++
		case ClassUnchanged:
			s.Unchanged++
		}
		out[v.Type] = s
	}
	return out
}
