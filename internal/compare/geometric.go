package compare

import (
	"math"

	"github.com/ahmedmhm/bimdiff/internal/config"
	"github.com/ahmedmhm/bimdiff/internal/models"
)

// GeometricDiff produces the geometric tier diff for a matched pair by
// comparing the four summary descriptors under their per-descriptor
// tolerances. It is O(1) per pair and acts as the pre-filter for the shape
// tier. A descriptor differing by exactly its tolerance is unchanged.
func GeometricDiff(old, new *models.Mesh, tol config.GeometricTolerances) models.TierDiff {
	diff := models.TierDiff{Tier: models.TierGeometric}

	oldEmpty, newEmpty := old.IsEmpty(), new.IsEmpty()
	if oldEmpty && newEmpty {
		return diff
	}
	if oldEmpty != newEmpty {
		diff.Changed = true
		diff.Entries = append(diff.Entries, models.FieldDiff{
			Path: "geometry",
			Old:  presence(!oldEmpty),
			New:  presence(!newEmpty),
		})
		return diff
	}

	oldDesc := old.Descriptors()
	newDesc := new.Descriptors()

	if relDiff(oldDesc.Volume, newDesc.Volume) > tol.VolumeRel {
		diff.Entries = append(diff.Entries, models.FieldDiff{Path: "volume", Old: oldDesc.Volume, New: newDesc.Volume})
	}
	if relDiff(oldDesc.SurfaceArea, newDesc.SurfaceArea) > tol.AreaRel {
		diff.Entries = append(diff.Entries, models.FieldDiff{Path: "surface_area", Old: oldDesc.SurfaceArea, New: newDesc.SurfaceArea})
	}
	if oldDesc.Centroid.Dist(newDesc.Centroid) > tol.Centroid {
		diff.Entries = append(diff.Entries, models.FieldDiff{Path: "centroid", Old: oldDesc.Centroid, New: newDesc.Centroid})
	}
	if oldDesc.BBox.Min.Dist(newDesc.BBox.Min) > tol.BBox {
		diff.Entries = append(diff.Entries, models.FieldDiff{Path: "bbox/min", Old: oldDesc.BBox.Min, New: newDesc.BBox.Min})
	}
	if oldDesc.BBox.Max.Dist(newDesc.BBox.Max) > tol.BBox {
		diff.Entries = append(diff.Entries, models.FieldDiff{Path: "bbox/max", Old: oldDesc.BBox.Max, New: newDesc.BBox.Max})
	}

	diff.Changed = len(diff.Entries) > 0
	return diff
}

func presence(has bool) string {
	if has {
		return "present"
	}
	return "missing"
}

// relDiff is the relative difference of two magnitudes, safe near zero.
func relDiff(a, b float64) float64 {
	denom := math.Max(math.Abs(a), math.Abs(b))
	if denom == 0 {
		return 0
	}
	return math.Abs(a-b) / denom
}
