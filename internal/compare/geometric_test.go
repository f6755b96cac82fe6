package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedmhm/bimdiff/internal/config"
	"github.com/ahmedmhm/bimdiff/internal/models"
)

func TestGeometricDiff_Identical(t *testing.T) {
	tol := config.Default().Geometric
	diff := GeometricDiff(testCube(1, models.Vec3{}), testCube(1, models.Vec3{}), tol)

	assert.False(t, diff.Changed)
	assert.Empty(t, diff.Entries)
}

func TestGeometricDiff_BothEmpty(t *testing.T) {
	tol := config.Default().Geometric
	diff := GeometricDiff(nil, nil, tol)

	assert.False(t, diff.Changed)
}

func TestGeometricDiff_PresenceChange(t *testing.T) {
	tol := config.Default().Geometric
	diff := GeometricDiff(testCube(1, models.Vec3{}), nil, tol)

	require.True(t, diff.Changed)
	require.Len(t, diff.Entries, 1)
	assert.Equal(t, "geometry", diff.Entries[0].Path)
	assert.Equal(t, "present", diff.Entries[0].Old)
	assert.Equal(t, "missing", diff.Entries[0].New)
}

func TestGeometricDiff_Translated(t *testing.T) {
	tol := config.Default().Geometric
	diff := GeometricDiff(testCube(1, models.Vec3{}), testCube(1, models.Vec3{X: 0.5}), tol)

	require.True(t, diff.Changed)
	paths := entryPaths(diff)
	assert.Contains(t, paths, "centroid")
	assert.Contains(t, paths, "bbox/min")
	assert.Contains(t, paths, "bbox/max")
	// Translation preserves volume and area.
	assert.NotContains(t, paths, "volume")
	assert.NotContains(t, paths, "surface_area")
}

func TestGeometricDiff_Scaled(t *testing.T) {
	tol := config.Default().Geometric
	diff := GeometricDiff(testCube(1, models.Vec3{}), testCube(1.1, models.Vec3{}), tol)

	require.True(t, diff.Changed)
	paths := entryPaths(diff)
	assert.Contains(t, paths, "volume")
	assert.Contains(t, paths, "surface_area")
}

func TestGeometricDiff_ExactlyAtToleranceIsUnchanged(t *testing.T) {
	// Centroid and bbox move by exactly the tolerance; volume and area stay.
	tol := config.GeometricTolerances{VolumeRel: 0.005, AreaRel: 0.005, Centroid: 0.5, BBox: 0.5}
	diff := GeometricDiff(testCube(1, models.Vec3{}), testCube(1, models.Vec3{X: 0.5}), tol)

	assert.False(t, diff.Changed)
}

func entryPaths(diff models.TierDiff) []string {
	paths := make([]string, len(diff.Entries))
	for i, e := range diff.Entries {
		paths[i] = e.Path
	}
	return paths
}
