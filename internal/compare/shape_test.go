package compare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedmhm/bimdiff/internal/models"
)

// testCube builds an axis-aligned cube with outward-oriented faces, its min
// corner at offset.
func testCube(side float64, offset models.Vec3) *models.Mesh {
	s := side
	m := &models.Mesh{
		Vertices: []models.Vec3{
			{X: 0, Y: 0, Z: 0}, {X: s, Y: 0, Z: 0}, {X: s, Y: s, Z: 0}, {X: 0, Y: s, Z: 0},
			{X: 0, Y: 0, Z: s}, {X: s, Y: 0, Z: s}, {X: s, Y: s, Z: s}, {X: 0, Y: s, Z: s},
		},
		Faces: [][3]int{
			{0, 2, 1}, {0, 3, 2},
			{4, 5, 6}, {4, 6, 7},
			{0, 1, 5}, {0, 5, 4},
			{2, 3, 7}, {2, 7, 6},
			{0, 4, 7}, {0, 7, 3},
			{1, 2, 6}, {1, 6, 5},
		},
	}
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Add(offset)
	}
	return m
}

// retriangulatedCube is the same cube surface with its top face split into
// four triangles around a center vertex instead of two.
func retriangulatedCube(side float64) *models.Mesh {
	s := side
	m := testCube(s, models.Vec3{})
	m.Vertices = append(m.Vertices, models.Vec3{X: s / 2, Y: s / 2, Z: s})
	m.Faces = [][3]int{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 8}, {5, 6, 8}, {6, 7, 8}, {7, 4, 8}, // top, fanned
		{0, 1, 5}, {0, 5, 4},
		{2, 3, 7}, {2, 7, 6},
		{0, 4, 7}, {0, 7, 3},
		{1, 2, 6}, {1, 6, 5},
	}
	return m
}

func TestShapeDiff_IdenticalCube(t *testing.T) {
	diff := ShapeDiff(testCube(1, models.Vec3{}), testCube(1, models.Vec3{}), 16, 0.01)

	assert.False(t, diff.Changed)
	assert.False(t, diff.Failed)
	assert.InDelta(t, 0, float64(diff.Distance), 1e-12)
	assert.Equal(t, 16, diff.GridResolution)
	assert.Equal(t, 0.01, diff.Threshold)
}

func TestShapeDiff_TranslatedCube(t *testing.T) {
	diff := ShapeDiff(testCube(1, models.Vec3{}), testCube(1, models.Vec3{X: 0.5}), 16, 0.01)

	require.True(t, diff.Changed)
	assert.Greater(t, float64(diff.Distance), 0.01)
	require.Len(t, diff.Entries, 1)
	assert.Equal(t, "hausdorff", diff.Entries[0].Path)
}

func TestShapeDiff_RetriangulationIsNotAChange(t *testing.T) {
	// Same surface, different triangulation. Grid sampling projects the same
	// cell centers onto the same surface, so the distance stays near zero.
	diff := ShapeDiff(testCube(1, models.Vec3{}), retriangulatedCube(1), 16, 0.01)

	assert.False(t, diff.Changed)
	assert.Less(t, float64(diff.Distance), 0.01)
}

func TestShapeDiff_Symmetric(t *testing.T) {
	a := testCube(1, models.Vec3{})
	b := testCube(1.2, models.Vec3{X: 0.1, Y: 0.1, Z: 0.1})

	ab := ShapeDiff(a, b, 8, 0.01)
	ba := ShapeDiff(b, a, 8, 0.01)

	assert.InDelta(t, float64(ab.Distance), float64(ba.Distance), 1e-12)
}

func TestShapeDiff_EmptyMesh(t *testing.T) {
	diff := ShapeDiff(nil, testCube(1, models.Vec3{}), 16, 0.01)

	require.True(t, diff.Changed)
	assert.True(t, diff.Distance.Inf())
	require.Len(t, diff.Entries, 1)
	assert.Equal(t, "mesh", diff.Entries[0].Path)
	assert.Equal(t, "missing", diff.Entries[0].Old)
	assert.Equal(t, "present", diff.Entries[0].New)
}

func TestShapeDiff_BothEmptyIsDegenerate(t *testing.T) {
	diff := ShapeDiff(&models.Mesh{}, &models.Mesh{}, 16, 0.01)

	// Nothing to sample is never silently unchanged.
	assert.True(t, diff.Changed)
	assert.True(t, diff.Distance.Inf())
}

func TestHausdorff_KnownDistance(t *testing.T) {
	a := []models.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	b := []models.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0.3, Z: 0}}

	assert.InDelta(t, 0.3, hausdorff(a, b, 0.25), 1e-12)
	assert.InDelta(t, 0.3, hausdorff(b, a, 0.25), 1e-12)
}

func TestClosestPointOnTriangle(t *testing.T) {
	a := models.Vec3{X: 0, Y: 0, Z: 0}
	b := models.Vec3{X: 2, Y: 0, Z: 0}
	c := models.Vec3{X: 0, Y: 2, Z: 0}

	// Above the interior: perpendicular foot.
	q := closestPointOnTriangle(models.Vec3{X: 0.5, Y: 0.5, Z: 1}, a, b, c)
	assert.InDelta(t, 0.5, q.X, 1e-12)
	assert.InDelta(t, 0.5, q.Y, 1e-12)
	assert.InDelta(t, 0, q.Z, 1e-12)

	// Beyond a vertex: the vertex itself.
	q = closestPointOnTriangle(models.Vec3{X: -1, Y: -1, Z: 0}, a, b, c)
	assert.Equal(t, a, q)

	// Beyond an edge: the edge projection.
	q = closestPointOnTriangle(models.Vec3{X: 1, Y: -1, Z: 0}, a, b, c)
	assert.InDelta(t, 1, q.X, 1e-12)
	assert.InDelta(t, 0, q.Y, 1e-12)
}

func TestSampleGrid_DegenerateExtent(t *testing.T) {
	flat := &models.Mesh{
		Vertices: []models.Vec3{{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}},
		Faces:    [][3]int{{0, 1, 2}},
	}

	samples, cell := sampleGrid(flat, 16)
	assert.Len(t, samples, 3)
	assert.Equal(t, 1.0, cell)
	assert.False(t, math.IsNaN(samples[0].X))
}
