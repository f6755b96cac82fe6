package compare

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedmhm/bimdiff/internal/config"
	"github.com/ahmedmhm/bimdiff/internal/index"
	"github.com/ahmedmhm/bimdiff/internal/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(config.Default(), nil)
	require.NoError(t, err)
	return e
}

func wall(id string, height float64, mesh *models.Mesh) *models.Element {
	return &models.Element{
		ID:         id,
		Type:       "IfcWall",
		Attributes: map[string]any{"height": height},
		Geometry:   mesh,
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ShapeGridResolution = 0

	_, err := NewEngine(cfg, nil)
	require.Error(t, err)

	var cfgErr *config.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRun_IdenticalModels(t *testing.T) {
	e := newTestEngine(t)
	model := func(version string) *models.Model {
		return &models.Model{Version: version, Elements: []*models.Element{
			wall("wall-1", 3.0, testCube(1, models.Vec3{})),
			wall("wall-2", 2.8, nil),
		}}
	}

	res, err := e.Run(context.Background(), model("v1"), model("v2"))
	require.NoError(t, err)

	assert.Equal(t, "v1", res.OldVersion)
	assert.Equal(t, "v2", res.NewVersion)
	assert.Equal(t, models.Summary{Unchanged: 2}, res.Summary)
	for _, v := range res.Verdicts {
		assert.Equal(t, models.ClassUnchanged, v.Classification)
		assert.Empty(t, v.Tiers)
		assert.Equal(t, models.ShapeSkipped, v.ShapeStatus)
	}
}

func TestRun_AddedAndDeleted(t *testing.T) {
	e := newTestEngine(t)
	old := &models.Model{Version: "v1", Elements: []*models.Element{
		wall("wall-1", 3.0, nil),
		wall("wall-gone", 3.0, nil),
	}}
	new := &models.Model{Version: "v2", Elements: []*models.Element{
		wall("wall-1", 3.0, nil),
		wall("wall-new", 3.0, nil),
	}}

	res, err := e.Run(context.Background(), old, new)
	require.NoError(t, err)

	assert.Equal(t, models.Summary{Added: 1, Deleted: 1, Unchanged: 1}, res.Summary)

	byID := verdictsByID(res)
	assert.Equal(t, models.ClassDeleted, byID["wall-gone"].Classification)
	assert.Empty(t, byID["wall-gone"].Tiers)
	assert.Equal(t, models.ClassAdded, byID["wall-new"].Classification)
	assert.Empty(t, byID["wall-new"].Tiers)
}

func TestRun_SemanticChangeOnly(t *testing.T) {
	e := newTestEngine(t)
	old := &models.Model{Version: "v1", Elements: []*models.Element{wall("wall-1", 3.0, nil)}}
	new := &models.Model{Version: "v2", Elements: []*models.Element{wall("wall-1", 3.2, nil)}}

	res, err := e.Run(context.Background(), old, new)
	require.NoError(t, err)

	require.Len(t, res.Verdicts, 1)
	v := res.Verdicts[0]
	assert.Equal(t, models.ClassModified, v.Classification)

	sem := v.Tier(models.TierSemantic)
	require.NotNil(t, sem)
	require.Len(t, sem.Entries, 1)
	assert.Equal(t, "height", sem.Entries[0].Path)

	// Geometry is absent on both sides, so the shape tier is skipped.
	assert.Equal(t, models.ShapeSkipped, v.ShapeStatus)
}

func TestRun_GeometricChangeTriggersShapeTier(t *testing.T) {
	e := newTestEngine(t)
	old := &models.Model{Version: "v1", Elements: []*models.Element{
		wall("wall-1", 3.0, testCube(1, models.Vec3{})),
	}}
	new := &models.Model{Version: "v2", Elements: []*models.Element{
		wall("wall-1", 3.0, testCube(1, models.Vec3{X: 0.5})),
	}}

	res, err := e.Run(context.Background(), old, new)
	require.NoError(t, err)

	require.Len(t, res.Verdicts, 1)
	v := res.Verdicts[0]
	assert.Equal(t, models.ClassModified, v.Classification)
	assert.Equal(t, models.ShapeChecked, v.ShapeStatus)
	assert.Greater(t, float64(v.ShapeDistance), 0.01)
	require.NotNil(t, v.Tier(models.TierGeometric))
	require.NotNil(t, v.Tier(models.TierShape))
}

func TestRun_ShapeSkipDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.SkipShapeWhenGeometryUnchanged = false
	e, err := NewEngine(cfg, nil)
	require.NoError(t, err)

	model := func(version string) *models.Model {
		return &models.Model{Version: version, Elements: []*models.Element{
			wall("wall-1", 3.0, testCube(1, models.Vec3{})),
		}}
	}

	res, err := e.Run(context.Background(), model("v1"), model("v2"))
	require.NoError(t, err)

	v := res.Verdicts[0]
	assert.Equal(t, models.ClassUnchanged, v.Classification)
	assert.Equal(t, models.ShapeChecked, v.ShapeStatus)
}

func TestRun_Deterministic(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 4
	e, err := NewEngine(cfg, nil)
	require.NoError(t, err)

	old := &models.Model{Version: "v1"}
	new := &models.Model{Version: "v2"}
	for i := 0; i < 40; i++ {
		id := string(rune('a'+i%26)) + "-" + string(rune('0'+i/26))
		old.Elements = append(old.Elements, wall(id, 3.0, nil))
		new.Elements = append(new.Elements, wall(id, 3.0+float64(i%3), nil))
	}

	first, err := e.Run(context.Background(), old, new)
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := e.Run(context.Background(), old, new)
		require.NoError(t, err)
		againJSON, err := json.Marshal(again)
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(againJSON))
	}
}

func TestRun_DuplicateIdentityFails(t *testing.T) {
	e := newTestEngine(t)
	old := &models.Model{Version: "v1", Elements: []*models.Element{
		wall("wall-1", 3.0, nil),
		wall("wall-1", 3.0, nil),
	}}
	new := &models.Model{Version: "v2"}

	_, err := e.Run(context.Background(), old, new)
	require.Error(t, err)

	var dupErr *index.DuplicateIdentityError
	assert.ErrorAs(t, err, &dupErr)
}

func TestRun_CancelledContext(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	old := &models.Model{Version: "v1", Elements: []*models.Element{wall("wall-1", 3.0, nil)}}
	new := &models.Model{Version: "v2", Elements: []*models.Element{wall("wall-1", 3.0, nil)}}

	res, err := e.Run(ctx, old, new)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func verdictsByID(res *models.ComparisonResult) map[string]models.ElementVerdict {
	out := make(map[string]models.ElementVerdict, len(res.Verdicts))
	for _, v := range res.Verdicts {
		out[v.ID] = v
	}
	return out
}
