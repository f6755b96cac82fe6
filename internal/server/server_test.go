package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ahmedmhm/bimdiff/internal/config"
	"github.com/ahmedmhm/bimdiff/internal/models"
	"github.com/ahmedmhm/bimdiff/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Initialize())

	ts := httptest.NewServer(New(st, zap.NewNop()).Router())
	t.Cleanup(func() {
		ts.Close()
		st.Close()
	})
	return ts, st
}

func saveTestRun(t *testing.T, st *store.Store) string {
	t.Helper()
	res := &models.ComparisonResult{
		OldVersion: "v1",
		NewVersion: "v2",
		Verdicts: []models.ElementVerdict{
			{ID: "door-1", Type: "IfcDoor", Classification: models.ClassAdded},
			{ID: "wall-1", Type: "IfcWall", Classification: models.ClassUnchanged, ShapeStatus: models.ShapeSkipped},
		},
		Summary: models.Summary{Added: 1, Unchanged: 1},
	}
	runID, err := st.SaveRun(res, config.Default())
	require.NoError(t, err)
	return runID
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	var body map[string]string
	status := getJSON(t, ts.URL+"/healthz", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestListRuns(t *testing.T) {
	ts, st := newTestServer(t)
	runID := saveTestRun(t, st)

	var body struct {
		Runs []store.Run `json:"runs"`
	}
	status := getJSON(t, ts.URL+"/api/v1/runs", &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Runs, 1)
	assert.Equal(t, runID, body.Runs[0].ID)
	assert.Equal(t, "v2", body.Runs[0].NewVersion)
}

func TestListRuns_EmptyStore(t *testing.T) {
	ts, _ := newTestServer(t)

	var body struct {
		Runs []store.Run `json:"runs"`
	}
	status := getJSON(t, ts.URL+"/api/v1/runs", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.NotNil(t, body.Runs)
	assert.Empty(t, body.Runs)
}

func TestGetRun(t *testing.T) {
	ts, st := newTestServer(t)
	runID := saveTestRun(t, st)

	var run store.Run
	status := getJSON(t, ts.URL+"/api/v1/runs/"+runID, &run)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, 1, run.Summary.Added)
}

func TestGetRun_NotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	status := getJSON(t, ts.URL+"/api/v1/runs/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetVerdicts(t *testing.T) {
	ts, st := newTestServer(t)
	runID := saveTestRun(t, st)

	var body struct {
		Verdicts []models.ElementVerdict `json:"verdicts"`
	}
	status := getJSON(t, ts.URL+"/api/v1/runs/"+runID+"/verdicts", &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Verdicts, 2)
	assert.Equal(t, "door-1", body.Verdicts[0].ID)
}

func TestGetVerdicts_ClassificationFilter(t *testing.T) {
	ts, st := newTestServer(t)
	runID := saveTestRun(t, st)

	var body struct {
		Verdicts []models.ElementVerdict `json:"verdicts"`
	}
	status := getJSON(t, ts.URL+"/api/v1/runs/"+runID+"/verdicts?classification=added", &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Verdicts, 1)
	assert.Equal(t, models.ClassAdded, body.Verdicts[0].Classification)
}

func TestGetVerdicts_BadClassification(t *testing.T) {
	ts, st := newTestServer(t)
	runID := saveTestRun(t, st)

	status := getJSON(t, ts.URL+"/api/v1/runs/"+runID+"/verdicts?classification=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
