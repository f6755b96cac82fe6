package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedmhm/bimdiff/internal/config"
	"github.com/ahmedmhm/bimdiff/internal/models"
)

// Run is the stored record of one comparison run.
type Run struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	OldVersion string         `json:"old_version"`
	NewVersion string         `json:"new_version"`
	Summary    models.Summary `json:"summary"`
}

// ErrRunNotFound is returned when a run ID does not exist in the store.
var ErrRunNotFound = fmt.Errorf("run not found")

// SaveRun persists a comparison result together with the configuration that
// produced it, and returns the new run ID.
func (s *Store) SaveRun(res *models.ComparisonResult, cfg *config.Config) (string, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runID := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO runs (id, old_version, new_version, config, added, deleted, modified, unchanged)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, res.OldVersion, res.NewVersion, string(cfgJSON),
		res.Summary.Added, res.Summary.Deleted, res.Summary.Modified, res.Summary.Unchanged,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO verdicts (run_id, position, element_id, element_type, classification, data)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare verdict insert: %w", err)
	}
	defer stmt.Close()

	for i := range res.Verdicts {
		v := &res.Verdicts[i]
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal verdict %s: %w", v.ID, err)
		}
		if _, err := stmt.Exec(runID, i, v.ID, v.Type, string(v.Classification), string(data)); err != nil {
			return "", fmt.Errorf("failed to insert verdict %s: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns all stored runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, old_version, new_version, added, deleted, modified, unchanged
		FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one stored run by ID.
func (s *Store) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, created_at, old_version, new_version, added, deleted, modified, unchanged
		FROM runs WHERE id = ?`, runID)

	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetVerdicts returns the verdicts of one run in result order, optionally
// filtered by classification.
func (s *Store) GetVerdicts(runID string, classification models.Classification) ([]models.ElementVerdict, error) {
	if _, err := s.GetRun(runID); err != nil {
		return nil, err
	}

	query := `SELECT data FROM verdicts WHERE run_id = ?`
	args := []any{runID}
	if classification != "" {
		query += ` AND classification = ?`
		args = append(args, string(classification))
	}
	query += ` ORDER BY position`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []models.ElementVerdict
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		var v models.ElementVerdict
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, fmt.Errorf("failed to decode verdict: %w", err)
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	var createdAt string
	err := row.Scan(&r.ID, &createdAt, &r.OldVersion, &r.NewVersion,
		&r.Summary.Added, &r.Summary.Deleted, &r.Summary.Modified, &r.Summary.Unchanged)
	if err == sql.ErrNoRows {
		return r, err
	}
	if err != nil {
		return r, fmt.Errorf("failed to scan run: %w", err)
	}
	r.CreatedAt = parseTimestamp(createdAt)
	return r, nil
}
