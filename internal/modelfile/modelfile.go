// Package modelfile reads and writes model snapshot files: the pre-parsed
// form of one model version that format adapters hand to the engine. The
// engine never reads a raw authoring file; adapters flatten identity,
// attributes, property/quantity sets, and triangulated meshes into this
// JSON format.
package modelfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ahmedmhm/bimdiff/internal/models"
)

// SchemaVersion is the snapshot format version this build understands.
const SchemaVersion = 1

type snapshot struct {
	Schema   int               `json:"schema"`
	Version  string            `json:"version,omitempty"`
	Elements []*models.Element `json:"elements"`
}

// Load reads and validates one model snapshot.
func Load(path string) (*models.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	if snap.Schema != SchemaVersion {
		return nil, fmt.Errorf("snapshot %s: unsupported schema version %d (want %d)", path, snap.Schema, SchemaVersion)
	}

	m := &models.Model{Version: snap.Version, Elements: snap.Elements}
	if m.Version == "" {
		m.Version = path
	}
	if err := validate(m); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return m, nil
}

// Save writes a model snapshot. Adapters and tests use this to produce
// engine inputs.
func Save(path string, m *models.Model) error {
	if err := validate(m); err != nil {
		return err
	}
	snap := snapshot{Schema: SchemaVersion, Version: m.Version, Elements: m.Elements}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func validate(m *models.Model) error {
	for i, el := range m.Elements {
		if el == nil {
			return fmt.Errorf("element %d is null", i)
		}
		if el.ID == "" {
			return fmt.Errorf("element %d has no identity", i)
		}
		if el.Type == "" {
			return fmt.Errorf("element %s has no type tag", el.ID)
		}
		if el.Geometry != nil {
			if err := validateMesh(el.Geometry); err != nil {
				return fmt.Errorf("element %s: %w", el.ID, err)
			}
		}
	}
	return nil
}

func validateMesh(mesh *models.Mesh) error {
	for _, f := range mesh.Faces {
		for _, v := range f {
			if v < 0 || v >= len(mesh.Vertices) {
				return fmt.Errorf("mesh face references vertex %d of %d", v, len(mesh.Vertices))
			}
		}
	}
	return nil
}
