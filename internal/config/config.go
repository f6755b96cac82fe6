// Package config manages bimdiff configuration: comparison tolerances,
// sampling parameters, and store/server settings. It handles loading and
// saving the TOML configuration file and validating values before a run.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

// GeometricTolerances holds the per-descriptor tolerances of the geometric
// tier. Volume and area are compared by relative difference, centroid and
// bounding-box corners by absolute Euclidean distance.
type GeometricTolerances struct {
	VolumeRel float64 `toml:"volume_rel"`
	AreaRel   float64 `toml:"area_rel"`
	Centroid  float64 `toml:"centroid"`
	BBox      float64 `toml:"bbox"`
}

// Config represents the bimdiff configuration.
type Config struct {
	// SemanticTolerance is the absolute tolerance for quantity-set values.
	// 0 means exact equality.
	SemanticTolerance float64 `toml:"semantic_tolerance"`

	Geometric GeometricTolerances `toml:"geometric_tolerances"`

	// ShapeGridResolution is the number of sampling cells along the longest
	// bounding-box axis of a mesh.
	ShapeGridResolution int `toml:"shape_grid_resolution"`

	// ShapeHausdorffThreshold is the absolute distance above which the shape
	// tier reports a change.
	ShapeHausdorffThreshold float64 `toml:"shape_hausdorff_threshold"`

	// SkipShapeWhenGeometryUnchanged skips the expensive shape tier for
	// pairs whose summary descriptors are within tolerance.
	SkipShapeWhenGeometryUnchanged bool `toml:"skip_shape_when_geometry_unchanged"`

	// Workers bounds the comparison worker pool. 0 means GOMAXPROCS.
	Workers int `toml:"workers"`

	DatabasePath string `toml:"database_path"`
	ListenAddr   string `toml:"listen_addr"`
}

// ConfigurationError reports an invalid configuration value. It is fatal at
// run start: the run is rejected before any comparison begins.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Default returns the default configuration. Tolerances default to values
// that absorb geometry recomputation and export round-trip noise without
// masking real edits.
func Default() *Config {
	return &Config{
		SemanticTolerance: 0,
		Geometric: GeometricTolerances{
			VolumeRel: 0.005,
			AreaRel:   0.005,
			Centroid:  0.01,
			BBox:      0.01,
		},
		ShapeGridResolution:            16,
		ShapeHausdorffThreshold:        0.01,
		SkipShapeWhenGeometryUnchanged: true,
		Workers:                        0,
		DatabasePath:                   "bimdiff.db",
		ListenAddr:                     "127.0.0.1:8731",
	}
}

// Load reads a configuration file, applying defaults for absent keys.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to disk.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks all tolerance and resolution values. It returns a
// ConfigurationError for the first invalid field found.
func (c *Config) Validate() error {
	switch {
	case c.SemanticTolerance < 0:
		return &ConfigurationError{Field: "semantic_tolerance", Reason: "must not be negative"}
	case c.Geometric.VolumeRel < 0:
		return &ConfigurationError{Field: "geometric_tolerances.volume_rel", Reason: "must not be negative"}
	case c.Geometric.AreaRel < 0:
		return &ConfigurationError{Field: "geometric_tolerances.area_rel", Reason: "must not be negative"}
	case c.Geometric.Centroid < 0:
		return &ConfigurationError{Field: "geometric_tolerances.centroid", Reason: "must not be negative"}
	case c.Geometric.BBox < 0:
		return &ConfigurationError{Field: "geometric_tolerances.bbox", Reason: "must not be negative"}
	case c.ShapeGridResolution < 1:
		return &ConfigurationError{Field: "shape_grid_resolution", Reason: "must be at least 1"}
	case c.ShapeHausdorffThreshold < 0:
		return &ConfigurationError{Field: "shape_hausdorff_threshold", Reason: "must not be negative"}
	case c.Workers < 0:
		return &ConfigurationError{Field: "workers", Reason: "must not be negative"}
	}
	return nil
}

// WorkerCount resolves the effective worker pool size.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
