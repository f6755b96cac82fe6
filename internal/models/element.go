// Package models defines the core data structures used throughout bimdiff
// including elements, geometry, match results, and verdicts.
package models

// Element represents one model entity in one version of a building model.
// The ID is the version-independent identity assigned at authoring time and
// is the correlation key across model versions.
type Element struct {
	ID           string                         `json:"id"`
	Type         string                         `json:"type"` // e.g. IfcWall, IfcDoor, IfcSlab
	Name         string                         `json:"name,omitempty"`
	Attributes   map[string]any                 `json:"attributes,omitempty"`
	PropertySets map[string]map[string]any      `json:"property_sets,omitempty"`
	QuantitySets map[string]map[string]Quantity `json:"quantity_sets,omitempty"`
	Geometry     *Mesh                          `json:"geometry,omitempty"`
}

// Quantity is a numeric quantity with its unit (e.g. NetVolume in m3).
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Model is one parsed version of a building model, as handed over by an
// external format adapter. The engine never reads a raw model file itself.
type Model struct {
	Version  string     `json:"version,omitempty"` // free-form label (file name, revision tag)
	Elements []*Element `json:"elements"`
}

// HasGeometry reports whether the element carries a usable mesh.
func (e *Element) HasGeometry() bool {
	return e.Geometry != nil && !e.Geometry.IsEmpty()
}
