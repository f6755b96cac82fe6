// Package index builds the per-version element index keyed by stable
// identity. The index is built once per comparison run and read-only
// thereafter.
package index

import (
	"fmt"
	"sort"

	"github.com/ahmedmhm/bimdiff/internal/models"
)

// DuplicateIdentityError reports two elements sharing an identity within one
// model version. Identity is the correctness anchor for the whole pipeline,
// so this is fatal for the affected version.
type DuplicateIdentityError struct {
	ID      string
	Version string
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("duplicate element identity %q in version %q", e.ID, e.Version)
}

// ElementIndex maps identity to element for one model version.
type ElementIndex struct {
	version string
	byID    map[string]*models.Element
	ids     []string // sorted for deterministic iteration
}

// Build indexes one model version. Elements without an identity are
// rejected, as are duplicate identities.
func Build(m *models.Model) (*ElementIndex, error) {
	idx := &ElementIndex{
		version: m.Version,
		byID:    make(map[string]*models.Element, len(m.Elements)),
		ids:     make([]string, 0, len(m.Elements)),
	}

	for _, el := range m.Elements {
		if el.ID == "" {
			return nil, fmt.Errorf("element without identity in version %q", m.Version)
		}
		if _, exists := idx.byID[el.ID]; exists {
			return nil, &DuplicateIdentityError{ID: el.ID, Version: m.Version}
		}
		idx.byID[el.ID] = el
		idx.ids = append(idx.ids, el.ID)
	}
	sort.Strings(idx.ids)

	return idx, nil
}

// Get returns the element for an identity.
func (x *ElementIndex) Get(id string) (*models.Element, bool) {
	el, ok := x.byID[id]
	return el, ok
}

// IDs returns all identities in sorted order.
func (x *ElementIndex) IDs() []string { return x.ids }

// Len returns the number of indexed elements.
func (x *ElementIndex) Len() int { return len(x.ids) }

// Version returns the label of the indexed model version.
func (x *ElementIndex) Version() string { return x.version }
