package compare

import (
	"reflect"
	"sort"

	"github.com/ahmedmhm/bimdiff/internal/models"
)

// SemanticDiff produces the semantic tier diff for a matched pair. It
// compares the top-level attribute mapping, then the property-set mappings,
// then the quantity-set mappings, emitting one FieldDiff per divergent path.
// Quantity values within quantityTol of each other count as unchanged;
// a difference of exactly quantityTol is still unchanged.
func SemanticDiff(old, new *models.Element, quantityTol float64) models.TierDiff {
	diff := models.TierDiff{Tier: models.TierSemantic}

	diffMaps("", topLevelAttrs(old), topLevelAttrs(new), &diff.Entries)
	diffMaps("pset", wrapSets(old.PropertySets), wrapSets(new.PropertySets), &diff.Entries)
	diffQuantitySets(old.QuantitySets, new.QuantitySets, quantityTol, &diff.Entries)

	diff.Changed = len(diff.Entries) > 0
	return diff
}

// topLevelAttrs folds the fixed element fields into the attribute mapping so
// a type change is reported as a regular modification, not a match failure.
func topLevelAttrs(e *models.Element) map[string]any {
	attrs := make(map[string]any, len(e.Attributes)+2)
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	attrs["type"] = e.Type
	if e.Name != "" {
		attrs["name"] = e.Name
	}
	return attrs
}

func wrapSets(sets map[string]map[string]any) map[string]any {
	out := make(map[string]any, len(sets))
	for name, props := range sets {
		out[name] = props
	}
	return out
}

type mapFrame struct {
	path     string
	old, new map[string]any
}

// diffMaps walks two nested key-value graphs in lock-step using an explicit
// frame stack, so deeply nested property sets cannot exhaust the call stack.
// Moved or renamed subtrees are not detected: a rename is a removal plus an
// addition.
func diffMaps(root string, oldM, newM map[string]any, entries *[]models.FieldDiff) {
	stack := []mapFrame{{path: root, old: oldM, new: newM}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, key := range sortedKeyUnion(f.old, f.new) {
			path := joinPath(f.path, key)
			oldVal, inOld := f.old[key]
			newVal, inNew := f.new[key]

			switch {
			case !inOld:
				*entries = append(*entries, models.FieldDiff{Path: path, New: newVal})
			case !inNew:
				*entries = append(*entries, models.FieldDiff{Path: path, Old: oldVal})
			default:
				oldMap, oldIsMap := oldVal.(map[string]any)
				newMap, newIsMap := newVal.(map[string]any)
				if oldIsMap && newIsMap {
					stack = append(stack, mapFrame{path: path, old: oldMap, new: newMap})
					continue
				}
				if !scalarEqual(oldVal, newVal) {
					*entries = append(*entries, models.FieldDiff{Path: path, Old: oldVal, New: newVal})
				}
			}
		}
	}
}

func diffQuantitySets(old, new map[string]map[string]models.Quantity, tol float64, entries *[]models.FieldDiff) {
	for _, setName := range sortedSetUnion(old, new) {
		path := joinPath("qset", setName)
		oldSet, inOld := old[setName]
		newSet, inNew := new[setName]

		switch {
		case !inOld:
			*entries = append(*entries, models.FieldDiff{Path: path, New: newSet})
			continue
		case !inNew:
			*entries = append(*entries, models.FieldDiff{Path: path, Old: oldSet})
			continue
		}

		for _, qtyName := range sortedKeyUnion(toAnyMap(oldSet), toAnyMap(newSet)) {
			qtyPath := joinPath(path, qtyName)
			oldQty, hasOld := oldSet[qtyName]
			newQty, hasNew := newSet[qtyName]

			switch {
			case !hasOld:
				*entries = append(*entries, models.FieldDiff{Path: qtyPath, New: newQty})
			case !hasNew:
				*entries = append(*entries, models.FieldDiff{Path: qtyPath, Old: oldQty})
			case oldQty.Unit != newQty.Unit || absDiff(oldQty.Value, newQty.Value) > tol:
				*entries = append(*entries, models.FieldDiff{Path: qtyPath, Old: oldQty, New: newQty})
			}
		}
	}
}

// scalarEqual compares leaf values. Numeric values are compared as float64
// regardless of their concrete type, since JSON round-trips erase integer
// types.
func scalarEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

func sortedKeyUnion(a, b map[string]any) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func sortedSetUnion(a, b map[string]map[string]models.Quantity) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func toAnyMap(m map[string]models.Quantity) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
