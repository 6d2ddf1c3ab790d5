// Package maputil provides helpers for working with nested string-keyed maps,
// primarily the dotted-key flattening used throughout the settings engine.
package maputil

import (
	"fmt"
	"sort"
)

// Flatten converts a nested map into a flat map whose keys are the dotted
// paths of the original leaves. Non-map values are kept as-is; nested maps
// are descended into recursively.
//
// For example, {"a": {"b": 1}} flattens to {"a.b": 1}.
func Flatten(nested map[string]any) map[string]any {
	flat := make(map[string]any, len(nested))
	flattenInto(flat, "", nested)
	return flat
}

func flattenInto(flat map[string]any, prefix string, nested map[string]any) {
	for key, value := range nested {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}

		switch child := value.(type) {
		case map[string]any:
			flattenInto(flat, name, child)
		case map[any]any:
			flattenInto(flat, name, Normalize(child))
		default:
			flat[name] = value
		}
	}
}

// Normalize converts a map with interface{} keys (as produced by some YAML
// decoders) into a string-keyed map. Non-string keys are stringified.
func Normalize(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		key, ok := k.(string)
		if !ok {
			key = fmt.Sprintf("%v", k)
		}
		out[key] = v
	}
	return out
}

// SortedKeys returns the keys of a flat map in lexicographic order. Useful
// for deterministic iteration in projections and tests.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetPath assigns value at the nested location described by path, creating
// intermediate maps as needed. Existing non-map intermediates are replaced.
func SetPath(nested map[string]any, path []string, value any) {
	current := nested
	for _, segment := range path[:len(path)-1] {
		child, ok := current[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			current[segment] = child
		}
		current = child
	}
	current[path[len(path)-1]] = value
}

// DeletePath removes the nested location described by path. Intermediate maps
// left empty by the removal are pruned. Reports whether a value was removed.
func DeletePath(nested map[string]any, path []string) bool {
	if len(path) == 0 {
		return false
	}
	if len(path) == 1 {
		if _, ok := nested[path[0]]; !ok {
			return false
		}
		delete(nested, path[0])
		return true
	}

	child, ok := nested[path[0]].(map[string]any)
	if !ok {
		return false
	}
	removed := DeletePath(child, path[1:])
	if removed && len(child) == 0 {
		delete(nested, path[0])
	}
	return removed
}
