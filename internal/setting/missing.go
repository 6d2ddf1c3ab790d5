package setting

import (
	"github.com/confstack/confstack/internal/maputil"
)

// FromMissing synthesizes definitions for every dotted key of flatConfig
// that no declared definition matches. The synthesized definitions are
// marked Extra, carry no default, and get their kind guessed from the
// discovered value so casting stays meaningful. Keys are visited in sorted
// order so the resulting catalog is deterministic.
func FromMissing(defs []*Definition, flatConfig map[string]any) []*Definition {
	var missing []*Definition

	for _, key := range maputil.SortedKeys(flatConfig) {
		if covered(defs, key) {
			continue
		}
		missing = append(missing, &Definition{
			Name:  key,
			Kind:  guessKind(flatConfig[key]),
			Extra: true,
		})
	}

	return missing
}

func covered(defs []*Definition, name string) bool {
	for _, def := range defs {
		if def.Matches(name) {
			return true
		}
	}
	return false
}

func guessKind(value any) Kind {
	switch value.(type) {
	case bool:
		return KindBoolean
	case int, int64:
		return KindInteger
	case []any:
		return KindArray
	case map[string]any, map[any]any:
		return KindObject
	default:
		return ""
	}
}
