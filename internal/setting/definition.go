// Package setting describes the declarative side of the settings engine: the
// immutable definition of one configurable value, its kind-directed casting
// and stringification, and its projection onto environment variable names.
package setting

import (
	"strings"
)

// Definition is the immutable descriptor of one logical setting. A catalog of
// definitions is supplied per settings-service variant; definitions found
// only in the backing config are synthesized via FromMissing.
type Definition struct {
	// Name is the canonical dotted name and the unique key of the setting.
	Name string

	// Aliases are alternative names resolving to the same definition. An
	// alias beginning with "!" denotes the negated form of a boolean
	// setting: its environment variable carries the inverted value.
	Aliases []string

	// Kind drives casting and stringification. The zero value leaves
	// values untouched.
	Kind Kind

	// Description is free-form documentation text.
	Description string

	// Default is the declared fallback value when no store defines one.
	Default any

	// Extra marks a plugin- or user-supplied setting that is not part of
	// the declared catalog.
	Extra bool

	// Sensitive marks a setting whose value must be redacted before it
	// leaves the service.
	Sensitive bool
}

// IsRedacted reports whether values of this setting are replaced by the
// redaction sentinel on reads that request redaction.
func (d *Definition) IsRedacted() bool {
	return d.Sensitive || d.Kind == KindPassword
}

// Matches reports whether name is the definition's canonical name or one of
// its aliases. Matching is exact and case-sensitive; the "!" negation marker
// on an alias is ignored for matching purposes.
func (d *Definition) Matches(name string) bool {
	if d.Name == name {
		return true
	}
	for _, alias := range d.Aliases {
		if strings.TrimPrefix(alias, "!") == name {
			return true
		}
	}
	return false
}

// Keys returns the canonical name followed by the non-negated aliases, in
// declaration order. These are the keys under which a value may appear in a
// backing config mapping.
func (d *Definition) Keys() []string {
	keys := make([]string, 0, 1+len(d.Aliases))
	keys = append(keys, d.Name)
	for _, alias := range d.Aliases {
		if strings.HasPrefix(alias, "!") {
			continue
		}
		keys = append(keys, alias)
	}
	return keys
}

// Find locates the definition matching name (canonical or alias) in defs.
// Returns ErrSettingMissing when nothing matches.
func Find(defs []*Definition, name string) (*Definition, error) {
	for _, def := range defs {
		if def.Matches(name) {
			return def, nil
		}
	}
	return nil, MissingError(name)
}
