package store

import "fmt"

// Kind identifies one backing store. The zero value is Auto, the virtual
// read-through store, so an unspecified source always means "search the
// concrete stores in precedence order".
type Kind int

// Store kinds, in ascending precedence order. A value found in a later kind
// overrides the same setting found in an earlier one.
const (
	Auto Kind = iota
	Default
	Database
	ProjectFile
	Dotenv
	Env
	Override
)

// ReadOrder lists the concrete kinds in the order Auto consults them:
// highest precedence first, with Default as the terminal fallback.
var ReadOrder = []Kind{Override, Env, Dotenv, ProjectFile, Database, Default}

var kindNames = map[Kind]string{
	Auto:        "auto",
	Default:     "default",
	Database:    "database",
	ProjectFile: "project_file",
	Dotenv:      "dotenv",
	Env:         "env",
	Override:    "override",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("store(%d)", int(k))
}

// ParseKind resolves a store name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for kind, n := range kindNames {
		if n == name {
			return kind, nil
		}
	}
	return Auto, fmt.Errorf("unknown store %q", name)
}

// Overrides reports whether a value sourced from k takes precedence over one
// sourced from other. Auto has no rank of its own.
func (k Kind) Overrides(other Kind) bool {
	return k != Auto && other != Auto && k > other
}

// Writable reports whether the kind accepts set/unset/reset operations.
// Process environment and explicit overrides are read-only by construction,
// and writes never go through Auto.
func (k Kind) Writable() bool {
	switch k {
	case Database, ProjectFile, Dotenv:
		return true
	default:
		return false
	}
}
