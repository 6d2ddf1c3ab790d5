package store

import (
	"context"

	"github.com/confstack/confstack/internal/setting"
)

// Metadata annotates the result of a store operation with provenance: which
// store produced or received the value, the definition involved, the raw
// value before casting changed it, and whether redaction intervened.
type Metadata struct {
	// Name is the canonical setting name the operation resolved to.
	Name string

	// Path holds the dotted-path segments of a write operation.
	Path []string

	// Source is the store kind that produced the value on the read path.
	Source Kind

	// Store is the store kind targeted by a write operation.
	Store Kind

	// Setting is the definition the operation resolved against; nil for
	// ad-hoc names with no declared or synthesized definition.
	Setting *setting.Definition

	// UncastValue carries the raw input when casting changed it.
	UncastValue any

	// Redacted is true when the returned value was replaced by the
	// redaction sentinel, or when a write was suppressed because it
	// targeted the sentinel.
	Redacted bool

	// EnvVar names the environment variable that supplied the value, when
	// the source is an environment-shaped store.
	EnvVar string
}

// Manager is the per-store adapter: one instance is bound to one
// (service, store) pair. A manager constructed in bulk mode may materialize
// its entire backing payload once and serve every lookup of a single
// resolution pass from that cache; it must not be reused across independent
// top-level calls.
//
// Operations that are structurally impossible for a store return an error
// wrapping ErrStoreNotSupported, which callers must propagate.
type Manager interface {
	// Get looks up the raw value for name. The second return is false when
	// the store has no entry. expandEnv, when non-empty, is the mapping
	// extra-setting values may reference via $VAR interpolation.
	Get(ctx context.Context, name string, def *setting.Definition, expandEnv map[string]string) (any, bool, Metadata, error)

	// Set persists value at the dotted path.
	Set(ctx context.Context, name string, path []string, value any, def *setting.Definition) (Metadata, error)

	// Unset removes the value at the dotted path.
	Unset(ctx context.Context, name string, path []string, def *setting.Definition) (Metadata, error)

	// Reset clears every entry owned by this store.
	Reset(ctx context.Context) (Metadata, error)
}

// Backend is the capability surface managers resolve against. The settings
// service implements it; managers never see the service itself.
type Backend interface {
	// Environ returns the merged process environment, with any explicit
	// env override applied on top.
	Environ() map[string]string

	// FlatConfig returns the project config flattened to dotted keys.
	FlatConfig() (map[string]any, error)

	// UpdateConfig runs update against the nested project config mapping
	// and persists the result.
	UpdateConfig(update func(config map[string]any) error) error

	// EnvVarsFor projects a definition onto the service's own environment
	// variable names (generic prefixes excluded).
	EnvVarsFor(def *setting.Definition) []setting.EnvVar
}

// Factory constructs the manager for a concrete store kind. It returns an
// error wrapping ErrStoreNotSupported for kinds the host has not wired up
// (for example Database without a configured connection).
type Factory func(kind Kind, bulk bool) (Manager, error)
