package settings

import "github.com/confstack/confstack/internal/setting"

// Variant is the capability set each concrete settings-service flavor
// (project-level, plugin-level, ...) must supply. The Service orchestrator
// is written against this interface only, never against a concrete variant.
type Variant interface {
	// Label is the human-readable name of the variant, used in logs and
	// error messages.
	Label() string

	// DocsURL points at the documentation for this variant's settings.
	DocsURL() string

	// EnvPrefixes is the ordered list of environment-variable prefixes the
	// variant's settings project onto. The first prefix is canonical.
	EnvPrefixes() []string

	// GenericEnvPrefix is the optional prefix-less projection included in
	// environment output alongside the variant's own prefixes. Empty means
	// no generic projection.
	GenericEnvPrefix() string

	// DBNamespace scopes the variant's rows in the database-backed store.
	DBNamespace() string

	// Definitions is the declared setting catalog.
	Definitions() []*setting.Definition

	// ProjectConfig returns the variant's YAML-backed config mapping,
	// nested (not flattened).
	ProjectConfig() (map[string]any, error)

	// UpdateProjectConfig runs update against the nested config mapping
	// and persists the result.
	UpdateProjectConfig(update func(config map[string]any) error) error

	// ProcessConfig post-processes a resolved config mapping before it is
	// handed to callers that asked for processing.
	ProcessConfig(config map[string]any) map[string]any
}
