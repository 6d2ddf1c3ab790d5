// Package settings implements the layered settings-resolution engine: given
// a setting's logical name it determines the effective value by consulting
// the backing stores in precedence order, annotates the result with
// provenance metadata, casts it to the declared kind, and optionally redacts
// sensitive values. The inverse direction writes, unsets or resets values
// against an explicitly named store under the same casting and redaction
// contracts.
package settings

import (
	"os"
	"strings"
	"sync"

	"github.com/confstack/confstack/internal/maputil"
	"github.com/confstack/confstack/internal/platform/postgres"
	"github.com/confstack/confstack/internal/setting"
	"github.com/confstack/confstack/internal/store"
)

// ExtrasFilter narrows a definition catalog to extra settings, declared
// settings, or both.
type ExtrasFilter int

const (
	// ExtrasAll keeps every definition.
	ExtrasAll ExtrasFilter = iota
	// ExtrasOnly keeps only extra (undeclared, plugin/user-supplied)
	// settings.
	ExtrasOnly
	// ExtrasExclude keeps only declared settings.
	ExtrasExclude
)

// Service orchestrates settings resolution for one Variant. Zero or more
// Options wire in the optional stores (database, dotenv file) and overrides.
//
// A Service memoizes its merged definition catalog; InvalidateCatalog drops
// the memo when the backing config may have grown new undeclared keys.
type Service struct {
	variant Variant

	db             store.DBTX
	dotenvPath     string
	showHidden     bool
	envOverride    map[string]string
	configOverride map[string]any

	mu      sync.Mutex
	catalog []*setting.Definition
}

// Option configures a Service.
type Option func(*Service)

// WithDB wires in the database-backed store. Without it, database reads are
// skipped by Auto resolution and explicit database operations fail with
// ErrStoreNotSupported.
func WithDB(db store.DBTX) Option {
	return func(s *Service) { s.db = db }
}

// WithDotenvFile wires in the dotenv store at the given path.
func WithDotenvFile(path string) Option {
	return func(s *Service) { s.dotenvPath = path }
}

// HideHidden drops definitions of kind hidden from the catalog.
func HideHidden() Option {
	return func(s *Service) { s.showHidden = false }
}

// WithEnvOverride lays the given variables over the process environment.
// The mapping is copied; later caller mutations do not leak in.
func WithEnvOverride(env map[string]string) Option {
	return func(s *Service) {
		s.envOverride = make(map[string]string, len(env))
		for k, v := range env {
			s.envOverride[k] = v
		}
	}
}

// WithConfigOverride supplies explicit highest-precedence values, keyed by
// setting name. The mapping is copied.
func WithConfigOverride(config map[string]any) Option {
	return func(s *Service) {
		s.configOverride = make(map[string]any, len(config))
		for k, v := range config {
			s.configOverride[k] = v
		}
	}
}

// New creates a Service for the given variant.
func New(variant Variant, opts ...Option) *Service {
	s := &Service{
		variant:    variant,
		showHidden: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Variant returns the variant this service resolves for.
func (s *Service) Variant() Variant { return s.variant }

// Ensure Service provides the capability surface store managers need.
var _ store.Backend = (*Service)(nil)

// Environ implements store.Backend: the process environment with the env
// override laid on top.
func (s *Service) Environ() map[string]string {
	env := make(map[string]string)
	for _, pair := range os.Environ() {
		if k, v, ok := strings.Cut(pair, "="); ok {
			env[k] = v
		}
	}
	for k, v := range s.envOverride {
		env[k] = v
	}
	return env
}

// FlatConfig implements store.Backend: the variant's project config
// flattened to dotted keys.
func (s *Service) FlatConfig() (map[string]any, error) {
	config, err := s.variant.ProjectConfig()
	if err != nil {
		return nil, err
	}
	return maputil.Flatten(config), nil
}

// UpdateConfig implements store.Backend.
func (s *Service) UpdateConfig(update func(config map[string]any) error) error {
	return s.variant.UpdateProjectConfig(update)
}

// EnvVarsFor implements store.Backend: the variant-prefixed environment
// variables for a definition, generic prefix excluded.
func (s *Service) EnvVarsFor(def *setting.Definition) []setting.EnvVar {
	return def.EnvVars(s.variant.EnvPrefixes())
}

// SettingEnvVars projects a definition onto environment variable names,
// optionally including the generic (prefix-less service) projection.
func (s *Service) SettingEnvVars(def *setting.Definition, includeGeneric bool) []setting.EnvVar {
	prefixes := append([]string{}, s.variant.EnvPrefixes()...)
	if includeGeneric {
		if generic := s.variant.GenericEnvPrefix(); generic != "" {
			prefixes = append(prefixes, generic)
		}
	}
	return def.EnvVars(prefixes)
}

// SettingEnv returns the canonical environment variable name for a
// definition: first prefix, canonical setting name.
func (s *Service) SettingEnv(def *setting.Definition) string {
	return s.SettingEnvVars(def, false)[0].Key
}

// Manager constructs the manager for a store kind against this service. The
// bulk flag scopes the manager to a single multi-key resolution pass.
func (s *Service) Manager(kind store.Kind, bulk bool) (store.Manager, error) {
	return s.factory()(kind, bulk)
}

// factory is the strategy table mapping store kinds to manager
// constructors. Auto receives the same table, so its precedence search
// constructs concrete managers lazily and shares their bulk caches.
func (s *Service) factory() store.Factory {
	var f store.Factory
	f = func(kind store.Kind, bulk bool) (store.Manager, error) {
		switch kind {
		case store.Override:
			return store.NewOverrideManager(s.configOverride), nil
		case store.Env:
			return store.NewEnvManager(s), nil
		case store.Dotenv:
			if s.dotenvPath == "" {
				return nil, store.NotSupported(kind, "manager")
			}
			return store.NewDotenvManager(s, s.dotenvPath, bulk), nil
		case store.ProjectFile:
			return store.NewProjectFileManager(s, bulk), nil
		case store.Database:
			if s.db == nil {
				return nil, store.NotSupported(kind, "manager")
			}
			return postgres.NewSettingsStore(s.db, s.variant.DBNamespace(), bulk), nil
		case store.Default:
			return store.NewDefaultManager(), nil
		case store.Auto:
			return store.NewAutoManager(f, bulk), nil
		default:
			return nil, store.NotSupported(kind, "manager")
		}
	}
	return f
}
