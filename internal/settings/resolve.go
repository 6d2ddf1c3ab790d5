package settings

import (
	"context"
	"reflect"

	"github.com/confstack/confstack/internal/platform/logger"
	"github.com/confstack/confstack/internal/redact"
	"github.com/confstack/confstack/internal/setting"
	"github.com/confstack/confstack/internal/store"
)

// GetOptions parameterizes one resolution. The zero value resolves through
// Auto, unredacted.
type GetOptions struct {
	// Source names the store to read from; the zero value is Auto.
	Source store.Kind

	// Redacted replaces sensitive values with the redaction sentinel.
	Redacted bool

	// Manager, when non-nil, is reused instead of constructing a fresh
	// manager. Bulk passes use this to share one manager across many keys.
	Manager store.Manager

	// Definition skips the catalog lookup when the caller already resolved
	// it.
	Definition *setting.Definition

	// noExpand marks a resolution that is itself building an env expansion
	// source. Such passes never build further expansion sources, so the
	// mutual recursion between extras and object assembly terminates.
	noExpand bool
}

// GetWithMetadata resolves the effective value of the named setting and
// returns it with full provenance metadata.
//
// A missing definition is tolerated: the lookup proceeds anonymously with no
// casting and no redaction. Settings of kind object whose resolved source is
// the plain default are assembled from their dotted sub-keys. Casting always
// runs before redaction, and the recorded UncastValue is always the pre-cast
// raw input.
func (s *Service) GetWithMetadata(ctx context.Context, name string, opts GetOptions) (any, store.Metadata, error) {
	log := logger.FromContext(ctx)

	def := opts.Definition
	if def == nil {
		if found, err := s.FindSetting(name); err == nil {
			def = found
		}
	}
	if def != nil {
		name = def.Name
	}

	metadata := store.Metadata{Name: name, Source: opts.Source, Setting: def}

	// Extra settings may reference sibling env vars; build the expansion
	// source from the non-extra config only, so extras cannot feed each
	// other in a cycle.
	var expandEnv map[string]string
	if def != nil && def.Extra && !opts.noExpand {
		env, err := s.AsEnv(ctx, ConfigOptions{
			Extras:   ExtrasExclude,
			Redacted: opts.Redacted,
			Source:   opts.Source,
			Manager:  opts.Manager,
			noExpand: true,
		})
		if err != nil {
			return nil, metadata, err
		}
		expandEnv = env
	}

	manager := opts.Manager
	if manager == nil {
		m, err := s.Manager(opts.Source, false)
		if err != nil {
			return nil, metadata, err
		}
		manager = m
	}

	value, found, getMetadata, err := manager.Get(ctx, name, def, expandEnv)
	if err != nil {
		return nil, metadata, err
	}
	if found {
		metadata.Source = getMetadata.Source
		metadata.EnvVar = getMetadata.EnvVar
	}

	if def != nil {
		if def.Kind == setting.KindObject && metadata.Source == store.Default {
			assembled, source, err := s.assembleObject(ctx, def, opts)
			if err != nil {
				return nil, metadata, err
			}
			if len(assembled) > 0 {
				value = assembled
				metadata.Source = source
			}
		}

		cast, err := def.CastValue(value)
		if err != nil {
			return nil, metadata, err
		}
		if !reflect.DeepEqual(cast, value) {
			metadata.UncastValue = value
			value = cast
		}

		// Redaction is the last pass, strictly after casting.
		if opts.Redacted && def.IsRedacted() && !isEmpty(value) {
			metadata.Redacted = true
			value = redact.Sentinel
		}
	}

	log.Debug("resolved setting",
		"variant", s.variant.Label(),
		"setting", name,
		"source", metadata.Source.String(),
		"redacted", metadata.Redacted)

	return value, metadata, nil
}

// assembleObject gathers every config key nested under the definition's name
// or aliases into one mapping. The first occurrence of a nested key wins
// across aliases; the object's source is promoted to the highest-precedence
// source among the contributing entries.
func (s *Service) assembleObject(ctx context.Context, def *setting.Definition, opts GetOptions) (map[string]any, store.Kind, error) {
	assembled := make(map[string]any)
	source := store.Default

	for _, key := range def.Keys() {
		nested, err := s.ConfigWithMetadata(ctx, ConfigOptions{
			Prefix:   key + ".",
			Redacted: opts.Redacted,
			Source:   opts.Source,
			Manager:  opts.Manager,
			noExpand: opts.noExpand,
		})
		if err != nil {
			return nil, source, err
		}

		for nestedKey, entry := range nested {
			if _, exists := assembled[nestedKey]; exists {
				continue
			}
			assembled[nestedKey] = entry.Value

			if entry.Metadata.Source.Overrides(source) {
				source = entry.Metadata.Source
			}
		}
	}

	return assembled, source, nil
}

// GetWithSource resolves a setting and returns its value with the store
// kind that produced it.
func (s *Service) GetWithSource(ctx context.Context, name string, opts GetOptions) (any, store.Kind, error) {
	value, metadata, err := s.GetWithMetadata(ctx, name, opts)
	return value, metadata.Source, err
}

// Get resolves a setting and returns only its value.
func (s *Service) Get(ctx context.Context, name string, opts GetOptions) (any, error) {
	value, _, err := s.GetWithMetadata(ctx, name, opts)
	return value, err
}

// isEmpty mirrors the "non-empty value" guard of the redaction pass: nil,
// empty strings, false, zero and empty collections are not worth redacting.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case int:
		return v == 0
	case int64:
		return v == 0
	case float64:
		return v == 0
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}
