package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/confstack/confstack/internal/maputil"
	"github.com/confstack/confstack/internal/store"
)

// ConfigOptions parameterizes a bulk projection over the whole catalog.
type ConfigOptions struct {
	// Prefix filters to definitions whose name starts with it; result keys
	// have the prefix stripped.
	Prefix string

	// Extras filters the catalog to extra or declared settings.
	Extras ExtrasFilter

	// Redacted replaces sensitive values with the redaction sentinel.
	Redacted bool

	// Source names the store to read from; the zero value is Auto.
	Source store.Kind

	// Manager, when non-nil, is reused for the whole pass instead of
	// constructing a fresh bulk manager.
	Manager store.Manager

	// Process runs the variant's config post-processing hook over the
	// result. Only honored by AsDict.
	Process bool

	// noExpand propagates the expansion guard; see GetOptions.
	noExpand bool
}

// ConfigValue is one entry of a bulk projection: the resolved value plus the
// metadata envelope that produced it.
type ConfigValue struct {
	Value    any
	Metadata store.Metadata
}

// ConfigWithMetadata resolves every applicable definition and returns a
// mapping from (possibly prefix-stripped) setting name to its value and
// metadata. One bulk-mode manager is shared across the whole pass so each
// store materializes its backing payload at most once.
func (s *Service) ConfigWithMetadata(ctx context.Context, opts ConfigOptions) (map[string]ConfigValue, error) {
	manager := opts.Manager
	if manager == nil {
		m, err := s.Manager(opts.Source, true)
		if err != nil {
			return nil, err
		}
		manager = m
	}

	config := make(map[string]ConfigValue)
	for _, def := range s.Definitions(opts.Extras) {
		if opts.Prefix != "" && !strings.HasPrefix(def.Name, opts.Prefix) {
			continue
		}

		value, metadata, err := s.GetWithMetadata(ctx, def.Name, GetOptions{
			Source:     opts.Source,
			Redacted:   opts.Redacted,
			Manager:    manager,
			Definition: def,
			noExpand:   opts.noExpand,
		})
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", def.Name, err)
		}

		name := strings.TrimPrefix(def.Name, opts.Prefix)
		config[name] = ConfigValue{Value: value, Metadata: metadata}
	}

	return config, nil
}

// AsDict strips the metadata envelopes down to bare values. With
// opts.Process set, the variant's post-processing hook runs over the result.
func (s *Service) AsDict(ctx context.Context, opts ConfigOptions) (map[string]any, error) {
	full, err := s.ConfigWithMetadata(ctx, opts)
	if err != nil {
		return nil, err
	}

	config := make(map[string]any, len(full))
	for name, entry := range full {
		config[name] = entry.Value
	}

	if opts.Process {
		config = s.variant.ProcessConfig(config)
	}
	return config, nil
}

// AsEnv projects the resolved config onto environment variables: one entry
// per non-negated projected variable, generic prefix included, nil values
// omitted entirely.
func (s *Service) AsEnv(ctx context.Context, opts ConfigOptions) (map[string]string, error) {
	full, err := s.ConfigWithMetadata(ctx, opts)
	if err != nil {
		return nil, err
	}

	env := make(map[string]string)
	for _, name := range maputil.SortedKeys(full) {
		entry := full[name]
		if entry.Value == nil {
			continue
		}

		def := entry.Metadata.Setting
		if def == nil {
			continue
		}

		value, err := def.StringifyValue(entry.Value)
		if err != nil {
			return nil, err
		}

		for _, envVar := range s.SettingEnvVars(def, true) {
			if envVar.Negated {
				continue
			}
			env[envVar.Key] = value
		}
	}

	return env, nil
}

// Unmarshal decodes the resolved config into target, a pointer to a struct
// tagged with mapstructure field names.
func (s *Service) Unmarshal(ctx context.Context, target any, opts ConfigOptions) error {
	values, err := s.AsDict(ctx, opts)
	if err != nil {
		return err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(values); err != nil {
		return fmt.Errorf("decoding resolved config: %w", err)
	}
	return nil
}
