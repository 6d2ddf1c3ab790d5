package settings

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/confstack/confstack/internal/platform/logger"
	"github.com/confstack/confstack/internal/redact"
	"github.com/confstack/confstack/internal/store"
)

// Path splits a dotted setting name into write-path segments.
func Path(name string) []string {
	return strings.Split(name, ".")
}

// SetWithMetadata writes value at the dotted path in the named store.
// Writes never resolve through Auto: the caller must name a concrete target.
//
// A value equal to the redaction sentinel is never persisted; the write is
// suppressed and the returned metadata carries Redacted. This keeps a masked
// display value from being written back as real data when a config round
// trips through a UI.
func (s *Service) SetWithMetadata(ctx context.Context, path []string, value any, target store.Kind) (any, store.Metadata, error) {
	log := logger.FromContext(ctx)

	if len(path) == 0 {
		return nil, store.Metadata{}, fmt.Errorf("empty setting path")
	}
	name := strings.Join(path, ".")

	def, err := s.FindSetting(name)
	if err != nil {
		def = nil
	}

	metadata := store.Metadata{Name: name, Path: path, Store: target, Setting: def}

	if redact.IsSentinel(value) {
		metadata.Redacted = true
		log.Debug("suppressed write of redaction sentinel",
			"variant", s.variant.Label(),
			"setting", name,
			"store", target.String())
		return nil, metadata, nil
	}

	if def != nil {
		cast, err := def.CastValue(value)
		if err != nil {
			return nil, metadata, err
		}
		if !reflect.DeepEqual(cast, value) {
			metadata.UncastValue = value
			value = cast
		}
	}

	manager, err := s.Manager(target, false)
	if err != nil {
		return nil, metadata, err
	}

	setMetadata, err := manager.Set(ctx, name, path, value, def)
	if err != nil {
		return nil, metadata, err
	}
	metadata.EnvVar = setMetadata.EnvVar

	log.Debug("set setting",
		"variant", s.variant.Label(),
		"setting", name,
		"store", target.String())

	return value, metadata, nil
}

// Set writes value at the dotted path and returns the cast form that was
// persisted.
func (s *Service) Set(ctx context.Context, path []string, value any, target store.Kind) (any, error) {
	value, _, err := s.SetWithMetadata(ctx, path, value, target)
	return value, err
}

// Unset removes the value at the dotted path from the named store.
func (s *Service) Unset(ctx context.Context, path []string, target store.Kind) (store.Metadata, error) {
	log := logger.FromContext(ctx)

	if len(path) == 0 {
		return store.Metadata{}, fmt.Errorf("empty setting path")
	}
	name := strings.Join(path, ".")

	def, err := s.FindSetting(name)
	if err != nil {
		def = nil
	}

	metadata := store.Metadata{Name: name, Path: path, Store: target, Setting: def}

	manager, err := s.Manager(target, false)
	if err != nil {
		return metadata, err
	}
	if _, err := manager.Unset(ctx, name, path, def); err != nil {
		return metadata, err
	}

	log.Debug("unset setting",
		"variant", s.variant.Label(),
		"setting", name,
		"store", target.String())

	return metadata, nil
}

// Reset clears every entry owned by the named store.
func (s *Service) Reset(ctx context.Context, target store.Kind) (store.Metadata, error) {
	log := logger.FromContext(ctx)

	metadata := store.Metadata{Store: target}

	manager, err := s.Manager(target, false)
	if err != nil {
		return metadata, err
	}
	if _, err := manager.Reset(ctx); err != nil {
		return metadata, err
	}

	log.Debug("reset settings store",
		"variant", s.variant.Label(),
		"store", target.String())

	return metadata, nil
}

// Unredact returns values with every redaction-sentinel entry removed.
func Unredact(values map[string]any) map[string]any {
	return redact.Map(values)
}
