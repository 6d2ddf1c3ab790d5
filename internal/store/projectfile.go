package store

import (
	"context"
	"os"

	"github.com/confstack/confstack/internal/maputil"
	"github.com/confstack/confstack/internal/setting"
)

// ProjectFileManager reads and writes settings through the YAML-backed
// project config the Backend exposes. Values that are strings may reference
// sibling environment variables; those references are interpolated against
// the expandable env supplied on Get.
type ProjectFileManager struct {
	backend Backend
	bulk    bool
	flat    map[string]any
}

// NewProjectFileManager returns a manager over the backend's project config.
// In bulk mode the flattened config is materialized once per manager.
func NewProjectFileManager(backend Backend, bulk bool) *ProjectFileManager {
	return &ProjectFileManager{backend: backend, bulk: bulk}
}

var _ Manager = (*ProjectFileManager)(nil)

func (m *ProjectFileManager) flatConfig() (map[string]any, error) {
	if m.bulk && m.flat != nil {
		return m.flat, nil
	}
	flat, err := m.backend.FlatConfig()
	if err != nil {
		return nil, NewStoreError("project_file", "read", "loading project config", err)
	}
	if m.bulk {
		m.flat = flat
	}
	return flat, nil
}

// Get implements Manager.Get.
func (m *ProjectFileManager) Get(_ context.Context, name string, def *setting.Definition, expandEnv map[string]string) (any, bool, Metadata, error) {
	flat, err := m.flatConfig()
	if err != nil {
		return nil, false, Metadata{}, err
	}

	for _, key := range lookupKeys(name, def) {
		value, ok := flat[key]
		if !ok {
			continue
		}

		if s, isString := value.(string); isString && len(expandEnv) > 0 {
			value = os.Expand(s, func(ref string) string { return expandEnv[ref] })
		}

		return value, true, Metadata{Source: ProjectFile}, nil
	}

	return nil, false, Metadata{}, nil
}

// Set implements Manager.Set. The value lands at the dotted path under the
// canonical name; stale top-level alias entries are dropped so a setting
// never appears twice in the file.
func (m *ProjectFileManager) Set(_ context.Context, _ string, path []string, value any, def *setting.Definition) (Metadata, error) {
	err := m.backend.UpdateConfig(func(config map[string]any) error {
		maputil.SetPath(config, path, value)
		m.dropAliases(config, path, def)
		return nil
	})
	if err != nil {
		return Metadata{}, err
	}
	m.flat = nil
	return Metadata{Store: ProjectFile}, nil
}

// Unset implements Manager.Unset.
func (m *ProjectFileManager) Unset(_ context.Context, _ string, path []string, def *setting.Definition) (Metadata, error) {
	err := m.backend.UpdateConfig(func(config map[string]any) error {
		maputil.DeletePath(config, path)
		m.dropAliases(config, path, def)
		return nil
	})
	if err != nil {
		return Metadata{}, err
	}
	m.flat = nil
	return Metadata{Store: ProjectFile}, nil
}

// Reset implements Manager.Reset by clearing the project config mapping.
func (m *ProjectFileManager) Reset(context.Context) (Metadata, error) {
	err := m.backend.UpdateConfig(func(config map[string]any) error {
		for key := range config {
			delete(config, key)
		}
		return nil
	})
	if err != nil {
		return Metadata{}, err
	}
	m.flat = nil
	return Metadata{Store: ProjectFile}, nil
}

// dropAliases removes top-level alias entries left behind when a setting is
// written or removed under its canonical name. Only applies to single
// segment paths; nested paths name one concrete location.
func (m *ProjectFileManager) dropAliases(config map[string]any, path []string, def *setting.Definition) {
	if def == nil || len(path) != 1 {
		return
	}
	for _, key := range def.Keys() {
		if key == path[0] {
			continue
		}
		delete(config, key)
	}
}
