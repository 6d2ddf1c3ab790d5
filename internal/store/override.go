package store

import (
	"context"

	"github.com/confstack/confstack/internal/setting"
)

// OverrideManager serves explicit config overrides supplied at service
// construction. Highest precedence, read-only.
type OverrideManager struct {
	values map[string]any
}

// NewOverrideManager returns a manager over the given flat override mapping.
// The mapping is copied so later caller mutations cannot leak in.
func NewOverrideManager(values map[string]any) *OverrideManager {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &OverrideManager{values: copied}
}

var _ Manager = (*OverrideManager)(nil)

// Get implements Manager.Get.
func (m *OverrideManager) Get(_ context.Context, name string, def *setting.Definition, _ map[string]string) (any, bool, Metadata, error) {
	for _, key := range lookupKeys(name, def) {
		if value, ok := m.values[key]; ok {
			return value, true, Metadata{Source: Override}, nil
		}
	}
	return nil, false, Metadata{}, nil
}

// Set implements Manager.Set. Overrides are read-only.
func (m *OverrideManager) Set(context.Context, string, []string, any, *setting.Definition) (Metadata, error) {
	return Metadata{}, NotSupported(Override, "set")
}

// Unset implements Manager.Unset. Overrides are read-only.
func (m *OverrideManager) Unset(context.Context, string, []string, *setting.Definition) (Metadata, error) {
	return Metadata{}, NotSupported(Override, "unset")
}

// Reset implements Manager.Reset. Overrides are read-only.
func (m *OverrideManager) Reset(context.Context) (Metadata, error) {
	return Metadata{}, NotSupported(Override, "reset")
}

// lookupKeys returns the config keys a value may live under: the
// definition's name and non-negated aliases, or just the requested name for
// an anonymous setting.
func lookupKeys(name string, def *setting.Definition) []string {
	if def == nil {
		return []string{name}
	}
	return def.Keys()
}
