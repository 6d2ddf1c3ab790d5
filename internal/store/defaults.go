package store

import (
	"context"

	"github.com/confstack/confstack/internal/setting"
)

// DefaultManager serves the declared default from a setting's definition.
// It is the terminal fallback of Auto resolution: any setting with a
// definition is always "defined" here, even when the default is nil.
type DefaultManager struct{}

// NewDefaultManager returns the defaults manager. It is stateless.
func NewDefaultManager() *DefaultManager {
	return &DefaultManager{}
}

var _ Manager = (*DefaultManager)(nil)

// Get implements Manager.Get.
func (m *DefaultManager) Get(_ context.Context, _ string, def *setting.Definition, _ map[string]string) (any, bool, Metadata, error) {
	if def == nil {
		return nil, false, Metadata{}, nil
	}
	return def.Default, true, Metadata{Source: Default}, nil
}

// Set implements Manager.Set. Defaults are declaration, not storage.
func (m *DefaultManager) Set(context.Context, string, []string, any, *setting.Definition) (Metadata, error) {
	return Metadata{}, NotSupported(Default, "set")
}

// Unset implements Manager.Unset.
func (m *DefaultManager) Unset(context.Context, string, []string, *setting.Definition) (Metadata, error) {
	return Metadata{}, NotSupported(Default, "unset")
}

// Reset implements Manager.Reset.
func (m *DefaultManager) Reset(context.Context) (Metadata, error) {
	return Metadata{}, NotSupported(Default, "reset")
}
