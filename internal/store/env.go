package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/confstack/confstack/internal/setting"
)

// EnvManager reads settings from the process environment via the env vars
// projected from each definition. Read-only: the engine never mutates the
// environment of its own process.
type EnvManager struct {
	backend Backend
	environ map[string]string
}

// NewEnvManager returns a manager over the backend's merged environment.
// The environment is snapshotted on first use, so one manager instance sees
// a consistent view for the duration of a resolution pass.
func NewEnvManager(backend Backend) *EnvManager {
	return &EnvManager{backend: backend}
}

var _ Manager = (*EnvManager)(nil)

// Get implements Manager.Get. Settings without a definition have no env var
// projection and are never found here.
func (m *EnvManager) Get(_ context.Context, _ string, def *setting.Definition, _ map[string]string) (any, bool, Metadata, error) {
	if def == nil {
		return nil, false, Metadata{}, nil
	}

	if m.environ == nil {
		m.environ = m.backend.Environ()
	}

	for _, envVar := range m.backend.EnvVarsFor(def) {
		raw, ok := m.environ[envVar.Key]
		if !ok {
			continue
		}

		var value any = raw
		if envVar.Negated {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, false, Metadata{}, fmt.Errorf(
					"negated env var %s=%q is not a boolean: %w", envVar.Key, raw, err)
			}
			value = !b
		}

		return value, true, Metadata{Source: Env, EnvVar: envVar.Key}, nil
	}

	return nil, false, Metadata{}, nil
}

// Set implements Manager.Set. The process environment is read-only.
func (m *EnvManager) Set(context.Context, string, []string, any, *setting.Definition) (Metadata, error) {
	return Metadata{}, NotSupported(Env, "set")
}

// Unset implements Manager.Unset. The process environment is read-only.
func (m *EnvManager) Unset(context.Context, string, []string, *setting.Definition) (Metadata, error) {
	return Metadata{}, NotSupported(Env, "unset")
}

// Reset implements Manager.Reset. The process environment is read-only.
func (m *EnvManager) Reset(context.Context) (Metadata, error) {
	return Metadata{}, NotSupported(Env, "reset")
}
