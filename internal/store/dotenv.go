package store

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/confstack/confstack/internal/setting"
)

// DotenvManager reads and writes settings through a .env file, using the
// same env var projection as the process-environment manager. Writes rewrite
// the file; the canonical variable is set and stale alias variables are
// dropped.
type DotenvManager struct {
	backend Backend
	path    string
	bulk    bool
	cache   map[string]string
}

// NewDotenvManager returns a manager over the .env file at path. In bulk
// mode the file is parsed once and served from cache for the lifetime of
// the manager.
func NewDotenvManager(backend Backend, path string, bulk bool) *DotenvManager {
	return &DotenvManager{backend: backend, path: path, bulk: bulk}
}

var _ Manager = (*DotenvManager)(nil)

func (m *DotenvManager) read() (map[string]string, error) {
	if m.bulk && m.cache != nil {
		return m.cache, nil
	}

	entries, err := godotenv.Read(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			entries = map[string]string{}
		} else {
			return nil, NewStoreError("dotenv", "read", "parsing "+m.path, err)
		}
	}

	if m.bulk {
		m.cache = entries
	}
	return entries, nil
}

func (m *DotenvManager) write(entries map[string]string) error {
	if err := godotenv.Write(entries, m.path); err != nil {
		return NewStoreError("dotenv", "write", "writing "+m.path, err)
	}
	m.cache = nil
	return nil
}

// Get implements Manager.Get.
func (m *DotenvManager) Get(_ context.Context, _ string, def *setting.Definition, _ map[string]string) (any, bool, Metadata, error) {
	if def == nil {
		return nil, false, Metadata{}, nil
	}

	entries, err := m.read()
	if err != nil {
		return nil, false, Metadata{}, err
	}

	for _, envVar := range m.backend.EnvVarsFor(def) {
		raw, ok := entries[envVar.Key]
		if !ok {
			continue
		}

		var value any = raw
		if envVar.Negated {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, false, Metadata{}, fmt.Errorf(
					"negated dotenv var %s=%q is not a boolean: %w", envVar.Key, raw, err)
			}
			value = !b
		}

		return value, true, Metadata{Source: Dotenv, EnvVar: envVar.Key}, nil
	}

	return nil, false, Metadata{}, nil
}

// Set implements Manager.Set. The value is stringified into the canonical
// env var for the setting; other projected variables (aliases, negated
// forms) are removed so the file holds a single source of truth.
func (m *DotenvManager) Set(_ context.Context, _ string, _ []string, value any, def *setting.Definition) (Metadata, error) {
	envVar, rest, err := m.projection(def)
	if err != nil {
		return Metadata{}, err
	}

	stringed, err := def.StringifyValue(value)
	if err != nil {
		return Metadata{}, err
	}

	entries, err := m.read()
	if err != nil {
		return Metadata{}, err
	}

	entries[envVar.Key] = stringed
	for _, other := range rest {
		delete(entries, other.Key)
	}

	if err := m.write(entries); err != nil {
		return Metadata{}, err
	}
	return Metadata{Store: Dotenv, EnvVar: envVar.Key}, nil
}

// Unset implements Manager.Unset. Every projected variable for the setting
// is removed from the file.
func (m *DotenvManager) Unset(_ context.Context, _ string, _ []string, def *setting.Definition) (Metadata, error) {
	if def == nil {
		return Metadata{}, ErrValueNotSettable
	}

	entries, err := m.read()
	if err != nil {
		return Metadata{}, err
	}

	for _, envVar := range m.backend.EnvVarsFor(def) {
		delete(entries, envVar.Key)
	}

	if err := m.write(entries); err != nil {
		return Metadata{}, err
	}
	return Metadata{Store: Dotenv}, nil
}

// Reset implements Manager.Reset by truncating the file to no entries.
func (m *DotenvManager) Reset(context.Context) (Metadata, error) {
	if err := m.write(map[string]string{}); err != nil {
		return Metadata{}, err
	}
	return Metadata{Store: Dotenv}, nil
}

// projection returns the canonical (first non-negated) env var for a
// definition plus the remaining projected vars.
func (m *DotenvManager) projection(def *setting.Definition) (setting.EnvVar, []setting.EnvVar, error) {
	if def == nil {
		return setting.EnvVar{}, nil, ErrValueNotSettable
	}

	vars := m.backend.EnvVarsFor(def)
	for i, envVar := range vars {
		if envVar.Negated {
			continue
		}
		rest := make([]setting.EnvVar, 0, len(vars)-1)
		rest = append(rest, vars[:i]...)
		rest = append(rest, vars[i+1:]...)
		return envVar, rest, nil
	}
	return setting.EnvVar{}, nil, ErrValueNotSettable
}
