package settings

import (
	"log/slog"

	"github.com/confstack/confstack/internal/setting"
)

// Definitions returns the merged, visibility-filtered catalog: the declared
// definitions (hidden kinds dropped unless the service shows them) plus
// synthesized definitions for keys found in the project config with no
// declaration. The merge is computed once per service instance and cached.
func (s *Service) Definitions(filter ExtrasFilter) []*setting.Definition {
	s.mu.Lock()
	if s.catalog == nil {
		declared := s.variant.Definitions()

		catalog := make([]*setting.Definition, 0, len(declared))
		for _, def := range declared {
			if def.Kind == setting.KindHidden && !s.showHidden {
				continue
			}
			catalog = append(catalog, def)
		}

		flat, err := s.FlatConfig()
		if err != nil {
			// Undeclared keys cannot be discovered without the config;
			// resolution still works for the declared catalog.
			slog.Warn("failed to read project config while building setting catalog",
				"variant", s.variant.Label(),
				"error", err)
		} else {
			catalog = append(catalog, setting.FromMissing(declared, flat)...)
		}

		s.catalog = catalog
	}
	catalog := s.catalog
	s.mu.Unlock()

	if filter == ExtrasAll {
		return catalog
	}

	filtered := make([]*setting.Definition, 0, len(catalog))
	for _, def := range catalog {
		if (filter == ExtrasOnly) == def.Extra {
			filtered = append(filtered, def)
		}
	}
	return filtered
}

// InvalidateCatalog drops the memoized catalog so the next Definitions call
// re-reads the project config. Call after external writes that may have
// introduced new undeclared keys.
func (s *Service) InvalidateCatalog() {
	s.mu.Lock()
	s.catalog = nil
	s.mu.Unlock()
}

// FindSetting resolves name against the catalog by exact match on canonical
// names and aliases. The returned error wraps setting.ErrSettingMissing on a
// miss; callers may treat that as fatal or proceed with an undeclared,
// anonymous setting.
func (s *Service) FindSetting(name string) (*setting.Definition, error) {
	return setting.Find(s.Definitions(ExtrasAll), name)
}
