package store

import (
	"context"
	"errors"

	"github.com/confstack/confstack/internal/setting"
)

// AutoManager implements the virtual Auto store: it consults the concrete
// kinds in ReadOrder and returns the first defined value. Stores the host
// has not wired up are skipped. Auto is strictly a read path; writes must
// name a concrete store.
type AutoManager struct {
	factory  Factory
	bulk     bool
	managers map[Kind]Manager
}

// NewAutoManager returns an Auto manager resolving through factory. The bulk
// flag is forwarded to every concrete manager it constructs, so one Auto
// instance shared across a resolution pass shares each store's cache too.
func NewAutoManager(factory Factory, bulk bool) *AutoManager {
	return &AutoManager{
		factory:  factory,
		bulk:     bulk,
		managers: make(map[Kind]Manager),
	}
}

var _ Manager = (*AutoManager)(nil)

func (m *AutoManager) managerFor(kind Kind) (Manager, error) {
	if mgr, ok := m.managers[kind]; ok {
		return mgr, nil
	}
	mgr, err := m.factory(kind, m.bulk)
	if err != nil {
		return nil, err
	}
	m.managers[kind] = mgr
	return mgr, nil
}

// Get implements Manager.Get. Unsupported stores are skipped; any other
// store failure aborts the search.
func (m *AutoManager) Get(ctx context.Context, name string, def *setting.Definition, expandEnv map[string]string) (any, bool, Metadata, error) {
	for _, kind := range ReadOrder {
		mgr, err := m.managerFor(kind)
		if err != nil {
			if errors.Is(err, ErrStoreNotSupported) {
				continue
			}
			return nil, false, Metadata{}, err
		}

		value, ok, metadata, err := mgr.Get(ctx, name, def, expandEnv)
		if err != nil {
			if errors.Is(err, ErrStoreNotSupported) {
				continue
			}
			return nil, false, Metadata{}, err
		}
		if ok {
			return value, true, metadata, nil
		}
	}

	return nil, false, Metadata{}, nil
}

// Set implements Manager.Set. Writes never resolve through Auto.
func (m *AutoManager) Set(context.Context, string, []string, any, *setting.Definition) (Metadata, error) {
	return Metadata{}, NotSupported(Auto, "set")
}

// Unset implements Manager.Unset.
func (m *AutoManager) Unset(context.Context, string, []string, *setting.Definition) (Metadata, error) {
	return Metadata{}, NotSupported(Auto, "unset")
}

// Reset implements Manager.Reset.
func (m *AutoManager) Reset(context.Context) (Metadata, error) {
	return Metadata{}, NotSupported(Auto, "reset")
}
