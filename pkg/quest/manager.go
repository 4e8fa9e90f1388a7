package quest

import (
	"context"
	stderrors "errors"
	"sync/atomic"

	"github.com/matzehuels/questgraph/pkg/datasource"
)

// ErrRebuildInProgress is returned by [Manager.Rebuild] while another
// rebuild is running.
var ErrRebuildInProgress = stderrors.New("catalog rebuild already in progress")

// Manager owns the current catalog and serializes rebuilds, for example
// after a language change.
type Manager struct {
	src      datasource.Provider
	opts     BuildOptions
	current  atomic.Pointer[Catalog]
	building atomic.Bool
}

// NewManager returns a manager without a catalog. Call Rebuild to load one.
func NewManager(src datasource.Provider, opts BuildOptions) *Manager {
	return &Manager{src: src, opts: opts.withDefaults()}
}

// Catalog returns the installed catalog, or nil before the first rebuild.
func (m *Manager) Catalog() *Catalog {
	return m.current.Load()
}

// Rebuild builds a catalog for langs and installs it. A concurrent call
// returns ErrRebuildInProgress without waiting. On failure the previous
// catalog stays installed.
func (m *Manager) Rebuild(ctx context.Context, langs Languages) (*Catalog, error) {
	if !m.building.CompareAndSwap(false, true) {
		m.opts.Logger.Info("ignoring rebuild request", "lang", langs.Quests, "err", ErrRebuildInProgress)
		return nil, ErrRebuildInProgress
	}
	defer m.building.Store(false)

	cat, err := Build(ctx, m.src, langs, m.opts)
	if err != nil {
		return nil, err
	}
	m.current.Store(cat)
	return cat, nil
}
