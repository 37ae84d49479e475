package parser

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bridgedash/internal/memo"
	"bridgedash/internal/models"
)

// Manager manages the registered table sources and memoizes their tables
type Manager struct {
	sources map[models.SourceMethod]Source
	cache   *memo.Cache
	log     *zap.Logger
}

// NewManager creates a manager with no sources
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		sources: make(map[models.SourceMethod]Source),
		cache:   memo.New(),
		log:     log,
	}
}

// RegisterSource adds a source to the manager, replacing any source with
// the same method
func (m *Manager) RegisterSource(src Source) {
	m.sources[src.Method()] = src
}

// GetSource retrieves a source by method
func (m *Manager) GetSource(method models.SourceMethod) (Source, error) {
	src, ok := m.sources[method]
	if !ok {
		return nil, fmt.Errorf("no source found for method: %s", method)
	}
	return src, nil
}

// Table returns the table of the given source, loading it on first use.
// Later calls return the same table without reading the source again.
func (m *Manager) Table(ctx context.Context, method models.SourceMethod) (*models.BridgeTable, error) {
	src, err := m.GetSource(method)
	if err != nil {
		return nil, err
	}
	return memo.Do(m.cache, memo.Key("load", method), func() (*models.BridgeTable, error) {
		m.log.Info("loading bridge table", zap.String("source", string(method)))
		table, err := src.Load(ctx)
		if err != nil {
			m.log.Error("failed to load bridge table", zap.String("source", string(method)), zap.Error(err))
			return nil, err
		}
		m.log.Info("loaded bridge table",
			zap.String("source", string(method)),
			zap.Int("records", table.Len()),
			zap.Int("fields", len(table.Fields())))
		return table, nil
	})
}

// Cleanup performs any necessary cleanup
func (m *Manager) Cleanup() {
	for method, src := range m.sources {
		if err := src.Cleanup(); err != nil {
			m.log.Warn("error cleaning up source", zap.String("source", string(method)), zap.Error(err))
		}
	}
}
