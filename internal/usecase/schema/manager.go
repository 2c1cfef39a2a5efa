package schema

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	domschema "github.com/kailas-cloud/shelfdex/internal/domain/schema"
)

// Manager ensures the index exists before the first write. After one
// successful ensure it stops asking the engine. Concurrent first writers may
// both reach the engine; the repository treats that race as success.
type Manager struct {
	repo   Repository
	schema domschema.Schema
	ready  atomic.Bool
	logger *zap.Logger
}

// New creates a schema manager for one index mapping.
func New(repo Repository, s domschema.Schema, logger *zap.Logger) *Manager {
	return &Manager{repo: repo, schema: s, logger: logger}
}

// Schema returns the managed mapping.
func (m *Manager) Schema() domschema.Schema { return m.schema }

// EnsureIndex checks for the index and creates it when absent. It reports
// whether this call created it. Failures are not retried.
func (m *Manager) EnsureIndex(ctx context.Context) (bool, error) {
	created, err := m.repo.EnsureIndex(ctx, m.schema)
	if err != nil {
		return false, fmt.Errorf("ensure index %s: %w", m.schema.Name(), err)
	}
	m.ready.Store(true)
	if created {
		m.logger.Info("Index created",
			zap.String("index", m.schema.Name()),
			zap.Int("dim", m.schema.Dim()),
		)
	}
	return created, nil
}

// Ensure is the lazy form used on write paths.
func (m *Manager) Ensure(ctx context.Context) error {
	if m.ready.Load() {
		return nil
	}
	_, err := m.EnsureIndex(ctx)
	return err
}
