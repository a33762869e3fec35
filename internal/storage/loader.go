// Package storage provides the sinks that decoded heatmap position
// rows are bulk-loaded into.
package storage

import (
	"context"
	"sync"

	"heatmap_loader/internal/heatmap"
)

// Loader is the sink for decoded position rows. Batches arrive in the
// order the pipeline emitted them; a successful pipeline invocation
// delivers each record exactly once.
type Loader interface {
	AppendRows(ctx context.Context, rows []heatmap.Record) error
}

// Memory is an in-memory Loader used by tests and the "none" sink.
type Memory struct {
	mu      sync.Mutex
	rows    []heatmap.Record
	batches int
}

func (m *Memory) AppendRows(_ context.Context, rows []heatmap.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rows...)
	m.batches++
	return nil
}

// Rows returns a copy of everything appended so far.
func (m *Memory) Rows() []heatmap.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]heatmap.Record, len(m.rows))
	copy(out, m.rows)
	return out
}

// Batches reports how many AppendRows calls have been made.
func (m *Memory) Batches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}
