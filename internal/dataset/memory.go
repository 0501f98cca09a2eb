package dataset

import (
	"context"
	"sync"

	"github.com/Baccarat456/experience-harvester/internal/record"
)

// Memory collects records in a slice. Tests use it to observe pipeline
// output.
type Memory struct {
	mu   sync.Mutex
	recs []record.Record
}

// NewMemory creates an empty in-memory dataset.
func NewMemory() *Memory {
	return &Memory{}
}

// Append stores rec.
func (m *Memory) Append(_ context.Context, rec record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

// Close does nothing.
func (m *Memory) Close() error { return nil }

// Records returns a copy of everything appended so far.
func (m *Memory) Records() []record.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]record.Record, len(m.recs))
	copy(out, m.recs)
	return out
}
