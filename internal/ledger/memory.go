package ledger

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory. It is used by simulations and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	closed  bool
}

// NewMemoryStore returns an empty store, optionally seeded with records.
func NewMemoryStore(seed ...Record) *MemoryStore {
	return &MemoryStore{records: append([]Record(nil), seed...)}
}

func (m *MemoryStore) Append(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *MemoryStore) Recent(_ context.Context, n int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return newestFirst(m.records, n), nil
}

func (m *MemoryStore) Scan(ctx context.Context, fn func(Record) error) error {
	m.mu.RLock()
	snapshot := m.records[:len(m.records):len(m.records)]
	m.mu.RUnlock()
	return scanSlice(ctx, snapshot, fn)
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func newestFirst(records []Record, n int) []Record {
	if n <= 0 {
		return []Record{}
	}
	if n > len(records) {
		n = len(records)
	}
	out := make([]Record, 0, n)
	for i := len(records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, records[i])
	}
	return out
}

func scanSlice(ctx context.Context, records []Record, fn func(Record) error) error {
	for i, rec := range records {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}
