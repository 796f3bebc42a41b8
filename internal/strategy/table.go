package strategy

import (
	"sync/atomic"
)

// Mapping is a complete profile → counter-strategy assignment. A Mapping
// handed to Table.Store must not be modified afterwards.
type Mapping map[Profile]Profile

// DefaultMapping maps every profile to itself.
func DefaultMapping() Mapping {
	return Mapping{
		HighBatting: HighBatting,
		HighBowling: HighBowling,
		Balanced:    Balanced,
	}
}

// Clone returns an independent copy.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Table is the live strategy table: many readers, one writer. Updates
// replace the whole mapping so readers observe either the old table or the
// new one, never a mix.
type Table struct {
	current atomic.Pointer[Mapping]
}

// NewTable returns a table seeded with m, or DefaultMapping when m is nil.
func NewTable(m Mapping) *Table {
	if m == nil {
		m = DefaultMapping()
	}
	t := &Table{}
	t.Store(m)
	return t
}

// Lookup returns the counter-strategy for p.
func (t *Table) Lookup(p Profile) (Profile, bool) {
	m := t.current.Load()
	if m == nil {
		return 0, false
	}
	counter, ok := (*m)[p]
	return counter, ok
}

// Snapshot returns a copy of the current mapping.
func (t *Table) Snapshot() Mapping {
	m := t.current.Load()
	if m == nil {
		return Mapping{}
	}
	return m.Clone()
}

// Store swaps in a copy of m.
func (t *Table) Store(m Mapping) {
	c := m.Clone()
	t.current.Store(&c)
}
