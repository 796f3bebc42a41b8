package statistics

import "sync"

// Count holds wins and losses for one key.
type Count struct {
	Wins   int
	Losses int
}

// Total is wins plus losses.
func (c Count) Total() int {
	return c.Wins + c.Losses
}

// Tally counts wins and losses per key. It is safe for concurrent use.
type Tally[K comparable] struct {
	mu     sync.RWMutex
	counts map[K]Count
}

// NewTally returns an empty tally.
func NewTally[K comparable]() *Tally[K] {
	return &Tally[K]{counts: make(map[K]Count)}
}

// Win records a win for key.
func (t *Tally[K]) Win(key K) {
	t.mu.Lock()
	c := t.counts[key]
	c.Wins++
	t.counts[key] = c
	t.mu.Unlock()
}

// Loss records a loss for key.
func (t *Tally[K]) Loss(key K) {
	t.mu.Lock()
	c := t.counts[key]
	c.Losses++
	t.counts[key] = c
	t.mu.Unlock()
}

// Get returns the count for key; unseen keys are zero.
func (t *Tally[K]) Get(key K) Count {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counts[key]
}

// Snapshot returns a copy of all counts.
func (t *Tally[K]) Snapshot() map[K]Count {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[K]Count, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}
