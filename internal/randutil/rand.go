// Package randutil centralises how random sources are built so that
// matches, tosses and simulations are reproducible from a single seed.
package randutil

import (
	rand "math/rand/v2"
	"sync"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewFromTime seeds from the wall clock, for production use.
func NewFromTime() *rand.Rand {
	return New(time.Now().UnixNano())
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Locked wraps a *rand.Rand for use from several goroutines.
type Locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocked guards rng with a mutex. A nil rng is seeded from the clock.
func NewLocked(rng *rand.Rand) *Locked {
	if rng == nil {
		rng = NewFromTime()
	}
	return &Locked{rng: rng}
}

// IntN returns a uniform int in [0, n). n must be positive.
func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.IntN(n)
}

// Pick returns a uniformly chosen element, or false when items is empty.
func Pick[T any](l *Locked, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[l.IntN(len(items))], true
}
