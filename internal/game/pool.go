package game

import (
	"fmt"
	"slices"

	"github.com/lox/cardcricket/internal/catalog"
)

// Pool tracks the cards one side has played in the current innings.
type Pool struct {
	used []int
}

// Consume marks id as played. It fails if the card was already played this
// innings or a full innings of cards has been played.
func (p *Pool) Consume(id int) error {
	if p.Contains(id) {
		return fmt.Errorf("card %d: %w", id, ErrAlreadyUsed)
	}
	if len(p.used) >= RoundsPerInnings {
		return fmt.Errorf("card %d: %w", id, ErrPoolFull)
	}
	p.used = append(p.used, id)
	return nil
}

// release undoes the most recent Consume of id when a round cannot complete.
func (p *Pool) release(id int) {
	if n := len(p.used); n > 0 && p.used[n-1] == id {
		p.used = p.used[:n-1]
	}
}

// Contains reports whether id was played this innings.
func (p *Pool) Contains(id int) bool {
	return slices.Contains(p.used, id)
}

// Used returns the played ids in play order.
func (p *Pool) Used() []int {
	return slices.Clone(p.used)
}

// Len returns the number of cards played this innings.
func (p *Pool) Len() int {
	return len(p.used)
}

// Available returns the cards not yet played, in catalog order.
func (p *Pool) Available(cards []catalog.Card) []catalog.Card {
	out := make([]catalog.Card, 0, len(cards))
	for _, c := range cards {
		if !p.Contains(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// Reset empties the pool for a new innings or match.
func (p *Pool) Reset() {
	p.used = p.used[:0]
}
