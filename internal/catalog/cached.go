package catalog

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

type listKey struct{}

// Cached is a read-through LRU cache in front of another catalog. Misses
// (ErrNotFound) are not cached so cards added to the source become visible.
type Cached struct {
	source Catalog
	cache  *lru.Cache
}

// NewCached wraps source with an LRU cache holding up to size entries.
func NewCached(source Catalog, size int) (*Cached, error) {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create catalog cache: %w", err)
	}
	return &Cached{source: source, cache: cache}, nil
}

// GetCard returns a cached card or loads it from the source.
func (c *Cached) GetCard(ctx context.Context, id int) (Card, error) {
	if v, ok := c.cache.Get(id); ok {
		return v.(Card), nil
	}
	card, err := c.source.GetCard(ctx, id)
	if err != nil {
		return Card{}, err
	}
	c.cache.Add(id, card)
	return card, nil
}

// ListCards returns the cached card list or loads it from the source.
func (c *Cached) ListCards(ctx context.Context) ([]Card, error) {
	if v, ok := c.cache.Get(listKey{}); ok {
		cards := v.([]Card)
		out := make([]Card, len(cards))
		copy(out, cards)
		return out, nil
	}
	cards, err := c.source.ListCards(ctx)
	if err != nil {
		return nil, err
	}
	stored := make([]Card, len(cards))
	copy(stored, cards)
	c.cache.Add(listKey{}, stored)
	for _, card := range cards {
		c.cache.Add(card.ID, card)
	}
	return cards, nil
}

// Purge drops every cached entry.
func (c *Cached) Purge() {
	c.cache.Purge()
}
