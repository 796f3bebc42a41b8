// Package catalog provides read-only access to the card catalog.
//
// A Catalog is the single source of truth for card attributes. Matches
// only ever read from it: cards are looked up by id when a player selects
// one, and the full list seeds each side's pool at match start.
//
// Three sources are provided:
//   - Static: an in-memory list, usually loaded from YAML with LoadFile
//   - SQL: a GORM-backed table of cards
//   - Cached: an LRU read-through cache in front of any other Catalog
package catalog

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a card id is not present in the catalog.
var ErrNotFound = errors.New("catalog: card not found")

// Card is a single playable card. Cards are immutable for the lifetime of a match.
type Card struct {
	ID      int    `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Batting int    `yaml:"batting" json:"batting"`
	Bowling int    `yaml:"bowling" json:"bowling"`
	Runs    int    `yaml:"runs" json:"runs"`
}

// Validate checks that the card's attributes are non-negative.
func (c Card) Validate() error {
	if c.Batting < 0 || c.Bowling < 0 || c.Runs < 0 {
		return fmt.Errorf("card %d (%s): skills and runs must be non-negative", c.ID, c.Name)
	}
	return nil
}

// Catalog looks up cards by id and lists the full catalog in a stable order.
type Catalog interface {
	GetCard(ctx context.Context, id int) (Card, error)
	ListCards(ctx context.Context) ([]Card, error)
}

// Static is an immutable in-memory catalog. The order of the slice passed to
// NewStatic is preserved by ListCards.
type Static struct {
	cards []Card
	byID  map[int]int
}

// NewStatic builds a catalog from cards, rejecting duplicate ids and
// negative attributes.
func NewStatic(cards []Card) (*Static, error) {
	s := &Static{
		cards: make([]Card, len(cards)),
		byID:  make(map[int]int, len(cards)),
	}
	copy(s.cards, cards)
	for i, c := range s.cards {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %d", c.ID)
		}
		s.byID[c.ID] = i
	}
	return s, nil
}

// GetCard returns the card with the given id.
func (s *Static) GetCard(_ context.Context, id int) (Card, error) {
	i, ok := s.byID[id]
	if !ok {
		return Card{}, fmt.Errorf("card %d: %w", id, ErrNotFound)
	}
	return s.cards[i], nil
}

// ListCards returns a copy of all cards in catalog order.
func (s *Static) ListCards(context.Context) ([]Card, error) {
	out := make([]Card, len(s.cards))
	copy(out, s.cards)
	return out, nil
}

// Len returns the number of cards in the catalog.
func (s *Static) Len() int {
	return len(s.cards)
}
