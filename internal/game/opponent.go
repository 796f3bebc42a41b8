package game

import (
	"context"

	"github.com/lox/cardcricket/internal/catalog"
	"github.com/lox/cardcricket/internal/strategy"
)

// Tier names the decision stage that picked the computer's card.
type Tier int

const (
	TierBatting Tier = iota
	TierOracle
	TierCounter
	TierRandom
)

func (t Tier) String() string {
	switch t {
	case TierBatting:
		return "batting"
	case TierOracle:
		return "oracle"
	case TierCounter:
		return "counter"
	case TierRandom:
		return "random"
	default:
		return "unknown"
	}
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// OpponentRequest is everything the opponent may look at when choosing.
type OpponentRequest struct {
	HumanCard   catalog.Card
	BattingTeam Side
	Available   []catalog.Card // the computer's unplayed cards, catalog order
	Innings     int
	Round       int
	Wickets     int // wickets lost so far by the batting side
}

// ComputerBats reports whether the computer is batting this round.
func (r OpponentRequest) ComputerBats() bool {
	return r.BattingTeam == Computer
}

// Decision is the opponent's chosen card and how it was chosen.
type Decision struct {
	Card       catalog.Card
	Tier       Tier
	Profile    strategy.Profile // human card profile; set when bowling
	Strategy   strategy.Profile // counter applied; meaningful for TierCounter
	Confidence float64          // oracle confidence; meaningful for TierOracle
}

// Opponent chooses the computer's card for a round. Implementations
// return ErrNoCardAvailable when Available is empty.
type Opponent interface {
	Choose(ctx context.Context, req OpponentRequest) (Decision, error)
}

// OpponentFunc adapts a function to the Opponent interface.
type OpponentFunc func(ctx context.Context, req OpponentRequest) (Decision, error)

func (f OpponentFunc) Choose(ctx context.Context, req OpponentRequest) (Decision, error) {
	return f(ctx, req)
}
