// Package strategy holds the opponent's counter-strategy table and the
// engine that adapts it from the round history.
package strategy

import (
	"fmt"
	"strings"

	"github.com/lox/cardcricket/internal/catalog"
)

// Profile classifies a card's skill balance. The same three tags name the
// counter-strategies. Declaration order is the tie-break order.
type Profile int

const (
	HighBatting Profile = iota
	HighBowling
	Balanced
)

// Profiles lists every profile in enumeration order.
var Profiles = []Profile{HighBatting, HighBowling, Balanced}

// battingHeavyWeight is the batting share above which a card is HighBatting.
const battingHeavyWeight = 0.6

func (p Profile) String() string {
	switch p {
	case HighBatting:
		return "high_batting"
	case HighBowling:
		return "high_bowling"
	case Balanced:
		return "balanced"
	default:
		return fmt.Sprintf("profile(%d)", int(p))
	}
}

// Valid reports whether p is one of the declared profiles.
func (p Profile) Valid() bool {
	return p >= HighBatting && p <= Balanced
}

// ParseProfile accepts the String form, case-insensitively, with either
// underscores or dashes.
func ParseProfile(s string) (Profile, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "high_batting", "highbatting":
		return HighBatting, nil
	case "high_bowling", "highbowling":
		return HighBowling, nil
	case "balanced":
		return Balanced, nil
	}
	return 0, fmt.Errorf("unknown profile %q", s)
}

func (p Profile) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid profile %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Profile) UnmarshalText(b []byte) error {
	v, err := ParseProfile(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Classify returns the profile of a card. A card whose batting share of
// batting+bowling+1 exceeds 0.6 is HighBatting; otherwise it is HighBowling
// when bowling beats batting, and Balanced when it does not.
func Classify(c catalog.Card) Profile {
	weight := float64(c.Batting) / float64(c.Batting+c.Bowling+1)
	switch {
	case weight > battingHeavyWeight:
		return HighBatting
	case c.Bowling > c.Batting:
		return HighBowling
	default:
		return Balanced
	}
}
