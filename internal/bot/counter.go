package bot

import (
	"github.com/lox/cardcricket/internal/catalog"
	"github.com/lox/cardcricket/internal/strategy"
)

// maxBy returns the first card with the highest score.
func maxBy(cards []catalog.Card, score func(catalog.Card) float64) (catalog.Card, bool) {
	if len(cards) == 0 {
		return catalog.Card{}, false
	}
	best, bestScore := cards[0], score(cards[0])
	for _, c := range cards[1:] {
		if s := score(c); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, true
}

func strongestBatter(cards []catalog.Card) (catalog.Card, bool) {
	return maxBy(cards, func(c catalog.Card) float64 { return float64(c.Batting + c.Runs) })
}

// Counter applies a counter-strategy to the available cards.
//
//	HighBowling  strongest batter (batting+runs)
//	HighBatting  strongest bowler
//	Balanced     best all-round mean of batting, bowling and runs
func Counter(s strategy.Profile, cards []catalog.Card) (catalog.Card, bool) {
	switch s {
	case strategy.HighBowling:
		return strongestBatter(cards)
	case strategy.HighBatting:
		return maxBy(cards, func(c catalog.Card) float64 { return float64(c.Bowling) })
	default:
		return maxBy(cards, func(c catalog.Card) float64 {
			return float64(c.Batting+c.Bowling+c.Runs) / 3
		})
	}
}
