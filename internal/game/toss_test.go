package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cardcricket/internal/randutil"
)

func TestTossWinningCall(t *testing.T) {
	rng := randutil.New(7)
	won, lost := 0, 0
	sides := map[Side]int{}
	for range 2000 {
		res := Toss(rng, Heads)
		assert.Equal(t, Heads, res.Call)
		assert.Equal(t, res.Landed == Heads, res.Won)
		if res.Won {
			won++
			assert.Equal(t, Player, res.BattingFirst)
			continue
		}
		lost++
		sides[res.BattingFirst]++
	}
	assert.InDelta(t, 1000, won, 150)
	assert.InDelta(t, lost/2, sides[Player], 120)
	assert.InDelta(t, lost/2, sides[Computer], 120)
}

func TestParseCoin(t *testing.T) {
	c, err := ParseCoin("tails")
	require.NoError(t, err)
	assert.Equal(t, Tails, c)

	_, err = ParseCoin("edge")
	require.Error(t, err)

	var side Side
	require.NoError(t, side.UnmarshalText([]byte("computer")))
	assert.Equal(t, Computer, side)
	require.Error(t, side.UnmarshalText([]byte("umpire")))
}
