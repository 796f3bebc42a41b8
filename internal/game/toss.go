package game

import "fmt"

// Coin is one face of the toss coin.
type Coin int

const (
	Heads Coin = iota
	Tails
)

func (c Coin) String() string {
	if c == Heads {
		return "heads"
	}
	return "tails"
}

// ParseCoin accepts "heads" or "tails".
func ParseCoin(s string) (Coin, error) {
	switch s {
	case "heads":
		return Heads, nil
	case "tails":
		return Tails, nil
	}
	return 0, fmt.Errorf("unknown coin face %q", s)
}

func (c Coin) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Coin) UnmarshalText(b []byte) error {
	v, err := ParseCoin(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// IntN is the slice of a random source the toss needs. Both *rand.Rand
// and randutil.Locked satisfy it.
type IntN interface {
	IntN(n int) int
}

// TossResult is the outcome of the pre-match toss. When Won is true the
// caller picks who bats first; otherwise BattingFirst is already drawn.
type TossResult struct {
	Call         Coin `json:"call"`
	Landed       Coin `json:"landed"`
	Won          bool `json:"won"`
	BattingFirst Side `json:"batting_first"`
}

// Toss flips a fair coin against the caller's call. A lost call draws the
// batting order uniformly at random. A won call defaults BattingFirst to
// Player until the caller chooses.
func Toss(rng IntN, call Coin) TossResult {
	landed := Coin(rng.IntN(2))
	res := TossResult{Call: call, Landed: landed, Won: landed == call}
	if res.Won {
		res.BattingFirst = Player
		return res
	}
	res.BattingFirst = Side(rng.IntN(2))
	return res
}
