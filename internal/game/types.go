package game

import (
	"fmt"
)

const (
	// RoundsPerInnings is the fixed number of rounds in each innings.
	RoundsPerInnings = 7
	// InningsPerMatch is the number of innings in a match.
	InningsPerMatch = 2
)

// Side is one of the two sides in a match.
type Side int

const (
	Player Side = iota
	Computer
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Player {
		return Computer
	}
	return Player
}

func (s Side) String() string {
	switch s {
	case Player:
		return "player"
	case Computer:
		return "computer"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ParseSide accepts "player" or "computer".
func ParseSide(s string) (Side, error) {
	switch s {
	case "player":
		return Player, nil
	case "computer":
		return Computer, nil
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Outcome is the result of a single round.
type Outcome int

const (
	Hit Outcome = iota
	Wicket
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Wicket:
		return "wicket"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Phase is where a match is in its lifecycle.
type Phase int

const (
	AwaitingSelection Phase = iota
	RoundResolved
	InningsBreak
	Complete
)

func (p Phase) String() string {
	switch p {
	case AwaitingSelection:
		return "awaiting_selection"
	case RoundResolved:
		return "round_resolved"
	case InningsBreak:
		return "innings_break"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Winner is the match result: a side, or a tie.
type Winner int

const (
	WinnerPlayer Winner = iota
	WinnerComputer
	Tie
)

func winnerFor(s Side) Winner {
	if s == Player {
		return WinnerPlayer
	}
	return WinnerComputer
}

func (w Winner) String() string {
	switch w {
	case WinnerPlayer:
		return "player"
	case WinnerComputer:
		return "computer"
	case Tie:
		return "tie"
	default:
		return fmt.Sprintf("winner(%d)", int(w))
	}
}

func (w Winner) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// DecideWinner applies the end-of-match rule: the side batting second wins
// only by outscoring the side batting first; equal scores tie.
func DecideWinner(battingFirst Side, scores map[Side]int) Winner {
	second := battingFirst.Opponent()
	switch {
	case scores[second] > scores[battingFirst]:
		return winnerFor(second)
	case scores[second] == scores[battingFirst]:
		return Tie
	default:
		return winnerFor(battingFirst)
	}
}
