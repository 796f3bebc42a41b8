// Package ledger stores the append-only history of resolved rounds.
//
// Every resolved round produces exactly one Record. Records are never
// mutated or deleted; the ledger is shared by all matches and is read back
// in two ways: Recent for the newest N records and Scan for full passes
// such as strategy adaptation.
package ledger

import (
	"context"
	"errors"
	"time"
)

// Outcome values as written to the ledger.
const (
	OutcomeHit    = "hit"
	OutcomeWicket = "wicket"
)

// Batting team values as written to the ledger.
const (
	TeamPlayer   = "player"
	TeamComputer = "computer"
)

// ErrClosed is returned by stores after Close.
var ErrClosed = errors.New("ledger: store closed")

// Record is one resolved round.
type Record struct {
	MatchID        string    `json:"match_id,omitempty"`
	Round          int       `json:"round_number"`
	PlayerCardID   int       `json:"player_card_id"`
	ComputerCardID int       `json:"computer_card_id"`
	Outcome        string    `json:"outcome"`
	ScoreAfter     int       `json:"score_after"`
	WicketsAfter   int       `json:"wickets_after"`
	BattingTeam    string    `json:"batting_team"`
	Innings        int       `json:"innings"`
	Strategy       string    `json:"strategy,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// ComputerWon reports whether the computer side won the round: a wicket
// while the computer bowled or a hit while it batted.
func (r Record) ComputerWon() bool {
	if r.BattingTeam == TeamComputer {
		return r.Outcome == OutcomeHit
	}
	return r.Outcome == OutcomeWicket
}

// Store is an append-only record sink.
type Store interface {
	// Append durably adds one record. Concurrent appends never interleave.
	Append(ctx context.Context, rec Record) error
	// Recent returns up to n records, newest first.
	Recent(ctx context.Context, n int) ([]Record, error)
	// Scan calls fn for every record, oldest first, stopping at the first error.
	Scan(ctx context.Context, fn func(Record) error) error
	Close() error
}
