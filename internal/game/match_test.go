package game

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cardcricket/internal/catalog"
	"github.com/lox/cardcricket/internal/ledger"
	"github.com/lox/cardcricket/internal/strategy"
)

// Cards 1-5 and 8 bat well and bowl badly; 6 and 7 bowl well and bat badly.
func testCatalog(t *testing.T) *catalog.Static {
	t.Helper()
	cat, err := catalog.NewStatic([]catalog.Card{
		{ID: 1, Name: "Opener", Batting: 9, Bowling: 1, Runs: 2},
		{ID: 2, Name: "Anchor", Batting: 9, Bowling: 1, Runs: 2},
		{ID: 3, Name: "Striker", Batting: 9, Bowling: 1, Runs: 2},
		{ID: 4, Name: "Finisher", Batting: 9, Bowling: 1, Runs: 2},
		{ID: 5, Name: "Keeper", Batting: 9, Bowling: 1, Runs: 2},
		{ID: 6, Name: "Quick", Batting: 1, Bowling: 9, Runs: 0},
		{ID: 7, Name: "Spinner", Batting: 1, Bowling: 9, Runs: 0},
		{ID: 8, Name: "Slugger", Batting: 9, Bowling: 1, Runs: 3},
	})
	require.NoError(t, err)
	return cat
}

// scripted plays the computer's cards in a fixed order.
type scripted struct {
	ids  []int
	next int
	reqs []OpponentRequest
}

func (s *scripted) Choose(_ context.Context, req OpponentRequest) (Decision, error) {
	s.reqs = append(s.reqs, req)
	if s.next >= len(s.ids) {
		return Decision{}, ErrNoCardAvailable
	}
	id := s.ids[s.next]
	s.next++
	for _, c := range req.Available {
		if c.ID == id {
			return Decision{Card: c, Tier: TierCounter, Strategy: strategy.HighBowling}, nil
		}
	}
	return Decision{}, ErrNoCardAvailable
}

type failingLedger struct {
	ledger.Store
}

func (failingLedger) Append(context.Context, ledger.Record) error {
	return errors.New("disk full")
}

func newTestMatch(t *testing.T, first Side, opp Opponent, store ledger.Store) (*Match, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	m, err := NewMatch("m1", first, Config{
		Catalog:  testCatalog(t),
		Opponent: opp,
		Ledger:   store,
		Clock:    clock,
		Logger:   log.NewWithOptions(io.Discard, log.Options{}),
	})
	require.NoError(t, err)
	return m, clock
}

func playInnings(t *testing.T, m *Match, ids []int) MatchState {
	t.Helper()
	var state MatchState
	for _, id := range ids {
		var err error
		state, err = m.ResolveRound(context.Background(), id)
		require.NoError(t, err, "card %d", id)
	}
	return state
}

func TestMatchInitialState(t *testing.T) {
	m, _ := newTestMatch(t, Player, &scripted{}, nil)

	s := m.GetState()
	assert.Equal(t, AwaitingSelection, s.Phase)
	assert.Equal(t, 1, s.Innings)
	assert.Equal(t, 1, s.Round)
	assert.Equal(t, Player, s.BattingTeam)
	assert.Nil(t, s.Target)
	assert.Nil(t, s.Result)
	assert.Empty(t, s.Used[Player])
	assert.Empty(t, s.Used[Computer])
	assert.Equal(t, 0, s.Scores[Player])
	assert.Equal(t, "Select your batter", s.SelectionLabel)
}

func TestMatchComputerChasesDown(t *testing.T) {
	store := ledger.NewMemoryStore()
	opp := &scripted{ids: []int{1, 2, 3, 4, 5, 6, 7, 1, 2, 3, 4, 8, 6, 7}}
	m, _ := newTestMatch(t, Player, opp, store)

	state := playInnings(t, m, []int{1, 2, 3, 4, 5, 6})
	assert.Equal(t, RoundResolved, state.Phase)
	assert.Equal(t, 7, state.Round)
	assert.Nil(t, state.Target)

	state = playInnings(t, m, []int{7})
	assert.Equal(t, InningsBreak, state.Phase)
	assert.Equal(t, 10, state.Scores[Player])
	assert.Equal(t, 2, state.Wickets[Player])
	require.NotNil(t, state.Target)
	assert.Equal(t, 11, *state.Target)
	assert.Equal(t, 2, state.Innings)
	assert.Equal(t, 1, state.Round)
	assert.Empty(t, state.Used[Player])
	assert.Empty(t, state.Used[Computer])
	assert.Equal(t, "First innings over. Second innings starts!", state.Message)
	require.NotNil(t, state.LastRound)
	assert.Equal(t, Wicket, state.LastRound.Outcome)

	live := m.GetState()
	assert.Equal(t, AwaitingSelection, live.Phase)
	assert.Nil(t, live.LastRound)
	assert.Equal(t, Computer, live.BattingTeam)
	assert.Equal(t, "Select your bowler", live.SelectionLabel)

	state = playInnings(t, m, []int{1, 2, 3, 4, 5, 6, 7})
	assert.Equal(t, Complete, state.Phase)
	assert.Equal(t, 11, state.Scores[Computer])
	require.NotNil(t, state.Result)
	assert.Equal(t, WinnerComputer, state.Result.Winner)
	assert.Empty(t, state.SelectionLabel)

	_, err := m.ResolveRound(context.Background(), 1)
	require.ErrorIs(t, err, ErrInvalidPhase)

	assert.Equal(t, 14, store.Len())
}

func TestMatchTie(t *testing.T) {
	opp := &scripted{ids: []int{1, 2, 3, 4, 5, 6, 7, 1, 2, 3, 4, 5, 6, 7}}
	m, _ := newTestMatch(t, Player, opp, nil)

	playInnings(t, m, []int{1, 2, 3, 4, 5, 6, 7})
	state := playInnings(t, m, []int{1, 2, 3, 4, 5, 6, 7})

	assert.Equal(t, 10, state.Scores[Player])
	assert.Equal(t, 10, state.Scores[Computer])
	require.NotNil(t, state.Result)
	assert.Equal(t, Tie, state.Result.Winner)
}

func TestMatchComputerBatsFirst(t *testing.T) {
	opp := &scripted{ids: []int{6, 7, 1, 2, 3, 4, 5, 6, 7, 1, 2, 3, 4, 5}}
	m, _ := newTestMatch(t, Computer, opp, nil)

	assert.Equal(t, "Select your bowler", m.GetState().SelectionLabel)

	state := playInnings(t, m, []int{6, 7, 1, 2, 3, 4, 5})
	assert.Equal(t, InningsBreak, state.Phase)
	assert.Equal(t, 2, state.Wickets[Computer])
	assert.Equal(t, 10, state.Scores[Computer])
	assert.Equal(t, 0, state.Scores[Player])
	require.NotNil(t, state.Target)
	assert.Equal(t, 11, *state.Target)
	assert.Equal(t, Player, m.GetState().BattingTeam)
}

func TestMatchRejectsUnknownAndReusedCards(t *testing.T) {
	opp := &scripted{ids: []int{1, 2, 3}}
	m, _ := newTestMatch(t, Player, opp, nil)
	ctx := context.Background()

	_, err := m.ResolveRound(ctx, 99)
	require.ErrorIs(t, err, ErrUnknownCard)

	_, err = m.ResolveRound(ctx, 1)
	require.NoError(t, err)

	_, err = m.ResolveRound(ctx, 1)
	require.ErrorIs(t, err, ErrAlreadyUsed)

	s := m.GetState()
	assert.Equal(t, 2, s.Round)
	assert.Equal(t, []int{1}, s.Used[Player])
	assert.Equal(t, []int{1}, s.Used[Computer])
}

func TestMatchRollsBackWhenOpponentHasNoCard(t *testing.T) {
	m, _ := newTestMatch(t, Player, &scripted{}, nil)

	_, err := m.ResolveRound(context.Background(), 3)
	require.ErrorIs(t, err, ErrNoCardAvailable)

	s := m.GetState()
	assert.Equal(t, AwaitingSelection, s.Phase)
	assert.Equal(t, 1, s.Round)
	assert.Empty(t, s.Used[Player])
	assert.Empty(t, s.Used[Computer])
	assert.Equal(t, 0, s.Scores[Player])
}

func TestMatchLedgerFailureIsWarning(t *testing.T) {
	opp := &scripted{ids: []int{1}}
	m, _ := newTestMatch(t, Player, opp, failingLedger{})

	state, err := m.ResolveRound(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, state.Warnings, 1)
	assert.Contains(t, state.Warnings[0], "disk full")
	assert.Equal(t, 2, state.Scores[Player])
	assert.Equal(t, 2, state.Round)
}

func TestMatchWritesLedgerRecords(t *testing.T) {
	store := ledger.NewMemoryStore()
	opp := &scripted{ids: []int{6, 1}}
	m, clock := newTestMatch(t, Player, opp, store)
	ctx := context.Background()

	_, err := m.ResolveRound(ctx, 7)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = m.ResolveRound(ctx, 8)
	require.NoError(t, err)

	recs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, ledger.Record{
		MatchID:        "m1",
		Round:          2,
		PlayerCardID:   8,
		ComputerCardID: 1,
		Outcome:        ledger.OutcomeHit,
		ScoreAfter:     3,
		WicketsAfter:   1,
		BattingTeam:    ledger.TeamPlayer,
		Innings:        1,
		Strategy:       "high_bowling",
		Timestamp:      time.Date(2024, 5, 1, 12, 1, 0, 0, time.UTC),
	}, recs[0])
	assert.Equal(t, ledger.OutcomeWicket, recs[1].Outcome)
	assert.Equal(t, 1, recs[1].WicketsAfter)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), recs[1].Timestamp)
}

func TestMatchPassesContextToOpponent(t *testing.T) {
	opp := &scripted{ids: []int{6, 1}}
	m, _ := newTestMatch(t, Player, opp, nil)

	playInnings(t, m, []int{7, 2})
	require.Len(t, opp.reqs, 2)

	req := opp.reqs[1]
	assert.Equal(t, 2, req.Round)
	assert.Equal(t, 1, req.Innings)
	assert.Equal(t, 1, req.Wickets)
	assert.Equal(t, Player, req.BattingTeam)
	assert.False(t, req.ComputerBats())
	assert.Equal(t, 2, req.HumanCard.ID)
	assert.Len(t, req.Available, 7)
	for _, c := range req.Available {
		assert.NotEqual(t, 6, c.ID)
	}
}

func TestResolveStrictComparison(t *testing.T) {
	tests := []struct {
		name    string
		batting int
		bowling int
		want    Outcome
		runs    int
	}{
		{"greater", 6, 5, Hit, 4},
		{"equal", 5, 5, Wicket, 0},
		{"less", 4, 5, Wicket, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, runs := Resolve(
				catalog.Card{Batting: tt.batting, Runs: 4},
				catalog.Card{Bowling: tt.bowling},
			)
			assert.Equal(t, tt.want, outcome)
			assert.Equal(t, tt.runs, runs)
		})
	}
}

func TestDecideWinner(t *testing.T) {
	assert.Equal(t, WinnerComputer, DecideWinner(Player, map[Side]int{Player: 10, Computer: 11}))
	assert.Equal(t, Tie, DecideWinner(Player, map[Side]int{Player: 10, Computer: 10}))
	assert.Equal(t, WinnerPlayer, DecideWinner(Player, map[Side]int{Player: 10, Computer: 9}))
	assert.Equal(t, WinnerPlayer, DecideWinner(Computer, map[Side]int{Player: 4, Computer: 3}))
}

func TestNewMatchValidation(t *testing.T) {
	_, err := NewMatch("x", Player, Config{Opponent: &scripted{}})
	require.Error(t, err)
	_, err = NewMatch("x", Player, Config{Catalog: testCatalog(t)})
	require.Error(t, err)
	_, err = NewMatch("x", Side(7), Config{Catalog: testCatalog(t), Opponent: &scripted{}})
	require.Error(t, err)
}
