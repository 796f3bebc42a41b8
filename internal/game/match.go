package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/cardcricket/internal/catalog"
	"github.com/lox/cardcricket/internal/ledger"
)

// Config holds the collaborators a match needs.
type Config struct {
	Catalog  catalog.Catalog
	Opponent Opponent
	Ledger   ledger.Store // optional
	Clock    quartz.Clock // defaults to the real clock
	Logger   *log.Logger  // defaults to a discarding logger
}

// Result is the outcome of a completed match.
type Result struct {
	Winner Winner       `json:"winner"`
	Scores map[Side]int `json:"scores"`
}

// RoundSummary describes the most recently resolved round.
type RoundSummary struct {
	Round       int          `json:"round"`
	Innings     int          `json:"innings"`
	BattingTeam Side         `json:"batting_team"`
	Batter      catalog.Card `json:"batter"`
	Bowler      catalog.Card `json:"bowler"`
	Outcome     Outcome      `json:"outcome"`
	Runs        int          `json:"runs"`
	Tier        Tier         `json:"tier"`
}

// MatchState is a snapshot of a match. It shares no memory with the match.
type MatchState struct {
	ID             string         `json:"id"`
	Innings        int            `json:"innings"`
	Round          int            `json:"round"`
	BattingFirst   Side           `json:"batting_first"`
	BattingTeam    Side           `json:"batting_team"`
	Used           map[Side][]int `json:"used"`
	Scores         map[Side]int   `json:"scores"`
	Wickets        map[Side]int   `json:"wickets"`
	Target         *int           `json:"target,omitempty"`
	LastRound      *RoundSummary  `json:"last_round,omitempty"`
	Phase          Phase          `json:"phase"`
	Result         *Result        `json:"result,omitempty"`
	Message        string         `json:"message,omitempty"`
	SelectionLabel string         `json:"selection_label,omitempty"`
	Warnings       []string       `json:"warnings,omitempty"`
}

// Match runs a single two-innings match. Calls are serialized.
type Match struct {
	mu sync.Mutex

	id           string
	battingFirst Side
	innings      int
	round        int
	pools        map[Side]*Pool
	scores       map[Side]int
	wickets      map[Side]int
	target       *int
	lastRound    *RoundSummary
	phase        Phase
	result       *Result
	message      string

	catalog  catalog.Catalog
	opponent Opponent
	ledger   ledger.Store
	clock    quartz.Clock
	logger   *log.Logger
}

// NewMatch starts a match awaiting the first selection of innings one.
func NewMatch(id string, battingFirst Side, cfg Config) (*Match, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("game: catalog is required")
	}
	if cfg.Opponent == nil {
		return nil, errors.New("game: opponent is required")
	}
	if battingFirst != Player && battingFirst != Computer {
		return nil, fmt.Errorf("game: invalid batting side %d", battingFirst)
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	m := &Match{
		id:           id,
		battingFirst: battingFirst,
		catalog:      cfg.Catalog,
		opponent:     cfg.Opponent,
		ledger:       cfg.Ledger,
		clock:        cfg.Clock,
		logger:       cfg.Logger.WithPrefix("match").With("match", id),
	}
	m.reset()
	return m, nil
}

func (m *Match) reset() {
	m.innings = 1
	m.round = 1
	m.pools = map[Side]*Pool{Player: {}, Computer: {}}
	m.scores = map[Side]int{Player: 0, Computer: 0}
	m.wickets = map[Side]int{Player: 0, Computer: 0}
	m.target = nil
	m.lastRound = nil
	m.phase = AwaitingSelection
	m.result = nil
	m.message = ""
}

// ID returns the match id.
func (m *Match) ID() string { return m.id }

// battingTeam is the side batting in the current innings.
func (m *Match) battingTeam() Side {
	if m.innings == 1 {
		return m.battingFirst
	}
	return m.battingFirst.Opponent()
}

// ResolveRound plays one round with the human's chosen card.
func (m *Match) ResolveRound(ctx context.Context, playerCardID int) (MatchState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != AwaitingSelection {
		return MatchState{}, fmt.Errorf("resolve round in phase %s: %w", m.phase, ErrInvalidPhase)
	}

	human, err := m.catalog.GetCard(ctx, playerCardID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return MatchState{}, fmt.Errorf("card %d: %w", playerCardID, ErrUnknownCard)
		}
		return MatchState{}, fmt.Errorf("lookup card %d: %w", playerCardID, err)
	}

	playerPool := m.pools[Player]
	if err := playerPool.Consume(human.ID); err != nil {
		return MatchState{}, err
	}

	batting := m.battingTeam()
	decision, err := m.chooseComputerCard(ctx, human, batting)
	if err != nil {
		playerPool.release(human.ID)
		m.logger.Error("Round errored", "innings", m.innings, "round", m.round, "card", human.ID, "error", err)
		return MatchState{}, err
	}

	batter, bowler := human, decision.Card
	if batting == Computer {
		batter, bowler = decision.Card, human
	}

	outcome, runs := Resolve(batter, bowler)
	if outcome == Hit {
		m.scores[batting] += runs
	} else {
		m.wickets[batting]++
	}

	summary := &RoundSummary{
		Round:       m.round,
		Innings:     m.innings,
		BattingTeam: batting,
		Batter:      batter,
		Bowler:      bowler,
		Outcome:     outcome,
		Runs:        runs,
		Tier:        decision.Tier,
	}
	m.lastRound = summary
	m.message = roundMessage(outcome, runs)

	m.logger.Debug("Round resolved",
		"innings", m.innings,
		"round", m.round,
		"batting", batting,
		"batter", batter.ID,
		"bowler", bowler.ID,
		"outcome", outcome,
		"tier", decision.Tier)

	var warnings []string
	if err := m.record(ctx, human, decision, outcome, batting); err != nil {
		m.logger.Warn("Failed to append round to ledger", "error", err)
		warnings = append(warnings, fmt.Sprintf("ledger: %v", err))
	}

	returned := m.advance()
	state := m.snapshot()
	state.Phase = returned
	state.LastRound = copySummary(summary)
	state.Warnings = warnings
	return state, nil
}

func (m *Match) chooseComputerCard(ctx context.Context, human catalog.Card, batting Side) (Decision, error) {
	cards, err := m.catalog.ListCards(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("list cards: %w", err)
	}

	computerPool := m.pools[Computer]
	available := computerPool.Available(cards)
	if len(available) == 0 {
		return Decision{}, fmt.Errorf("computer pool exhausted: %w", ErrNoCardAvailable)
	}

	decision, err := m.opponent.Choose(ctx, OpponentRequest{
		HumanCard:   human,
		BattingTeam: batting,
		Available:   available,
		Innings:     m.innings,
		Round:       m.round,
		Wickets:     m.wickets[batting],
	})
	if err != nil {
		return Decision{}, fmt.Errorf("choose computer card: %w", err)
	}
	if err := computerPool.Consume(decision.Card.ID); err != nil {
		return Decision{}, fmt.Errorf("opponent chose card %d: %w", decision.Card.ID, ErrNoCardAvailable)
	}
	return decision, nil
}

func (m *Match) record(ctx context.Context, human catalog.Card, d Decision, outcome Outcome, batting Side) error {
	if m.ledger == nil {
		return nil
	}
	rec := ledger.Record{
		MatchID:        m.id,
		Round:          m.round,
		PlayerCardID:   human.ID,
		ComputerCardID: d.Card.ID,
		Outcome:        outcome.String(),
		ScoreAfter:     m.scores[batting],
		WicketsAfter:   m.wickets[batting],
		BattingTeam:    batting.String(),
		Innings:        m.innings,
		Timestamp:      m.clock.Now().UTC(),
	}
	if d.Tier == TierCounter {
		rec.Strategy = d.Strategy.String()
	}
	return m.ledger.Append(ctx, rec)
}

// advance moves past the resolved round and returns the phase to report
// for it. The live phase is AwaitingSelection unless the match completed.
func (m *Match) advance() Phase {
	if m.round < RoundsPerInnings {
		m.round++
		m.phase = AwaitingSelection
		return RoundResolved
	}

	if m.innings == 1 {
		target := m.scores[m.battingFirst] + 1
		m.target = &target
		m.innings = 2
		m.round = 1
		m.pools[Player].Reset()
		m.pools[Computer].Reset()
		m.lastRound = nil
		m.phase = AwaitingSelection
		m.message = "First innings over. Second innings starts!"
		m.logger.Info("Innings complete", "score", m.scores[m.battingFirst], "target", target)
		return InningsBreak
	}

	winner := DecideWinner(m.battingFirst, m.scores)
	m.result = &Result{Winner: winner, Scores: maps.Clone(m.scores)}
	m.phase = Complete
	m.message = completionMessage(winner)
	m.logger.Info("Match complete",
		"winner", winner,
		"player", m.scores[Player],
		"computer", m.scores[Computer])
	return Complete
}

// GetState returns a snapshot of the live state.
func (m *Match) GetState() MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Available returns the cards side may still play this innings.
func (m *Match) Available(ctx context.Context, side Side) ([]catalog.Card, error) {
	cards, err := m.catalog.ListCards(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pools[side].Available(cards), nil
}

func (m *Match) snapshot() MatchState {
	s := MatchState{
		ID:           m.id,
		Innings:      m.innings,
		Round:        m.round,
		BattingFirst: m.battingFirst,
		BattingTeam:  m.battingTeam(),
		Used: map[Side][]int{
			Player:   m.pools[Player].Used(),
			Computer: m.pools[Computer].Used(),
		},
		Scores:    maps.Clone(m.scores),
		Wickets:   maps.Clone(m.wickets),
		LastRound: copySummary(m.lastRound),
		Phase:     m.phase,
		Message:   m.message,
	}
	if m.target != nil {
		t := *m.target
		s.Target = &t
	}
	if m.result != nil {
		r := *m.result
		r.Scores = maps.Clone(m.result.Scores)
		s.Result = &r
	}
	if m.phase != Complete {
		s.SelectionLabel = selectionLabel(s.BattingTeam)
	}
	return s
}

func copySummary(r *RoundSummary) *RoundSummary {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Resolve compares the batter's batting skill with the bowler's bowling
// skill. Only a strictly greater batting skill is a hit.
func Resolve(batter, bowler catalog.Card) (Outcome, int) {
	if batter.Batting > bowler.Bowling {
		return Hit, batter.Runs
	}
	return Wicket, 0
}

func roundMessage(o Outcome, runs int) string {
	if o == Hit {
		return fmt.Sprintf("Runs added: %d", runs)
	}
	return "Wicket!"
}

func completionMessage(w Winner) string {
	switch w {
	case WinnerPlayer:
		return "Match over. You win!"
	case WinnerComputer:
		return "Match over. Computer wins!"
	default:
		return "Match over. It's a tie!"
	}
}

func selectionLabel(batting Side) string {
	if batting == Player {
		return "Select your batter"
	}
	return "Select your bowler"
}
