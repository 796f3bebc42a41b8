// Package bot implements the computer's card choice.
//
// A Policy decides in tiers. When the computer bats it plays its strongest
// batter. When it bowls it first asks the oracle, then falls back to the
// counter-strategy table, and finally to a uniform random pick. Oracle
// problems are never returned to the caller; they only move the decision to
// the next tier.
package bot

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/cardcricket/internal/catalog"
	"github.com/lox/cardcricket/internal/game"
	"github.com/lox/cardcricket/internal/oracle"
	"github.com/lox/cardcricket/internal/randutil"
	"github.com/lox/cardcricket/internal/strategy"
)

// DefaultOracleTimeout bounds a single oracle consultation.
const DefaultOracleTimeout = 250 * time.Millisecond

// ErrNoCardAvailable is returned when the computer has nothing left to play.
var ErrNoCardAvailable = game.ErrNoCardAvailable

// Config configures a Policy. Zero values pick sensible defaults; a nil
// Table disables the counter tier.
type Config struct {
	Table   *strategy.Table
	Oracle  oracle.Oracle
	Clock   quartz.Clock
	Timeout time.Duration
	RNG     *randutil.Locked
	Logger  *log.Logger
}

// Policy is the computer opponent. It is safe for concurrent use.
type Policy struct {
	table   *strategy.Table
	oracle  oracle.Oracle
	clock   quartz.Clock
	timeout time.Duration
	rng     *randutil.Locked
	logger  *log.Logger
}

var _ game.Opponent = (*Policy)(nil)

// NewPolicy builds a policy from cfg.
func NewPolicy(cfg Config) *Policy {
	if cfg.Oracle == nil {
		cfg.Oracle = oracle.Nop{}
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultOracleTimeout
	}
	if cfg.RNG == nil {
		cfg.RNG = randutil.NewLocked(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return &Policy{
		table:   cfg.Table,
		oracle:  cfg.Oracle,
		clock:   cfg.Clock,
		timeout: cfg.Timeout,
		rng:     cfg.RNG,
		logger:  cfg.Logger.WithPrefix("policy"),
	}
}

// Choose picks the computer's card for one round.
func (p *Policy) Choose(ctx context.Context, req game.OpponentRequest) (game.Decision, error) {
	if len(req.Available) == 0 {
		return game.Decision{}, ErrNoCardAvailable
	}

	if req.ComputerBats() {
		card, _ := strongestBatter(req.Available)
		return game.Decision{Card: card, Tier: game.TierBatting}, nil
	}

	profile := strategy.Classify(req.HumanCard)

	card, conf, failure := p.consultOracle(ctx, req)
	if failure == oracle.FailureNone {
		return game.Decision{Card: card, Tier: game.TierOracle, Profile: profile, Confidence: conf}, nil
	}
	p.logger.Debug("Oracle skipped", "reason", failure, "card", req.HumanCard.ID)

	if p.table != nil {
		counter, ok := p.table.Lookup(profile)
		if !ok {
			counter = strategy.Balanced
		}
		if card, ok := Counter(counter, req.Available); ok {
			return game.Decision{Card: card, Tier: game.TierCounter, Profile: profile, Strategy: counter}, nil
		}
	}

	card, ok := randutil.Pick(p.rng, req.Available)
	if !ok {
		return game.Decision{}, ErrNoCardAvailable
	}
	return game.Decision{Card: card, Tier: game.TierRandom, Profile: profile}, nil
}

type prediction struct {
	pred oracle.Prediction
	err  error
}

// consultOracle asks the oracle for a card and validates the answer. The
// call is abandoned when the timeout fires on the policy clock.
func (p *Policy) consultOracle(ctx context.Context, req game.OpponentRequest) (catalog.Card, float64, oracle.SoftFailure) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := oracle.Query{
		HumanCard:  req.HumanCard,
		Candidates: req.Available,
		Innings:    req.Innings,
		Round:      req.Round,
		Wickets:    req.Wickets,
	}

	result := make(chan prediction, 1)
	go func() {
		pred, err := p.oracle.Predict(callCtx, q)
		result <- prediction{pred: pred, err: err}
	}()

	timeoutFired := make(chan struct{})
	timer := p.clock.AfterFunc(p.timeout, func() {
		close(timeoutFired)
	})
	defer timer.Stop()

	var res prediction
	select {
	case res = <-result:
	case <-timeoutFired:
		return catalog.Card{}, 0, oracle.FailureTimeout
	case <-ctx.Done():
		return catalog.Card{}, 0, oracle.FailureTimeout
	}

	if res.err != nil {
		failure := oracle.Classify(res.err)
		if failure == oracle.FailureError {
			p.logger.Debug("Oracle error", "error", res.err)
		}
		return catalog.Card{}, 0, failure
	}

	i := slices.IndexFunc(req.Available, func(c catalog.Card) bool { return c.ID == res.pred.CardID })
	if i < 0 {
		return catalog.Card{}, 0, oracle.FailureInvalid
	}
	return req.Available[i], res.pred.Confidence, oracle.FailureNone
}

// Describe renders a decision for logs and the CLI.
func Describe(d game.Decision) string {
	switch d.Tier {
	case game.TierOracle:
		return fmt.Sprintf("%s via oracle (%.2f)", d.Card.Name, d.Confidence)
	case game.TierCounter:
		return fmt.Sprintf("%s via %s counter to %s", d.Card.Name, d.Strategy, d.Profile)
	default:
		return fmt.Sprintf("%s via %s", d.Card.Name, d.Tier)
	}
}
