// Package simulator plays many computer-vs-scripted-human matches to
// measure the opponent policy and to grow the ledger for adaptation.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/cardcricket/internal/catalog"
	"github.com/lox/cardcricket/internal/game"
	"github.com/lox/cardcricket/internal/ledger"
	"github.com/lox/cardcricket/internal/matchid"
	"github.com/lox/cardcricket/internal/randutil"
	"github.com/lox/cardcricket/internal/statistics"
	"github.com/lox/cardcricket/internal/strategy"
)

// Human names a scripted human player.
type Human string

const (
	// HumanRandom plays a uniformly random available card.
	HumanRandom Human = "random"
	// HumanGreedy bats with its best batter and bowls with its best bowler.
	HumanGreedy Human = "greedy"
	// HumanSlugger always plays its most batting-heavy card.
	HumanSlugger Human = "slugger"
)

// ParseHuman validates a human name.
func ParseHuman(s string) (Human, error) {
	switch h := Human(s); h {
	case HumanRandom, HumanGreedy, HumanSlugger:
		return h, nil
	}
	return "", fmt.Errorf("unknown human %q (want random, greedy or slugger)", s)
}

// Config holds configuration for running simulations.
type Config struct {
	Matches     int
	Seed        int64
	Concurrency int
	Human       Human
	AdaptEvery  int           // run the adapter after every N completed matches; 0 disables
	Timeout     time.Duration // per match
	Logger      *log.Logger
}

// Deps are the collaborators simulated matches share.
type Deps struct {
	Catalog  catalog.Catalog
	Opponent game.Opponent
	Ledger   ledger.Store
	Adapter  strategy.Runner
}

// Simulator runs card cricket match simulations.
type Simulator struct {
	config Config
	deps   Deps
	logger *log.Logger

	completed atomic.Int64
	adaptMu   sync.Mutex
}

// New creates a new simulator with the given configuration.
func New(config Config, deps Deps) *Simulator {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.Human == "" {
		config.Human = HumanRandom
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{
		config: config,
		deps:   deps,
		logger: config.Logger.WithPrefix("simulator"),
	}
}

// Run plays every match and returns aggregate statistics.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Matches <= 0 {
		return nil, errors.New("simulator: match count must be positive")
	}

	cards, err := s.deps.Catalog.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	stats := &statistics.Statistics{}
	ids := matchid.NewGenerator(nil)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for i := 0; i < s.config.Matches; i++ {
		seed := s.config.Seed + int64(i)
		g.Go(func() error {
			id, err := ids.Next()
			if err != nil {
				return err
			}
			result, err := s.playMatchWithTimeout(ctx, id, seed, cards)
			if err != nil {
				return fmt.Errorf("match %d (seed %d): %w", i+1, seed, err)
			}
			stats.Add(result)
			s.maybeAdapt(ctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

func (s *Simulator) maybeAdapt(ctx context.Context) {
	n := s.completed.Add(1)
	if s.deps.Adapter == nil || s.config.AdaptEvery <= 0 || n%int64(s.config.AdaptEvery) != 0 {
		return
	}
	s.adaptMu.Lock()
	defer s.adaptMu.Unlock()
	if _, err := s.deps.Adapter.Run(ctx); err != nil {
		s.logger.Warn("Adaptation failed", "after", n, "error", err)
	}
}

func (s *Simulator) playMatchWithTimeout(ctx context.Context, id string, seed int64, cards []catalog.Card) (statistics.MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	result, err := s.playMatch(ctx, id, seed, cards)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return result, fmt.Errorf("match timed out after %v: %w", s.config.Timeout, err)
	}
	return result, err
}

// playMatch plays one full match. The batting order alternates with the seed
// so the computer bats first in half the matches.
func (s *Simulator) playMatch(ctx context.Context, id string, seed int64, cards []catalog.Card) (statistics.MatchResult, error) {
	rng := randutil.New(seed)
	battingFirst := game.Side(seed & 1)

	m, err := game.NewMatch(id, battingFirst, game.Config{
		Catalog:  s.deps.Catalog,
		Opponent: s.deps.Opponent,
		Ledger:   s.deps.Ledger,
		Logger:   s.config.Logger,
	})
	if err != nil {
		return statistics.MatchResult{}, err
	}

	result := statistics.MatchResult{Tiers: make(map[string]int)}
	state := m.GetState()
	for state.Phase != game.Complete {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		used := state.Used[game.Player]
		card, ok := s.pickHuman(rng, cards, used, state.BattingTeam == game.Player)
		if !ok {
			return result, fmt.Errorf("human has no card in innings %d round %d", state.Innings, state.Round)
		}
		state, err = m.ResolveRound(ctx, card.ID)
		if err != nil {
			return result, err
		}
		result.Rounds++
		if state.LastRound.Outcome == game.Hit {
			result.Hits++
		} else {
			result.Wickets++
		}
		result.Tiers[state.LastRound.Tier.String()]++
	}

	result.Winner = state.Result.Winner.String()
	result.PlayerScore = state.Scores[game.Player]
	result.ComputerScore = state.Scores[game.Computer]
	s.logger.Debug("Match simulated", "match", id, "winner", result.Winner, "margin", result.Margin())
	return result, nil
}

func (s *Simulator) pickHuman(rng *rand.Rand, cards []catalog.Card, used []int, batting bool) (catalog.Card, bool) {
	var pool game.Pool
	for _, id := range used {
		_ = pool.Consume(id)
	}
	available := pool.Available(cards)
	if len(available) == 0 {
		return catalog.Card{}, false
	}

	switch s.config.Human {
	case HumanGreedy:
		if batting {
			return best(available, func(c catalog.Card) float64 { return float64(c.Batting + c.Runs) }), true
		}
		return best(available, func(c catalog.Card) float64 { return float64(c.Bowling) }), true
	case HumanSlugger:
		return best(available, func(c catalog.Card) float64 {
			return float64(c.Batting) / float64(c.Batting+c.Bowling+1)
		}), true
	default:
		return available[rng.IntN(len(available))], true
	}
}

func best(cards []catalog.Card, score func(catalog.Card) float64) catalog.Card {
	out := cards[0]
	for _, c := range cards[1:] {
		if score(c) > score(out) {
			out = c
		}
	}
	return out
}
