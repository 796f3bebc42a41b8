// Package server hosts matches behind a request/response API.
//
// A Service owns the registry of live matches and the collaborators they
// share: the card catalog, the round ledger, the opponent policy and the
// strategy table. API exposes a Service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/singleflight"

	"github.com/lox/cardcricket/internal/catalog"
	"github.com/lox/cardcricket/internal/game"
	"github.com/lox/cardcricket/internal/ledger"
	"github.com/lox/cardcricket/internal/matchid"
	"github.com/lox/cardcricket/internal/randutil"
	"github.com/lox/cardcricket/internal/strategy"
)

// ErrMatchNotFound means no live match has the given id.
var ErrMatchNotFound = errors.New("server: match not found")

// adaptationTimeout bounds a background adaptation pass.
const adaptationTimeout = time.Minute

// DefaultRetainCompleted is how long a finished match stays readable
// before it is evicted from the registry.
const DefaultRetainCompleted = 5 * time.Minute

// Deps are the collaborators shared by every match a Service hosts.
type Deps struct {
	Catalog  catalog.Catalog
	Ledger   ledger.Store
	Opponent game.Opponent
	Table    *strategy.Table
	Adapter  strategy.Runner // optional; enables adaptation on match start
	IDs      *matchid.Generator
	RNG      *randutil.Locked
	Clock    quartz.Clock
	Logger   *log.Logger

	// RetainCompleted delays eviction of completed matches.
	RetainCompleted time.Duration
}

// Service manages live matches. It is safe for concurrent use.
type Service struct {
	mu      sync.RWMutex
	matches map[string]*game.Match
	evict   map[string]*quartz.Timer

	deps   Deps
	flight singleflight.Group
	wg     sync.WaitGroup
	logger *log.Logger
}

// NewService creates a service with no live matches.
func NewService(deps Deps) (*Service, error) {
	if deps.Catalog == nil || deps.Opponent == nil {
		return nil, errors.New("server: catalog and opponent are required")
	}
	if deps.Table == nil {
		deps.Table = strategy.NewTable(nil)
	}
	if deps.IDs == nil {
		deps.IDs = matchid.NewGenerator(nil)
	}
	if deps.RNG == nil {
		deps.RNG = randutil.NewLocked(nil)
	}
	if deps.Clock == nil {
		deps.Clock = quartz.NewReal()
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.RetainCompleted <= 0 {
		deps.RetainCompleted = DefaultRetainCompleted
	}
	return &Service{
		matches: make(map[string]*game.Match),
		evict:   make(map[string]*quartz.Timer),
		deps:    deps,
		logger:  deps.Logger.WithPrefix("service"),
	}, nil
}

// StartMatch registers a new match and returns its initial state.
func (s *Service) StartMatch(ctx context.Context, battingFirst game.Side) (game.MatchState, error) {
	id, err := s.deps.IDs.Next()
	if err != nil {
		return game.MatchState{}, fmt.Errorf("new match id: %w", err)
	}

	m, err := game.NewMatch(id, battingFirst, game.Config{
		Catalog:  s.deps.Catalog,
		Opponent: s.deps.Opponent,
		Ledger:   s.deps.Ledger,
		Clock:    s.deps.Clock,
		Logger:   s.deps.Logger,
	})
	if err != nil {
		return game.MatchState{}, err
	}

	s.mu.Lock()
	s.matches[id] = m
	live := len(s.matches)
	s.mu.Unlock()

	s.logger.Info("Match started", "match", id, "batting_first", battingFirst, "live", live)
	s.triggerAdaptation()
	return m.GetState(), nil
}

// triggerAdaptation recomputes the strategy table in the background.
// Concurrent triggers share one pass.
func (s *Service) triggerAdaptation() {
	if s.deps.Adapter == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, err, shared := s.flight.Do("adapt", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), adaptationTimeout)
			defer cancel()
			return s.deps.Adapter.Run(ctx)
		})
		if err != nil {
			s.logger.Warn("Adaptation on match start failed", "error", err, "shared", shared)
		}
	}()
}

func (s *Service) match(id string) (*game.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, ErrMatchNotFound)
	}
	return m, nil
}

// ResolveRound plays one round of a live match.
func (s *Service) ResolveRound(ctx context.Context, id string, cardID int) (game.MatchState, error) {
	m, err := s.match(id)
	if err != nil {
		return game.MatchState{}, err
	}
	state, err := m.ResolveRound(ctx, cardID)
	if err == nil && state.Phase == game.Complete {
		s.scheduleEviction(id, m)
	}
	return state, err
}

// scheduleEviction removes a completed match once the retention period
// has passed on the service clock.
func (s *Service) scheduleEviction(id string, m *game.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.evict[id]; ok {
		return
	}
	s.evict[id] = s.deps.Clock.AfterFunc(s.deps.RetainCompleted, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.evict, id)
		if s.matches[id] != m {
			return
		}
		delete(s.matches, id)
		s.logger.Debug("Completed match evicted", "match", id)
	})
}

// GetState returns the live state of a match.
func (s *Service) GetState(id string) (game.MatchState, error) {
	m, err := s.match(id)
	if err != nil {
		return game.MatchState{}, err
	}
	return m.GetState(), nil
}

// Available returns the cards the human may still play in a match.
func (s *Service) Available(ctx context.Context, id string) ([]catalog.Card, error) {
	m, err := s.match(id)
	if err != nil {
		return nil, err
	}
	return m.Available(ctx, game.Player)
}

// EndMatch removes a match from the registry. Its ledger records remain.
func (s *Service) EndMatch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[id]; !ok {
		return fmt.Errorf("match %s: %w", id, ErrMatchNotFound)
	}
	delete(s.matches, id)
	if timer, ok := s.evict[id]; ok {
		timer.Stop()
		delete(s.evict, id)
	}
	s.logger.Info("Match ended", "match", id)
	return nil
}

// Toss flips the pre-match coin.
func (s *Service) Toss(call game.Coin) game.TossResult {
	return game.Toss(s.deps.RNG, call)
}

// Cards lists the catalog.
func (s *Service) Cards(ctx context.Context) ([]catalog.Card, error) {
	return s.deps.Catalog.ListCards(ctx)
}

// Strategy returns the current counter-strategy mapping.
func (s *Service) Strategy() strategy.Mapping {
	return s.deps.Table.Snapshot()
}

// History returns the newest limit ledger records.
func (s *Service) History(ctx context.Context, limit int) ([]ledger.Record, error) {
	if s.deps.Ledger == nil {
		return []ledger.Record{}, nil
	}
	return s.deps.Ledger.Recent(ctx, limit)
}

// Live returns the number of registered matches.
func (s *Service) Live() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// Close cancels pending evictions and waits for background adaptation to
// finish.
func (s *Service) Close() {
	s.mu.Lock()
	for id, timer := range s.evict {
		timer.Stop()
		delete(s.evict, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
