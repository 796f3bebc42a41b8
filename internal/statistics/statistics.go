// Package statistics aggregates match outcomes for simulation reports and
// win/loss tallies for strategy adaptation.
package statistics

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// MatchResult is the outcome of one completed match from the computer's
// point of view.
type MatchResult struct {
	Winner        string // "player", "computer" or "tie"
	PlayerScore   int
	ComputerScore int
	Rounds        int
	Hits          int
	Wickets       int
	Tiers         map[string]int // computer decisions by policy tier
}

// Margin is the computer's score minus the player's score.
func (r MatchResult) Margin() int {
	return r.ComputerScore - r.PlayerScore
}

// Statistics accumulates match results. It is safe for concurrent use.
type Statistics struct {
	mu sync.Mutex

	Matches      int
	ComputerWins int
	PlayerWins   int
	Ties         int
	Rounds       int
	Hits         int
	Wickets      int
	Tiers        map[string]int

	sumMargin  float64
	sumMargin2 float64
	margins    []float64
}

// Add incorporates one match result.
func (s *Statistics) Add(r MatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Matches++
	switch r.Winner {
	case "computer":
		s.ComputerWins++
	case "player":
		s.PlayerWins++
	default:
		s.Ties++
	}
	s.Rounds += r.Rounds
	s.Hits += r.Hits
	s.Wickets += r.Wickets
	if s.Tiers == nil {
		s.Tiers = make(map[string]int)
	}
	for tier, n := range r.Tiers {
		s.Tiers[tier] += n
	}

	m := float64(r.Margin())
	s.sumMargin += m
	s.sumMargin2 += m * m
	s.margins = append(s.margins, m)
}

// ComputerWinRate is the fraction of matches the computer won.
func (s *Statistics) ComputerWinRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Matches == 0 {
		return 0
	}
	return float64(s.ComputerWins) / float64(s.Matches)
}

// MeanMargin returns the mean computer-minus-player run margin.
func (s *Statistics) MeanMargin() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mean()
}

func (s *Statistics) mean() float64 {
	if s.Matches == 0 {
		return 0
	}
	return s.sumMargin / float64(s.Matches)
}

func (s *Statistics) variance() float64 {
	if s.Matches < 2 {
		return 0
	}
	mean := s.mean()
	return (s.sumMargin2 - float64(s.Matches)*mean*mean) / float64(s.Matches-1)
}

// StdDev returns the sample standard deviation of the margin.
func (s *Statistics) StdDev() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return math.Sqrt(s.variance())
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean margin.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mean := s.mean()
	if s.Matches == 0 {
		return 0, 0
	}
	margin := 1.96 * math.Sqrt(s.variance()) / math.Sqrt(float64(s.Matches))
	return mean - margin, mean + margin
}

// MedianMargin returns the median margin.
func (s *Statistics) MedianMargin() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.margins) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.margins))
	copy(sorted, s.margins)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Validate checks the accumulated counts are consistent.
func (s *Statistics) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Matches <= 0 {
		return fmt.Errorf("invalid match count: %d", s.Matches)
	}
	if s.ComputerWins+s.PlayerWins+s.Ties != s.Matches {
		return fmt.Errorf("results (%d+%d+%d) do not add up to %d matches",
			s.ComputerWins, s.PlayerWins, s.Ties, s.Matches)
	}
	if s.Hits+s.Wickets != s.Rounds {
		return fmt.Errorf("hits (%d) and wickets (%d) do not add up to %d rounds", s.Hits, s.Wickets, s.Rounds)
	}
	if len(s.margins) != s.Matches {
		return fmt.Errorf("margin count (%d) does not match matches (%d)", len(s.margins), s.Matches)
	}
	return nil
}
