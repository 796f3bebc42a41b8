package statistics

import (
	"math"
	"sync"
	"testing"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	if stats.MeanMargin() != 0 {
		t.Errorf("Expected mean of 0 for empty stats, got %f", stats.MeanMargin())
	}
	if stats.StdDev() != 0 {
		t.Errorf("Expected stddev of 0 for empty stats, got %f", stats.StdDev())
	}
	if stats.MedianMargin() != 0 {
		t.Errorf("Expected median of 0 for empty stats, got %f", stats.MedianMargin())
	}
	if stats.ComputerWinRate() != 0 {
		t.Errorf("Expected win rate of 0 for empty stats, got %f", stats.ComputerWinRate())
	}
	if err := stats.Validate(); err == nil {
		t.Error("Expected validation error for empty stats")
	}
}

func TestStatistics_Add(t *testing.T) {
	stats := &Statistics{}
	stats.Add(MatchResult{Winner: "computer", ComputerScore: 20, PlayerScore: 10, Rounds: 14, Hits: 9, Wickets: 5, Tiers: map[string]int{"batting": 7, "counter": 7}})
	stats.Add(MatchResult{Winner: "player", ComputerScore: 8, PlayerScore: 12, Rounds: 14, Hits: 6, Wickets: 8, Tiers: map[string]int{"batting": 7, "oracle": 7}})
	stats.Add(MatchResult{Winner: "tie", ComputerScore: 9, PlayerScore: 9, Rounds: 14, Hits: 7, Wickets: 7})

	if stats.Matches != 3 {
		t.Errorf("Expected 3 matches, got %d", stats.Matches)
	}
	if stats.ComputerWins != 1 || stats.PlayerWins != 1 || stats.Ties != 1 {
		t.Errorf("Unexpected results: %d/%d/%d", stats.ComputerWins, stats.PlayerWins, stats.Ties)
	}
	if stats.Tiers["batting"] != 14 {
		t.Errorf("Expected 14 batting-tier decisions, got %d", stats.Tiers["batting"])
	}
	// margins: 10, -4, 0
	if math.Abs(stats.MeanMargin()-2) > 1e-9 {
		t.Errorf("Expected mean margin 2, got %f", stats.MeanMargin())
	}
	if stats.MedianMargin() != 0 {
		t.Errorf("Expected median margin 0, got %f", stats.MedianMargin())
	}
	low, high := stats.ConfidenceInterval95()
	if low >= 2 || high <= 2 {
		t.Errorf("Confidence interval [%f, %f] should contain the mean", low, high)
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}

func TestStatistics_ValidateRoundMismatch(t *testing.T) {
	stats := &Statistics{}
	stats.Add(MatchResult{Winner: "computer", Rounds: 14, Hits: 3, Wickets: 3})
	if err := stats.Validate(); err == nil {
		t.Error("Expected error when hits and wickets do not cover every round")
	}
}

func TestTally(t *testing.T) {
	tally := NewTally[string]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); tally.Win("a") }()
		go func() { defer wg.Done(); tally.Loss("a") }()
	}
	wg.Wait()
	tally.Loss("b")

	if got := tally.Get("a"); got.Wins != 50 || got.Losses != 50 || got.Total() != 100 {
		t.Errorf("Unexpected count for a: %+v", got)
	}
	if got := tally.Get("missing"); got.Total() != 0 {
		t.Errorf("Expected zero count for unseen key, got %+v", got)
	}
	snap := tally.Snapshot()
	if len(snap) != 2 || snap["b"].Losses != 1 {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}
}
