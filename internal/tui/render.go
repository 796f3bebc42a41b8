package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/cardcricket/internal/catalog"
	"github.com/lox/cardcricket/internal/game"
	"github.com/lox/cardcricket/internal/statistics"
	"github.com/lox/cardcricket/internal/strategy"
)

func sideName(s game.Side) string {
	if s == game.Player {
		return "You"
	}
	return "Computer"
}

// Scoreboard renders the score box for a match state.
func Scoreboard(s game.MatchState) string {
	header := HeaderStyle.Render(fmt.Sprintf("Innings %d  Round %d/%d", s.Innings, s.Round, game.RoundsPerInnings))

	var lines []string
	for _, side := range []game.Side{s.BattingFirst, s.BattingFirst.Opponent()} {
		marker := "  "
		if side == s.BattingTeam && s.Phase != game.Complete {
			marker = "> "
		}
		lines = append(lines, marker+ScoreStyle.Render(
			fmt.Sprintf("%-9s %3d/%d", sideName(side), s.Scores[side], s.Wickets[side])))
	}
	if s.Target != nil {
		lines = append(lines, InfoStyle.Render(fmt.Sprintf("Target: %d", *s.Target)))
	}

	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(lines, "\n")))
}

// Round describes the last resolved round.
func Round(r *game.RoundSummary) string {
	if r == nil {
		return ""
	}
	who := sideName(r.BattingTeam)
	line := fmt.Sprintf("%s batted %s (%d) against %s (%d): ",
		who, r.Batter.Name, r.Batter.Batting, r.Bowler.Name, r.Bowler.Bowling)
	if r.Outcome == game.Hit {
		return line + HitStyle.Render(fmt.Sprintf("HIT +%d", r.Runs))
	}
	return line + WicketStyle.Render("WICKET")
}

// Cards renders a card list as an aligned table.
func Cards(cards []catalog.Card) string {
	var b strings.Builder
	b.WriteString(InfoStyle.Render(fmt.Sprintf("%4s  %-16s %4s %4s %4s", "id", "name", "bat", "bowl", "runs")))
	for _, c := range cards {
		fmt.Fprintf(&b, "\n%4d  %-16s %4d %4d %4d", c.ID, c.Name, c.Batting, c.Bowling, c.Runs)
	}
	return b.String()
}

// Result renders the final line of a match.
func Result(s game.MatchState) string {
	if s.Result == nil {
		return ""
	}
	switch s.Result.Winner {
	case game.WinnerPlayer:
		return HitStyle.Render(s.Message)
	case game.WinnerComputer:
		return WicketStyle.Render(s.Message)
	default:
		return WarningStyle.Render(s.Message)
	}
}

// Statistics renders a simulation summary.
func Statistics(stats *statistics.Statistics, human string) string {
	low, high := stats.ConfidenceInterval95()
	lines := []string{
		HeaderStyle.Render(fmt.Sprintf("%d matches vs %s human", stats.Matches, human)),
		fmt.Sprintf("Computer wins: %d (%.1f%%)", stats.ComputerWins, 100*stats.ComputerWinRate()),
		fmt.Sprintf("Player wins:   %d", stats.PlayerWins),
		fmt.Sprintf("Ties:          %d", stats.Ties),
		fmt.Sprintf("Margin:        %.2f ± %.2f (95%% CI %.2f..%.2f, median %.1f)",
			stats.MeanMargin(), stats.StdDev(), low, high, stats.MedianMargin()),
		fmt.Sprintf("Rounds:        %d (%d hits, %d wickets)", stats.Rounds, stats.Hits, stats.Wickets),
	}

	tiers := make([]string, 0, len(stats.Tiers))
	for tier := range stats.Tiers {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)
	for _, tier := range tiers {
		lines = append(lines, InfoStyle.Render(fmt.Sprintf("  %-8s %d", tier, stats.Tiers[tier])))
	}
	return BoxStyle.Render(strings.Join(lines, "\n"))
}

// Mapping renders a counter-strategy table.
func Mapping(m strategy.Mapping) string {
	var b strings.Builder
	for i, p := range strategy.Profiles {
		if i > 0 {
			b.WriteByte('\n')
		}
		counter, ok := m[p]
		if !ok {
			counter = strategy.Balanced
		}
		fmt.Fprintf(&b, "%-13s -> %s", p, counter)
	}
	return b.String()
}

// AdaptReport renders the outcome of one adaptation pass.
func AdaptReport(r strategy.Report) string {
	lines := []string{
		fmt.Sprintf("Scanned %d records, counted %d, skipped %d", r.Scanned, r.Counted, r.Skipped),
	}
	if len(r.Changes) == 0 {
		lines = append(lines, InfoStyle.Render("No counter-strategy changes"))
	}
	for _, c := range r.Changes {
		lines = append(lines, WarningStyle.Render(fmt.Sprintf("%s: %s -> %s (%dW/%dL)",
			c.Profile, c.From, c.To, c.Wins, c.Losses)))
	}
	lines = append(lines, Mapping(r.Next))
	return strings.Join(lines, "\n")
}
