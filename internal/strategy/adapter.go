package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/cardcricket/internal/catalog"
	"github.com/lox/cardcricket/internal/ledger"
	"github.com/lox/cardcricket/internal/statistics"
)

const minLossesToSwitch = 2

// pairKey identifies a (player profile, counter applied) pair.
type pairKey struct {
	profile  Profile
	strategy Profile
}

// Change describes one remapped profile.
type Change struct {
	Profile Profile
	From    Profile
	To      Profile
	Wins    int
	Losses  int
}

// Report summarises one adaptation pass.
type Report struct {
	Scanned  int // records read
	Counted  int // records attributed to a (profile, strategy) pair
	Skipped  int // records whose player card is not in the catalog
	Changes  []Change
	Previous Mapping
	Next     Mapping
}

// Adapter recomputes the strategy table from the full ledger. Only records
// where the computer bowled with a counter-strategy carry a strategy tag;
// those are the ones tallied.
type Adapter struct {
	store   ledger.Store
	catalog catalog.Catalog
	table   *Table
	logger  *log.Logger
}

// NewAdapter wires an adapter. table is the single table it writes to.
func NewAdapter(store ledger.Store, cat catalog.Catalog, table *Table, logger *log.Logger) *Adapter {
	return &Adapter{
		store:   store,
		catalog: cat,
		table:   table,
		logger:  logger.WithPrefix("adapt"),
	}
}

// Recompute derives a new mapping from current and the ledger. It does not
// touch the live table.
func (a *Adapter) Recompute(ctx context.Context, current Mapping) (Mapping, Report, error) {
	report := Report{Previous: current.Clone()}
	tally := statistics.NewTally[pairKey]()
	profiles := make(map[int]Profile)

	err := a.store.Scan(ctx, func(rec ledger.Record) error {
		report.Scanned++
		if rec.Strategy == "" || rec.BattingTeam != ledger.TeamPlayer {
			return nil
		}
		applied, err := ParseProfile(rec.Strategy)
		if err != nil {
			report.Skipped++
			return nil
		}
		profile, ok := profiles[rec.PlayerCardID]
		if !ok {
			card, err := a.catalog.GetCard(ctx, rec.PlayerCardID)
			if errors.Is(err, catalog.ErrNotFound) {
				report.Skipped++
				return nil
			}
			if err != nil {
				return err
			}
			profile = Classify(card)
			profiles[rec.PlayerCardID] = profile
		}

		key := pairKey{profile: profile, strategy: applied}
		if rec.ComputerWon() {
			tally.Win(key)
		} else {
			tally.Loss(key)
		}
		report.Counted++
		return nil
	})
	if err != nil {
		return nil, report, fmt.Errorf("scan ledger: %w", err)
	}

	next := current.Clone()
	for _, profile := range Profiles {
		mapped, ok := current[profile]
		if !ok {
			mapped = Balanced
		}
		count := tally.Get(pairKey{profile: profile, strategy: mapped})
		if count.Losses <= count.Wins || count.Losses <= minLossesToSwitch {
			next[profile] = mapped
			continue
		}

		best := replacement(tally, profile, mapped)
		next[profile] = best
		report.Changes = append(report.Changes, Change{
			Profile: profile,
			From:    mapped,
			To:      best,
			Wins:    count.Wins,
			Losses:  count.Losses,
		})
	}
	report.Next = next.Clone()
	return next, report, nil
}

// replacement picks the counter with the fewest losses against profile among
// those with at least one recorded outcome. Ties and the case where no
// alternative has been tried fall back to enumeration order.
func replacement(tally *statistics.Tally[pairKey], profile, mapped Profile) Profile {
	var fallback, best Profile
	haveFallback, haveBest, bestLosses := false, false, 0
	for _, candidate := range Profiles {
		if candidate == mapped {
			continue
		}
		if !haveFallback {
			fallback, haveFallback = candidate, true
		}
		count := tally.Get(pairKey{profile: profile, strategy: candidate})
		if count.Total() == 0 {
			continue
		}
		if !haveBest || count.Losses < bestLosses {
			best, bestLosses, haveBest = candidate, count.Losses, true
		}
	}
	if haveBest {
		return best
	}
	if haveFallback {
		return fallback
	}
	return mapped
}

// Run recomputes from the live table and swaps the result in.
func (a *Adapter) Run(ctx context.Context) (Report, error) {
	next, report, err := a.Recompute(ctx, a.table.Snapshot())
	if err != nil {
		a.logger.Error("Adaptation failed", "error", err)
		return report, err
	}
	a.table.Store(next)

	for _, c := range report.Changes {
		a.logger.Info("Counter-strategy replaced",
			"profile", c.Profile,
			"from", c.From,
			"to", c.To,
			"wins", c.Wins,
			"losses", c.Losses)
	}
	a.logger.Debug("Adaptation complete",
		"scanned", report.Scanned,
		"counted", report.Counted,
		"skipped", report.Skipped,
		"changes", len(report.Changes))
	return report, nil
}
