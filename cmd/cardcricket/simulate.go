package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/lox/cardcricket/internal/ledger"
	"github.com/lox/cardcricket/internal/simulator"
	"github.com/lox/cardcricket/internal/strategy"
	"github.com/lox/cardcricket/internal/tui"
)

// SimulateCmd plays many matches against a scripted human.
type SimulateCmd struct {
	Matches     int           `short:"n" default:"1000" help:"Number of matches to simulate"`
	Seed        int64         `default:"42" help:"Base RNG seed"`
	Concurrency int           `short:"j" default:"8" help:"Matches to play in parallel"`
	Human       string        `default:"random" enum:"random,greedy,slugger" help:"Scripted human (random, greedy, slugger)"`
	AdaptEvery  int           `default:"0" help:"Recompute the strategy table after every N matches (0 disables)"`
	Timeout     time.Duration `default:"10s" help:"Per-match timeout"`
	Record      bool          `help:"Append simulated rounds to the configured ledger instead of a scratch one"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	human, err := simulator.ParseHuman(c.Human)
	if err != nil {
		return err
	}

	store := rt.ledger
	adapter := rt.adapter
	if !c.Record {
		scratch := ledger.NewMemoryStore()
		store = scratch
		adapter = strategy.NewAdapter(scratch, rt.catalog, rt.table, rt.logger)
	}

	sim := simulator.New(simulator.Config{
		Matches:     c.Matches,
		Seed:        c.Seed,
		Concurrency: c.Concurrency,
		Human:       human,
		AdaptEvery:  c.AdaptEvery,
		Timeout:     c.Timeout,
		Logger:      rt.logger,
	}, simulator.Deps{
		Catalog:  rt.catalog,
		Opponent: rt.policy,
		Ledger:   store,
		Adapter:  adapter,
	})

	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	rt.logger.Info("Simulation complete", "matches", stats.Matches, "duration", time.Since(start))

	fmt.Println(tui.Statistics(stats, c.Human))
	fmt.Println(tui.Mapping(rt.table.Snapshot()))
	return nil
}
