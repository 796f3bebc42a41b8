package main

import (
	"context"
	"fmt"

	"github.com/lox/cardcricket/internal/tui"
)

// AdaptCmd runs one adaptation pass over the ledger.
type AdaptCmd struct {
	DryRun bool `help:"Report changes without applying them"`
}

func (c *AdaptCmd) Run(g *Globals) error {
	ctx := context.Background()
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if c.DryRun {
		_, report, err := rt.adapter.Recompute(ctx, rt.table.Snapshot())
		if err != nil {
			return err
		}
		fmt.Println(tui.AdaptReport(report))
		return nil
	}

	report, err := rt.adapter.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println(tui.AdaptReport(report))
	return nil
}
