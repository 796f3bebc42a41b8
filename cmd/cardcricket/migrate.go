package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/lox/cardcricket/internal/catalog"
	"github.com/lox/cardcricket/internal/database"
	"github.com/lox/cardcricket/internal/ledger"
)

// MigrateCmd converts legacy data and prepares the SQL catalog.
type MigrateCmd struct {
	From        string `help:"Legacy CSV ledger to migrate (overrides config legacy_csv)"`
	To          string `help:"JSONL ledger to append to (overrides config ledger path)"`
	SeedCatalog bool   `help:"Create the SQL card table and load the card catalog into it"`
}

func (c *MigrateCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Server.LogLevel)

	from := cfg.Ledger.LegacyCSV
	if c.From != "" {
		from = c.From
	}
	to := cfg.Ledger.Path
	if c.To != "" {
		to = c.To
	}
	if from == "" && !c.SeedCatalog {
		return errors.New("nothing to do: pass --from or --seed-catalog")
	}

	if from != "" {
		report, err := ledger.MigrateCSV(from, to, logger)
		if err != nil {
			return err
		}
		if report.ArchivedAs == "" {
			fmt.Printf("No legacy ledger at %s\n", from)
		} else {
			fmt.Printf("Migrated %d records (%d skipped) into %s; source archived as %s\n",
				report.Migrated, report.Skipped, report.Target, report.ArchivedAs)
		}
	}

	if c.SeedCatalog {
		if cfg.Catalog.DSN == "" {
			return errors.New("--seed-catalog needs a catalog dsn")
		}
		cards := catalog.Default()
		if cfg.Catalog.Path != "" {
			if cards, err = catalog.LoadFile(cfg.Catalog.Path); err != nil {
				return err
			}
		}
		db, err := database.Open(cfg.Catalog.DSN, logger)
		if err != nil {
			return err
		}
		defer database.Close(db)

		ctx := context.Background()
		sql := catalog.NewSQL(db)
		if err := sql.Migrate(ctx); err != nil {
			return err
		}
		list, err := cards.ListCards(ctx)
		if err != nil {
			return err
		}
		if err := sql.Seed(ctx, list); err != nil {
			return err
		}
		fmt.Printf("Seeded %d cards\n", len(list))
	}
	return nil
}
