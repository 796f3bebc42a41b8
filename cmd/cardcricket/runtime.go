package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"gorm.io/gorm"

	"github.com/lox/cardcricket/internal/bot"
	"github.com/lox/cardcricket/internal/catalog"
	"github.com/lox/cardcricket/internal/database"
	"github.com/lox/cardcricket/internal/ledger"
	"github.com/lox/cardcricket/internal/oracle"
	"github.com/lox/cardcricket/internal/server"
	"github.com/lox/cardcricket/internal/strategy"
)

// newLogger builds the process logger at the given level.
func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// loadConfig reads the HCL file and applies flag and environment overrides.
func (g *Globals) loadConfig() (*server.Config, error) {
	cfg, err := server.LoadConfig(g.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if g.LogLevel != "" {
		cfg.Server.LogLevel = g.LogLevel
	}
	if g.Cards != "" {
		cfg.Catalog.Path = g.Cards
	}
	if g.Ledger != "" {
		cfg.Ledger.Path = g.Ledger
		cfg.Ledger.DSN = ""
	}
	if g.DSN != "" {
		cfg.Catalog.DSN = g.DSN
		cfg.Ledger.DSN = g.DSN
	}
	if g.OracleURL != "" {
		cfg.Oracle.URL = g.OracleURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runtime holds the long-lived collaborators every command wires together.
type runtime struct {
	cfg     *server.Config
	logger  *log.Logger
	dbs     map[string]*gorm.DB
	catalog catalog.Catalog
	ledger  ledger.Store
	table   *strategy.Table
	adapter *strategy.Adapter
	policy  *bot.Policy
}

func (g *Globals) open(ctx context.Context) (*runtime, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	rt := &runtime{
		cfg:    cfg,
		logger: newLogger(cfg.Server.LogLevel),
		dbs:    make(map[string]*gorm.DB),
		table:  strategy.NewTable(nil),
	}

	if err := rt.openCatalog(); err != nil {
		rt.Close()
		return nil, err
	}
	if err := rt.openLedger(ctx); err != nil {
		rt.Close()
		return nil, err
	}

	rt.adapter = strategy.NewAdapter(rt.ledger, rt.catalog, rt.table, rt.logger)
	rt.policy = bot.NewPolicy(bot.Config{
		Table:   rt.table,
		Oracle:  rt.newOracle(),
		Clock:   quartz.NewReal(),
		Timeout: cfg.OracleTimeout(),
		Logger:  rt.logger,
	})
	return rt, nil
}

func (rt *runtime) db(dsn string) (*gorm.DB, error) {
	if db, ok := rt.dbs[dsn]; ok {
		return db, nil
	}
	db, err := database.Open(dsn, rt.logger)
	if err != nil {
		return nil, err
	}
	rt.dbs[dsn] = db
	return db, nil
}

func (rt *runtime) openCatalog() error {
	c := rt.cfg.Catalog
	switch {
	case c.DSN != "":
		db, err := rt.db(c.DSN)
		if err != nil {
			return err
		}
		cached, err := catalog.NewCached(catalog.NewSQL(db), c.CacheSize)
		if err != nil {
			return err
		}
		rt.catalog = cached
		rt.logger.Info("Using SQL card catalog", "cache_size", c.CacheSize)
	case c.Path != "":
		cards, err := catalog.LoadFile(c.Path)
		if err != nil {
			return err
		}
		rt.catalog = cards
		rt.logger.Info("Loaded card catalog", "path", c.Path, "cards", cards.Len())
	default:
		rt.catalog = catalog.Default()
		rt.logger.Debug("Using built-in card catalog")
	}
	return nil
}

func (rt *runtime) openLedger(ctx context.Context) error {
	l := rt.cfg.Ledger
	if l.DSN != "" {
		db, err := rt.db(l.DSN)
		if err != nil {
			return err
		}
		store, err := ledger.NewSQLStore(ctx, db)
		if err != nil {
			return err
		}
		rt.ledger = store
		return nil
	}

	if l.LegacyCSV != "" {
		if _, err := ledger.MigrateCSV(l.LegacyCSV, l.Path, rt.logger); err != nil {
			return err
		}
	}
	store, err := ledger.OpenFile(l.Path, rt.logger)
	if err != nil {
		return err
	}
	rt.ledger = store
	return nil
}

func (rt *runtime) newOracle() oracle.Oracle {
	o := rt.cfg.Oracle
	if o.URL == "" {
		return oracle.Nop{}
	}
	rt.logger.Info("Using prediction service", "url", o.URL, "timeout", rt.cfg.OracleTimeout())
	client := &http.Client{Timeout: 4 * rt.cfg.OracleTimeout()}
	return oracle.NewLimited(oracle.NewHTTP(o.URL, client), o.RatePerSecond, o.Burst)
}

func (rt *runtime) newService() (*server.Service, error) {
	deps := server.Deps{
		Catalog:  rt.catalog,
		Ledger:   rt.ledger,
		Opponent: rt.policy,
		Table:    rt.table,
		Logger:   rt.logger,

		RetainCompleted: rt.cfg.RetainCompleted(),
	}
	if rt.cfg.AdaptOnMatchStart() {
		deps.Adapter = rt.adapter
	}
	return server.NewService(deps)
}

// Close releases the ledger and database connections.
func (rt *runtime) Close() error {
	var errs []error
	if rt.ledger != nil {
		errs = append(errs, rt.ledger.Close())
	}
	for _, db := range rt.dbs {
		errs = append(errs, database.Close(db))
	}
	return errors.Join(errs...)
}
