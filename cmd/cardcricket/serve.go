package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/cardcricket/internal/server"
	"github.com/lox/cardcricket/internal/strategy"
)

// ServeCmd runs the HTTP match API.
type ServeCmd struct {
	Addr string `short:"a" help:"Server address to bind to (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	logger := rt.logger

	addr := rt.cfg.Address()
	if c.Addr != "" {
		addr = c.Addr
	}

	svc, err := rt.newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if _, err := rt.adapter.Run(ctx); err != nil {
		logger.Warn("Initial adaptation failed", "error", err)
	}

	if interval := rt.cfg.AdaptationInterval(); interval > 0 {
		sched, err := strategy.NewScheduler(rt.adapter, interval, logger)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Shutdown(); err != nil {
				logger.Warn("Scheduler shutdown failed", "error", err)
			}
		}()
	}

	api := server.NewAPI(svc, logger)

	logger.Info("Starting cardcricket server",
		"addr", addr,
		"oracle", rt.cfg.Oracle.URL != "",
		"adapt_interval", rt.cfg.AdaptationInterval(),
		"adapt_on_start", rt.cfg.AdaptOnMatchStart())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- api.Listen(addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		return api.Shutdown()
	case err := <-serverErr:
		return err
	}
}
