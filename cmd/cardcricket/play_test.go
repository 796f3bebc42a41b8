package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cardcricket/internal/bot"
	"github.com/lox/cardcricket/internal/catalog"
	"github.com/lox/cardcricket/internal/game"
	"github.com/lox/cardcricket/internal/ledger"
	"github.com/lox/cardcricket/internal/server"
)

func TestPlayMatchScripted(t *testing.T) {
	svc, err := server.NewService(server.Deps{
		Catalog:  catalog.Default(),
		Ledger:   ledger.NewMemoryStore(),
		Opponent: bot.NewPolicy(bot.Config{}),
		Logger:   log.NewWithOptions(io.Discard, log.Options{}),
	})
	require.NoError(t, err)
	defer svc.Close()

	// A bad entry and a repeat are re-prompted, then cards 1-7 twice.
	input := "x\n1\n1\n2\n3\n4\n5\n6\n7\n1\n2\n3\n4\n5\n6\n7\n"
	var out bytes.Buffer
	p := &prompter{in: bufio.NewScanner(strings.NewReader(input)), out: &out}

	require.NoError(t, playMatch(context.Background(), svc, game.Player, p))
	assert.Contains(t, out.String(), "Enter a card id")
	assert.Contains(t, out.String(), "already used")
	assert.Contains(t, out.String(), "Match over.")
	assert.Equal(t, 0, svc.Live())
}

func TestPlayMatchEndsOnEOF(t *testing.T) {
	svc, err := server.NewService(server.Deps{
		Catalog:  catalog.Default(),
		Opponent: bot.NewPolicy(bot.Config{}),
	})
	require.NoError(t, err)
	defer svc.Close()

	p := &prompter{in: bufio.NewScanner(strings.NewReader("1\n")), out: io.Discard}
	err = playMatch(context.Background(), svc, game.Computer, p)
	require.ErrorIs(t, err, io.EOF)
}
