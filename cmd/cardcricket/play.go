package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lox/cardcricket/internal/game"
	"github.com/lox/cardcricket/internal/server"
	"github.com/lox/cardcricket/internal/tui"
)

// PlayCmd plays one interactive match in the terminal.
type PlayCmd struct {
	Bat   bool `help:"Skip the toss and bat first" xor:"order"`
	Bowl  bool `help:"Skip the toss and bowl first" xor:"order"`
	Quiet bool `help:"Only log warnings and errors"`
}

func (c *PlayCmd) Run(g *Globals) error {
	if c.Quiet {
		g.LogLevel = "warn"
	}
	ctx := context.Background()
	rt, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	svc, err := rt.newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	p := &prompter{in: bufio.NewScanner(os.Stdin), out: os.Stdout}
	first, err := c.battingOrder(svc, p)
	if err != nil {
		return err
	}
	return playMatch(ctx, svc, first, p)
}

func (c *PlayCmd) battingOrder(svc *server.Service, p *prompter) (game.Side, error) {
	switch {
	case c.Bat:
		return game.Player, nil
	case c.Bowl:
		return game.Computer, nil
	}

	var call game.Coin
	for {
		answer, err := p.ask("Call the toss (heads/tails): ")
		if err != nil {
			return 0, err
		}
		if call, err = game.ParseCoin(answer); err == nil {
			break
		}
		p.println(tui.ErrorStyle.Render(err.Error()))
	}

	res := svc.Toss(call)
	p.println(fmt.Sprintf("The coin landed %s.", res.Landed))
	if !res.Won {
		if res.BattingFirst == game.Player {
			p.println("You lost the toss. The computer sends you in to bat.")
		} else {
			p.println("You lost the toss. The computer bats first.")
		}
		return res.BattingFirst, nil
	}

	for {
		answer, err := p.ask("You won the toss! bat or bowl? ")
		if err != nil {
			return 0, err
		}
		switch answer {
		case "bat":
			return game.Player, nil
		case "bowl":
			return game.Computer, nil
		}
	}
}

func playMatch(ctx context.Context, svc *server.Service, first game.Side, p *prompter) error {
	state, err := svc.StartMatch(ctx, first)
	if err != nil {
		return err
	}
	defer svc.EndMatch(state.ID)

	for state.Phase != game.Complete {
		p.println(tui.Scoreboard(state))
		cards, err := svc.Available(ctx, state.ID)
		if err != nil {
			return err
		}
		p.println(tui.Cards(cards))

		answer, err := p.ask(tui.PromptStyle.Render(state.SelectionLabel+": "))
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(answer)
		if err != nil {
			p.println(tui.ErrorStyle.Render("Enter a card id"))
			continue
		}

		next, err := svc.ResolveRound(ctx, state.ID, id)
		switch {
		case errors.Is(err, game.ErrUnknownCard), errors.Is(err, game.ErrAlreadyUsed):
			p.println(tui.ErrorStyle.Render(err.Error()))
			continue
		case err != nil:
			return err
		}

		p.println(tui.Round(next.LastRound))
		p.println(next.Message)
		for _, w := range next.Warnings {
			p.println(tui.WarningStyle.Render(w))
		}
		state = next
	}

	p.println(tui.Scoreboard(state))
	p.println(tui.Result(state))
	return nil
}

// prompter reads answers line by line.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.ToLower(strings.TrimSpace(p.in.Text())), nil
}

func (p *prompter) println(s string) {
	if s != "" {
		fmt.Fprintln(p.out, s)
	}
}
