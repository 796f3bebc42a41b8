package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command. Each overrides the matching
// setting in the HCL config.
type Globals struct {
	Config    string `short:"c" default:"cardcricket.hcl" env:"CARDCRICKET_CONFIG" help:"Path to HCL configuration file"`
	LogLevel  string `short:"l" env:"CARDCRICKET_LOG_LEVEL" help:"Log level (overrides config)"`
	Cards     string `env:"CARDCRICKET_CARDS" help:"Card catalog YAML file (overrides config)"`
	Ledger    string `env:"CARDCRICKET_LEDGER" help:"Ledger JSONL file (overrides config)"`
	DSN       string `env:"DATABASE_URL" help:"PostgreSQL DSN for the catalog and ledger (overrides config)"`
	OracleURL string `name:"oracle-url" env:"CARDCRICKET_ORACLE_URL" help:"Prediction service base URL (overrides config)"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the match API server"`
	Play     PlayCmd          `cmd:"" help:"Play a match against the computer in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate matches against a scripted human"`
	Adapt    AdaptCmd         `cmd:"" help:"Recompute the counter-strategy table from the ledger"`
	Migrate  MigrateCmd       `cmd:"" help:"Migrate a legacy CSV ledger and seed the SQL catalog"`
}

func main() {
	// A missing .env is normal; real environment variables still apply.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cardcricket"),
		kong.Description("Card cricket matches against an adaptive computer opponent"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
