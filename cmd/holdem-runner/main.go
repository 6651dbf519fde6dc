package main

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/lox/holdem-runner/internal/strategy"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Run     RunCmd           `cmd:"" default:"withargs" help:"Connect to a poker server and play"`
	Results ResultsCmd       `cmd:"" help:"Inspect or clear the result file"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem-runner"),
		kong.Description("Client runner for a JSON-line Texas hold'em server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":    version,
			"strategies": strings.Join(strategy.Names(), ", "),
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
