package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/stagehand/cmd/stagehand/commands"
	"git.home.luguber.info/inful/stagehand/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("stagehand"),
		kong.Description("Content-addressed stage pipeline for documents"),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	global := &commands.Global{Logger: slog.Default()}
	if err := ctx.Run(global, &cli); err != nil {
		slog.Error("Command failed", "error", err)
		ctx.Exit(1)
	}
}
