package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/psalter/cmd/psalter/commands"
	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
	"git.home.luguber.info/inful/psalter/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("psalter"),
		kong.Description("Psalm corpus ingestion and read API."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	if err != nil {
		panic(err)
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		if errors.IsClassified(err) {
			errors.NewCLIErrorAdapter(cli.Verbose, nil).HandleError(err)
		}
		parser.FatalIfErrorf(err)
	}

	adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	if err := kctx.Run(&commands.Global{Logger: slog.Default()}, cli); err != nil {
		adapter.HandleError(err)
	}
}
