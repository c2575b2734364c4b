package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/psalter/internal/config"
	"git.home.luguber.info/inful/psalter/internal/observability"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"psalter.yaml" env:"PSALTER_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Ingest IngestCmd `cmd:"" help:"Extract the psalm pages and load them into storage"`
	Schema SchemaCmd `cmd:"" help:"Create the storage schema and seed the API credential"`
	Serve  ServeCmd  `cmd:"" help:"Serve the read API"`
	Audit  AuditCmd  `cmd:"" help:"Check stored stanza counts against stanza rows"`

	loaded *config.Config `kong:"-"`
}

// AfterApply runs after flag parsing: load configuration once and install the
// configured logger as the default.
func (c *CLI) AfterApply() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	c.loaded = cfg
	slog.SetDefault(observability.WrapLogger(cfg.Logging.NewLogger(os.Stderr, c.Verbose)))
	return nil
}

// Loaded returns the configuration read in AfterApply.
func (c *CLI) Loaded() *config.Config {
	if c.loaded == nil {
		return config.Default()
	}
	return c.loaded
}
