package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/psalter/internal/config"
	"git.home.luguber.info/inful/psalter/internal/retry"
	"git.home.luguber.info/inful/psalter/internal/store"
)

// SchemaCmd implements the 'schema' command.
type SchemaCmd struct{}

func (s *SchemaCmd) Run(g *Global, root *CLI) error {
	st, err := connectAndMigrate(context.Background(), root.Loaded(), g.Logger)
	if err != nil {
		return err
	}
	return st.Close()
}

// connectAndMigrate waits for storage according to the retry policy, then
// ensures the schema and seed credential. It is the only storage path that retries.
func connectAndMigrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.SQLiteStore, error) {
	st, err := store.Connect(ctx, cfg.Storage.Path, retry.FromConfig(cfg.Retry), logger)
	if err != nil {
		return nil, err
	}

	seed, inserted, err := st.EnsureSchema(ctx, store.Seed{
		Username: cfg.Auth.SeedUsername,
		APIKey:   cfg.Auth.SeedAPIKey,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if inserted && cfg.Auth.SeedAPIKey == "" {
		// Generated keys are only shown once.
		logger.Warn("Generated API key for seed user; store it now",
			slog.String("username", seed.Username),
			slog.String("api_key", seed.APIKey))
	} else {
		logger.Info("Schema ready", slog.String("seed_username", seed.Username), slog.Bool("seeded", inserted))
	}
	return st, nil
}
