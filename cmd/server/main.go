// Package main implements the entry point for the scry-words server, which
// runs Arabic vocabulary study sessions over HTTP and enriches the word list
// with a language model in the background.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/platform/database"
	"github.com/phrazzld/scry-words/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, status, version, reset) and exit")
	flag.Parse()

	cfg, logger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	ctx := context.Background()
	if err := run(ctx, cfg, logger, *migrateCmd); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// initializeApp loads configuration and sets up the default logger.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("scry-words server starting",
		"port", cfg.Server.Port,
		"database_driver", cfg.Database.Driver,
		"enrichment_enabled", cfg.LLM.Enabled())
	return cfg, l, nil
}

// run opens the database and either executes migrateCmd or serves until
// interrupted.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrateCmd string) error {
	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return database.Migrate(ctx, db, migrateCmd, logger)
	}

	if err := database.Migrate(ctx, db, database.MigrateUp, logger); err != nil {
		_ = db.Close()
		return err
	}

	app, err := newApplication(ctx, cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
