// Package main implements the entry point for the Cadence API server,
// which manages recurring compliance tasks and tracks per-client
// completion across fiscal-year periods.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/HillyAttic/cadence-api/internal/config"
	"github.com/HillyAttic/cadence-api/internal/platform/logger"
)

// main initializes configuration, logging, the database connection and
// the dependency graph, then starts the HTTP server.
func main() {
	ctx := context.Background()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(ctx, db, appLogger); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("auto_migrate", cfg.Database.AutoMigrate))

	return cfg, appLogger, nil
}
