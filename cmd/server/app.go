package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/HillyAttic/cadence-api/internal/config"
	"github.com/HillyAttic/cadence-api/internal/events"
	"github.com/HillyAttic/cadence-api/internal/platform/postgres"
	"github.com/HillyAttic/cadence-api/internal/service"
	"github.com/HillyAttic/cadence-api/internal/service/auth"
	"github.com/HillyAttic/cadence-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	taskStore       store.TaskStore
	completionStore store.CompletionStore

	// Service interfaces
	jwtService  auth.JWTService
	taskService service.RecurringTaskService

	// Event system
	eventEmitter events.EventEmitter
}

// newApplication creates a new application instance with all
// dependencies initialized. It accepts core dependencies like
// configuration, logger and database connection that must be
// established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized")

	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.completionStore = postgres.NewPostgresCompletionStore(db, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	registerEventLogger(app.eventEmitter, logger)

	app.taskService, err = service.NewRecurringTaskService(
		app.taskStore,
		app.completionStore,
		store.NewDBTransactor(db),
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recurring task service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}

// eventLogHandler writes an audit line for every task lifecycle event.
// Notification delivery and roster aggregation subscribe the same way
// in the services that consume this engine.
type eventLogHandler struct {
	logger *slog.Logger
}

// HandleEvent implements events.EventHandler.
func (h *eventLogHandler) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	h.logger.Info("task event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.String("task_id", event.TaskID.String()))
	return nil
}

// registerEventLogger attaches the audit log handler to the emitter.
func registerEventLogger(emitter events.EventEmitter, logger *slog.Logger) {
	if inMemory, ok := emitter.(*events.InMemoryEventEmitter); ok {
		inMemory.RegisterHandler(&eventLogHandler{
			logger: logger.With(slog.String("component", "event_log")),
		})
	}
}
