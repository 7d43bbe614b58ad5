package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/HillyAttic/cadence-api/internal/api"
	apiMiddleware "github.com/HillyAttic/cadence-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	completionHandler := api.NewCompletionHandler(app.taskService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// All task endpoints require an authenticated viewer.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Task lifecycle endpoints
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks", taskHandler.List)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Patch("/tasks/{id}", taskHandler.Update)
			r.Post("/tasks/{id}/pause", taskHandler.Pause)
			r.Post("/tasks/{id}/resume", taskHandler.Resume)
			r.Delete("/tasks/{id}", taskHandler.Delete)

			// Completion tracking endpoints
			r.Get("/tasks/{id}/completions", completionHandler.GetCompletions)
			r.Put("/tasks/{id}/completions", completionHandler.BulkSaveCompletions)
			r.Get("/tasks/{id}/progress", completionHandler.GetProgress)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
