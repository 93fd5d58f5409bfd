package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Afrothundr/broccoli-scheduler/internal/api"
	apiMiddleware "github.com/Afrothundr/broccoli-scheduler/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	jobsHandler := api.NewJobsHandler(app.dispatcher, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiMiddleware.APIKeyAuth(app.config.Auth.APIKey, app.logger))

		r.Post("/jobs/items/update", jobsHandler.UpdateItems)
		r.Post("/jobs/receipts/process", jobsHandler.ProcessReceipt)
		r.Post("/jobs/reports/daily", jobsHandler.DailyReport)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
