package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/harborline/freightaudit/internal/anomaly"
	"github.com/harborline/freightaudit/internal/logger"
	"github.com/harborline/freightaudit/internal/match"
	"github.com/harborline/freightaudit/internal/reconcile"
	"github.com/harborline/freightaudit/internal/review"
	"github.com/harborline/freightaudit/internal/store"
)

type application struct {
	config     config
	store      *store.Storage
	logger     *logger.Logger
	matcher    *match.Service
	reconciler *reconcile.Engine
	flagger    *anomaly.Flagger
	queue      *review.Queue
}

type config struct {
	addr string
	db   dbConfig
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		r.Route("/matching", func(r chi.Router) {
			r.Post("/three-way", app.handleThreeWayMatch)
		})

		r.Route("/reconciliation", func(r chi.Router) {
			r.Post("/runs", app.handleCreateReconciliationRun)
			r.Get("/runs", app.handleListReconciliationRuns)
			r.Get("/runs/{id}", app.handleGetReconciliationRun)
		})

		r.Route("/anomalies", func(r chi.Router) {
			r.Post("/scan", app.handleScanAnomalies)
			r.Get("/", app.handleListAnomalies)
			r.Post("/{id}/resolve", app.handleResolveAnomaly)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", app.handleListReviewItems)
			r.Get("/stats", app.handleReviewQueueStats)
			r.Get("/{id}", app.handleGetReviewItem)
			r.Post("/{id}/action", app.handleReviewAction)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	app.logger.Info("Main", "Server started on %s", app.config.addr)
	return srv.ListenAndServe()
}
