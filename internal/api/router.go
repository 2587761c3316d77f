package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/card-ledger/internal/api/handlers"
	"github.com/baharkarakas/card-ledger/internal/api/httpx"
	"github.com/baharkarakas/card-ledger/internal/config"
	"github.com/baharkarakas/card-ledger/internal/metrics"
	"github.com/baharkarakas/card-ledger/internal/middleware"
	"github.com/baharkarakas/card-ledger/internal/services"
)

func NewRouter(cfg config.Config, ls *services.LedgerService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics)
	// CORS answers preflights itself and decorates 429s, so it sits in front of the limiter
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(cfg.RateRPS))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	lh := handlers.NewLedgerHandler(ls, cfg.MaxBatchSize)
	ledgerRoutes := func(r chi.Router) {
		r.Post("/events", lh.AddEvent)
		r.Post("/events/batch", lh.AddEvents)
		r.Get("/events", lh.Events)
		r.Get("/summary", lh.Summary)
		r.Post("/reset", lh.Reset)
		r.Get("/audit", lh.Audit)
	}

	// the dashboard calls the root paths; /api/v1 is the versioned mount
	ledgerRoutes(r)
	r.Route("/api/v1", ledgerRoutes)

	return r
}
