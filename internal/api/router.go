package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/relgraph/internal/api/handlers"
	mw "github.com/Harshitk-cp/relgraph/internal/api/middleware"
	"github.com/Harshitk-cp/relgraph/internal/buildconfig"
	"github.com/Harshitk-cp/relgraph/internal/config"
	"github.com/Harshitk-cp/relgraph/internal/domain"
	"github.com/Harshitk-cp/relgraph/internal/service"
	"github.com/Harshitk-cp/relgraph/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router       *chi.Mux
	Knowledge    *service.KnowledgeService
	Auditor      *service.AuditorService
	store        domain.EdgeStore
	metrics      *mw.MetricsCollector
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp wires the HTTP surface over st. Background work started by the
// router, such as rate limiter cleanup, ends when ctx is done.
func NewApp(ctx context.Context, st domain.EdgeStore, ks *service.KnowledgeService, logger *zap.Logger) *App {
	auditor := service.NewAuditorService(ks, logger.Named("auditor"))
	if interval := config.AuditInterval(); interval > 0 {
		auditor.SetInterval(interval)
	}

	relationshipHandler := handlers.NewRelationshipHandler(ks, logger.Named("handlers"))

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Knowledge: ks,
		Auditor:   auditor,
		store:     st,
		startTime: time.Now(),
	}

	app.metrics = mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(ctx, config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler(st))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1/users/{userID}", func(r chi.Router) {
		r.Route("/relationships", func(r chi.Router) {
			r.Post("/", relationshipHandler.Ingest)
			r.Get("/", relationshipHandler.List)
			r.Delete("/", relationshipHandler.Reset)
			r.Get("/infer", relationshipHandler.Infer)
		})
		r.Get("/entities/{entity}/relationships", relationshipHandler.EntityRelations)
		r.Get("/audit", relationshipHandler.Audit)
	})

	return app
}

func healthHandler(st domain.EdgeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := st.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		resp := map[string]string{"status": "ok"}
		for k, v := range buildconfig.VersionInfo() {
			resp[k] = v
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"in_flight":      app.metrics.InFlight(),
			"rate_limited":   app.metrics.RateLimited(),
			"goroutines":     runtime.NumGoroutine(),
			"graph":          app.Knowledge.Stats(),
			"max_hops":       app.Knowledge.MaxHops(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy interfaces at compile time.
var (
	_ domain.EdgeStore = (*store.MemoryStore)(nil)
	_ domain.EdgeStore = (*store.BadgerStore)(nil)
	_ domain.EdgeStore = (*store.PostgresStore)(nil)
)
