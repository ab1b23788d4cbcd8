package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"run-planner/internal/config"
	"run-planner/internal/metrics"
	"run-planner/internal/middleware"
	"run-planner/internal/planner/handler"
	"run-planner/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, h *handler.Handler) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{Registry: metrics.Registry}))

	r.Post("/addresses/resolve", h.Resolve)
	r.Get("/customers/{customerID}/addresses", h.CustomerAddresses)
	r.Post("/imports", h.Import)
	r.Post("/stops", h.SaveStops)
	r.Route("/plans/{planID}", func(r chi.Router) {
		r.Get("/stops", h.PlanStops)
		r.Get("/week", h.PlanWeek)
	})
	r.Post("/schedule/week", h.Week)

	return r
}
