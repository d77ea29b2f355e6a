package api

import (
	"bcchrates/internal/metrics"
	"bcchrates/internal/rate/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(rateHandler *handler.Handler, m *metrics.Metrics) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))
	if m != nil {
		router.Use(m.Middleware)
	}

	router.Handle("/metrics", promhttp.Handler())

	router.Get("/exchange-rates", rateHandler.GetRates)
	router.Get("/exchange-rates/convert", rateHandler.Convert)
	return router
}
