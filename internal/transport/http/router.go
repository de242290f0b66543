package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sikaloan/internal/platform/metrics"
	"sikaloan/internal/platform/middleware"
)

// RouterConfig carries the transport-level knobs.
type RouterConfig struct {
	// GatewayJWTSecret guards the USSD callback. Empty disables auth,
	// which is only acceptable behind a trusted network boundary.
	GatewayJWTSecret string
}

// NewRouter assembles the HTTP surface: the USSD callback, health, and
// metrics.
func NewRouter(h *Handler, cfg RouterConfig, logger *slog.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireGateway(cfg.GatewayJWTSecret, logger))
		r.Post("/ussd", h.HandleUSSD)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
