package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"upiqr/internal/platform/metrics"
)

type MetricsHandler struct {
	handler http.Handler
}

func NewMetricsHandler(m *metrics.Metrics) *MetricsHandler {
	return &MetricsHandler{handler: promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}
