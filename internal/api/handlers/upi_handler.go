package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"upiqr/internal/engine/links"
	"upiqr/internal/engine/render"
	"upiqr/internal/pkg/errors"
	"upiqr/internal/platform/metrics"
)

// UPIHandler serves the stateless link and QR endpoints.
type UPIHandler struct {
	composer *render.Composer
	builder  *links.Builder
	metrics  *metrics.Metrics
}

func NewUPIHandler(composer *render.Composer, builder *links.Builder, m *metrics.Metrics) *UPIHandler {
	return &UPIHandler{composer: composer, builder: builder, metrics: m}
}

func (h *UPIHandler) BuildLink(w http.ResponseWriter, r *http.Request) {
	var intent links.PaymentIntent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		errors.Write(w, errors.New(errors.CodeInvalidInput, "Invalid request body"))
		return
	}

	link, err := h.builder.Build(&intent)
	if err != nil {
		writeDomainError(w, h.metrics, err)
		return
	}
	h.metrics.LinksBuilt.Inc()

	errors.WriteJSON(w, http.StatusOK, map[string]string{"link": link})
}

func (h *UPIHandler) RenderQR(w http.ResponseWriter, r *http.Request) {
	var req render.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.Write(w, errors.New(errors.CodeInvalidInput, "Invalid request body"))
		return
	}

	writeRender(w, r, h.composer, h.metrics, &req)
}

func writeRender(w http.ResponseWriter, r *http.Request, composer *render.Composer, m *metrics.Metrics, req *render.Request) {
	start := time.Now()
	img, err := composer.Render(r.Context(), req)
	if err != nil {
		writeDomainError(w, m, err)
		return
	}
	if img == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	m.LinksBuilt.Inc()
	m.Renders.WithLabelValues(string(img.Format)).Inc()
	m.RenderDuration.WithLabelValues(string(img.Format)).Observe(time.Since(start).Seconds())
	if img.LogoFallback {
		m.LogoFallbacks.Inc()
		w.Header().Set("X-Logo-Fallback", "true")
	}
	w.Header().Set("X-UPI-Link", img.Link)

	if img.Format == render.FormatDataURL {
		errors.WriteJSON(w, http.StatusOK, map[string]string{"data_url": img.DataURL(), "link": img.Link})
		return
	}

	w.Header().Set("Content-Type", img.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}
