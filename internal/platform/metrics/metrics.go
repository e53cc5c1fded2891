package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the service counters. Each instance owns its registry so tests
// can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	LinksBuilt         prometheus.Counter
	Renders            *prometheus.CounterVec
	LogoFallbacks      prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	Redirects          *prometheus.CounterVec
	RenderDuration     *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		LinksBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "upiqr",
			Name:      "links_built_total",
			Help:      "UPI deep links built.",
		}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "upiqr",
			Name:      "renders_total",
			Help:      "QR codes rendered by output format.",
		}, []string{"format"}),
		LogoFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "upiqr",
			Name:      "logo_fallbacks_total",
			Help:      "Renders that dropped a logo after a composite failure.",
		}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "upiqr",
			Name:      "validation_failures_total",
			Help:      "Rejected payment intents and render options by field.",
		}, []string{"field"}),
		Redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "upiqr",
			Name:      "redirects_total",
			Help:      "Short code resolutions by outcome.",
		}, []string{"outcome"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "upiqr",
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering a QR code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
	}

	m.Registry.MustRegister(
		m.LinksBuilt,
		m.Renders,
		m.LogoFallbacks,
		m.ValidationFailures,
		m.Redirects,
		m.RenderDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
