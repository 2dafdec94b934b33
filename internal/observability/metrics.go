// Package observability holds the Prometheus instrumentation shared by the
// launcher and the stage implementations.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the pipeline's Prometheus collectors. Each process builds
// its own instance against its own registry; the launcher exposes it on the
// status endpoint.
type Metrics struct {
	Registry *prometheus.Registry

	PagesLoaded     prometheus.Counter
	MessagesFound   prometheus.Counter
	ContentsFetched prometheus.Counter
	ContentErrors   prometheus.Counter

	StepsTotal   *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec
}

// New creates and registers the pipeline collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		PagesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fedscan_pages_loaded_total",
			Help: "Search and message pages fully loaded in the browser.",
		}),
		MessagesFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fedscan_message_links_total",
			Help: "Message links discovered by stage 2.",
		}),
		ContentsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fedscan_contents_fetched_total",
			Help: "Message pages fetched and parsed by stage 3.",
		}),
		ContentErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fedscan_content_errors_total",
			Help: "Message pages that failed to fetch or parse.",
		}),
		StepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fedscan_steps_total",
			Help: "Pipeline steps by terminal status.",
		}, []string{"step", "status"}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fedscan_step_duration_seconds",
			Help:    "Wall-clock duration of pipeline steps.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"step"}),
	}

	registry.MustRegister(
		m.PagesLoaded,
		m.MessagesFound,
		m.ContentsFetched,
		m.ContentErrors,
		m.StepsTotal,
		m.StepDuration,
	)

	return m
}
