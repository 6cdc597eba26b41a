// Package metrics exposes explorer activity as Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "genexplorer"

// Metrics holds the collectors; a nil *Metrics records nothing
type Metrics struct {
	registry *prometheus.Registry

	projections   *prometheus.CounterVec
	projectionDur *prometheus.HistogramVec
	rowsReturned  *prometheus.CounterVec
	warnings      *prometheus.CounterVec
	headerCache   *prometheus.CounterVec
	exports       *prometheus.CounterVec
	plots         *prometheus.CounterVec
	superseded    prometheus.Counter
}

// New registers every collector on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projections_total",
			Help:      "Projection requests by table kind and outcome.",
		}, []string{"kind", "outcome"}),
		projectionDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "projection_duration_seconds",
			Help:      "Time spent loading and filtering one table.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		rowsReturned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_returned_total",
			Help:      "Rows surviving the row filters.",
		}, []string{"kind"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Non-fatal warnings attached to results.",
		}, []string{"code"}),
		headerCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "header_cache_lookups_total",
			Help:      "Header cache lookups by result.",
		}, []string{"result"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Table exports by kind and format.",
		}, []string{"kind", "format"}),
		plots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plots_total",
			Help:      "Plots built by kind and whether they were placeholders.",
		}, []string{"kind", "placeholder"}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "superseded_requests_total",
			Help:      "Filter requests discarded because a newer one started.",
		}),
	}

	m.registry.MustRegister(
		m.projections, m.projectionDur, m.rowsReturned, m.warnings,
		m.headerCache, m.exports, m.plots, m.superseded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveProjection records one projection
func (m *Metrics) ObserveProjection(kind, outcome string, rows int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.projections.WithLabelValues(kind, outcome).Inc()
	m.projectionDur.WithLabelValues(kind).Observe(elapsed.Seconds())
	if rows > 0 {
		m.rowsReturned.WithLabelValues(kind).Add(float64(rows))
	}
}

// Warning counts a result warning by code
func (m *Metrics) Warning(code string) {
	if m == nil {
		return
	}
	m.warnings.WithLabelValues(code).Inc()
}

// HeaderCacheHit counts a header served from cache
func (m *Metrics) HeaderCacheHit() {
	if m == nil {
		return
	}
	m.headerCache.WithLabelValues("hit").Inc()
}

// HeaderCacheMiss counts a header read from storage
func (m *Metrics) HeaderCacheMiss() {
	if m == nil {
		return
	}
	m.headerCache.WithLabelValues("miss").Inc()
}

// Export counts a successful export
func (m *Metrics) Export(kind, format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(kind, format).Inc()
}

// Plot counts a built plot
func (m *Metrics) Plot(kind string, placeholder bool) {
	if m == nil {
		return
	}
	p := "false"
	if placeholder {
		p = "true"
	}
	m.plots.WithLabelValues(kind, p).Inc()
}

// Superseded counts a discarded filter request
func (m *Metrics) Superseded() {
	if m == nil {
		return
	}
	m.superseded.Inc()
}
