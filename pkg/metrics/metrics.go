package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus collectors for the scheduler service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// OccurrencesGenerated is the total number of occurrences produced by the generator.
	OccurrencesGenerated *prometheus.CounterVec

	// RangeRejections is the total number of generation requests refused by the span ceiling.
	RangeRejections prometheus.Counter

	// Extractions is the total number of pattern extractions by outcome.
	Extractions *prometheus.CounterVec

	// PreviewCache counts preview cache lookups by result (hit, miss, error).
	PreviewCache *prometheus.CounterVec

	// HTTPRequests is the total number of HTTP requests.
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration is the HTTP request latency.
	HTTPDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers collectors on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(namespace, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewMetricsWith registers collectors on reg and exposes them through g.
func NewMetricsWith(namespace string, reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OccurrencesGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "occurrences_generated_total",
				Help:      "Total number of class occurrences generated",
			},
			[]string{"source"},
		),

		RangeRejections: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "range_rejections_total",
				Help:      "Total number of generation requests rejected for exceeding the date span ceiling",
			},
		),

		Extractions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extractions_total",
				Help:      "Total number of schedule extractions",
			},
			[]string{"outcome"},
		),

		PreviewCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "preview_cache_total",
				Help:      "Preview cache lookups by result",
			},
			[]string{"result"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),

		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route"},
		),

		gatherer: g,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// AddGenerated adds n occurrences generated for source (preview, series, legacy).
func (m *Metrics) AddGenerated(source string, n int) {
	if m == nil {
		return
	}
	m.OccurrencesGenerated.WithLabelValues(source).Add(float64(n))
}

// IncRangeRejection counts one refused oversized range.
func (m *Metrics) IncRangeRejection() {
	if m == nil {
		return
	}
	m.RangeRejections.Inc()
}

// IncExtraction counts one extraction; outcome is "schedule" or "empty".
func (m *Metrics) IncExtraction(outcome string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(outcome).Inc()
}

// IncPreviewCache counts one cache lookup result.
func (m *Metrics) IncPreviewCache(result string) {
	if m == nil {
		return
	}
	m.PreviewCache.WithLabelValues(result).Inc()
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}
