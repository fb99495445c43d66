package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all the Prometheus metrics for the UI service
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	BackendCalls        *prometheus.CounterVec
	BackendCallDuration *prometheus.HistogramVec

	CampaignSubmissions *prometheus.CounterVec
	CatalogFallbacks    *prometheus.CounterVec
	SearchQueries       prometheus.Counter
}

// NewPrometheusMetrics creates all metrics and registers them on reg
func NewPrometheusMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaignstudio_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campaignstudio_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "campaignstudio_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
			[]string{"method", "endpoint"},
		),

		BackendCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaignstudio_backend_calls_total",
				Help: "Calls made to the generation backend by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),

		BackendCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campaignstudio_backend_call_duration_seconds",
				Help:    "Backend call duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"operation"},
		),

		CampaignSubmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaignstudio_campaign_submissions_total",
				Help: "Campaign form submissions by outcome",
			},
			[]string{"outcome"},
		),

		CatalogFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaignstudio_catalog_fallbacks_total",
				Help: "Page loads that used the built-in catalog defaults",
			},
			[]string{"catalog"},
		),

		SearchQueries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "campaignstudio_search_queries_total",
				Help: "Campaign similarity searches issued",
			},
		),
	}
}

// RecordHTTPRequest records an HTTP request with its duration and status
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// IncRequestsInFlight increments the in-flight requests gauge
func (m *Metrics) IncRequestsInFlight(method, endpoint string) {
	m.HTTPRequestsInFlight.WithLabelValues(method, endpoint).Inc()
}

// DecRequestsInFlight decrements the in-flight requests gauge
func (m *Metrics) DecRequestsInFlight(method, endpoint string) {
	m.HTTPRequestsInFlight.WithLabelValues(method, endpoint).Dec()
}

// RecordBackendCall records one backend round trip
func (m *Metrics) RecordBackendCall(operation, outcome string, duration float64) {
	m.BackendCalls.WithLabelValues(operation, outcome).Inc()
	m.BackendCallDuration.WithLabelValues(operation).Observe(duration)
}

// RecordSubmission records a campaign submission outcome
func (m *Metrics) RecordSubmission(outcome string) {
	m.CampaignSubmissions.WithLabelValues(outcome).Inc()
}

// RecordCatalogFallback records a page load served from default data
func (m *Metrics) RecordCatalogFallback(catalog string) {
	m.CatalogFallbacks.WithLabelValues(catalog).Inc()
}

// RecordSearch records a similarity search
func (m *Metrics) RecordSearch() {
	m.SearchQueries.Inc()
}
