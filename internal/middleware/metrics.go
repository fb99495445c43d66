package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/metrics"
)

// MetricsMiddleware wraps HTTP handlers to collect Prometheus metrics
type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware(metrics *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{
		metrics: metrics,
	}
}

// Middleware returns the HTTP middleware function
func (m *MetricsMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Normalize endpoint path for metrics (remove query params and IDs)
		endpoint := normalizeEndpoint(r.URL.Path)
		method := r.Method

		// Increment in-flight requests
		m.metrics.IncRequestsInFlight(method, endpoint)
		defer m.metrics.DecRequestsInFlight(method, endpoint)

		// Wrap the response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: 200}

		// Process the request
		next.ServeHTTP(wrapped, r)

		// Record metrics
		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(wrapped.statusCode)

		m.metrics.RecordHTTPRequest(method, endpoint, statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(200)
	}
	return rw.ResponseWriter.Write(b)
}

// normalizeEndpoint collapses ids and asset paths so label cardinality
// stays bounded
func normalizeEndpoint(path string) string {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}

	switch {
	case strings.HasPrefix(path, "/assets/"):
		return "/assets"
	case strings.HasPrefix(path, "/ui/jobs/"):
		return "/ui/jobs/{id}"
	case strings.HasPrefix(path, "/ui/campaigns/") && strings.HasSuffix(path, "/template"):
		return "/ui/campaigns/{id}/template"
	case strings.HasPrefix(path, "/ui/campaigns/"):
		return "/ui/campaigns/{id}"
	case path == "/", path == "/health", path == "/metrics", strings.HasPrefix(path, "/ui/"):
		return path
	default:
		return "other"
	}
}
