package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"loramgr/internal/routes"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loramgr",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "loramgr",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "loramgr",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "In-flight HTTP requests",
		},
	)

	routeEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "loramgr",
			Subsystem: "routes",
			Name:      "entries",
			Help:      "Static route entries in the current table by category",
		},
		[]string{"category"},
	)

	routeBuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "loramgr",
			Subsystem: "routes",
			Name:      "builds_total",
			Help:      "Route tables published since start",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpInflight, routeEntries, routeBuildsTotal)
}

// ObserveTable records a newly published route table.
func ObserveTable(t *routes.Table) {
	for c, n := range t.CountByCategory() {
		routeEntries.WithLabelValues(string(c)).Set(float64(n))
	}
	routeBuildsTotal.Inc()
}

// wrapWriter reuses a writer already wrapped further up the chain so the
// status is captured once. chi's wrapper keeps io.ReaderFrom and
// http.Flusher visible to http.FileServer.
func wrapWriter(w http.ResponseWriter, r *http.Request) middleware.WrapResponseWriter {
	if ww, ok := w.(middleware.WrapResponseWriter); ok {
		return ww
	}
	return middleware.NewWrapResponseWriter(w, r.ProtoMajor)
}

// statusOf reports the written status; handlers that never call WriteHeader
// or Write answer 200.
func statusOf(ww middleware.WrapResponseWriter) int {
	if st := ww.Status(); st != 0 {
		return st
	}
	return http.StatusOK
}

// MetricsMiddleware instruments requests for Prometheus
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := wrapWriter(w, r)
		start := time.Now()
		httpInflight.Inc()
		next.ServeHTTP(ww, r)
		httpInflight.Dec()
		// The route pattern is only known after routing.
		path := routePatternOrPath(r)
		statusLabel := strconv.Itoa(statusOf(ww))
		httpRequestsTotal.WithLabelValues(path, r.Method, statusLabel).Inc()
		httpRequestDuration.WithLabelValues(path, r.Method, statusLabel).Observe(time.Since(start).Seconds())
	})
}

// routePatternOrPath returns the chi route pattern if available, otherwise
// falls back to URL path. This avoids high-cardinality label values.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
