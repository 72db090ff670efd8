package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	authzDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Authorization decisions by route class and outcome reason.",
		},
		[]string{"route_class", "reason"},
	)

	identityResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_identity_resolutions_total",
			Help: "Identity resolution attempts by outcome.",
		},
		[]string{"outcome"},
	)

	storeQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_queries_total",
			Help: "Account store round-trips by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)
)

// Init registers metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight,
		httpRequestsTotal,
		httpRequestDuration,
		authzDecisionsTotal,
		identityResolutionsTotal,
		storeQueriesTotal,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDecision records one authorization decision.
func ObserveDecision(routeClass, reason string) {
	authzDecisionsTotal.WithLabelValues(routeClass, reason).Inc()
}

// ObserveIdentityResolution records one identity resolution attempt.
// Outcome is "resolved", "no_account", "invalid", or "unavailable".
func ObserveIdentityResolution(outcome string) {
	identityResolutionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStoreQuery records one account store round-trip.
// Outcome is "ok", "absent", or "error".
func ObserveStoreQuery(op, outcome string) {
	storeQueriesTotal.WithLabelValues(op, outcome).Inc()
}

// Instrument wraps a handler with RPS/latency/in-flight measurements.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter captures the response code for metrics.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
