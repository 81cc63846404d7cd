package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream and lookup Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tagdesk",
			Name:      "upstream_requests_total",
			Help:      "Total number of requests sent to the tag service",
		},
		[]string{"operation", "result"}, // result: ok / error
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tagdesk",
			Name:      "upstream_request_duration_seconds",
			Help:      "Tag service request duration in seconds",
			Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	LookupCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tagdesk",
			Name:      "lookup_cache_total",
			Help:      "Session lookup cache hits and misses",
		},
		[]string{"kind", "result"}, // result: hit / miss
	)

	TagSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tagdesk",
			Name:      "tag_submissions_total",
			Help:      "Tag submissions by outcome",
		},
		[]string{"outcome"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tagdesk",
			Name:      "active_sessions",
			Help:      "Browser sessions currently holding a lookup cache",
		},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tagdesk",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	prometheus.MustRegister(LookupCacheTotal)
	prometheus.MustRegister(TagSubmissionsTotal)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(httpRequestDuration)
}

// CacheResult returns the label value for a cache lookup.
func CacheResult(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records HTTP request duration by route.
// The route label is the first path segment so identifiers in query strings
// or paths never explode label cardinality.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			httpRequestDuration.WithLabelValues(
				r.Method,
				routeLabel(r.URL.Path),
				strconv.Itoa(rec.status),
			).Observe(time.Since(start).Seconds())
		})
	}
}

// routeLabel maps a request path onto a bounded set of label values.
func routeLabel(path string) string {
	switch {
	case path == "/":
		return "/"
	case strings.HasPrefix(path, "/static/"):
		return "/static"
	}
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(parts) >= 2 {
		return "/" + parts[0] + "/" + parts[1]
	}
	return "/" + parts[0]
}
