package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tagdesk/internal/adapters/http/middleware"
	"tagdesk/internal/adapters/http/perf"
	"tagdesk/internal/adapters/upstream"
	"tagdesk/internal/application/lookup"
	"tagdesk/internal/application/projections"
	"tagdesk/internal/metrics"
)

// Services holds the runtime dependencies of the handlers.
type Services struct {
	API       upstream.API
	Sessions  *lookup.Sessions
	Collector *perf.Collector
	FanOut    int // concurrent nested searches per panel
	Version   string
}

// Options configures the middleware chain.
type Options struct {
	CSRFKey        []byte // 32 bytes
	SecureCookies  bool
	TrustedOrigins []string
	Limiter        *middleware.RateLimiter
	SlowRequestMs  int
}

// DefaultIdentifier pre-fills the checker input.
const DefaultIdentifier = "sm39829973"

// Global services instance (set by NewMux)
var services *Services

// NewMux wires HTTP handlers for the app.
// PRE: s.API and s.Sessions are non-nil; opts.CSRFKey is 32 bytes
func NewMux(s *Services, opts Options) http.Handler {
	services = s
	if services.FanOut <= 0 {
		services.FanOut = projections.DefaultFanOut
	}
	middleware.SecureCookies = opts.SecureCookies

	limiter := opts.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(20, 40)
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	// Execution order: Timing -> Metrics -> RateLimit -> Session -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, middleware.CSRFOptions{
			Secure:         opts.SecureCookies,
			TrustedOrigins: opts.TrustedOrigins,
		}),
		middleware.Session(s.Sessions),
		middleware.RateLimit(limiter),
		metrics.Middleware(),
		middleware.Timing(s.Collector, opts.SlowRequestMs),
	)
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("GET /check", handleCheck)
	mux.HandleFunc("GET /tags/search", handleTagSearch)
	mux.HandleFunc("POST /draft", handleDraft)
	mux.HandleFunc("POST /tags/add", handleAddTag)

	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /debug/perf", handlePerf)
	mux.Handle("GET /metrics", promhttp.Handler())
}
