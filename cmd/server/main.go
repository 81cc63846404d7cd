package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	web "tagdesk/internal/adapters/http"
	"tagdesk/internal/adapters/http/middleware"
	"tagdesk/internal/adapters/http/perf"
	"tagdesk/internal/adapters/upstream"
	"tagdesk/internal/application/lookup"
	"tagdesk/internal/config"
	"tagdesk/internal/metrics"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	csrfKey, generated, err := cfg.CSRFKeyBytes()
	if err != nil {
		log.Fatalf("invalid CSRF key: %v", err)
	}
	if generated {
		logger.Warn("csrf_key_generated", "reason", "TAGDESK_CSRF_KEY not set; tokens will not survive a restart")
	}

	// Performance instrumentation: upstream calls and requests share one collector
	collector := perf.NewCollector(perf.DefaultRingSize)

	client, err := upstream.New(cfg.APIEndpoint, upstream.Options{
		Timeout:           cfg.Upstream.Timeout,
		RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
		Burst:             cfg.Upstream.Burst,
		UserAgent:         "tagdesk/" + version,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create tag service client: %v", err)
	}
	api := upstream.NewTimed(client, collector, cfg.SlowUpstreamMs)

	sessions := lookup.NewSessions(cfg.Session.TTL, cfg.Session.MaxEntries)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background sweeper for idle sessions and limiter entries
	go sessions.Run(ctx, cfg.Session.SweepInterval, func(live int) {
		metrics.ActiveSessions.Set(float64(live))
		limiter.Prune()
	})

	mux := web.NewMux(&web.Services{
		API:       api,
		Sessions:  sessions,
		Collector: collector,
		FanOut:    cfg.Upstream.FanOut,
		Version:   version,
	}, web.Options{
		CSRFKey:        csrfKey,
		SecureCookies:  cfg.IsProduction(),
		TrustedOrigins: cfg.TrustedOrigins,
		Limiter:        limiter,
		SlowRequestMs:  cfg.SlowRequestMs,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Upstream.Timeout + 10*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_starting",
			"version", version,
			"addr", cfg.Addr,
			"env", cfg.Env,
			"api_endpoint", cfg.APIEndpoint,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Info("server_stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server_shutdown_failed", "error", err)
		}
	}
}
