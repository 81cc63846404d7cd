package upstream

import (
	"context"
	"log/slog"
	"time"

	"tagdesk/internal/adapters/http/perf"
	"tagdesk/internal/domain/media"
	"tagdesk/internal/domain/tag"
	"tagdesk/internal/metrics"
)

// DefaultSlowCallMs is the default threshold for slow upstream call warnings.
const DefaultSlowCallMs = 1000

// Timed wraps an API to log slow calls and record them to the perf collector and Prometheus.
type Timed struct {
	api       API
	collector *perf.Collector
	threshold float64
}

// Compile-time check that *Timed satisfies API.
var _ API = (*Timed)(nil)

// NewTimed wraps api with timing instrumentation. collector may be nil.
// PRE: api is non-nil
// POST: Returns a Timed that records every call
func NewTimed(api API, collector *perf.Collector, slowCallMs int) *Timed {
	if slowCallMs <= 0 {
		slowCallMs = DefaultSlowCallMs
	}
	return &Timed{api: api, collector: collector, threshold: float64(slowCallMs)}
}

// observe logs and records a single call.
func (t *Timed) observe(op string, start time.Time, status int, err error) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(op, result).Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	if durationMs >= t.threshold {
		slog.Warn("slow_upstream_call", "op", op, "duration_ms", durationMs, "error", err)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindUpstream,
			Path:       "upstream." + op,
			StatusCode: status,
			Failed:     err != nil,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// CheckMedia delegates to the wrapped API with timing.
func (t *Timed) CheckMedia(ctx context.Context, id media.Identifier) (*media.Record, error) {
	start := time.Now()
	rec, err := t.api.CheckMedia(ctx, id)
	t.observe("CheckMedia", start, 0, err)
	return rec, err
}

// SearchTags delegates to the wrapped API with timing.
func (t *Timed) SearchTags(ctx context.Context, query string) ([]tag.Match, error) {
	start := time.Now()
	matches, err := t.api.SearchTags(ctx, query)
	t.observe("SearchTags", start, 0, err)
	return matches, err
}

// AddTag delegates to the wrapped API with timing.
func (t *Timed) AddTag(ctx context.Context, sub tag.Submission) (int, error) {
	start := time.Now()
	status, err := t.api.AddTag(ctx, sub)
	t.observe("AddTag", start, status, err)
	return status, err
}
