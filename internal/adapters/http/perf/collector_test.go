package perf

import (
	"sync"
	"testing"
	"time"
)

// TestCollector_RecordAndSnapshot verifies requests and upstream calls are aggregated separately.
func TestCollector_RecordAndSnapshot(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindRequest, Path: "GET /check", StatusCode: 200, DurationMs: 10, Timestamp: now})
	c.Record(Entry{Kind: KindRequest, Path: "GET /check", StatusCode: 200, DurationMs: 30, Timestamp: now})
	c.Record(Entry{Kind: KindUpstream, Path: "upstream.SearchTags", DurationMs: 5, Timestamp: now})
	c.Record(Entry{Kind: KindUpstream, Path: "upstream.CheckMedia", Failed: true, DurationMs: 50, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.TotalRecorded != 4 {
		t.Errorf("TotalRecorded = %d, want 4", snap.TotalRecorded)
	}
	if snap.Requests != 2 || snap.UpstreamCalls != 2 {
		t.Errorf("Requests=%d UpstreamCalls=%d, want 2 and 2", snap.Requests, snap.UpstreamCalls)
	}
	if snap.UpstreamFailed != 1 {
		t.Errorf("UpstreamFailed = %d, want 1", snap.UpstreamFailed)
	}
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].AvgMs != 20 {
		t.Fatalf("SlowestPaths = %+v, want one path averaging 20ms", snap.SlowestPaths)
	}
	if len(snap.SlowestUpstream) != 2 || snap.SlowestUpstream[0].Path != "upstream.CheckMedia" {
		t.Errorf("SlowestUpstream = %+v, want CheckMedia first", snap.SlowestUpstream)
	}
}

// TestCollector_RingBuffer_Overwrites verifies oldest entries are overwritten when full.
func TestCollector_RingBuffer_Overwrites(t *testing.T) {
	c := NewCollector(3)
	now := time.Now()

	for i := 0; i < 5; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /x", DurationMs: float64(i), Timestamp: now})
	}

	if c.TotalRecorded() != 5 {
		t.Errorf("TotalRecorded = %d, want 5", c.TotalRecorded())
	}
	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Count != 3 {
		t.Errorf("SlowestPaths = %+v, want a single path with count 3", snap.SlowestPaths)
	}
}

// TestCollector_Percentiles verifies P50/P95/P99 calculation.
func TestCollector_Percentiles(t *testing.T) {
	c := NewCollector(200)
	now := time.Now()

	for i := 1; i <= 100; i++ {
		c.Record(Entry{Kind: KindRequest, Path: "GET /p", DurationMs: float64(i), Timestamp: now})
	}

	snap := c.Snapshot(now.Add(-time.Minute), 10)
	if snap.RequestP50Ms < 49 || snap.RequestP50Ms > 51 {
		t.Errorf("P50 = %v, want ~50", snap.RequestP50Ms)
	}
	if snap.RequestP95Ms < 94 || snap.RequestP95Ms > 96 {
		t.Errorf("P95 = %v, want ~95", snap.RequestP95Ms)
	}
	if snap.RequestP99Ms < 98 || snap.RequestP99Ms > 100 {
		t.Errorf("P99 = %v, want ~99", snap.RequestP99Ms)
	}
}

// TestCollector_Snapshot_FiltersBySince verifies old entries are excluded.
func TestCollector_Snapshot_FiltersBySince(t *testing.T) {
	c := NewCollector(100)
	now := time.Now()

	c.Record(Entry{Kind: KindUpstream, Path: "upstream.SearchTags", DurationMs: 1, Timestamp: now.Add(-2 * time.Hour)})
	c.Record(Entry{Kind: KindUpstream, Path: "upstream.SearchTags", DurationMs: 1, Timestamp: now})

	snap := c.Snapshot(now.Add(-time.Hour), 10)
	if snap.UpstreamCalls != 1 {
		t.Errorf("UpstreamCalls = %d, want 1", snap.UpstreamCalls)
	}
}

// TestCollector_ConcurrentRecord verifies Record is safe for concurrent use.
func TestCollector_ConcurrentRecord(t *testing.T) {
	c := NewCollector(50)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Record(Entry{Kind: KindRequest, Path: "GET /", DurationMs: 1, Timestamp: time.Now()})
			}
		}()
	}
	wg.Wait()
	if c.TotalRecorded() != 800 {
		t.Errorf("TotalRecorded = %d, want 800", c.TotalRecorded())
	}
}

// TestCollector_EmptySnapshot verifies a fresh collector yields zero values.
func TestCollector_EmptySnapshot(t *testing.T) {
	snap := NewCollector(0).Snapshot(time.Time{}, 5)
	if snap.Requests != 0 || snap.RequestP95Ms != 0 || len(snap.SlowestPaths) != 0 {
		t.Errorf("snapshot = %+v, want zero values", snap)
	}
}
