package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"tagdesk/internal/adapters/http/perf"
	"tagdesk/internal/domain/media"
	"tagdesk/internal/domain/tag"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client, err := New(server.URL, Options{RequestsPerSecond: 1000, Burst: 1000}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, base := range []string{"", "ftp://example.com", "http://", "::bad"} {
		if _, err := New(base, Options{}, nil); err == nil {
			t.Errorf("New(%q) succeeded, want error", base)
		}
	}
}

func TestClient_Endpoint_KeepsBasePath(t *testing.T) {
	c, err := New("https://api.example.com/v1/", Options{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, want := c.endpoint("/tags/add", nil), "https://api.example.com/v1/tags/add"; got != want {
		t.Errorf("endpoint = %q, want %q", got, want)
	}
}

func TestClient_CheckMedia(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		want       *media.Record
		wantErr    error
	}{
		{
			name:       "record",
			statusCode: http.StatusOK,
			body:       `{"id":"sm39829973","title":"T","tags":["foo","音MAD"],"thumbnail_url":"u1","thumbnail_url_large":"u2"}`,
			want: &media.Record{
				ID: "sm39829973", Title: "T", Tags: []string{"foo", "音MAD"},
				ThumbnailURL: "u1", ThumbnailURLLarge: "u2",
			},
		},
		{name: "null payload", statusCode: http.StatusOK, body: "null"},
		{name: "empty payload", statusCode: http.StatusOK, body: "  "},
		{name: "no content", statusCode: http.StatusNoContent},
		{
			name:       "created with record",
			statusCode: http.StatusCreated,
			body:       `{"id":"sm1","title":"x","tags":[]}`,
			want:       &media.Record{ID: "sm1", Title: "x", Tags: []string{}},
		},
		{name: "not found", statusCode: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "rate limited", statusCode: http.StatusTooManyRequests, wantErr: ErrRateLimited},
		{name: "server error", statusCode: http.StatusBadGateway, wantErr: ErrServer},
		{name: "garbage", statusCode: http.StatusOK, body: "{", wantErr: ErrBadPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.EscapedPath()
				w.WriteHeader(tt.statusCode)
				io.WriteString(w, tt.body)
			})

			rec, err := client.CheckMedia(context.Background(), media.Identifier("sm39829973"))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotPath != "/niconico/check/sm39829973" {
				t.Errorf("path = %q", gotPath)
			}
			if !reflect.DeepEqual(rec, tt.want) {
				t.Errorf("record = %+v, want %+v", rec, tt.want)
			}
		})
	}
}

func TestClient_CheckMedia_EscapesIdentifier(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		io.WriteString(w, "null")
	})

	if _, err := client.CheckMedia(context.Background(), media.Identifier("sm1/../x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/niconico/check/sm1%2F..%2Fx" {
		t.Errorf("path = %q, want the identifier escaped as one segment", gotPath)
	}
}

func TestClient_SearchTags(t *testing.T) {
	var gotQuery, gotTarget string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("query")
		gotTarget = r.URL.Query().Get("target")
		io.WriteString(w, `{"tags":[{"id":"1","name_search":"foo","name_primary":"Foo"},{"id":"2","name_search":"foob","name_primary":"Foobar"}]}`)
	})

	matches, err := client.SearchTags(context.Background(), "foo & bar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "foo & bar" || gotTarget != "tags" {
		t.Errorf("query=%q target=%q", gotQuery, gotTarget)
	}
	want := []tag.Match{
		{ID: "1", NameSearch: "foo", NamePrimary: "Foo"},
		{ID: "2", NameSearch: "foob", NamePrimary: "Foobar"},
	}
	if !reflect.DeepEqual(matches, want) {
		t.Errorf("matches = %+v, want %+v", matches, want)
	}
}

func TestClient_SearchTags_NullTags(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"tags":null}`)
	})
	matches, err := client.SearchTags(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matches == nil || len(matches) != 0 {
		t.Errorf("matches = %#v, want empty non-nil slice", matches)
	}
}

func TestClient_AddTag(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"created", http.StatusCreated},
		{"ok", http.StatusOK},
		{"conflict", http.StatusConflict},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got addTagRequest
			var contentType string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/tags/add" {
					t.Errorf("request = %s %s", r.Method, r.URL.Path)
				}
				contentType = r.Header.Get("Content-Type")
				json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tt.statusCode)
			})

			status, err := client.AddTag(context.Background(), tag.Submission{
				Type:        tag.TypeCharacter,
				PrimaryName: "foo",
			})
			if err != nil {
				t.Fatalf("AddTag returned transport error: %v", err)
			}
			if status != tt.statusCode {
				t.Errorf("status = %d, want %d", status, tt.statusCode)
			}
			if contentType != "application/json" {
				t.Errorf("Content-Type = %q", contentType)
			}
			want := addTagRequest{Type: "CHARACTER", PrimaryName: "foo", ExtraNames: []string{}}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("body = %+v, want %+v", got, want)
			}
		})
	}
}

func TestClient_AddTag_TransportError(t *testing.T) {
	client, err := New("http://127.0.0.1:1", Options{Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.AddTag(context.Background(), tag.Submission{Type: tag.TypeWork, PrimaryName: "x"}); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"tags":[]}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.SearchTags(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type countingAPI struct {
	calls atomic.Int32
	err   error
}

func (c *countingAPI) CheckMedia(context.Context, media.Identifier) (*media.Record, error) {
	c.calls.Add(1)
	return nil, c.err
}

func (c *countingAPI) SearchTags(context.Context, string) ([]tag.Match, error) {
	c.calls.Add(1)
	return nil, c.err
}

func (c *countingAPI) AddTag(context.Context, tag.Submission) (int, error) {
	c.calls.Add(1)
	return http.StatusCreated, c.err
}

func TestTimed_RecordsEveryCall(t *testing.T) {
	inner := &countingAPI{}
	collector := perf.NewCollector(10)
	timed := NewTimed(inner, collector, 0)

	timed.CheckMedia(context.Background(), "sm1")
	timed.SearchTags(context.Background(), "x")
	status, _ := timed.AddTag(context.Background(), tag.Submission{})

	if inner.calls.Load() != 3 {
		t.Errorf("inner calls = %d, want 3", inner.calls.Load())
	}
	if status != http.StatusCreated {
		t.Errorf("status = %d, want pass-through", status)
	}
	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if snap.UpstreamCalls != 3 || snap.UpstreamFailed != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestTimed_MarksFailures(t *testing.T) {
	inner := &countingAPI{err: ErrServer}
	collector := perf.NewCollector(10)
	timed := NewTimed(inner, collector, 0)

	if _, err := timed.SearchTags(context.Background(), "x"); !errors.Is(err, ErrServer) {
		t.Fatalf("err = %v, want ErrServer", err)
	}
	if snap := collector.Snapshot(time.Now().Add(-time.Minute), 10); snap.UpstreamFailed != 1 {
		t.Errorf("UpstreamFailed = %d, want 1", snap.UpstreamFailed)
	}
}

// TestClient_SearchTags_NoContent verifies a bodiless 2xx reads as no matches.
func TestClient_SearchTags_NoContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	matches, err := client.SearchTags(context.Background(), "foo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %+v, want none", matches)
	}
}
