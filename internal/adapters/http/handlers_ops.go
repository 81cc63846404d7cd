package web

import (
	"net/http"
	"strconv"
	"time"
)

// handleHealthz reports liveness. It never calls the tag service.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  services.Version,
		"sessions": services.Sessions.Len(),
	})
}

// handlePerf returns a JSON timing snapshot.
// Query: minutes (window, default 15), top (rows per list, default 10).
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if services.Collector == nil {
		http.Error(w, "perf collection disabled", http.StatusNotFound)
		return
	}
	minutes := queryInt(r, "minutes", 15)
	top := queryInt(r, "top", 10)
	snap := services.Collector.Snapshot(time.Now().Add(-time.Duration(minutes)*time.Minute), top)
	writeJSON(w, http.StatusOK, snap)
}

// queryInt reads a positive integer query parameter, falling back on bad input.
func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
