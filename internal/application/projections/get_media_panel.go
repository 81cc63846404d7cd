package projections

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"tagdesk/internal/application/lookup"
	"tagdesk/internal/domain/media"
	"tagdesk/internal/metrics"
)

// GetMediaPanelQuery carries the checker input at confirmation time.
// Active is the identifier confirmed earlier, if any.
type GetMediaPanelQuery struct {
	Input  string
	Active string
}

// TagRow is one tag of a record. Search is nil for excluded tags.
type TagRow struct {
	Tag    string       `json:"tag"`
	Search *SearchPanel `json:"search,omitempty"`
}

// MediaPanel is the rendered state of the identifier checker.
type MediaPanel struct {
	Active string        `json:"active,omitempty"`
	State  lookup.State  `json:"state"`
	Record *media.Record `json:"record,omitempty"`
	Rows   []TagRow      `json:"rows,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// GetMediaPanelDeps holds dependencies for QueryGetMediaPanel.
type GetMediaPanelDeps struct {
	Checker  MediaChecker
	Searcher TagSearcher
	Cache    *lookup.Cache
	FanOut   int
}

func checkKey(id media.Identifier) string {
	return "check\x00" + id.String()
}

// ResolveActive decides which identifier is active after a confirmation.
// A rejected input leaves the previously active identifier in place.
// PRE: none
// POST: ok is false when neither input nor active carries an accepted prefix
func ResolveActive(input, active string) (media.Identifier, bool) {
	if id, ok := media.ParseIdentifier(input); ok {
		return id, true
	}
	return media.ParseIdentifier(active)
}

// QueryGetMediaPanel loads the record for the active identifier and its nested tag searches.
// PRE: deps.Checker, deps.Searcher and deps.Cache are non-nil
// POST: StateIdle without an active identifier (no request made); StateEmpty for an empty payload;
// StateFailed with a short message when the check fails. Nested search failures stay on their row.
func QueryGetMediaPanel(ctx context.Context, query GetMediaPanelQuery, deps GetMediaPanelDeps) MediaPanel {
	id, ok := ResolveActive(query.Input, query.Active)
	if !ok {
		return MediaPanel{State: lookup.StateIdle}
	}
	panel := MediaPanel{Active: id.String()}

	rec, hit, err := lookup.Fetch(ctx, deps.Cache, checkKey(id), func(ctx context.Context) (*media.Record, error) {
		return deps.Checker.CheckMedia(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Warn("media_check_failed", "id", id.String(), "error", err.Error())
		}
		panel.State = lookup.StateFailed
		panel.Error = failureMessage(err)
		return panel
	}
	metrics.LookupCacheTotal.WithLabelValues("check", metrics.CacheResult(hit)).Inc()

	if rec == nil {
		panel.State = lookup.StateEmpty
		return panel
	}
	panel.State = lookup.StateLoaded
	panel.Record = rec
	panel.Rows = tagRows(ctx, rec.Tags, deps)
	return panel
}

// tagRows builds one row per tag, resolving searches for non-excluded tags concurrently.
func tagRows(ctx context.Context, tags []string, deps GetMediaPanelDeps) []TagRow {
	rows := make([]TagRow, len(tags))
	searchDeps := GetTagSearchDeps{Searcher: deps.Searcher, Cache: deps.Cache}

	fanOut := deps.FanOut
	if fanOut <= 0 {
		fanOut = DefaultFanOut
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOut)

	for i, t := range tags {
		rows[i].Tag = t
		if media.IsExcludedTag(t) {
			continue
		}
		g.Go(func() error {
			panel := QueryGetTagSearch(gctx, GetTagSearchQuery{Name: t}, searchDeps)
			rows[i].Search = &panel
			return nil
		})
	}
	_ = g.Wait() // searches report failure through their panel state

	return rows
}
