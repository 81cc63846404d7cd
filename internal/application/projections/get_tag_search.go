package projections

import (
	"context"
	"errors"
	"log/slog"

	"tagdesk/internal/application/lookup"
	"tagdesk/internal/domain/tag"
	"tagdesk/internal/metrics"
)

// GetTagSearchQuery asks which existing tags match a candidate name.
type GetTagSearchQuery struct {
	Name string
}

// SearchPanel is the rendered state of one existence search.
type SearchPanel struct {
	Name    string       `json:"name"`
	State   lookup.State `json:"state"`
	Matches []tag.Match  `json:"matches,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// GetTagSearchDeps holds dependencies for QueryGetTagSearch.
type GetTagSearchDeps struct {
	Searcher TagSearcher
	Cache    *lookup.Cache
}

func searchKey(name string) string {
	return "search\x00" + name
}

// QueryGetTagSearch resolves a candidate name against the tag service through the session cache.
// PRE: deps.Searcher and deps.Cache are non-nil
// POST: an empty name yields StateIdle without any request; each distinct name is requested at most once per cache
func QueryGetTagSearch(ctx context.Context, query GetTagSearchQuery, deps GetTagSearchDeps) SearchPanel {
	panel := SearchPanel{Name: query.Name}
	if tag.IsEmpty(query.Name) {
		panel.State = lookup.StateIdle
		return panel
	}

	matches, hit, err := lookup.Fetch(ctx, deps.Cache, searchKey(query.Name), func(ctx context.Context) ([]tag.Match, error) {
		return deps.Searcher.SearchTags(ctx, query.Name)
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Warn("tag_search_failed", "name", query.Name, "error", err.Error())
		}
		panel.State = lookup.StateFailed
		panel.Error = failureMessage(err)
		return panel
	}
	metrics.LookupCacheTotal.WithLabelValues("search", metrics.CacheResult(hit)).Inc()

	if len(matches) == 0 {
		panel.State = lookup.StateEmpty
		return panel
	}
	panel.State = lookup.StateLoaded
	panel.Matches = matches
	return panel
}
