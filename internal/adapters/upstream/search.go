package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"tagdesk/internal/domain/tag"
)

// SearchTags searches existing tags by name.
// PRE: query is non-empty
// POST: returns matches in service order; an empty or null body yields no matches
func (c *Client) SearchTags(ctx context.Context, query string) ([]tag.Match, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("target", "tags")

	body, err := c.get(ctx, c.endpoint("/search", params))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if isEmptyPayload(body) {
		return []tag.Match{}, nil
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w: %v", query, ErrBadPayload, err)
	}

	matches := make([]tag.Match, 0, len(resp.Tags))
	for _, t := range resp.Tags {
		matches = append(matches, tag.Match{
			ID:          t.ID,
			NameSearch:  t.NameSearch,
			NamePrimary: t.NamePrimary,
		})
	}

	c.logger.Debug("upstream_search_results", "query", query, "count", len(matches))
	return matches, nil
}
