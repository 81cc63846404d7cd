package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"tagdesk/internal/domain/media"
)

// CheckMedia fetches metadata for an identifier.
// PRE: id carries an accepted prefix
// POST: returns (nil, nil) when the service replies with an empty or null body
func (c *Client) CheckMedia(ctx context.Context, id media.Identifier) (*media.Record, error) {
	target := c.endpoint("/niconico/check/"+url.PathEscape(id.String()), nil)

	body, err := c.get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", id, err)
	}
	if isEmptyPayload(body) {
		c.logger.Debug("upstream_check_empty", "id", id.String())
		return nil, nil
	}

	var resp checkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("check %s: %w: %v", id, ErrBadPayload, err)
	}

	tags := resp.Tags
	if tags == nil {
		tags = []string{}
	}
	return &media.Record{
		ID:                resp.ID,
		Title:             resp.Title,
		Tags:              tags,
		ThumbnailURL:      resp.ThumbnailURL,
		ThumbnailURLLarge: resp.ThumbnailURLLarge,
	}, nil
}

// isEmptyPayload reports whether a body carries no data at all.
func isEmptyPayload(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
