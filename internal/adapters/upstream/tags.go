package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"tagdesk/internal/domain/tag"
)

// AddTag posts a new tag to the service.
// PRE: sub came from a ready draft
// POST: returns the response status; err is non-nil only when no response was received
func (c *Client) AddTag(ctx context.Context, sub tag.Submission) (int, error) {
	extra := sub.ExtraNames
	if extra == nil {
		extra = []string{}
	}
	data, err := json.Marshal(addTagRequest{
		Type:        string(sub.Type),
		PrimaryName: sub.PrimaryName,
		ExtraNames:  extra,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal tag: %w", err)
	}

	status, body, err := c.do(ctx, http.MethodPost, c.endpoint("/tags/add", nil), data)
	if err != nil {
		return status, fmt.Errorf("add tag: %w", err)
	}
	if IsErrorStatus(status) {
		c.logger.Debug("upstream_add_tag_status", "status", status, "body", truncate(string(body), 200))
	}
	return status, nil
}
