package upstream

import (
	"context"

	"tagdesk/internal/domain/media"
	"tagdesk/internal/domain/tag"
)

// API is the set of tag service operations the application uses.
// Both *Client and *Timed satisfy it.
type API interface {
	// CheckMedia returns the record for id, or nil when the service answers with an empty payload.
	CheckMedia(ctx context.Context, id media.Identifier) (*media.Record, error)
	// SearchTags returns existing tags matching query.
	SearchTags(ctx context.Context, query string) ([]tag.Match, error)
	// AddTag posts a new tag and returns the response status code.
	// Only transport failures are errors; the caller inspects the status.
	AddTag(ctx context.Context, sub tag.Submission) (int, error)
}
