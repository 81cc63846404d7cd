package projections

import (
	"context"
	"errors"

	"tagdesk/internal/adapters/upstream"
	"tagdesk/internal/domain/media"
	"tagdesk/internal/domain/tag"
)

// MediaChecker looks up metadata for an identifier.
type MediaChecker interface {
	CheckMedia(ctx context.Context, id media.Identifier) (*media.Record, error)
}

// TagSearcher searches existing tags by name.
type TagSearcher interface {
	SearchTags(ctx context.Context, query string) ([]tag.Match, error)
}

// DefaultFanOut bounds concurrent nested searches for one panel.
const DefaultFanOut = 4

// failureMessage turns a read error into the short text shown in a failed panel.
// Details stay in the log.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, upstream.ErrNotFound):
		return "not found"
	case errors.Is(err, upstream.ErrRateLimited):
		return "service busy, try again shortly"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	default:
		return "lookup failed"
	}
}
