package media

import "strings"

// acceptedPrefixes lists the identifier prefixes the check service understands.
var acceptedPrefixes = []string{"sm", "nv"}

// excludedTags are tags that never get an existence lookup. Matching is exact and case-sensitive.
var excludedTags = []string{"音MAD"}

// Identifier is a video reference accepted by the check service.
// INVARIANT: an Identifier value always starts with one of the accepted prefixes.
type Identifier string

// ParseIdentifier returns the input as an Identifier when it carries an accepted prefix.
// PRE: none
// POST: ok is false for any input not starting with "sm" or "nv"; the input is never altered
func ParseIdentifier(input string) (Identifier, bool) {
	for _, p := range acceptedPrefixes {
		if strings.HasPrefix(input, p) {
			return Identifier(input), true
		}
	}
	return "", false
}

// String returns the raw identifier text.
func (id Identifier) String() string {
	return string(id)
}

// Record is the metadata returned for an identifier.
type Record struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Tags              []string `json:"tags"` // upstream order is preserved
	ThumbnailURL      string   `json:"thumbnail_url"`
	ThumbnailURLLarge string   `json:"thumbnail_url_large"`
}

// IsExcludedTag reports whether a tag is skipped by existence lookups.
func IsExcludedTag(tag string) bool {
	for _, t := range excludedTags {
		if t == tag {
			return true
		}
	}
	return false
}
