package media_test

import (
	"testing"

	"tagdesk/internal/domain/media"
)

// TestParseIdentifier verifies only sm/nv prefixed input becomes an identifier.
func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		input  string
		wantOK bool
	}{
		{"sm39829973", true},
		{"nv1234", true},
		{"sm", true},
		{"", false},
		{"so123", false},
		{"SM39829973", false},
		{" sm39829973", false},
		{"https://www.nicovideo.jp/watch/sm9", false},
		{"39829973", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id, ok := media.ParseIdentifier(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseIdentifier(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && id.String() != tt.input {
				t.Errorf("identifier = %q, want the input unchanged", id)
			}
			if !ok && id != "" {
				t.Errorf("rejected input produced identifier %q", id)
			}
		})
	}
}

// TestIsExcludedTag verifies the exclusion list is an exact, case-sensitive match.
func TestIsExcludedTag(t *testing.T) {
	tests := []struct {
		tag  string
		want bool
	}{
		{"音MAD", true},
		{"音mad", false},
		{"音MAD ", false},
		{"foo", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := media.IsExcludedTag(tt.tag); got != tt.want {
			t.Errorf("IsExcludedTag(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}
