package tag_test

import (
	"errors"
	"reflect"
	"testing"

	"tagdesk/internal/domain/tag"
)

// TestDraft_AppendThenRemoveFirst verifies appending then deleting index 0 keeps the remaining order.
func TestDraft_AppendThenRemoveFirst(t *testing.T) {
	d := tag.Draft{ExtraNames: []string{"a", "b", "c"}}
	d.AppendExtraName()
	if want := []string{"a", "b", "c", ""}; !reflect.DeepEqual(d.ExtraNames, want) {
		t.Fatalf("after append = %q, want %q", d.ExtraNames, want)
	}
	d.RemoveExtraName(3)
	if !d.RemoveExtraName(0) {
		t.Fatal("RemoveExtraName(0) = false, want true")
	}
	if want := []string{"b", "c"}; !reflect.DeepEqual(d.ExtraNames, want) {
		t.Errorf("ExtraNames = %q, want %q", d.ExtraNames, want)
	}
}

// TestDraft_SetExtraName verifies editing replaces in place.
func TestDraft_SetExtraName(t *testing.T) {
	original := []string{"a", "b", "c"}
	d := tag.Draft{ExtraNames: original}
	if !d.SetExtraName(1, "z") {
		t.Fatal("SetExtraName(1) = false, want true")
	}
	if want := []string{"a", "z", "c"}; !reflect.DeepEqual(d.ExtraNames, want) {
		t.Errorf("ExtraNames = %q, want %q", d.ExtraNames, want)
	}
	if original[1] != "b" {
		t.Errorf("caller slice mutated: %q", original)
	}
}

// TestDraft_OutOfRange verifies bad indices leave the list untouched.
func TestDraft_OutOfRange(t *testing.T) {
	d := tag.Draft{ExtraNames: []string{"a"}}
	for _, i := range []int{-1, 1, 5} {
		if d.SetExtraName(i, "x") {
			t.Errorf("SetExtraName(%d) = true, want false", i)
		}
		if d.RemoveExtraName(i) {
			t.Errorf("RemoveExtraName(%d) = true, want false", i)
		}
	}
	if want := []string{"a"}; !reflect.DeepEqual(d.ExtraNames, want) {
		t.Errorf("ExtraNames = %q, want %q", d.ExtraNames, want)
	}
}

// TestDraft_RemoveMiddle verifies later entries shift up without gaps.
func TestDraft_RemoveMiddle(t *testing.T) {
	d := tag.Draft{ExtraNames: []string{"a", "b", "c", "d"}}
	d.RemoveExtraName(1)
	if want := []string{"a", "c", "d"}; !reflect.DeepEqual(d.ExtraNames, want) {
		t.Errorf("ExtraNames = %q, want %q", d.ExtraNames, want)
	}
}

// TestDraft_Ready covers the submission preconditions.
func TestDraft_Ready(t *testing.T) {
	tests := []struct {
		name  string
		draft tag.Draft
		want  bool
	}{
		{"type and name set", tag.Draft{PrimaryName: "foo", Type: tag.TypeWork}, true},
		{"type unset", tag.Draft{PrimaryName: "foo"}, false},
		{"name empty", tag.Draft{Type: tag.TypeMusic}, false},
		{"name whitespace only", tag.Draft{PrimaryName: "  ", Type: tag.TypeMusic}, true},
		{"both missing", tag.Draft{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.draft.Ready(); got != tt.want {
				t.Errorf("Ready() = %v, want %v", got, tt.want)
			}
			if _, ok := tt.draft.Submission(); ok != tt.want {
				t.Errorf("Submission() ok = %v, want %v", ok, tt.want)
			}
		})
	}
}

// TestDraft_SubmittedExtraNames verifies empty entries and duplicates are dropped in first-seen order.
func TestDraft_SubmittedExtraNames(t *testing.T) {
	d := tag.Draft{
		PrimaryName: "p",
		Type:        tag.TypeSeries,
		ExtraNames:  []string{"b", "", "a", "b", "  ", "c", "a"},
	}
	sub, ok := d.Submission()
	if !ok {
		t.Fatal("Submission() ok = false")
	}
	if want := []string{"b", "a", "  ", "c"}; !reflect.DeepEqual(sub.ExtraNames, want) {
		t.Errorf("ExtraNames = %q, want %q", sub.ExtraNames, want)
	}
	if len(d.ExtraNames) != 7 {
		t.Errorf("draft modified: %q", d.ExtraNames)
	}
	if sub.Type != tag.TypeSeries || sub.PrimaryName != "p" {
		t.Errorf("submission = %+v", sub)
	}
}

// TestParseType covers known, empty, and unknown categories.
func TestParseType(t *testing.T) {
	for _, want := range tag.Types {
		got, err := tag.ParseType(string(want))
		if err != nil || got != want {
			t.Errorf("ParseType(%q) = %q, %v", want, got, err)
		}
	}
	if got, err := tag.ParseType(""); err != nil || got != tag.TypeUnset {
		t.Errorf("ParseType(\"\") = %q, %v", got, err)
	}
	if _, err := tag.ParseType("work"); !errors.Is(err, tag.ErrUnknownType) {
		t.Errorf("ParseType(\"work\") err = %v, want ErrUnknownType", err)
	}
}

// TestType_Advisory verifies only CHARACTER carries a notice.
func TestType_Advisory(t *testing.T) {
	for _, typ := range tag.Types {
		got := typ.Advisory()
		if typ == tag.TypeCharacter {
			if got == "" {
				t.Error("CHARACTER advisory is empty")
			}
			continue
		}
		if got != "" {
			t.Errorf("%s advisory = %q, want empty", typ, got)
		}
	}
}
