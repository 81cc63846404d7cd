package tag

import (
	"errors"
	"fmt"
)

// ErrUnknownType is returned when a category string is not one of the known types.
var ErrUnknownType = errors.New("unknown tag type")

// Type is the category of a tag.
type Type string

// Tag categories. The zero value means no category has been chosen.
const (
	TypeUnset     Type = ""
	TypeWork      Type = "WORK"
	TypeCharacter Type = "CHARACTER"
	TypeMaterial  Type = "MATERIAL"
	TypeStyle     Type = "STYLE"
	TypeSeries    Type = "SERIES"
	TypeMusic     Type = "MUSIC"
)

// Types lists every selectable category in display order.
var Types = []Type{TypeWork, TypeCharacter, TypeMaterial, TypeStyle, TypeSeries, TypeMusic}

// ParseType converts form input into a Type.
// PRE: none
// POST: "" yields TypeUnset; any other unknown value yields ErrUnknownType
func ParseType(s string) (Type, error) {
	if s == "" {
		return TypeUnset, nil
	}
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return TypeUnset, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// IsSet reports whether a category has been chosen.
func (t Type) IsSet() bool {
	return t != TypeUnset
}

// Advisory returns the markdown notice shown when the type is selected, or "".
func (t Type) Advisory() string {
	if t == TypeCharacter {
		return "**character** must have context."
	}
	return ""
}

// Match is an existing tag returned by a name search.
type Match struct {
	ID          string `json:"id"`
	NameSearch  string `json:"name_search"`
	NamePrimary string `json:"name_primary"`
}
