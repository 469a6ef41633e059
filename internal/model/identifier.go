// Package model defines the compiled form of traitenum declarations.
//
// A Schema (an "enumtrait") is the validated set of typed fields produced by
// the schema compiler. An Instance (a "traitenum") is an ordered record set
// whose every field has been resolved against a Schema. The two phases of the
// compiler only communicate through the serialized Schema.
package model

import (
	"fmt"
	"strings"
)

// PathSeparator separates the segments of an Identifier's textual form.
const PathSeparator = "::"

// Identifier is a namespaced name such as family::ParentTrait.
type Identifier struct {
	Path []string `codec:"path" json:"path" yaml:"path"`
	Name string   `codec:"name" json:"name" yaml:"name"`
}

// NewIdentifier builds an Identifier from its path segments and name.
func NewIdentifier(path []string, name string) Identifier {
	segments := make([]string, len(path))
	copy(segments, path)
	return Identifier{Path: segments, Name: name}
}

// ParseIdentifier parses the textual form a::b::Name.
func ParseIdentifier(text string) (Identifier, error) {
	if strings.TrimSpace(text) == "" {
		return Identifier{}, fmt.Errorf("%w: empty identifier", ErrInvalidIdentifier)
	}
	parts := strings.Split(text, PathSeparator)
	for _, part := range parts {
		if !isIdent(part) {
			return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, text)
		}
	}
	return NewIdentifier(parts[:len(parts)-1], parts[len(parts)-1]), nil
}

// FromSegments builds an Identifier from a full path where the last segment is
// the name.
func FromSegments(segments []string) Identifier {
	if len(segments) == 0 {
		return Identifier{Path: []string{}}
	}
	return NewIdentifier(segments[:len(segments)-1], segments[len(segments)-1])
}

// String returns the textual form a::b::Name.
func (id Identifier) String() string {
	if len(id.Path) == 0 {
		return id.Name
	}
	return strings.Join(id.Path, PathSeparator) + PathSeparator + id.Name
}

// Segments returns path and name as one slice.
func (id Identifier) Segments() []string {
	segments := make([]string, 0, len(id.Path)+1)
	segments = append(segments, id.Path...)
	return append(segments, id.Name)
}

// Equal reports whether both path and name match exactly.
func (id Identifier) Equal(other Identifier) bool {
	if id.Name != other.Name || len(id.Path) != len(other.Path) {
		return false
	}
	for i := range id.Path {
		if id.Path[i] != other.Path[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether the identifier has no name.
func (id Identifier) IsZero() bool {
	return id.Name == ""
}

// Base strips the last path element: Set::Record becomes Set.
func (id Identifier) Base() (Identifier, error) {
	if len(id.Path) == 0 {
		return Identifier{}, fmt.Errorf("%w: %s has no base", ErrInvalidIdentifier, id)
	}
	return FromSegments(id.Path), nil
}

// Qualifier returns the last path segment, or "" for a bare name.
func (id Identifier) Qualifier() string {
	if len(id.Path) == 0 {
		return ""
	}
	return id.Path[len(id.Path)-1]
}

// Child appends name below this identifier: RPS.Child("Rock") is RPS::Rock.
func (id Identifier) Child(name string) Identifier {
	return NewIdentifier(id.Segments(), name)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
