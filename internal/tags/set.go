package tags

import "strings"

// Delimiters are the keys that commit the tag being typed.
var Delimiters = []string{",", "enter"}

// Set is the working tag list of a question being edited.
type Set struct {
	values []string
}

// NewSet creates a Set seeded with existing tags.
func NewSet(initial []string) *Set {
	return &Set{values: Normalize(initial)}
}

// Commit adds a typed value. It returns false when the value is blank or
// already present.
func (s *Set) Commit(raw string) bool {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), ","))
	if raw == "" || s.Has(raw) {
		return false
	}
	s.values = append(s.values, raw)
	return true
}

// Remove drops a tag (case-insensitive) and reports whether it was present.
func (s *Set) Remove(tag string) bool {
	k := Key(tag)
	for i, v := range s.values {
		if Key(v) == k {
			s.values = append(s.values[:i], s.values[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether tag is present (case-insensitive).
func (s *Set) Has(tag string) bool {
	k := Key(tag)
	for _, v := range s.values {
		if Key(v) == k {
			return true
		}
	}
	return false
}

// Values returns the tags in insertion order.
func (s *Set) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}
