// Package tags implements the topic tag index: parsing comma-separated tag
// input, case-insensitive deduplication and autocomplete suggestions.
//
// Tags are deduplicated case-insensitively and displayed with the first
// spelling seen ("Algebra" and "algebra" are one tag, shown as whichever
// arrived first).
package tags

import (
	"sort"
	"strings"
)

// Key returns the dedup key for a tag.
func Key(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Parse splits comma-separated input into a normalized tag list.
func Parse(raw string) []string {
	return Normalize(strings.Split(raw, ","))
}

// Normalize trims every tag, drops empties and removes case-insensitive
// duplicates while preserving insertion order.
func Normalize(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		k := Key(t)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}

// Index is the global, derived tag set. It is rebuilt from persisted
// questions and never stored on its own.
type Index struct {
	tags []string // normalized, sorted case-insensitively
}

// NewIndex builds an index from every tag attached to persisted questions.
func NewIndex(all []string) *Index {
	tags := Normalize(all)
	sort.SliceStable(tags, func(i, j int) bool {
		return Key(tags[i]) < Key(tags[j])
	})
	return &Index{tags: tags}
}

// All returns every indexed tag.
func (x *Index) All() []string {
	out := make([]string, len(x.tags))
	copy(out, x.tags)
	return out
}

// Len returns the number of distinct tags.
func (x *Index) Len() int {
	return len(x.tags)
}

// Suggest returns indexed tags containing partial (case-insensitive),
// excluding any tag already present in exclude.
func (x *Index) Suggest(partial string, exclude []string) []string {
	needle := Key(partial)
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[Key(e)] = true
	}

	out := []string{}
	for _, t := range x.tags {
		k := Key(t)
		if skip[k] {
			continue
		}
		if needle == "" || strings.Contains(k, needle) {
			out = append(out, t)
		}
	}
	return out
}
