package taxonomy

import (
	"errors"
	"fmt"
)

// Level identifies a depth in the three-level classification tree.
type Level int

const (
	LevelSegment Level = iota
	LevelGroup
	LevelSubject
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelSegment:
		return "segment"
	case LevelGroup:
		return "group"
	case LevelSubject:
		return "subject"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Segment is the broadest classification level (e.g. "Secondary School").
type Segment struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Group belongs to exactly one Segment (e.g. "Class 10").
type Group struct {
	ID        string `json:"id" yaml:"id"`
	SegmentID string `json:"segmentId" yaml:"-"`
	Name      string `json:"name" yaml:"name"`
}

// Subject belongs to exactly one Group (e.g. "Physics").
type Subject struct {
	ID      string `json:"id" yaml:"id"`
	GroupID string `json:"groupId" yaml:"-"`
	Name    string `json:"name" yaml:"name"`
}

// Classification places a question in the taxonomy. Every level is optional,
// but a narrower level requires the broader one: SubjectID implies GroupID
// implies SegmentID.
type Classification struct {
	SegmentID string `json:"segmentId,omitempty"`
	GroupID   string `json:"groupId,omitempty"`
	SubjectID string `json:"subjectId,omitempty"`
}

// ErrBrokenHierarchy is returned by Validate when a narrower level is set
// without its parent.
var ErrBrokenHierarchy = errors.New("classification hierarchy broken")

// IsEmpty reports whether the classification is unclassified.
func (c Classification) IsEmpty() bool {
	return c.SegmentID == "" && c.GroupID == "" && c.SubjectID == ""
}

// Validate checks the subject ⇒ group ⇒ segment rule.
func (c Classification) Validate() error {
	if c.SubjectID != "" && c.GroupID == "" {
		return fmt.Errorf("%w: subject %q set without group", ErrBrokenHierarchy, c.SubjectID)
	}
	if c.GroupID != "" && c.SegmentID == "" {
		return fmt.Errorf("%w: group %q set without segment", ErrBrokenHierarchy, c.GroupID)
	}
	return nil
}

// Get returns the id stored at level.
func (c Classification) Get(level Level) string {
	switch level {
	case LevelSegment:
		return c.SegmentID
	case LevelGroup:
		return c.GroupID
	case LevelSubject:
		return c.SubjectID
	}
	return ""
}

// Narrow returns a copy of c with level set to id and every deeper level
// cleared. Setting a level to "" therefore clears it and everything below.
func Narrow(c Classification, level Level, id string) Classification {
	switch level {
	case LevelSegment:
		return Classification{SegmentID: id}
	case LevelGroup:
		return Classification{SegmentID: c.SegmentID, GroupID: id}
	case LevelSubject:
		return Classification{SegmentID: c.SegmentID, GroupID: c.GroupID, SubjectID: id}
	}
	return c
}
