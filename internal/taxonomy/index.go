package taxonomy

import (
	"context"
	"fmt"
)

// Source is the read side of the backing store that the Index fronts.
type Source interface {
	Segments(ctx context.Context) ([]Segment, error)
	Groups(ctx context.Context, segmentID string) ([]Group, error)
	Subjects(ctx context.Context, groupID string) ([]Subject, error)

	// Group and Subject return (nil, nil) when the id is unknown.
	Group(ctx context.Context, id string) (*Group, error)
	Subject(ctx context.Context, id string) (*Subject, error)
}

// Index exposes the taxonomy for cascading selectors.
type Index struct {
	src Source
}

// NewIndex creates an Index reading from src.
func NewIndex(src Source) *Index {
	return &Index{src: src}
}

// ListSegments returns every segment.
func (x *Index) ListSegments(ctx context.Context) ([]Segment, error) {
	segs, err := x.src.Segments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	return segs, nil
}

// ListGroups returns the groups of segmentID. An empty segmentID yields an
// empty result without touching the store.
func (x *Index) ListGroups(ctx context.Context, segmentID string) ([]Group, error) {
	if segmentID == "" {
		return []Group{}, nil
	}
	groups, err := x.src.Groups(ctx, segmentID)
	if err != nil {
		return nil, fmt.Errorf("list groups of %s: %w", segmentID, err)
	}
	return groups, nil
}

// ListSubjects returns the subjects of groupID. An empty groupID yields an
// empty result without touching the store.
func (x *Index) ListSubjects(ctx context.Context, groupID string) ([]Subject, error) {
	if groupID == "" {
		return []Subject{}, nil
	}
	subjects, err := x.src.Subjects(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list subjects of %s: %w", groupID, err)
	}
	return subjects, nil
}

// Agrees reports whether every pair of levels set in c is consistent with
// the stored hierarchy. Levels may be set independently (a filter may name a
// subject without its group); unknown ids never agree.
func (x *Index) Agrees(ctx context.Context, c Classification) (bool, error) {
	var group *Group
	if c.GroupID != "" {
		g, err := x.src.Group(ctx, c.GroupID)
		if err != nil {
			return false, fmt.Errorf("lookup group %s: %w", c.GroupID, err)
		}
		if g == nil {
			return false, nil
		}
		if c.SegmentID != "" && g.SegmentID != c.SegmentID {
			return false, nil
		}
		group = g
	}

	if c.SubjectID != "" {
		s, err := x.src.Subject(ctx, c.SubjectID)
		if err != nil {
			return false, fmt.Errorf("lookup subject %s: %w", c.SubjectID, err)
		}
		if s == nil {
			return false, nil
		}
		if c.GroupID != "" && s.GroupID != c.GroupID {
			return false, nil
		}
		if c.SegmentID != "" && group == nil {
			g, err := x.src.Group(ctx, s.GroupID)
			if err != nil {
				return false, fmt.Errorf("lookup group %s: %w", s.GroupID, err)
			}
			if g == nil || g.SegmentID != c.SegmentID {
				return false, nil
			}
		}
	}
	return true, nil
}
