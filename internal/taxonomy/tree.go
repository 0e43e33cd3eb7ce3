package taxonomy

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tree is the nested document form used to seed the taxonomy:
//
//	segments:
//	  - id: sec
//	    name: Secondary
//	    groups:
//	      - id: c10
//	        name: Class 10
//	        subjects:
//	          - {id: phy10, name: Physics}
type Tree struct {
	Segments []SegmentNode `yaml:"segments"`
}

// SegmentNode is a segment with its groups.
type SegmentNode struct {
	Segment `yaml:",inline"`
	Groups  []GroupNode `yaml:"groups"`
}

// GroupNode is a group with its subjects.
type GroupNode struct {
	Group    `yaml:",inline"`
	Subjects []Subject `yaml:"subjects"`
}

// ParseTree decodes and validates a YAML taxonomy document. Parent ids are
// filled in from the nesting.
func ParseTree(r io.Reader) (*Tree, error) {
	var t Tree
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}

	seen := make(map[string]string)
	claim := func(kind, id string) error {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%s with empty id", kind)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("duplicate id %q (%s and %s)", id, prev, kind)
		}
		seen[id] = kind
		return nil
	}

	for i := range t.Segments {
		seg := &t.Segments[i]
		if err := claim("segment", seg.ID); err != nil {
			return nil, err
		}
		for j := range seg.Groups {
			grp := &seg.Groups[j]
			if err := claim("group", grp.ID); err != nil {
				return nil, err
			}
			grp.SegmentID = seg.ID
			for k := range grp.Subjects {
				if err := claim("subject", grp.Subjects[k].ID); err != nil {
					return nil, err
				}
				grp.Subjects[k].GroupID = grp.ID
			}
		}
	}
	return &t, nil
}
