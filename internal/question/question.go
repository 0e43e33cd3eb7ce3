package question

import (
	"fmt"
	"time"

	"github.com/abhisek/qbank/internal/taxonomy"
)

// Kind is the question type.
type Kind string

const (
	KindMCQ         Kind = "mcq"
	KindDescriptive Kind = "descriptive"
	KindPassage     Kind = "passage"
)

// AllKinds returns every kind in display order.
func AllKinds() []Kind {
	return []Kind{KindMCQ, KindDescriptive, KindPassage}
}

// ParseKind converts user input to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindMCQ, KindDescriptive, KindPassage:
		return k, nil
	}
	return "", fmt.Errorf("unknown question type %q (want mcq, descriptive or passage)", s)
}

// Label returns a short display label.
func (k Kind) Label() string {
	switch k {
	case KindMCQ:
		return "MCQ"
	case KindDescriptive:
		return "Descriptive"
	case KindPassage:
		return "Passage"
	default:
		return string(k)
	}
}

// Question is a top-level entry of the question bank.
//
// A passage owns its sub-questions as Children. Child has no Children field
// of its own, so a passage inside a passage cannot be represented.
type Question struct {
	ID             string                  `json:"id"`
	Kind           Kind                    `json:"type" validate:"required,oneof=mcq descriptive passage"`
	Body           string                  `json:"body" validate:"notblank"`
	Marks          int                     `json:"marks" validate:"gte=0"`
	Explanation    string                  `json:"explanation,omitempty"`
	Tags           []string                `json:"topicTags,omitempty"`
	Classification taxonomy.Classification `json:"classification"`
	Options        Options                 `json:"options,omitempty" validate:"omitempty,dive"`
	Children       []Child                 `json:"children,omitempty" validate:"omitempty,dive"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

// Child is a sub-question of a passage. Its Kind is mcq or descriptive.
type Child struct {
	ID          string  `json:"id"`
	Kind        Kind    `json:"type" validate:"required,oneof=mcq descriptive"`
	Body        string  `json:"body" validate:"notblank"`
	Marks       int     `json:"marks" validate:"gte=0"`
	Explanation string  `json:"explanation,omitempty"`
	Options     Options `json:"options,omitempty" validate:"omitempty,dive"`
}

// TotalMarks is the score a question contributes to a paper: the children
// sum for a passage, the own marks otherwise.
func (q Question) TotalMarks() int {
	if q.Kind != KindPassage {
		return q.Marks
	}
	total := 0
	for _, c := range q.Children {
		total += c.Marks
	}
	return total
}

// Normalize applies the invariants that hold regardless of input: passage
// marks are 0, options only exist on MCQs, children only on passages.
func (q *Question) Normalize() {
	if q.Kind == KindPassage {
		q.Marks = 0
		q.Options = nil
	} else {
		q.Children = nil
	}
	if q.Kind == KindDescriptive {
		q.Options = nil
	}
	for i := range q.Children {
		if q.Children[i].Kind != KindMCQ {
			q.Children[i].Options = nil
		}
	}
}

// Clone returns a deep copy.
func (q Question) Clone() Question {
	out := q
	if q.Tags != nil {
		out.Tags = append([]string(nil), q.Tags...)
	}
	out.Options = q.Options.Clone()
	if q.Children != nil {
		out.Children = make([]Child, len(q.Children))
		for i, c := range q.Children {
			c.Options = c.Options.Clone()
			out.Children[i] = c
		}
	}
	return out
}
