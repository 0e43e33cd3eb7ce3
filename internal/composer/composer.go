// Package composer assembles questions from the bank into an exam paper.
//
// The Composer holds deep copies of the selected questions, so later edits
// to the bank never leak into a paper being composed. All methods run on
// the caller's goroutine and are applied in call order.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/qbank/internal/question"
)

// ErrEmptySelection is returned by Save when no question is selected.
var ErrEmptySelection = errors.New("select at least one question")

// DefaultTitle heads a paper whose title was left blank.
const DefaultTitle = "Untitled paper"

// Meta is the paper header information.
type Meta struct {
	Title          string `json:"title"`
	InstituteLabel string `json:"instituteLabel,omitempty"`
	Duration       string `json:"duration,omitempty"`
	Instructions   string `json:"instructions,omitempty"`
}

// Entry is one selected question with the marks it carries on the paper.
type Entry struct {
	Question question.Question `json:"question"`
	Marks    int               `json:"marks"`
}

// Paper is an immutable saved snapshot of a composed exam.
type Paper struct {
	ID         string    `json:"id"`
	Meta       Meta      `json:"meta"`
	Entries    []Entry   `json:"entries"`
	TotalMarks int       `json:"totalMarks"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PaperSaver persists a paper snapshot, assigning its ID.
type PaperSaver interface {
	Save(ctx context.Context, p *Paper) error
}

// Composer is the working selection of an exam paper.
type Composer struct {
	meta    Meta
	entries []Entry
}

// New creates an empty Composer.
func New() *Composer {
	return &Composer{}
}

// Add appends a deep copy of q with its default marks. Adding a question
// that is already selected is a no-op and returns false.
func (c *Composer) Add(q question.Question) bool {
	if c.index(q.ID) >= 0 {
		return false
	}
	c.entries = append(c.entries, Entry{
		Question: q.Clone(),
		Marks:    q.TotalMarks(),
	})
	return true
}

// Remove drops the entry with id. Unknown ids return false.
func (c *Composer) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	return true
}

// SetMarks overrides the marks of an entry. Negative values clamp to 0.
// Unknown ids leave the selection unchanged and return false.
func (c *Composer) SetMarks(id string, marks int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	if marks < 0 {
		marks = 0
	}
	c.entries[i].Marks = marks
	return true
}

// SetMarksInput applies raw user input to an entry's marks via ParseMarks.
func (c *Composer) SetMarksInput(id, raw string) bool {
	return c.SetMarks(id, ParseMarks(raw))
}

// Move shifts the entry with id by delta positions, clamped to the ends
// of the selection. It reports whether the order changed.
func (c *Composer) Move(id string, delta int) bool {
	i := c.index(id)
	if i < 0 || delta == 0 {
		return false
	}
	j := i + delta
	if j < 0 {
		j = 0
	}
	if j >= len(c.entries) {
		j = len(c.entries) - 1
	}
	if i == j {
		return false
	}
	e := c.entries[i]
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	c.entries = append(c.entries[:j], append([]Entry{e}, c.entries[j:]...)...)
	return true
}

// TotalMarks is the sum of entry marks. It is computed on every call.
func (c *Composer) TotalMarks() int {
	total := 0
	for _, e := range c.entries {
		total += e.Marks
	}
	return total
}

// Entries returns the selection in paper order. The slice is a copy; the
// questions inside are shared and must not be mutated.
func (c *Composer) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of selected questions.
func (c *Composer) Len() int {
	return len(c.entries)
}

// Has reports whether id is selected.
func (c *Composer) Has(id string) bool {
	return c.index(id) >= 0
}

// Marks returns the marks of entry id and whether it is selected.
func (c *Composer) Marks(id string) (int, bool) {
	i := c.index(id)
	if i < 0 {
		return 0, false
	}
	return c.entries[i].Marks, true
}

func (c *Composer) Meta() Meta {
	return c.meta
}

func (c *Composer) SetMeta(m Meta) {
	c.meta = m
}

// Clone returns an independent copy of the composer.
func (c *Composer) Clone() *Composer {
	p := c.Snapshot()
	return &Composer{meta: c.meta, entries: p.Entries}
}

// Reset clears the selection and metadata.
func (c *Composer) Reset() {
	c.meta = Meta{}
	c.entries = nil
}

// Snapshot builds the paper as it would be saved, without persisting it.
// A blank title becomes DefaultTitle.
func (c *Composer) Snapshot() Paper {
	meta := c.meta
	if strings.TrimSpace(meta.Title) == "" {
		meta.Title = DefaultTitle
	}
	entries := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		entries[i] = Entry{Question: e.Question.Clone(), Marks: e.Marks}
	}
	return Paper{
		Meta:       meta,
		Entries:    entries,
		TotalMarks: c.TotalMarks(),
	}
}

// Save validates the selection and persists a snapshot through s. The
// composer is left untouched whatever the outcome, so a failed save can
// be retried.
func (c *Composer) Save(ctx context.Context, s PaperSaver) (*Paper, error) {
	if len(c.entries) == 0 {
		return nil, ErrEmptySelection
	}
	p := c.Snapshot()
	p.CreatedAt = time.Now().UTC()
	if err := s.Save(ctx, &p); err != nil {
		return nil, fmt.Errorf("save paper: %w", err)
	}
	return &p, nil
}

// IsValidationError reports whether err is a selection problem the author
// can fix, as opposed to a persistence failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptySelection)
}

func (c *Composer) index(id string) int {
	for i, e := range c.entries {
		if e.Question.ID == id {
			return i
		}
	}
	return -1
}
