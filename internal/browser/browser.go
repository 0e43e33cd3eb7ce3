// Package browser is the state machine behind the question browser: filter
// cascade, debounced search, offset pagination and stale-result handling.
//
// Browser performs no I/O. Every mutator that changes what should be shown
// returns a *Query for the caller to run (in the TUI, as a tea.Cmd); the
// result comes back through Resolve. Only the most recently issued query
// may land, so a slow response to an old filter never overwrites a newer
// one.
package browser

import (
	"strings"
	"time"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/taxonomy"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultPageSize = bank.DefaultPageSize
	DefaultDebounce = 300 * time.Millisecond
)

// Status is the lifecycle state of the result list.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Query is a repository lookup the caller must execute.
type Query struct {
	Seq    uint64
	Filter bank.Filter
	Page   bank.Page
}

// Config tunes a Browser.
type Config struct {
	PageSize int
	Debounce time.Duration
}

// Browser holds the filter inputs and the last applied result.
type Browser struct {
	pageSize int
	debounce time.Duration

	filter bank.Filter
	page   int

	status Status
	rows   []question.Question
	total  int
	err    error

	groups   []taxonomy.Group
	subjects []taxonomy.Subject

	seq         uint64
	searchToken uint64
	pendingText string
}

// New creates an idle Browser.
func New(cfg Config) *Browser {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Browser{pageSize: cfg.PageSize, debounce: cfg.Debounce}
}

// Start issues the first query.
func (b *Browser) Start() *Query {
	return b.issue()
}

// Refresh re-runs the current query, for example after a question was
// added or deleted.
func (b *Browser) Refresh() *Query {
	return b.issue()
}

// SetSegment selects a segment. Group, subject and both option lists are
// cleared in the same step.
func (b *Browser) SetSegment(id string) *Query {
	if id == b.filter.Classification.SegmentID {
		return nil
	}
	b.filter.Classification = taxonomy.Narrow(b.filter.Classification, taxonomy.LevelSegment, id)
	b.groups = nil
	b.subjects = nil
	return b.filterChanged()
}

// SetGroup selects a group. The subject and its option list are cleared.
func (b *Browser) SetGroup(id string) *Query {
	if id == b.filter.Classification.GroupID {
		return nil
	}
	b.filter.Classification = taxonomy.Narrow(b.filter.Classification, taxonomy.LevelGroup, id)
	b.subjects = nil
	return b.filterChanged()
}

// SetSubject selects a subject.
func (b *Browser) SetSubject(id string) *Query {
	if id == b.filter.Classification.SubjectID {
		return nil
	}
	b.filter.Classification = taxonomy.Narrow(b.filter.Classification, taxonomy.LevelSubject, id)
	return b.filterChanged()
}

// SetKind filters by question type; "" clears the filter.
func (b *Browser) SetKind(k question.Kind) *Query {
	if k == b.filter.Kind {
		return nil
	}
	b.filter.Kind = k
	return b.filterChanged()
}

// SetTag filters by tag substring.
func (b *Browser) SetTag(tag string) *Query {
	tag = strings.TrimSpace(tag)
	if tag == b.filter.Tag {
		return nil
	}
	b.filter.Tag = tag
	return b.filterChanged()
}

// SetSearch records typed search text and returns a token. The search is
// applied only when SearchSettled is called with the latest token, once
// the debounce delay has passed.
func (b *Browser) SetSearch(text string) uint64 {
	b.searchToken++
	b.pendingText = strings.TrimSpace(text)
	return b.searchToken
}

// SearchSettled applies the pending search text if token is still the
// latest and the text differs from the applied search.
func (b *Browser) SearchSettled(token uint64) *Query {
	if token != b.searchToken || b.pendingText == b.filter.Text {
		return nil
	}
	b.filter.Text = b.pendingText
	return b.filterChanged()
}

// ClearFilters resets every filter and the search text.
func (b *Browser) ClearFilters() *Query {
	if b.filter == (bank.Filter{}) && b.pendingText == "" {
		return nil
	}
	b.filter = bank.Filter{}
	b.pendingText = ""
	b.searchToken++
	b.groups = nil
	b.subjects = nil
	return b.filterChanged()
}

// NextPage advances one page when more rows exist.
func (b *Browser) NextPage() *Query {
	if !b.HasMore() {
		return nil
	}
	b.page++
	return b.issue()
}

// PrevPage goes back one page.
func (b *Browser) PrevPage() *Query {
	if b.page == 0 {
		return nil
	}
	b.page--
	return b.issue()
}

// Resolve applies the outcome of query seq. Results of superseded queries
// are discarded and Resolve returns false. On error the status becomes
// Failed and the previous rows stay visible.
func (b *Browser) Resolve(seq uint64, res bank.Result, err error) bool {
	if seq != b.seq {
		return false
	}
	if err != nil {
		b.status = Failed
		b.err = err
		return true
	}
	b.status = Ready
	b.err = nil
	b.rows = res.Records
	b.total = res.Total
	return true
}

// SetGroupOptions stores the groups available for the selected segment.
// Lists for a segment that is no longer selected are ignored.
func (b *Browser) SetGroupOptions(segmentID string, groups []taxonomy.Group) bool {
	if segmentID != b.filter.Classification.SegmentID {
		return false
	}
	b.groups = groups
	return true
}

// SetSubjectOptions stores the subjects available for the selected group.
func (b *Browser) SetSubjectOptions(groupID string, subjects []taxonomy.Subject) bool {
	if groupID != b.filter.Classification.GroupID {
		return false
	}
	b.subjects = subjects
	return true
}

// HasMore compares the end of the current page against the last total.
func (b *Browser) HasMore() bool {
	return (b.page+1)*b.pageSize < b.total
}

func (b *Browser) Status() Status { return b.status }
func (b *Browser) Rows() []question.Question { return b.rows }
func (b *Browser) Total() int { return b.total }
func (b *Browser) Err() error { return b.err }
func (b *Browser) Page() int { return b.page }
func (b *Browser) PageSize() int { return b.pageSize }
func (b *Browser) Filter() bank.Filter { return b.filter }
func (b *Browser) PendingSearch() string { return b.pendingText }
func (b *Browser) Debounce() time.Duration { return b.debounce }
func (b *Browser) GroupOptions() []taxonomy.Group { return b.groups }
func (b *Browser) SubjectOptions() []taxonomy.Subject { return b.subjects }

// PageCount is the number of pages for the last total, at least 1.
func (b *Browser) PageCount() int {
	if b.total == 0 {
		return 1
	}
	return (b.total + b.pageSize - 1) / b.pageSize
}

func (b *Browser) filterChanged() *Query {
	b.page = 0
	return b.issue()
}

func (b *Browser) issue() *Query {
	b.seq++
	b.status = Loading
	return &Query{
		Seq:    b.seq,
		Filter: b.filter,
		Page:   bank.Page{Number: b.page, Size: b.pageSize},
	}
}
