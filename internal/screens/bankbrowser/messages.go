package bankbrowser

import (
	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/tags"
	"github.com/abhisek/qbank/internal/taxonomy"
)

// resultMsg carries the outcome of the query with sequence seq.
type resultMsg struct {
	seq uint64
	res bank.Result
	err error
}

type segmentsMsg struct {
	segments []taxonomy.Segment
	err      error
}

type groupsMsg struct {
	segmentID string
	groups    []taxonomy.Group
	err       error
}

type subjectsMsg struct {
	groupID  string
	subjects []taxonomy.Subject
	err      error
}

type tagsMsg struct {
	index *tags.Index
	err   error
}

// searchSettledMsg fires when the debounce delay for token has passed.
type searchSettledMsg struct {
	token uint64
}

type deletedMsg struct {
	id  string
	err error
}
