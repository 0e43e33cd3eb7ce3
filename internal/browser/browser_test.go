package browser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/taxonomy"
)

func rows(n int) []question.Question {
	out := make([]question.Question, n)
	for i := range out {
		out[i] = question.Question{ID: string(rune('a' + i)), Kind: question.KindDescriptive}
	}
	return out
}

func TestBrowser_Lifecycle(t *testing.T) {
	b := New(Config{})
	assert.Equal(t, Idle, b.Status())
	assert.Equal(t, DefaultPageSize, b.PageSize())

	q := b.Start()
	require.NotNil(t, q)
	assert.Equal(t, Loading, b.Status())
	assert.Equal(t, bank.Page{Number: 0, Size: DefaultPageSize}, q.Page)

	require.True(t, b.Resolve(q.Seq, bank.Result{Records: rows(3), Total: 3}, nil))
	assert.Equal(t, Ready, b.Status())
	assert.Len(t, b.Rows(), 3)
}

func TestBrowser_SegmentChangeClearsGroupAndSubject(t *testing.T) {
	b := New(Config{})
	b.SetSegment("k12")
	b.SetGroupOptions("k12", []taxonomy.Group{{ID: "X", SegmentID: "k12"}})
	b.SetGroup("X")
	b.SetSubjectOptions("X", []taxonomy.Subject{{ID: "Y", GroupID: "X"}})
	b.SetSubject("Y")

	q := b.SetSegment("ug")
	require.NotNil(t, q)
	assert.Equal(t, taxonomy.Classification{SegmentID: "ug"}, q.Filter.Classification)
	assert.Equal(t, taxonomy.Classification{SegmentID: "ug"}, b.Filter().Classification)
	assert.Empty(t, b.GroupOptions())
	assert.Empty(t, b.SubjectOptions())
}

func TestBrowser_GroupChangeClearsSubject(t *testing.T) {
	b := New(Config{})
	b.SetSegment("k12")
	b.SetGroup("g10")
	b.SetSubjectOptions("g10", []taxonomy.Subject{{ID: "phy"}})
	b.SetSubject("phy")

	q := b.SetGroup("g11")
	require.NotNil(t, q)
	assert.Equal(t, taxonomy.Classification{SegmentID: "k12", GroupID: "g11"}, q.Filter.Classification)
	assert.Empty(t, b.SubjectOptions())
}

func TestBrowser_StaleOptionListsIgnored(t *testing.T) {
	b := New(Config{})
	b.SetSegment("k12")
	b.SetSegment("ug")
	assert.False(t, b.SetGroupOptions("k12", []taxonomy.Group{{ID: "g10"}}))
	assert.Empty(t, b.GroupOptions())
}

func TestBrowser_UnchangedFilterIssuesNothing(t *testing.T) {
	b := New(Config{})
	b.SetKind(question.KindMCQ)
	assert.Nil(t, b.SetKind(question.KindMCQ))
	assert.Nil(t, b.SetTag("  "))
	assert.Nil(t, b.SetSegment(""))
}

func TestBrowser_StaleResultsDiscarded(t *testing.T) {
	b := New(Config{})
	first := b.Start()
	second := b.SetKind(question.KindMCQ)

	// The newer query resolves first; the older one must not overwrite it.
	require.True(t, b.Resolve(second.Seq, bank.Result{Records: rows(1), Total: 1}, nil))
	assert.False(t, b.Resolve(first.Seq, bank.Result{Records: rows(5), Total: 5}, nil))
	assert.Len(t, b.Rows(), 1)
	assert.Equal(t, 1, b.Total())
}

func TestBrowser_FailureKeepsRows(t *testing.T) {
	b := New(Config{})
	q := b.Start()
	b.Resolve(q.Seq, bank.Result{Records: rows(2), Total: 2}, nil)

	q = b.Refresh()
	boom := errors.New("store unreachable")
	require.True(t, b.Resolve(q.Seq, bank.Result{}, boom))
	assert.Equal(t, Failed, b.Status())
	assert.ErrorIs(t, b.Err(), boom)
	assert.Len(t, b.Rows(), 2)

	q = b.Refresh()
	b.Resolve(q.Seq, bank.Result{Records: rows(2), Total: 2}, nil)
	assert.NoError(t, b.Err())
}

func TestBrowser_Pagination(t *testing.T) {
	b := New(Config{PageSize: 10})
	q := b.Start()
	b.Resolve(q.Seq, bank.Result{Records: rows(10), Total: 25}, nil)

	assert.True(t, b.HasMore())
	assert.Equal(t, 3, b.PageCount())
	assert.Nil(t, b.PrevPage())

	q = b.NextPage()
	require.NotNil(t, q)
	assert.Equal(t, 1, q.Page.Number)
	b.Resolve(q.Seq, bank.Result{Records: rows(10), Total: 25}, nil)

	q = b.NextPage()
	require.NotNil(t, q)
	b.Resolve(q.Seq, bank.Result{Records: rows(5), Total: 25}, nil)
	assert.False(t, b.HasMore(), "(2+1)*10 >= 25")
	assert.Nil(t, b.NextPage())

	// Any filter change returns to the first page.
	q = b.SetTag("optics")
	assert.Equal(t, 0, q.Page.Number)
	assert.Equal(t, 0, b.Page())
}

func TestBrowser_HasMoreExactBoundary(t *testing.T) {
	b := New(Config{PageSize: 10})
	q := b.Start()
	b.Resolve(q.Seq, bank.Result{Records: rows(10), Total: 10}, nil)
	assert.False(t, b.HasMore())
}

func TestBrowser_SearchDebounce(t *testing.T) {
	b := New(Config{})

	t1 := b.SetSearch("ref")
	t2 := b.SetSearch("refraction ")
	assert.Equal(t, "refraction", b.PendingSearch())
	assert.Empty(t, b.Filter().Text, "filter waits for the debounce")
	assert.Nil(t, b.SearchSettled(t1), "superseded keystroke")

	q := b.SearchSettled(t2)
	require.NotNil(t, q)
	assert.Equal(t, "refraction", q.Filter.Text)

	// Settling again with the same text does nothing.
	t3 := b.SetSearch("refraction")
	assert.Nil(t, b.SearchSettled(t3))
}

func TestBrowser_ClearFilters(t *testing.T) {
	b := New(Config{})
	assert.Nil(t, b.ClearFilters())

	b.SetSegment("k12")
	b.SetTag("optics")
	token := b.SetSearch("light")

	q := b.ClearFilters()
	require.NotNil(t, q)
	assert.Equal(t, bank.Filter{}, q.Filter)
	assert.Nil(t, b.SearchSettled(token), "pending search cancelled")
}
