package store

import (
	"context"
	"time"

	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/taxonomy"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match when set
}

// TaxonomyRepo reads and seeds the classification hierarchy.
// It satisfies taxonomy.Source.
type TaxonomyRepo interface {
	taxonomy.Source

	UpsertSegment(ctx context.Context, s taxonomy.Segment) error
	UpsertGroup(ctx context.Context, g taxonomy.Group) error
	UpsertSubject(ctx context.Context, s taxonomy.Subject) error

	// LoadTree upserts a whole hierarchy in one transaction.
	LoadTree(ctx context.Context, t *taxonomy.Tree) error
}

// QuestionFilter selects top-level questions. Zero fields do not filter.
type QuestionFilter struct {
	SegmentID string
	GroupID   string
	SubjectID string
	Kind      question.Kind
	Tag       string // case-insensitive substring of any tag
	Text      string // case-insensitive substring of the body
	Offset    int
	Limit     int // 0 = unlimited
}

// QuestionRepo persists questions with their options, tags and children.
type QuestionRepo interface {
	// Create assigns ID, child IDs and timestamps, then persists q and
	// everything it owns in one transaction.
	Create(ctx context.Context, q *question.Question) error

	// Update replaces the stored question q.ID, including its options,
	// tags and children. Children receive fresh IDs. Returns ErrNotFound
	// when no top-level question has that ID.
	Update(ctx context.Context, q *question.Question) error

	// Delete removes a top-level question and, for a passage, its
	// children. Returns ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, id string) error

	// Get returns the top-level question with children, or ErrNotFound.
	Get(ctx context.Context, id string) (*question.Question, error)

	// Find returns a page of top-level questions, newest first, and the
	// total count matching the filter.
	Find(ctx context.Context, f QuestionFilter) ([]question.Question, int, error)

	// AllTags returns each distinct tag once, spelled as on the oldest
	// question carrying it.
	AllTags(ctx context.Context) ([]string, error)
}

// PaperSummary is a row of the saved papers list.
type PaperSummary struct {
	ID         string
	Title      string
	TotalMarks int
	Questions  int
	CreatedAt  time.Time
}

// PaperRepo stores immutable exam paper snapshots.
type PaperRepo interface {
	// Save assigns an ID when empty and persists p with full question
	// copies. It satisfies composer.PaperSaver.
	Save(ctx context.Context, p *composer.Paper) error

	// List returns saved papers, newest first.
	List(ctx context.Context, limit int) ([]PaperSummary, error)

	// Get returns a saved paper, or ErrNotFound.
	Get(ctx context.Context, id string) (*composer.Paper, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns the event with id, or nil when it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
