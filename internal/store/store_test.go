package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/taxonomy"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mcq(body string, marks int, tags ...string) *question.Question {
	return &question.Question{
		Kind:  question.KindMCQ,
		Body:  body,
		Marks: marks,
		Tags:  tags,
		Options: question.Options{
			{Text: "Paris", IsCorrect: true},
			{Text: "Lyon"},
		},
	}
}

func passage(children ...string) *question.Question {
	q := &question.Question{Kind: question.KindPassage, Body: "Read the passage."}
	for i, body := range children {
		ch := question.Child{Kind: question.KindDescriptive, Body: body, Marks: i + 1}
		if i%2 == 0 {
			ch.Kind = question.KindMCQ
			ch.Options = question.Options{{Text: "yes", IsCorrect: true}, {Text: "no"}}
		}
		q.Children = append(q.Children, ch)
	}
	return q
}

func countTable(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM "` + table + `"`).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.Driver() == nil {
		t.Fatal("expected non-nil driver")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is not checked here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestWithPragmas(t *testing.T) {
	got := withPragmas("file:x?mode=memory")
	if !strings.HasPrefix(got, "file:x?mode=memory&_pragma=") {
		t.Errorf("withPragmas kept wrong separator: %s", got)
	}
	if got := withPragmas("/tmp/q.db"); !strings.HasPrefix(got, "/tmp/q.db?_pragma=") {
		t.Errorf("withPragmas on plain path: %s", got)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.seq.Next(ctx, s.drv)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	second, err := s.seq.Next(ctx, s.drv)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if second != first+1 {
		t.Errorf("sequence not monotonic: %d then %d", first, second)
	}
}

func TestQuestionCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	q := mcq("Capital of France?", 2, "Geography", "europe")
	q.Explanation = "Paris has been the capital since 987."
	q.Classification = taxonomy.Classification{SegmentID: "k12", GroupID: "g10"}
	if err := repo.Create(ctx, q); err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.ID == "" {
		t.Fatal("expected ID to be assigned")
	}

	got, err := repo.Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Body != q.Body || got.Marks != 2 || got.Kind != question.KindMCQ {
		t.Errorf("got %+v", got)
	}
	if got.Explanation != q.Explanation {
		t.Errorf("explanation = %q", got.Explanation)
	}
	if len(got.Options) != 2 || got.Options[0].Text != "Paris" || !got.Options[0].IsCorrect || got.Options[1].IsCorrect {
		t.Errorf("options = %+v", got.Options)
	}
	if strings.Join(got.Tags, ",") != "Geography,europe" {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.Classification != q.Classification {
		t.Errorf("classification = %+v", got.Classification)
	}
	if got.CreatedAt.IsZero() || !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Errorf("timestamps = %v / %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestQuestionGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.QuestionRepo().Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPassageChildrenPreserveOrder(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	p := passage("A", "B", "C")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Children) != 3 {
		t.Fatalf("children = %d, want 3", len(got.Children))
	}
	for i, want := range []string{"A", "B", "C"} {
		if got.Children[i].Body != want {
			t.Errorf("child %d = %q, want %q", i, got.Children[i].Body, want)
		}
	}
	if len(got.Children[0].Options) != 2 || len(got.Children[1].Options) != 0 {
		t.Errorf("child options not attached: %+v", got.Children)
	}
	if got.TotalMarks() != 6 {
		t.Errorf("total marks = %d, want 6", got.TotalMarks())
	}

	// Children are reachable only through their parent.
	_, err = repo.Get(ctx, got.Children[0].ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("get child: expected ErrNotFound, got %v", err)
	}
}

func TestPassageUpdateReplacesChildren(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	p := passage("A", "B", "C")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	oldB := p.Children[1].ID

	upd := passage("B", "D")
	upd.ID = p.ID
	upd.Children[0].ID = oldB
	if err := repo.Update(ctx, upd); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Children) != 2 || got.Children[0].Body != "B" || got.Children[1].Body != "D" {
		t.Fatalf("children = %+v", got.Children)
	}
	if got.Children[0].ID == oldB {
		t.Error("B kept its old identity; expected a fresh child")
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("created_at changed on update")
	}
	if n := countTable(t, s, tableQuestions); n != 3 {
		t.Errorf("questions rows = %d, want 3 (parent + 2 children)", n)
	}
}

func TestUpdateMissingOrChild(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	q := mcq("x", 1)
	q.ID = "missing"
	if err := repo.Update(ctx, q); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing: %v", err)
	}

	p := passage("A")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	child := mcq("child edit", 1)
	child.ID = p.Children[0].ID
	if err := repo.Update(ctx, child); !errors.Is(err, ErrNotFound) {
		t.Errorf("update child: %v", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	p := passage("A", "B")
	p.Tags = []string{"comprehension"}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	keep := mcq("keep me", 1, "geo")
	if err := repo.Create(ctx, keep); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if n := countTable(t, s, tableQuestions); n != 1 {
		t.Errorf("questions rows = %d, want 1", n)
	}
	if n := countTable(t, s, tableOptions); n != 2 {
		t.Errorf("option rows = %d, want 2 (the kept mcq)", n)
	}
	if n := countTable(t, s, tableTags); n != 1 {
		t.Errorf("tag rows = %d, want 1", n)
	}

	if err := repo.Delete(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func TestDeleteFailureKeepsPassageWhole(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	p := passage("A", "B")
	p.Tags = []string{"comprehension"}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Children go first inside the transaction; failing on the parent row
	// must roll their deletion back.
	_, err := s.DB().Exec(`CREATE TRIGGER block_passage_delete BEFORE DELETE ON questions
		WHEN OLD.parent_id IS NULL BEGIN SELECT RAISE(ABORT, 'locked'); END`)
	if err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	err = repo.Delete(ctx, p.ID)
	if err == nil {
		t.Fatal("delete succeeded, want failure")
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("delete error = %v, want the store failure", err)
	}

	if n := countTable(t, s, tableQuestions); n != 3 {
		t.Errorf("questions rows = %d, want 3 (passage and both children)", n)
	}
	if n := countTable(t, s, tableOptions); n != 2 {
		t.Errorf("option rows = %d, want 2", n)
	}
	if n := countTable(t, s, tableTags); n != 1 {
		t.Errorf("tag rows = %d, want 1", n)
	}
	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get after failed delete: %v", err)
	}
	if len(got.Children) != 2 {
		t.Errorf("children = %d, want 2", len(got.Children))
	}
}

func TestFind(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	physics := taxonomy.Classification{SegmentID: "k12", GroupID: "g11", SubjectID: "phy"}
	chemistry := taxonomy.Classification{SegmentID: "k12", GroupID: "g11", SubjectID: "chem"}

	seed := []*question.Question{
		mcq("Speed of light?", 1, "Optics"),
		{Kind: question.KindDescriptive, Body: "Explain refraction.", Marks: 5, Tags: []string{"optics", "waves"}, Classification: physics},
		{Kind: question.KindDescriptive, Body: "Define a mole.", Marks: 3, Tags: []string{"Stoichiometry"}, Classification: chemistry},
		passage("A", "B"),
	}
	seed[0].Classification = physics
	for _, q := range seed {
		if err := repo.Create(ctx, q); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter QuestionFilter
		want   []string // bodies, newest first
		total  int
	}{
		{"all top-level", QuestionFilter{}, []string{"Read the passage.", "Define a mole.", "Explain refraction.", "Speed of light?"}, 4},
		{"by subject", QuestionFilter{SubjectID: "phy"}, []string{"Explain refraction.", "Speed of light?"}, 2},
		{"by group", QuestionFilter{GroupID: "g11"}, []string{"Define a mole.", "Explain refraction.", "Speed of light?"}, 3},
		{"by kind", QuestionFilter{Kind: question.KindDescriptive}, []string{"Define a mole.", "Explain refraction."}, 2},
		{"tag substring, any case", QuestionFilter{Tag: "OPT"}, []string{"Explain refraction.", "Speed of light?"}, 2},
		{"text substring", QuestionFilter{Text: "REFRACT"}, []string{"Explain refraction."}, 1},
		{"page 2 of size 2", QuestionFilter{Limit: 2, Offset: 2}, []string{"Explain refraction.", "Speed of light?"}, 4},
		{"no match", QuestionFilter{Tag: "thermo"}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.Find(ctx, tt.filter)
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if total != tt.total {
				t.Errorf("total = %d, want %d", total, tt.total)
			}
			var bodies []string
			for _, q := range got {
				bodies = append(bodies, q.Body)
			}
			if strings.Join(bodies, "|") != strings.Join(tt.want, "|") {
				t.Errorf("bodies = %v, want %v", bodies, tt.want)
			}
		})
	}
}

func TestFindHydratesPassages(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, passage("A", "B", "C")); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, total, err := repo.Find(ctx, QuestionFilter{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if total != 1 || len(got) != 1 {
		t.Fatalf("children leaked into results: total=%d rows=%d", total, len(got))
	}
	if len(got[0].Children) != 3 {
		t.Errorf("children = %d, want 3", len(got[0].Children))
	}
}

func TestAllTags_FirstSpellingWins(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	seed := []*question.Question{
		mcq("a", 1, "optics", "waves"),
		mcq("b", 1, "Optics", "Algebra"),
		mcq("c", 1, "algebra"),
	}
	for _, q := range seed {
		if err := repo.Create(ctx, q); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	all, err := repo.AllTags(ctx)
	if err != nil {
		t.Fatalf("all tags: %v", err)
	}
	want := []string{"optics", "waves", "Algebra"}
	if strings.Join(all, ",") != strings.Join(want, ",") {
		t.Errorf("all tags = %v, want %v", all, want)
	}

	// Re-saving an older question keeps its place in creation order.
	first := mcq("a", 1, "OPTICS")
	first.ID = seed[0].ID
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("update: %v", err)
	}
	all, err = repo.AllTags(ctx)
	if err != nil {
		t.Fatalf("all tags: %v", err)
	}
	if all[0] != "OPTICS" {
		t.Errorf("all tags = %v, want the oldest question's spelling first", all)
	}
}

func TestTaxonomyLoadTree(t *testing.T) {
	s := openTestStore(t)
	repo := s.TaxonomyRepo()
	ctx := context.Background()

	tree, err := taxonomy.ParseTree(strings.NewReader(`
segments:
  - id: k12
    name: School
    groups:
      - id: g10
        name: Grade 10
        subjects:
          - {id: phy, name: Physics}
          - {id: chem, name: Chemistry}
  - id: ug
    name: Undergraduate
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := repo.LoadTree(ctx, tree); err != nil {
		t.Fatalf("load: %v", err)
	}
	// Loading twice is an upsert.
	if err := repo.LoadTree(ctx, tree); err != nil {
		t.Fatalf("reload: %v", err)
	}

	segs, err := repo.Segments(ctx)
	if err != nil || len(segs) != 2 || segs[0].ID != "k12" {
		t.Fatalf("segments = %+v, %v", segs, err)
	}
	subs, err := repo.Subjects(ctx, "g10")
	if err != nil || len(subs) != 2 || subs[0].Name != "Physics" {
		t.Fatalf("subjects = %+v, %v", subs, err)
	}

	g, err := repo.Group(ctx, "g10")
	if err != nil || g == nil || g.SegmentID != "k12" {
		t.Fatalf("group = %+v, %v", g, err)
	}
	missing, err := repo.Subject(ctx, "bio")
	if err != nil || missing != nil {
		t.Fatalf("unknown subject = %+v, %v", missing, err)
	}

	x := taxonomy.NewIndex(repo)
	ok, err := x.Agrees(ctx, taxonomy.Classification{SegmentID: "ug", GroupID: "g10"})
	if err != nil || ok {
		t.Errorf("mismatched hierarchy agreed: %v, %v", ok, err)
	}
}

func TestPaperSnapshotIsImmutable(t *testing.T) {
	s := openTestStore(t)
	questions := s.QuestionRepo()
	papers := s.PaperRepo()
	ctx := context.Background()

	q := mcq("Capital of France?", 2)
	if err := questions.Create(ctx, q); err != nil {
		t.Fatalf("create: %v", err)
	}

	c := composer.New()
	c.Add(*q)
	c.SetMarks(q.ID, 4)
	c.SetMeta(composer.Meta{Title: "Geography Quiz", Duration: "30 min"})
	saved, err := c.Save(ctx, papers)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	edited := *q
	edited.Body = "Edited afterwards"
	if err := questions.Update(ctx, &edited); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := papers.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get paper: %v", err)
	}
	if got.Meta.Title != "Geography Quiz" || got.TotalMarks != 4 {
		t.Errorf("paper = %+v", got)
	}
	if len(got.Entries) != 1 || got.Entries[0].Question.Body != "Capital of France?" || got.Entries[0].Marks != 4 {
		t.Errorf("entries = %+v", got.Entries)
	}

	list, err := papers.List(ctx, 10)
	if err != nil || len(list) != 1 || list[0].Questions != 1 {
		t.Errorf("list = %+v, %v", list, err)
	}

	if _, err := papers.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing paper: %v", err)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "mock", Model: "m1", Purpose: "question-gen", InputTokens: 10, OutputTokens: 20, LatencyMs: 100, Success: true},
		{Provider: "mock", Model: "m1", Purpose: "question-gen", InputTokens: 30, OutputTokens: 40, LatencyMs: 300, Success: true},
		{Provider: "mock", Model: "m2", Purpose: "tag-suggest", ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 || got[0].Purpose != "tag-suggest" {
		t.Fatalf("events = %+v", got)
	}
	if got[0].Success || got[0].ErrorMessage != "boom" {
		t.Errorf("failure not recorded: %+v", got[0])
	}

	filtered, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "question-gen", From: time.Now().Add(-time.Hour)})
	if err != nil || len(filtered) != 2 {
		t.Errorf("filtered = %d, %v", len(filtered), err)
	}

	one, err := repo.GetLLMEvent(ctx, got[1].ID)
	if err != nil || one == nil || one.InputTokens != 30 {
		t.Errorf("get = %+v, %v", one, err)
	}
	none, err := repo.GetLLMEvent(ctx, 999)
	if err != nil || none != nil {
		t.Errorf("get missing = %+v, %v", none, err)
	}

	usage, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(usage) != 2 || usage[0].Purpose != "question-gen" || usage[0].Calls != 2 ||
		usage[0].InputTokens != 40 || usage[0].AvgLatencyMs != 200 {
		t.Errorf("usage = %+v", usage)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil || len(byModel) != 2 || byModel[1].Model != "m2" {
		t.Errorf("by model = %+v, %v", byModel, err)
	}
}
