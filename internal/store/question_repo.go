package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/tags"
)

type questionRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
	now func() time.Time
}

var questionColumns = []string{
	"id", "parent_id", "type", "body", "marks", "explanation",
	"segment_id", "group_id", "subject_id", "created_at", "updated_at",
}

func (r *questionRepo) clock() time.Time {
	if r.now != nil {
		return r.now().UTC()
	}
	return time.Now().UTC()
}

func (r *questionRepo) Create(ctx context.Context, q *question.Question) error {
	now := r.clock()
	q.ID = uuid.NewString()
	q.CreatedAt, q.UpdatedAt = now, now
	assignChildIDs(q)

	err := withTx(ctx, r.drv, func(tx dialect.Tx) error {
		seq, err := r.seq.Next(ctx, tx)
		if err != nil {
			return err
		}
		return insertQuestion(ctx, tx, q, seq)
	})
	if err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

func (r *questionRepo) Update(ctx context.Context, q *question.Question) error {
	q.UpdatedAt = r.clock()
	assignChildIDs(q)

	err := withTx(ctx, r.drv, func(tx dialect.Tx) error {
		cur, err := getQuestion(ctx, tx, q.ID)
		if err != nil {
			return err
		}
		q.CreatedAt = cur.CreatedAt

		n, err := execAffected(ctx, tx, builder.Update(tableQuestions).
			Set("type", string(q.Kind)).
			Set("body", q.Body).
			Set("marks", q.Marks).
			Set("explanation", q.Explanation).
			Set("segment_id", nullString(q.Classification.SegmentID)).
			Set("group_id", nullString(q.Classification.GroupID)).
			Set("subject_id", nullString(q.Classification.SubjectID)).
			Set("updated_at", toUnix(q.UpdatedAt)).
			Where(entsql.And(entsql.EQ("id", q.ID), entsql.IsNull("parent_id"))))
		if err != nil {
			return fmt.Errorf("update row: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}

		// Owned rows are replaced wholesale.
		if err := deleteOwned(ctx, tx, q.ID); err != nil {
			return err
		}
		if err := insertOptions(ctx, tx, q.ID, q.Options); err != nil {
			return err
		}
		if err := insertTags(ctx, tx, q.ID, q.Tags); err != nil {
			return err
		}
		return insertChildren(ctx, tx, q)
	})
	if err != nil {
		return fmt.Errorf("update question %s: %w", q.ID, err)
	}
	return nil
}

func (r *questionRepo) Delete(ctx context.Context, id string) error {
	err := withTx(ctx, r.drv, func(tx dialect.Tx) error {
		if err := deleteOwned(ctx, tx, id); err != nil {
			return err
		}
		n, err := execAffected(ctx, tx, builder.Delete(tableQuestions).
			Where(entsql.And(entsql.EQ("id", id), entsql.IsNull("parent_id"))))
		if err != nil {
			return fmt.Errorf("delete row: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete question %s: %w", id, err)
	}
	return nil
}

func (r *questionRepo) Get(ctx context.Context, id string) (*question.Question, error) {
	q, err := getQuestion(ctx, r.drv, id)
	if err != nil {
		return nil, fmt.Errorf("get question %s: %w", id, err)
	}
	return q, nil
}

func (r *questionRepo) Find(ctx context.Context, f QuestionFilter) ([]question.Question, int, error) {
	total, err := countRows(ctx, r.drv, builder.Select(entsql.Count("*")).
		From(builder.Table(tableQuestions)).
		Where(f.predicate()))
	if err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	sel := builder.Select(questionColumns...).
		From(builder.Table(tableQuestions)).
		Where(f.predicate()).
		OrderBy(entsql.Desc("seq"))
	if f.Limit > 0 {
		sel.Limit(f.Limit).Offset(f.Offset)
	}

	rows, err := scanQuestions(ctx, r.drv, sel)
	if err != nil {
		return nil, 0, fmt.Errorf("find questions: %w", err)
	}
	if err := hydrate(ctx, r.drv, rows); err != nil {
		return nil, 0, fmt.Errorf("find questions: %w", err)
	}
	return rows, total, nil
}

// AllTags returns every distinct tag in the order questions were created,
// so the first spelling of a tag is the one kept.
func (r *questionRepo) AllTags(ctx context.Context) ([]string, error) {
	t := builder.Table(tableTags).As("t")
	q := builder.Table(tableQuestions).As("q")
	stmt := builder.Select(t.C("tag")).
		From(t).
		Join(q).On(t.C("question_id"), q.C("id")).
		OrderBy(q.C("seq"), t.C("position"))

	var all []string
	err := queryRows(ctx, r.drv, stmt, func(rows *entsql.Rows) error {
		var t string
		if err := rows.Scan(&t); err != nil {
			return err
		}
		all = append(all, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	return tags.Normalize(all), nil
}

// predicate builds a fresh WHERE clause; builders may not be shared
// between statements.
func (f QuestionFilter) predicate() *entsql.Predicate {
	preds := []*entsql.Predicate{entsql.IsNull("parent_id")}
	if f.SegmentID != "" {
		preds = append(preds, entsql.EQ("segment_id", f.SegmentID))
	}
	if f.GroupID != "" {
		preds = append(preds, entsql.EQ("group_id", f.GroupID))
	}
	if f.SubjectID != "" {
		preds = append(preds, entsql.EQ("subject_id", f.SubjectID))
	}
	if f.Kind != "" {
		preds = append(preds, entsql.EQ("type", string(f.Kind)))
	}
	if f.Text != "" {
		preds = append(preds, entsql.ContainsFold("body", f.Text))
	}
	if f.Tag != "" {
		tagged := builder.Select("question_id").
			From(builder.Table(tableTags)).
			Where(entsql.ContainsFold("tag", f.Tag))
		preds = append(preds, entsql.In("id", tagged))
	}
	return entsql.And(preds...)
}

// assignChildIDs gives every child a fresh ID. Incoming child IDs are
// never trusted: an update replaces the whole child set.
func assignChildIDs(q *question.Question) {
	for i := range q.Children {
		q.Children[i].ID = uuid.NewString()
	}
}

func insertQuestion(ctx context.Context, tx dialect.ExecQuerier, q *question.Question, seq int64) error {
	c := q.Classification
	stmt := builder.Insert(tableQuestions).
		Columns("id", "seq", "position", "type", "body", "marks", "explanation",
			"segment_id", "group_id", "subject_id", "created_at", "updated_at").
		Values(q.ID, seq, 0, string(q.Kind), q.Body, q.Marks, q.Explanation,
			nullString(c.SegmentID), nullString(c.GroupID), nullString(c.SubjectID),
			toUnix(q.CreatedAt), toUnix(q.UpdatedAt))
	if err := execStmt(ctx, tx, stmt); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	if err := insertOptions(ctx, tx, q.ID, q.Options); err != nil {
		return err
	}
	if err := insertTags(ctx, tx, q.ID, q.Tags); err != nil {
		return err
	}
	return insertChildren(ctx, tx, q)
}

// insertChildren stores passage children with positions 0..n-1. Children
// inherit the parent's sequence and timestamps.
func insertChildren(ctx context.Context, tx dialect.ExecQuerier, q *question.Question) error {
	if len(q.Children) == 0 {
		return nil
	}
	var seq int64
	err := queryRows(ctx, tx, builder.Select("seq").
		From(builder.Table(tableQuestions)).
		Where(entsql.EQ("id", q.ID)), func(rows *entsql.Rows) error {
		return rows.Scan(&seq)
	})
	if err != nil {
		return fmt.Errorf("read parent sequence: %w", err)
	}

	ins := builder.Insert(tableQuestions).
		Columns("id", "seq", "parent_id", "position", "type", "body", "marks", "explanation",
			"created_at", "updated_at")
	for i, ch := range q.Children {
		ins.Values(ch.ID, seq, q.ID, i, string(ch.Kind), ch.Body, ch.Marks, ch.Explanation,
			toUnix(q.CreatedAt), toUnix(q.UpdatedAt))
	}
	if err := execStmt(ctx, tx, ins); err != nil {
		return fmt.Errorf("insert children: %w", err)
	}
	for _, ch := range q.Children {
		if err := insertOptions(ctx, tx, ch.ID, ch.Options); err != nil {
			return err
		}
	}
	return nil
}

func insertOptions(ctx context.Context, tx dialect.ExecQuerier, questionID string, opts question.Options) error {
	if len(opts) == 0 {
		return nil
	}
	ins := builder.Insert(tableOptions).Columns("question_id", "position", "text", "is_correct")
	for i, o := range opts {
		ins.Values(questionID, i, o.Text, o.IsCorrect)
	}
	if err := execStmt(ctx, tx, ins); err != nil {
		return fmt.Errorf("insert options: %w", err)
	}
	return nil
}

func insertTags(ctx context.Context, tx dialect.ExecQuerier, questionID string, raw []string) error {
	list := tags.Normalize(raw)
	if len(list) == 0 {
		return nil
	}
	ins := builder.Insert(tableTags).Columns("question_id", "position", "tag")
	for i, t := range list {
		ins.Values(questionID, i, t)
	}
	if err := execStmt(ctx, tx, ins); err != nil {
		return fmt.Errorf("insert tags: %w", err)
	}
	return nil
}

// deleteOwned removes the options, tags and children (with their options)
// of questionID, leaving the question row itself.
func deleteOwned(ctx context.Context, tx dialect.ExecQuerier, questionID string) error {
	children := func() *entsql.Selector {
		return builder.Select("id").
			From(builder.Table(tableQuestions)).
			Where(entsql.EQ("parent_id", questionID))
	}
	steps := []struct {
		what string
		stmt entsql.Querier
	}{
		{"child options", builder.Delete(tableOptions).Where(entsql.In("question_id", children()))},
		{"options", builder.Delete(tableOptions).Where(entsql.EQ("question_id", questionID))},
		{"tags", builder.Delete(tableTags).Where(entsql.EQ("question_id", questionID))},
		{"children", builder.Delete(tableQuestions).Where(entsql.EQ("parent_id", questionID))},
	}
	for _, s := range steps {
		if err := execStmt(ctx, tx, s.stmt); err != nil {
			return fmt.Errorf("delete %s: %w", s.what, err)
		}
	}
	return nil
}

// getQuestion loads a top-level question with everything it owns.
func getQuestion(ctx context.Context, q dialect.ExecQuerier, id string) (*question.Question, error) {
	rows, err := scanQuestions(ctx, q, builder.Select(questionColumns...).
		From(builder.Table(tableQuestions)).
		Where(entsql.And(entsql.EQ("id", id), entsql.IsNull("parent_id"))))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	if err := hydrate(ctx, q, rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func scanQuestions(ctx context.Context, q dialect.ExecQuerier, sel *entsql.Selector) ([]question.Question, error) {
	out := []question.Question{}
	err := queryRows(ctx, q, sel, func(rows *entsql.Rows) error {
		var (
			rec              question.Question
			kind             string
			parent           sql.NullString
			seg, grp, sub    sql.NullString
			created, updated int64
		)
		if err := rows.Scan(&rec.ID, &parent, &kind, &rec.Body, &rec.Marks, &rec.Explanation,
			&seg, &grp, &sub, &created, &updated); err != nil {
			return err
		}
		rec.Kind = question.Kind(kind)
		rec.Classification.SegmentID = seg.String
		rec.Classification.GroupID = grp.String
		rec.Classification.SubjectID = sub.String
		rec.CreatedAt = fromUnix(created)
		rec.UpdatedAt = fromUnix(updated)
		out = append(out, rec)
		return nil
	})
	return out, err
}

// hydrate attaches options, tags and children to top-level rows.
func hydrate(ctx context.Context, q dialect.ExecQuerier, recs []question.Question) error {
	if len(recs) == 0 {
		return nil
	}
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}

	tagsByID, err := loadTags(ctx, q, ids)
	if err != nil {
		return err
	}
	children, err := loadChildren(ctx, q, ids)
	if err != nil {
		return err
	}

	optIDs := append([]string(nil), ids...)
	for _, list := range children {
		for _, ch := range list {
			optIDs = append(optIDs, ch.ID)
		}
	}
	opts, err := loadOptions(ctx, q, optIDs)
	if err != nil {
		return err
	}

	for i := range recs {
		rec := &recs[i]
		rec.Tags = tagsByID[rec.ID]
		rec.Options = opts[rec.ID]
		list := children[rec.ID]
		for j := range list {
			list[j].Options = opts[list[j].ID]
		}
		rec.Children = list
	}
	return nil
}

func loadTags(ctx context.Context, q dialect.ExecQuerier, ids []string) (map[string][]string, error) {
	out := make(map[string][]string)
	err := queryRows(ctx, q, builder.Select("question_id", "tag").
		From(builder.Table(tableTags)).
		Where(entsql.In("question_id", anySlice(ids)...)).
		OrderBy("question_id", "position"), func(rows *entsql.Rows) error {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return err
		}
		out[id] = append(out[id], tag)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	return out, nil
}

func loadOptions(ctx context.Context, q dialect.ExecQuerier, ids []string) (map[string]question.Options, error) {
	out := make(map[string]question.Options)
	err := queryRows(ctx, q, builder.Select("question_id", "text", "is_correct").
		From(builder.Table(tableOptions)).
		Where(entsql.In("question_id", anySlice(ids)...)).
		OrderBy("question_id", "position"), func(rows *entsql.Rows) error {
		var (
			id string
			o  question.Option
		)
		if err := rows.Scan(&id, &o.Text, &o.IsCorrect); err != nil {
			return err
		}
		out[id] = append(out[id], o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	return out, nil
}

func loadChildren(ctx context.Context, q dialect.ExecQuerier, parentIDs []string) (map[string][]question.Child, error) {
	out := make(map[string][]question.Child)
	err := queryRows(ctx, q, builder.Select("id", "parent_id", "type", "body", "marks", "explanation").
		From(builder.Table(tableQuestions)).
		Where(entsql.In("parent_id", anySlice(parentIDs)...)).
		OrderBy("parent_id", "position"), func(rows *entsql.Rows) error {
		var (
			ch           question.Child
			parent, kind string
		)
		if err := rows.Scan(&ch.ID, &parent, &kind, &ch.Body, &ch.Marks, &ch.Explanation); err != nil {
			return err
		}
		ch.Kind = question.Kind(kind)
		out[parent] = append(out[parent], ch)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load children: %w", err)
	}
	return out, nil
}
