package store

import (
	"context"
	"encoding/json"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/question"
)

// paperRepo stores papers with a JSON copy of every selected question, so
// a saved paper never changes when the bank does.
type paperRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *paperRepo) Save(ctx context.Context, p *composer.Paper) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	err := withTx(ctx, r.drv, func(tx dialect.Tx) error {
		seq, err := r.seq.Next(ctx, tx)
		if err != nil {
			return err
		}

		err = execStmt(ctx, tx, builder.Insert(tablePapers).
			Columns("id", "seq", "title", "institute_label", "duration", "instructions",
				"total_marks", "created_at").
			Values(p.ID, seq, p.Meta.Title, p.Meta.InstituteLabel, p.Meta.Duration,
				p.Meta.Instructions, p.TotalMarks, toUnix(p.CreatedAt)))
		if err != nil {
			return fmt.Errorf("insert paper: %w", err)
		}

		if len(p.Entries) == 0 {
			return nil
		}
		ins := builder.Insert(tableEntries).
			Columns("paper_id", "position", "question_id", "marks", "snapshot")
		for i, e := range p.Entries {
			data, err := json.Marshal(e.Question)
			if err != nil {
				return fmt.Errorf("marshal question %s: %w", e.Question.ID, err)
			}
			ins.Values(p.ID, i, e.Question.ID, e.Marks, string(data))
		}
		if err := execStmt(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save paper: %w", err)
	}
	return nil
}

func (r *paperRepo) List(ctx context.Context, limit int) ([]PaperSummary, error) {
	sel := builder.Select("id", "title", "total_marks", "created_at").
		From(builder.Table(tablePapers)).
		OrderBy(entsql.Desc("seq"))
	if limit > 0 {
		sel.Limit(limit)
	}

	out := []PaperSummary{}
	err := queryRows(ctx, r.drv, sel, func(rows *entsql.Rows) error {
		var (
			s       PaperSummary
			created int64
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.TotalMarks, &created); err != nil {
			return err
		}
		s.CreatedAt = fromUnix(created)
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, len(out))
	for i, s := range out {
		ids[i] = s.ID
	}
	counts := make(map[string]int, len(out))
	err = queryRows(ctx, r.drv, builder.Select("paper_id", entsql.Count("*")).
		From(builder.Table(tableEntries)).
		Where(entsql.In("paper_id", anySlice(ids)...)).
		GroupBy("paper_id"), func(rows *entsql.Rows) error {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return err
		}
		counts[id] = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count paper entries: %w", err)
	}
	for i := range out {
		out[i].Questions = counts[out[i].ID]
	}
	return out, nil
}

func (r *paperRepo) Get(ctx context.Context, id string) (*composer.Paper, error) {
	var (
		p     *composer.Paper
		found bool
	)
	err := queryRows(ctx, r.drv, builder.Select("id", "title", "institute_label", "duration",
		"instructions", "total_marks", "created_at").
		From(builder.Table(tablePapers)).
		Where(entsql.EQ("id", id)), func(rows *entsql.Rows) error {
		var created int64
		p = &composer.Paper{}
		if err := rows.Scan(&p.ID, &p.Meta.Title, &p.Meta.InstituteLabel, &p.Meta.Duration,
			&p.Meta.Instructions, &p.TotalMarks, &created); err != nil {
			return err
		}
		p.CreatedAt = fromUnix(created)
		found = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get paper %s: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("get paper %s: %w", id, ErrNotFound)
	}

	err = queryRows(ctx, r.drv, builder.Select("marks", "snapshot").
		From(builder.Table(tableEntries)).
		Where(entsql.EQ("paper_id", id)).
		OrderBy("position"), func(rows *entsql.Rows) error {
		var (
			e    composer.Entry
			data string
		)
		if err := rows.Scan(&e.Marks, &data); err != nil {
			return err
		}
		var q question.Question
		if err := json.Unmarshal([]byte(data), &q); err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		e.Question = q
		p.Entries = append(p.Entries, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get paper %s entries: %w", id, err)
	}
	return p, nil
}
