package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/qbank/internal/taxonomy"
)

type taxonomyRepo struct {
	drv *entsql.Driver
}

func (r *taxonomyRepo) Segments(ctx context.Context) ([]taxonomy.Segment, error) {
	stmt := builder.Select("id", "name").
		From(builder.Table(tableSegments)).
		OrderBy("position", "name")

	out := []taxonomy.Segment{}
	err := queryRows(ctx, r.drv, stmt, func(rows *entsql.Rows) error {
		var s taxonomy.Segment
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	return out, nil
}

func (r *taxonomyRepo) Groups(ctx context.Context, segmentID string) ([]taxonomy.Group, error) {
	stmt := builder.Select("id", "segment_id", "name").
		From(builder.Table(tableGroups)).
		Where(entsql.EQ("segment_id", segmentID)).
		OrderBy("position", "name")

	out := []taxonomy.Group{}
	err := queryRows(ctx, r.drv, stmt, func(rows *entsql.Rows) error {
		var g taxonomy.Group
		if err := rows.Scan(&g.ID, &g.SegmentID, &g.Name); err != nil {
			return err
		}
		out = append(out, g)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	return out, nil
}

func (r *taxonomyRepo) Subjects(ctx context.Context, groupID string) ([]taxonomy.Subject, error) {
	stmt := builder.Select("id", "group_id", "name").
		From(builder.Table(tableSubjects)).
		Where(entsql.EQ("group_id", groupID)).
		OrderBy("position", "name")

	out := []taxonomy.Subject{}
	err := queryRows(ctx, r.drv, stmt, func(rows *entsql.Rows) error {
		var s taxonomy.Subject
		if err := rows.Scan(&s.ID, &s.GroupID, &s.Name); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	return out, nil
}

func (r *taxonomyRepo) Group(ctx context.Context, id string) (*taxonomy.Group, error) {
	stmt := builder.Select("id", "segment_id", "name").
		From(builder.Table(tableGroups)).
		Where(entsql.EQ("id", id))

	var found *taxonomy.Group
	err := queryRows(ctx, r.drv, stmt, func(rows *entsql.Rows) error {
		var g taxonomy.Group
		if err := rows.Scan(&g.ID, &g.SegmentID, &g.Name); err != nil {
			return err
		}
		found = &g
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query group %s: %w", id, err)
	}
	return found, nil
}

func (r *taxonomyRepo) Subject(ctx context.Context, id string) (*taxonomy.Subject, error) {
	stmt := builder.Select("id", "group_id", "name").
		From(builder.Table(tableSubjects)).
		Where(entsql.EQ("id", id))

	var found *taxonomy.Subject
	err := queryRows(ctx, r.drv, stmt, func(rows *entsql.Rows) error {
		var s taxonomy.Subject
		if err := rows.Scan(&s.ID, &s.GroupID, &s.Name); err != nil {
			return err
		}
		found = &s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query subject %s: %w", id, err)
	}
	return found, nil
}

func (r *taxonomyRepo) UpsertSegment(ctx context.Context, s taxonomy.Segment) error {
	return upsertSegment(ctx, r.drv, s, 0)
}

func (r *taxonomyRepo) UpsertGroup(ctx context.Context, g taxonomy.Group) error {
	return upsertGroup(ctx, r.drv, g, 0)
}

func (r *taxonomyRepo) UpsertSubject(ctx context.Context, s taxonomy.Subject) error {
	return upsertSubject(ctx, r.drv, s, 0)
}

func (r *taxonomyRepo) LoadTree(ctx context.Context, t *taxonomy.Tree) error {
	return withTx(ctx, r.drv, func(tx dialect.Tx) error {
		for i, seg := range t.Segments {
			if err := upsertSegment(ctx, tx, seg.Segment, i); err != nil {
				return err
			}
			for j, grp := range seg.Groups {
				if err := upsertGroup(ctx, tx, grp.Group, j); err != nil {
					return err
				}
				for k, sub := range grp.Subjects {
					if err := upsertSubject(ctx, tx, sub, k); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

func upsertSegment(ctx context.Context, q dialect.ExecQuerier, s taxonomy.Segment, pos int) error {
	stmt := builder.Insert(tableSegments).
		Columns("id", "name", "position").
		Values(s.ID, s.Name, pos).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		)
	if err := execStmt(ctx, q, stmt); err != nil {
		return fmt.Errorf("upsert segment %s: %w", s.ID, err)
	}
	return nil
}

func upsertGroup(ctx context.Context, q dialect.ExecQuerier, g taxonomy.Group, pos int) error {
	stmt := builder.Insert(tableGroups).
		Columns("id", "segment_id", "name", "position").
		Values(g.ID, g.SegmentID, g.Name, pos).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		)
	if err := execStmt(ctx, q, stmt); err != nil {
		return fmt.Errorf("upsert group %s: %w", g.ID, err)
	}
	return nil
}

func upsertSubject(ctx context.Context, q dialect.ExecQuerier, s taxonomy.Subject, pos int) error {
	stmt := builder.Insert(tableSubjects).
		Columns("id", "group_id", "name", "position").
		Values(s.ID, s.GroupID, s.Name, pos).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		)
	if err := execStmt(ctx, q, stmt); err != nil {
		return fmt.Errorf("upsert subject %s: %w", s.ID, err)
	}
	return nil
}
