package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// builder creates SQLite-flavoured statements.
var builder = entsql.Dialect(dialect.SQLite)

func execStmt(ctx context.Context, q dialect.ExecQuerier, stmt entsql.Querier) error {
	query, args := stmt.Query()
	return q.Exec(ctx, query, args, nil)
}

// execAffected executes stmt and returns the number of affected rows.
func execAffected(ctx context.Context, q dialect.ExecQuerier, stmt entsql.Querier) (int64, error) {
	query, args := stmt.Query()
	var res sql.Result
	if err := q.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// queryRows runs stmt and calls scan for every row. Rows are closed before
// returning so the caller may issue further statements on the same executor.
func queryRows(ctx context.Context, q dialect.ExecQuerier, stmt entsql.Querier, scan func(*entsql.Rows) error) error {
	query, args := stmt.Query()
	rows := &entsql.Rows{}
	if err := q.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return rows.Close()
}

func countRows(ctx context.Context, q dialect.ExecQuerier, stmt entsql.Querier) (int, error) {
	var n int
	err := queryRows(ctx, q, stmt, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	return n, err
}

// withTx runs fn inside a transaction, rolling back when fn fails.
func withTx(ctx context.Context, drv *entsql.Driver, fn func(tx dialect.Tx) error) error {
	tx, err := drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// anySlice converts ids to builder arguments.
func anySlice(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
