package store

import (
	"context"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out the global monotonic sequence shared by
// questions, papers and LLM events. Listings order by it (newest first)
// because wall-clock timestamps can collide or go backwards.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level. Next takes the executor so a
// write transaction can draw its number without a second connection
// contending for the SQLite write lock.
type sequenceCounter struct {
	mu sync.Mutex
}

func newSequenceCounter(ctx context.Context, drv dialect.ExecQuerier) (*sequenceCounter, error) {
	// The row is seeded by migrate; make sure it survived.
	rows := &entsql.Rows{}
	if err := drv.Query(ctx, `SELECT next_val FROM global_sequence WHERE id = 1`, []any{}, rows); err != nil {
		return nil, fmt.Errorf("check sequence: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, fmt.Errorf("check sequence: global_sequence is not seeded")
	}
	return &sequenceCounter{}, rows.Close()
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context, q dialect.ExecQuerier) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	rows := &entsql.Rows{}
	err := q.Query(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
		[]any{}, rows)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()

	var seq int64
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("next sequence: %w", err)
		}
		return 0, fmt.Errorf("next sequence: no row returned")
	}
	if err := rows.Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, rows.Close()
}
