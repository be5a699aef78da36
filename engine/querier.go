package engine

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Row is one materialized result row keyed by column name.
type Row map[string]any

// Conn is the statement surface available both outside and inside a transaction.
type Conn interface {
	Mutate(ctx context.Context, query string, args ...any) (sql.Result, error)
	MutateScript(ctx context.Context, script string) error
	QueryRows(ctx context.Context, query string, args ...any) ([]Row, error)
	Each(ctx context.Context, query string, args []any, fn func(*sql.Rows) error) error
}

// Querier is the only path from higher layers to the live engine. Every call
// initializes the selector lazily. Regular calls share a read lock; Exclusive
// holds the write lock so nothing else runs while it is in progress.
type Querier struct {
	selector *Selector
	mu       sync.RWMutex
}

// NewQuerier wraps a selector.
func NewQuerier(selector *Selector) *Querier {
	return &Querier{selector: selector}
}

// Selector returns the underlying selector.
func (q *Querier) Selector() *Selector { return q.selector }

// Close tears down the engine.
func (q *Querier) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.selector.Close()
}

// Mutate executes a single INSERT, UPDATE or DELETE.
func (q *Querier) Mutate(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	e, err := q.selector.Initialize(ctx)
	if err != nil {
		return nil, err
	}
	res, err := e.Run(ctx, query, args...)
	return res, classify(err)
}

// MutateScript executes a multi-statement script with no parameter binding.
func (q *Querier) MutateScript(ctx context.Context, script string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	e, err := q.selector.Initialize(ctx)
	if err != nil {
		return err
	}
	return classify(e.Execute(ctx, script))
}

// QueryRows executes a read statement and materializes the full result set.
func (q *Querier) QueryRows(ctx context.Context, query string, args ...any) ([]Row, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	e, err := q.selector.Initialize(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := e.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	return collectRows(rows)
}

// Each executes a read statement and calls fn once per row.
func (q *Querier) Each(ctx context.Context, query string, args []any, fn func(*sql.Rows) error) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	e, err := q.selector.Initialize(ctx)
	if err != nil {
		return err
	}
	rows, err := e.Query(ctx, query, args...)
	if err != nil {
		return classify(err)
	}
	return eachRow(rows, fn)
}

// Exclusive runs fn in a transaction while no other Querier call can execute.
// The transaction commits when fn returns nil and rolls back otherwise.
func (q *Querier) Exclusive(ctx context.Context, fn func(Tx) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inTx(ctx, fn)
}

// Snapshot runs fn in a transaction alongside other regular calls, giving fn
// a consistent view of the data. fn must only use the Tx it is given.
func (q *Querier) Snapshot(ctx context.Context, fn func(Tx) error) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.inTx(ctx, fn)
}

func (q *Querier) inTx(ctx context.Context, fn func(Tx) error) error {
	e, err := q.selector.Initialize(ctx)
	if err != nil {
		return err
	}
	tx, err := e.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(Tx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", classify(err))
	}
	return nil
}

// Tx exposes the Querier primitives on an open transaction.
type Tx struct {
	tx *sql.Tx
}

// Mutate executes a single statement inside the transaction.
func (t Tx) Mutate(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	return res, classify(err)
}

// MutateScript executes a multi-statement script inside the transaction.
func (t Tx) MutateScript(ctx context.Context, script string) error {
	_, err := t.tx.ExecContext(ctx, script)
	return classify(err)
}

// QueryRows materializes a read inside the transaction.
func (t Tx) QueryRows(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	return collectRows(rows)
}

// Each calls fn once per row of a read inside the transaction.
func (t Tx) Each(ctx context.Context, query string, args []any, fn func(*sql.Rows) error) error {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return classify(err)
	}
	return eachRow(rows, fn)
}

func eachRow(rows *sql.Rows, fn func(*sql.Rows) error) error {
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func collectRows(rows *sql.Rows) ([]Row, error) {
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []Row
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(Row, len(columns))
		for i, name := range columns {
			// Drivers disagree on whether TEXT arrives as string or []byte.
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
				continue
			}
			row[name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var (
	_ Conn = (*Querier)(nil)
	_ Conn = Tx{}
)
