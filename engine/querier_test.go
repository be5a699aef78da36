package engine

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
)

func newTestQuerier(t *testing.T) *Querier {
	t.Helper()
	q := NewQuerier(NewSelector(WithMode(ModeMemory), WithSchema(testSchema), WithLogger(quietLogger())))
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func TestQuerierInitializesLazily(t *testing.T) {
	q := newTestQuerier(t)
	if _, ok := q.Selector().Engine(); ok {
		t.Fatal("expected no engine before first call")
	}
	res, err := q.Mutate(context.Background(), `INSERT INTO items(name) VALUES (?)`, "alpha")
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		t.Fatalf("RowsAffected = %d, want 1", n)
	}
	if _, ok := q.Selector().Engine(); !ok {
		t.Fatal("expected engine after first call")
	}
}

func TestQuerierQueryRowsMaterializesMaps(t *testing.T) {
	ctx := context.Background()
	q := newTestQuerier(t)
	if err := q.MutateScript(ctx, `INSERT INTO items(id, name) VALUES (2, 'beta'); INSERT INTO items(id, name) VALUES (1, 'alpha');`); err != nil {
		t.Fatalf("MutateScript failed: %v", err)
	}

	rows, err := q.QueryRows(ctx, `SELECT id, name FROM items ORDER BY name`)
	if err != nil {
		t.Fatalf("QueryRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("QueryRows returned %d rows, want 2", len(rows))
	}
	if rows[0]["name"] != "alpha" || rows[1]["name"] != "beta" {
		t.Fatalf("unexpected order: %v", rows)
	}
	if id, ok := rows[0]["id"].(int64); !ok || id != 1 {
		t.Fatalf("rows[0][id] = %#v, want int64(1)", rows[0]["id"])
	}

	empty, err := q.QueryRows(ctx, `SELECT id FROM items WHERE name = ?`, "missing")
	if err != nil {
		t.Fatalf("QueryRows failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no rows, got %v", empty)
	}
}

func TestQuerierEach(t *testing.T) {
	ctx := context.Background()
	q := newTestQuerier(t)
	for _, name := range []string{"c", "a", "b"} {
		if _, err := q.Mutate(ctx, `INSERT INTO items(name) VALUES (?)`, name); err != nil {
			t.Fatalf("Mutate failed: %v", err)
		}
	}
	var names []string
	err := q.Each(ctx, `SELECT name FROM items ORDER BY name DESC`, nil, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		t.Fatalf("Each failed: %v", err)
	}
	if strings.Join(names, ",") != "c,b,a" {
		t.Fatalf("names = %v, want [c b a]", names)
	}
}

func TestQuerierSurfacesConstraintViolation(t *testing.T) {
	ctx := context.Background()
	q := newTestQuerier(t)
	if _, err := q.Mutate(ctx, `INSERT INTO items(name) VALUES ('dup')`); err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	_, err := q.Mutate(ctx, `INSERT INTO items(name) VALUES ('dup')`)
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("duplicate insert error = %v, want %v", err, ErrConstraintViolation)
	}
	if !IsConstraintViolation(err) {
		t.Fatal("IsConstraintViolation = false, want true")
	}
	if !strings.Contains(err.Error(), "UNIQUE constraint failed") {
		t.Fatalf("expected driver message verbatim, got %q", err.Error())
	}
	var ce *ConstraintError
	if !errors.As(err, &ce) || ce.Unwrap() == nil {
		t.Fatal("expected *ConstraintError wrapping the driver error")
	}
}

func TestIsConstraintViolationMessageFallback(t *testing.T) {
	if !IsConstraintViolation(errors.New("FOREIGN KEY constraint failed")) {
		t.Fatal("expected native driver message to classify as constraint violation")
	}
	if IsConstraintViolation(errors.New("database is locked")) {
		t.Fatal("unexpected constraint classification")
	}
	if IsConstraintViolation(nil) {
		t.Fatal("nil must not classify")
	}
}

func TestQuerierExclusiveRollsBack(t *testing.T) {
	ctx := context.Background()
	q := newTestQuerier(t)
	if _, err := q.Mutate(ctx, `INSERT INTO items(name) VALUES ('keep')`); err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}

	boom := errors.New("boom")
	err := q.Exclusive(ctx, func(tx Tx) error {
		if _, err := tx.Mutate(ctx, `DELETE FROM items`); err != nil {
			return err
		}
		if _, err := tx.Mutate(ctx, `INSERT INTO items(name) VALUES ('temp')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Exclusive error = %v, want %v", err, boom)
	}

	rows, err := q.QueryRows(ctx, `SELECT name FROM items`)
	if err != nil {
		t.Fatalf("QueryRows failed: %v", err)
	}
	if len(rows) != 1 || rows[0]["name"] != "keep" {
		t.Fatalf("rollback did not restore state: %v", rows)
	}
}

func TestQuerierExclusiveCommits(t *testing.T) {
	ctx := context.Background()
	q := newTestQuerier(t)
	err := q.Exclusive(ctx, func(tx Tx) error {
		if err := tx.MutateScript(ctx, `INSERT INTO items(name) VALUES ('x'); INSERT INTO items(name) VALUES ('y');`); err != nil {
			return err
		}
		rows, err := tx.QueryRows(ctx, `SELECT COUNT(*) AS n FROM items`)
		if err != nil {
			return err
		}
		if rows[0]["n"] != int64(2) {
			t.Errorf("count inside tx = %v, want 2", rows[0]["n"])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Exclusive failed: %v", err)
	}

	var count int
	err = q.Snapshot(ctx, func(tx Tx) error {
		return tx.Each(ctx, `SELECT COUNT(*) FROM items`, nil, func(rows *sql.Rows) error {
			return rows.Scan(&count)
		})
	})
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}
