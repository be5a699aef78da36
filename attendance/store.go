package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/viant/attendly/engine"
)

// Store runs the domain operations through an engine.Querier. It validates
// nothing beyond what the schema enforces, except argument shapes that
// mirror CHECK constraints.
type Store struct {
	q   *engine.Querier
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to derive "today".
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a Store over an existing querier. The querier's selector
// must apply SchemaSQL.
func NewStore(q *engine.Querier, opts ...Option) (*Store, error) {
	if q == nil {
		return nil, fmt.Errorf("attendance: querier is nil")
	}
	s := &Store{q: q, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open builds a Store whose selector applies SchemaSQL. No engine is opened
// until the first operation or Init.
func Open(engineOpts []engine.Option, opts ...Option) *Store {
	engineOpts = append([]engine.Option{engine.WithSchema(SchemaSQL)}, engineOpts...)
	s, _ := NewStore(engine.NewQuerier(engine.NewSelector(engineOpts...)), opts...)
	return s
}

// Init forces engine selection and reports which engine is live.
func (s *Store) Init(ctx context.Context) (engine.Kind, error) {
	e, err := s.q.Selector().Initialize(ctx)
	if err != nil {
		return "", err
	}
	return e.Kind(), nil
}

// Querier exposes the underlying façade, e.g. for backups.
func (s *Store) Querier() *engine.Querier { return s.q }

// Close tears down the engine.
func (s *Store) Close() error {
	if s == nil || s.q == nil {
		return nil
	}
	return s.q.Close()
}

// Today returns the current calendar day according to the store clock.
func (s *Store) Today() string { return FormatDay(s.now()) }

func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func lastInsertID(res sql.Result) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
