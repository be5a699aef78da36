package backup

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/viant/attendly/engine"
)

const exportedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// ExportOption configures Export.
type ExportOption func(*exportConfig)

type exportConfig struct {
	now func() time.Time
}

// WithClock sets the clock stamped into exported_at.
func WithClock(now func() time.Time) ExportOption {
	return func(c *exportConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Export reads every table inside one read transaction and returns a
// current-version snapshot in a stable order.
func Export(ctx context.Context, q *engine.Querier, opts ...ExportOption) (Snapshot, error) {
	cfg := exportConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	snap := Snapshot{
		Version:    CurrentVersion,
		ExportedAt: cfg.now().UTC().Format(exportedAtLayout),
		Groups:     []Group{},
		Students:   []Student{},
		Attendance: []Attendance{},
		Payments:   []Payment{},
	}

	err := q.Snapshot(ctx, func(tx engine.Tx) error {
		if err := tx.Each(ctx, "SELECT id, name, created_at FROM groups ORDER BY id", nil, func(rows *sql.Rows) error {
			var g Group
			var name string
			var created sql.NullString
			if err := rows.Scan(&g.ID, &name, &created); err != nil {
				return err
			}
			g.Name = &name
			g.CreatedAt = nullString(created)
			snap.Groups = append(snap.Groups, g)
			return nil
		}); err != nil {
			return fmt.Errorf("export groups: %w", err)
		}

		if err := tx.Each(ctx, "SELECT id, name, group_id, payment_amount, created_at FROM students ORDER BY id", nil, func(rows *sql.Rows) error {
			var s Student
			var name string
			var group sql.NullInt64
			var created sql.NullString
			if err := rows.Scan(&s.ID, &name, &group, &s.PaymentAmount, &created); err != nil {
				return err
			}
			s.Name = &name
			if group.Valid {
				id := group.Int64
				s.GroupID = &id
			}
			s.CreatedAt = nullString(created)
			snap.Students = append(snap.Students, s)
			return nil
		}); err != nil {
			return fmt.Errorf("export students: %w", err)
		}

		if err := tx.Each(ctx, "SELECT id, student_id, date, status FROM attendance ORDER BY date, student_id, id", nil, func(rows *sql.Rows) error {
			var a Attendance
			var id int64
			if err := rows.Scan(&id, &a.StudentID, &a.Date, &a.Status); err != nil {
				return err
			}
			a.ID = &id
			snap.Attendance = append(snap.Attendance, a)
			return nil
		}); err != nil {
			return fmt.Errorf("export attendance: %w", err)
		}

		if err := tx.Each(ctx, "SELECT id, student_id, date, amount, note, created_at FROM payments ORDER BY date, student_id, id", nil, func(rows *sql.Rows) error {
			var p Payment
			var id int64
			var amount float64
			var note, created sql.NullString
			if err := rows.Scan(&id, &p.StudentID, &p.Date, &amount, &note, &created); err != nil {
				return err
			}
			p.ID = &id
			p.Amount = &amount
			p.Note = nullString(note)
			p.CreatedAt = nullString(created)
			snap.Payments = append(snap.Payments, p)
			return nil
		}); err != nil {
			return fmt.Errorf("export payments: %w", err)
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
