package backup

import (
	"context"
	"fmt"

	"github.com/viant/attendly/engine"
)

// ImportStats counts the rows written by Import.
type ImportStats struct {
	Groups     int `json:"groups"`
	Students   int `json:"students"`
	Attendance int `json:"attendance"`
	Payments   int `json:"payments"`
}

const clearScript = `
DELETE FROM payments;
DELETE FROM attendance;
DELETE FROM students;
DELETE FROM groups;
`

// Import replaces all data with the snapshot content. The snapshot is
// normalized and validated first; the clear and reinsert run in a single
// exclusive transaction, so any failing row leaves the previous data intact.
func Import(ctx context.Context, q *engine.Querier, snap Snapshot) (ImportStats, error) {
	if !Supported(snap.Version) {
		return ImportStats{}, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, snap.Version)
	}
	snap = Normalize(snap)
	if err := Validate(snap); err != nil {
		return ImportStats{}, err
	}

	var stats ImportStats
	err := q.Exclusive(ctx, func(tx engine.Tx) error {
		if err := tx.MutateScript(ctx, clearScript); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
		for _, g := range snap.Groups {
			if _, err := tx.Mutate(ctx,
				"INSERT INTO groups (id, name, created_at) VALUES (?, ?, COALESCE(?, datetime('now')))",
				g.ID, *g.Name, optional(g.CreatedAt)); err != nil {
				return fmt.Errorf("insert group %d: %w", g.ID, err)
			}
			stats.Groups++
		}
		for _, s := range snap.Students {
			if _, err := tx.Mutate(ctx,
				"INSERT INTO students (id, name, group_id, payment_amount, created_at) VALUES (?, ?, ?, ?, COALESCE(?, datetime('now')))",
				s.ID, *s.Name, optional(s.GroupID), s.PaymentAmount, optional(s.CreatedAt)); err != nil {
				return fmt.Errorf("insert student %d: %w", s.ID, err)
			}
			stats.Students++
		}
		for _, a := range snap.Attendance {
			if _, err := tx.Mutate(ctx,
				"INSERT INTO attendance (id, student_id, date, status) VALUES (?, ?, ?, ?)",
				optional(a.ID), a.StudentID, a.Date, a.Status); err != nil {
				return fmt.Errorf("insert attendance for student %d on %s: %w", a.StudentID, a.Date, err)
			}
			stats.Attendance++
		}
		for _, p := range snap.Payments {
			note := ""
			if p.Note != nil {
				note = *p.Note
			}
			if _, err := tx.Mutate(ctx,
				"INSERT INTO payments (id, student_id, date, amount, note, created_at) VALUES (?, ?, ?, ?, ?, COALESCE(?, datetime('now')))",
				optional(p.ID), p.StudentID, p.Date, *p.Amount, note, optional(p.CreatedAt)); err != nil {
				return fmt.Errorf("insert payment for student %d on %s: %w", p.StudentID, p.Date, err)
			}
			stats.Payments++
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}
	return stats, nil
}

// ImportJSON decodes data and imports it.
func ImportJSON(ctx context.Context, q *engine.Querier, data []byte) (ImportStats, error) {
	snap, err := Decode(data)
	if err != nil {
		return ImportStats{}, err
	}
	return Import(ctx, q, snap)
}

func optional[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
