package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/attendly/engine"
)

const studentColumns = `id, name, group_id, payment_amount, COALESCE(created_at, '')`

// AddStudent inserts a student and returns its id. PaymentAmount defaults to 0.
func (s *Store) AddStudent(ctx context.Context, name string, opts StudentOptions) (int64, error) {
	amount := 0.0
	if opts.PaymentAmount != nil {
		amount = *opts.PaymentAmount
	}
	res, err := s.q.Mutate(ctx,
		`INSERT INTO students (name, group_id, payment_amount) VALUES (?, ?, ?)`,
		name, nullableInt(opts.GroupID), amount,
	)
	if err != nil {
		return 0, fmt.Errorf("add student: %w", err)
	}
	return lastInsertID(res)
}

// ListStudents returns students ordered by name, optionally limited to one group.
func (s *Store) ListStudents(ctx context.Context, groupID *int64) ([]Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students`
	var args []any
	if groupID != nil {
		query += ` WHERE group_id = ?`
		args = append(args, *groupID)
	}
	query += ` ORDER BY name`

	var out []Student
	err := s.q.Each(ctx, query, args, func(rows *sql.Rows) error {
		student, err := scanStudent(rows)
		if err != nil {
			return err
		}
		out = append(out, student)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return out, nil
}

// GetStudent returns one student by id.
func (s *Store) GetStudent(ctx context.Context, id int64) (Student, error) {
	var (
		student Student
		found   bool
	)
	err := s.q.Each(ctx, `SELECT `+studentColumns+` FROM students WHERE id = ?`, []any{id}, func(rows *sql.Rows) error {
		var err error
		student, err = scanStudent(rows)
		found = err == nil
		return err
	})
	if err != nil {
		return Student{}, fmt.Errorf("get student: %w", err)
	}
	if !found {
		return Student{}, ErrNotFound
	}
	return student, nil
}

// UpdateStudent applies the present fields of patch in one statement. An
// empty patch is a no-op.
func (s *Store) UpdateStudent(ctx context.Context, id int64, patch StudentPatch) error {
	if patch.Empty() {
		return nil
	}
	if patch.ClearGroup && patch.GroupID != nil {
		return fmt.Errorf("update student: group id and clear group are mutually exclusive")
	}
	var (
		sets []string
		args []any
	)
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	switch {
	case patch.ClearGroup:
		sets = append(sets, "group_id = NULL")
	case patch.GroupID != nil:
		sets = append(sets, "group_id = ?")
		args = append(args, *patch.GroupID)
	}
	if patch.PaymentAmount != nil {
		sets = append(sets, "payment_amount = ?")
		args = append(args, *patch.PaymentAmount)
	}
	args = append(args, id)

	res, err := s.q.Mutate(ctx, `UPDATE students SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if err := requireAffected(res); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// DeleteStudent removes the student's payments, then attendance, then the
// student, in one transaction.
func (s *Store) DeleteStudent(ctx context.Context, id int64) error {
	err := s.q.Exclusive(ctx, func(tx engine.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM payments WHERE student_id = ?`,
			`DELETE FROM attendance WHERE student_id = ?`,
			`DELETE FROM students WHERE id = ?`,
		} {
			if _, err := tx.Mutate(ctx, stmt, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

func scanStudent(rows *sql.Rows) (Student, error) {
	var (
		student Student
		groupID sql.NullInt64
	)
	if err := rows.Scan(&student.ID, &student.Name, &groupID, &student.PaymentAmount, &student.CreatedAt); err != nil {
		return Student{}, err
	}
	student.GroupID = fromNullInt(groupID)
	return student, nil
}
