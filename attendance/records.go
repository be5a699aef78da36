package attendance

import (
	"context"
	"database/sql"
	"fmt"
)

// UpsertAttendance marks a student for a day. A second mark for the same
// (student, day) overwrites the status in the same statement.
func (s *Store) UpsertAttendance(ctx context.Context, date string, studentID int64, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := checkDay(date); err != nil {
		return err
	}
	_, err := s.q.Mutate(ctx,
		`INSERT INTO attendance (student_id, date, status) VALUES (?, ?, ?)
		 ON CONFLICT(student_id, date) DO UPDATE SET status = excluded.status`,
		studentID, date, string(status),
	)
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// GetAttendanceForDate returns every mark recorded for date, by student.
func (s *Store) GetAttendanceForDate(ctx context.Context, date string) ([]AttendanceRecord, error) {
	out, err := s.listAttendance(ctx,
		`SELECT id, student_id, date, status FROM attendance WHERE date = ? ORDER BY student_id`, date)
	if err != nil {
		return nil, fmt.Errorf("get attendance for date: %w", err)
	}
	return out, nil
}

// FinalizeDay records offday for every student with no mark on date and
// returns how many rows it added. Existing marks are never touched, so a
// second call adds nothing.
func (s *Store) FinalizeDay(ctx context.Context, date string) (int64, error) {
	if err := checkDay(date); err != nil {
		return 0, err
	}
	res, err := s.q.Mutate(ctx,
		`INSERT INTO attendance (student_id, date, status)
		 SELECT st.id, ?, 'offday' FROM students st
		 WHERE NOT EXISTS (
		   SELECT 1 FROM attendance a WHERE a.student_id = st.id AND a.date = ?
		 )`,
		date, date,
	)
	if err != nil {
		return 0, fmt.Errorf("finalize day: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("finalize day: %w", err)
	}
	return n, nil
}

// GetStudentAttendanceHistory returns a student's marks, newest day first.
func (s *Store) GetStudentAttendanceHistory(ctx context.Context, studentID int64) ([]AttendanceRecord, error) {
	out, err := s.listAttendance(ctx,
		`SELECT id, student_id, date, status FROM attendance WHERE student_id = ? ORDER BY date DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student attendance history: %w", err)
	}
	return out, nil
}

func (s *Store) listAttendance(ctx context.Context, query string, args ...any) ([]AttendanceRecord, error) {
	var out []AttendanceRecord
	err := s.q.Each(ctx, query, args, func(rows *sql.Rows) error {
		var (
			rec    AttendanceRecord
			status string
		)
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.Date, &status); err != nil {
			return err
		}
		rec.Status = Status(status)
		out = append(out, rec)
		return nil
	})
	return out, err
}
