package attendance

import (
	"context"
	"database/sql"
	"fmt"
)

const paymentColumns = `id, student_id, date, amount, COALESCE(note, ''), COALESCE(created_at, '')`

// RecordPayment always inserts a new payment and returns its id.
func (s *Store) RecordPayment(ctx context.Context, studentID int64, amount float64, date, note string) (int64, error) {
	if err := checkDay(date); err != nil {
		return 0, err
	}
	res, err := s.q.Mutate(ctx,
		`INSERT INTO payments (student_id, date, amount, note) VALUES (?, ?, ?, ?)`,
		studentID, date, amount, note,
	)
	if err != nil {
		return 0, fmt.Errorf("record payment: %w", err)
	}
	return lastInsertID(res)
}

// GetPaymentsForDate returns the payments made on date, by student.
func (s *Store) GetPaymentsForDate(ctx context.Context, date string) ([]PaymentRecord, error) {
	out, err := s.listPayments(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE date = ? ORDER BY student_id, id`, date)
	if err != nil {
		return nil, fmt.Errorf("get payments for date: %w", err)
	}
	return out, nil
}

// GetStudentPayments returns a student's payments, newest day first.
func (s *Store) GetStudentPayments(ctx context.Context, studentID int64) ([]PaymentRecord, error) {
	out, err := s.listPayments(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE student_id = ? ORDER BY date DESC, id DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student payments: %w", err)
	}
	return out, nil
}

// GetLastPaymentForStudent returns the student's most recent payment.
func (s *Store) GetLastPaymentForStudent(ctx context.Context, studentID int64) (PaymentRecord, error) {
	out, err := s.listPayments(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE student_id = ? ORDER BY date DESC, id DESC LIMIT 1`, studentID)
	if err != nil {
		return PaymentRecord{}, fmt.Errorf("get last payment: %w", err)
	}
	if len(out) == 0 {
		return PaymentRecord{}, ErrNotFound
	}
	return out[0], nil
}

func (s *Store) listPayments(ctx context.Context, query string, args ...any) ([]PaymentRecord, error) {
	var out []PaymentRecord
	err := s.q.Each(ctx, query, args, func(rows *sql.Rows) error {
		var p PaymentRecord
		if err := rows.Scan(&p.ID, &p.StudentID, &p.Date, &p.Amount, &p.Note, &p.CreatedAt); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}
