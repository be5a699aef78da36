package engine

import (
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	// ErrInitialization indicates neither engine could be acquired.
	ErrInitialization = errors.New("engine: initialization failed")

	// ErrConstraintViolation matches any *ConstraintError via errors.Is.
	ErrConstraintViolation = errors.New("engine: constraint violation")

	// ErrClosed indicates the selector was torn down.
	ErrClosed = errors.New("engine: closed")
)

// ConstraintError carries a SQL uniqueness, foreign-key, check or not-null
// failure. The message is the driver's, unchanged.
type ConstraintError struct {
	Err error
}

func (e *ConstraintError) Error() string { return e.Err.Error() }

func (e *ConstraintError) Unwrap() error { return e.Err }

// Is reports whether target is ErrConstraintViolation.
func (e *ConstraintError) Is(target error) bool { return target == ErrConstraintViolation }

// IsConstraintViolation reports whether err is a SQLite constraint failure
// from either driver.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	var constraintErr *ConstraintError
	if errors.As(err, &constraintErr) {
		return true
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3lib.SQLITE_CONSTRAINT
	}
	// The native driver's error type only exists in cgo builds.
	return strings.Contains(strings.ToLower(err.Error()), "constraint failed")
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var constraintErr *ConstraintError
	if errors.As(err, &constraintErr) {
		return err
	}
	if IsConstraintViolation(err) {
		return &ConstraintError{Err: err}
	}
	return err
}
