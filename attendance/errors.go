package attendance

import "errors"

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("attendance: record not found")

	// ErrInvalidStatus indicates a mark outside present/absent/late/offday.
	ErrInvalidStatus = errors.New("attendance: invalid status")

	// ErrInvalidDay indicates a date that is not a zero-padded YYYY-MM-DD day.
	ErrInvalidDay = errors.New("attendance: invalid day")
)
