package backup

import "errors"

var (
	// ErrUnsupportedVersion indicates a snapshot version outside {1, 2}.
	ErrUnsupportedVersion = errors.New("backup: unsupported backup format")

	// ErrMalformed indicates a snapshot that is not valid JSON or misses
	// required fields or references.
	ErrMalformed = errors.New("backup: malformed backup data")
)
