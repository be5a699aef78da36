package backup

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks snap for structural and referential soundness. It touches
// no database, so a failing snapshot never reaches a destructive statement.
func Validate(snap Snapshot) error {
	if !Supported(snap.Version) {
		return fmt.Errorf("%w: version %d", ErrUnsupportedVersion, snap.Version)
	}
	if err := validate.Struct(snap); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	groups := make(map[int64]bool, len(snap.Groups))
	for _, g := range snap.Groups {
		if groups[g.ID] {
			return fmt.Errorf("%w: duplicate group id %d", ErrMalformed, g.ID)
		}
		groups[g.ID] = true
	}

	students := make(map[int64]bool, len(snap.Students))
	for _, s := range snap.Students {
		if students[s.ID] {
			return fmt.Errorf("%w: duplicate student id %d", ErrMalformed, s.ID)
		}
		students[s.ID] = true
		if s.GroupID != nil && !groups[*s.GroupID] {
			return fmt.Errorf("%w: student %d references unknown group %d", ErrMalformed, s.ID, *s.GroupID)
		}
	}

	type key struct {
		student int64
		date    string
	}
	seen := make(map[key]bool, len(snap.Attendance))
	attendanceIDs := make(map[int64]bool, len(snap.Attendance))
	for _, a := range snap.Attendance {
		if !students[a.StudentID] {
			return fmt.Errorf("%w: attendance references unknown student %d", ErrMalformed, a.StudentID)
		}
		k := key{a.StudentID, a.Date}
		if seen[k] {
			return fmt.Errorf("%w: duplicate attendance for student %d on %s", ErrMalformed, a.StudentID, a.Date)
		}
		seen[k] = true
		if a.ID != nil {
			if attendanceIDs[*a.ID] {
				return fmt.Errorf("%w: duplicate attendance id %d", ErrMalformed, *a.ID)
			}
			attendanceIDs[*a.ID] = true
		}
	}

	paymentIDs := make(map[int64]bool, len(snap.Payments))
	for _, p := range snap.Payments {
		if !students[p.StudentID] {
			return fmt.Errorf("%w: payment references unknown student %d", ErrMalformed, p.StudentID)
		}
		if p.ID != nil {
			if paymentIDs[*p.ID] {
				return fmt.Errorf("%w: duplicate payment id %d", ErrMalformed, *p.ID)
			}
			paymentIDs[*p.ID] = true
		}
	}
	return nil
}
