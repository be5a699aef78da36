package attendance

import (
	"fmt"
	"time"
)

// DayLayout is the calendar-day format stored in every date column. It is
// zero-padded, so string order equals chronological order.
const DayLayout = "2006-01-02"

// FormatDay renders the calendar day of t in t's own location.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a calendar day in DayLayout.
func ParseDay(value string) (time.Time, error) {
	t, err := time.Parse(DayLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, value)
	}
	return t, nil
}

func checkDay(value string) error {
	_, err := ParseDay(value)
	return err
}
