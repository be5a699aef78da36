package attendance

import (
	"errors"
	"testing"
	"time"
)

func TestFormatDayZeroPads(t *testing.T) {
	got := FormatDay(time.Date(2024, time.February, 3, 23, 59, 0, 0, time.UTC))
	if got != "2024-02-03" {
		t.Fatalf("FormatDay = %q, want 2024-02-03", got)
	}
	// The calendar day is taken in the time's own location.
	loc := time.FixedZone("UTC+5", 5*3600)
	got = FormatDay(time.Date(2024, time.February, 3, 22, 0, 0, 0, time.UTC).In(loc))
	if got != "2024-02-04" {
		t.Fatalf("FormatDay in +5 = %q, want 2024-02-04", got)
	}
}

func TestParseDay(t *testing.T) {
	if _, err := ParseDay("2024-12-31"); err != nil {
		t.Fatalf("ParseDay failed: %v", err)
	}
	for _, bad := range []string{"", "2024-1-01", "2024-02-30", "31/12/2024", "2024-12-31T00:00:00Z"} {
		if _, err := ParseDay(bad); !errors.Is(err, ErrInvalidDay) {
			t.Errorf("ParseDay(%q) error = %v, want %v", bad, err, ErrInvalidDay)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPresent, StatusAbsent, StatusLate, StatusOffday} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Status("OFFDAY").Valid() {
		t.Error("status comparison must be exact")
	}
}
