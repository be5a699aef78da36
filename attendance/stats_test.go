package attendance

import (
	"context"
	"testing"
)

// TestGetGroupStatsWindow uses fixedNow (2024-03-31): the 30-day window is
// [2024-03-01, 2024-03-31], both ends included.
func TestGetGroupStatsWindow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	group := mustAddGroup(t, s, "A")
	other := mustAddGroup(t, s, "B")
	amy := mustAddStudent(t, s, "Amy", StudentOptions{GroupID: &group})
	bob := mustAddStudent(t, s, "Bob", StudentOptions{GroupID: &group})
	cal := mustAddStudent(t, s, "Cal", StudentOptions{GroupID: &other})
	dan := mustAddStudent(t, s, "Dan", StudentOptions{})

	payments := []struct {
		student int64
		day     string
		amount  float64
	}{
		{amy, "2024-03-01", 10},   // lower bound, counted
		{amy, "2024-03-31", 20},   // today, counted
		{bob, "2024-03-15", 12.5}, // counted
		{bob, "2024-02-29", 100},  // before window
		{amy, "2024-04-01", 100},  // after today
		{cal, "2024-03-10", 100},  // other group
		{dan, "2024-03-10", 100},  // no group
	}
	for _, p := range payments {
		if _, err := s.RecordPayment(ctx, p.student, p.amount, p.day, ""); err != nil {
			t.Fatalf("RecordPayment failed: %v", err)
		}
	}

	stats, err := s.GetGroupStats(ctx, group, 30)
	if err != nil {
		t.Fatalf("GetGroupStats failed: %v", err)
	}
	if stats.From != "2024-03-01" || stats.To != "2024-03-31" {
		t.Fatalf("window = [%s, %s], want [2024-03-01, 2024-03-31]", stats.From, stats.To)
	}
	if stats.TotalCollected != 42.5 {
		t.Fatalf("TotalCollected = %v, want 42.5", stats.TotalCollected)
	}
	if stats.StudentCount != 2 {
		t.Fatalf("StudentCount = %d, want 2", stats.StudentCount)
	}

	defaulted, err := s.GetGroupStats(ctx, group, 0)
	if err != nil {
		t.Fatalf("GetGroupStats(default window) failed: %v", err)
	}
	if defaulted != stats {
		t.Fatalf("default window stats = %+v, want %+v", defaulted, stats)
	}
}

func TestGetGroupStatsFollowsCurrentMembership(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	group := mustAddGroup(t, s, "A")
	amy := mustAddStudent(t, s, "Amy", StudentOptions{GroupID: &group})
	if _, err := s.RecordPayment(ctx, amy, 50, "2024-03-20", ""); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if err := s.UpdateStudent(ctx, amy, StudentPatch{ClearGroup: true}); err != nil {
		t.Fatalf("UpdateStudent failed: %v", err)
	}

	stats, err := s.GetGroupStats(ctx, group, 30)
	if err != nil {
		t.Fatalf("GetGroupStats failed: %v", err)
	}
	if stats.TotalCollected != 0 || stats.StudentCount != 0 {
		t.Fatalf("stats = %+v, want empty group", stats)
	}
}
