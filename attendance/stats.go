package attendance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viant/attendly/engine"
)

// DefaultStatsWindowDays is the trailing window used when none is given.
const DefaultStatsWindowDays = 30

// GetGroupStats sums the payments of the group's current students whose day
// falls in [today-windowDays, today] and counts the group's students. Both
// figures come from one transaction.
func (s *Store) GetGroupStats(ctx context.Context, groupID int64, windowDays int) (GroupStats, error) {
	if windowDays <= 0 {
		windowDays = DefaultStatsWindowDays
	}
	today := s.now()
	stats := GroupStats{
		GroupID: groupID,
		From:    FormatDay(today.AddDate(0, 0, -windowDays)),
		To:      FormatDay(today),
	}
	err := s.q.Snapshot(ctx, func(tx engine.Tx) error {
		err := tx.Each(ctx,
			`SELECT COALESCE(SUM(p.amount), 0.0)
			   FROM payments p
			   JOIN students st ON st.id = p.student_id
			  WHERE st.group_id = ? AND p.date >= ? AND p.date <= ?`,
			[]any{groupID, stats.From, stats.To},
			func(rows *sql.Rows) error { return rows.Scan(&stats.TotalCollected) },
		)
		if err != nil {
			return err
		}
		return tx.Each(ctx, `SELECT COUNT(*) FROM students WHERE group_id = ?`, []any{groupID},
			func(rows *sql.Rows) error { return rows.Scan(&stats.StudentCount) })
	})
	if err != nil {
		return GroupStats{}, fmt.Errorf("get group stats: %w", err)
	}
	return stats, nil
}
