package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/viant/attendly/engine"
)

// AddGroup inserts a group and returns its id.
func (s *Store) AddGroup(ctx context.Context, name string) (int64, error) {
	res, err := s.q.Mutate(ctx, `INSERT INTO groups (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("add group: %w", err)
	}
	return lastInsertID(res)
}

// ListGroups returns every group ordered by name.
func (s *Store) ListGroups(ctx context.Context) ([]Group, error) {
	var out []Group
	err := s.q.Each(ctx, `SELECT id, name, COALESCE(created_at, '') FROM groups ORDER BY name`, nil, func(rows *sql.Rows) error {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return err
		}
		out = append(out, g)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return out, nil
}

// GetGroup returns one group by id.
func (s *Store) GetGroup(ctx context.Context, id int64) (Group, error) {
	var (
		g     Group
		found bool
	)
	err := s.q.Each(ctx, `SELECT id, name, COALESCE(created_at, '') FROM groups WHERE id = ?`, []any{id}, func(rows *sql.Rows) error {
		found = true
		return rows.Scan(&g.ID, &g.Name, &g.CreatedAt)
	})
	if err != nil {
		return Group{}, fmt.Errorf("get group: %w", err)
	}
	if !found {
		return Group{}, ErrNotFound
	}
	return g, nil
}

// UpdateGroup renames a group.
func (s *Store) UpdateGroup(ctx context.Context, id int64, name string) error {
	res, err := s.q.Mutate(ctx, `UPDATE groups SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	if err := requireAffected(res); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

// DeleteGroup detaches the group's students and deletes the group. Students
// are kept.
func (s *Store) DeleteGroup(ctx context.Context, id int64) error {
	err := s.q.Exclusive(ctx, func(tx engine.Tx) error {
		if _, err := tx.Mutate(ctx, `UPDATE students SET group_id = NULL WHERE group_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.Mutate(ctx, `DELETE FROM groups WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}
