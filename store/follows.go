package store

import (
	"context"
	"fmt"
)

// Follow records that userID follows authorID. Repeating it is a no-op;
// it reports whether a new edge was created.
func (s *Store) Follow(ctx context.Context, userID, authorID string) (bool, error) {
	res, err := s.DB.ExecContext(ctx,
		"INSERT OR IGNORE INTO follows (user_id, author_id, created_at) VALUES (?, ?, ?)",
		userID, authorID, s.now())
	if err != nil {
		return false, fmt.Errorf("insert follow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Unfollow removes the edge, reporting whether one existed.
func (s *Store) Unfollow(ctx context.Context, userID, authorID string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM follows WHERE user_id = ? AND author_id = ?", userID, authorID)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	if userID == "" || authorID == "" {
		return false, nil
	}
	var n int
	err := s.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM follows WHERE user_id = ? AND author_id = ?", userID, authorID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query follow: %w", err)
	}
	return n > 0, nil
}
