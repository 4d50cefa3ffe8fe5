package store

import (
	"context"
	"fmt"

	"yatube/domain"

	"github.com/google/uuid"
)

func (s *Store) CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := s.now()
	c.Created, c.Updated = now, now
	c.Active = true

	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO comments (id, post_id, author_id, text, active, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.PostID, c.AuthorID, c.Text, c.Active, c.Created, c.Updated)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

// ListComments returns the active comments on a post, oldest first.
func (s *Store) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT c.id, c.post_id, c.author_id, c.text, c.active, c.created, c.updated,
	u.id, u.username, u.first_name, u.last_name, u.email, u.created_at, u.updated_at
FROM comments c
JOIN users u ON u.id = c.author_id
WHERE c.post_id = ? AND c.active
ORDER BY c.created, c.rowid`, postID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		c := domain.Comment{}
		err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.Active, &c.Created, &c.Updated,
			&c.Author.ID, &c.Author.Username, &c.Author.FirstName, &c.Author.LastName, &c.Author.Email, &c.Author.CreatedAt, &c.Author.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Store) CountComments(ctx context.Context, postID string) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments WHERE post_id = ? AND active", postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}

// SetCommentActive hides or restores a comment without deleting it.
func (s *Store) SetCommentActive(ctx context.Context, id string, active bool) error {
	res, err := s.DB.ExecContext(ctx, "UPDATE comments SET active = ?, updated = ? WHERE id = ?", active, s.now(), id)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
