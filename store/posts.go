package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"yatube/domain"

	"github.com/google/uuid"
)

const postSelect = `SELECT p.id, p.text, p.author_id, p.image, p.pub_date, p.updated_at,
	u.id, u.username, u.first_name, u.last_name, u.email, u.created_at, u.updated_at,
	g.id, g.title, g.slug, g.description, g.created_at
FROM posts p
JOIN users u ON u.id = p.author_id
LEFT JOIN post_groups g ON g.id = p.group_id`

// PostFilter narrows ListPosts and CountPosts. The zero value selects
// every post. Set fields are combined with AND.
type PostFilter struct {
	GroupID  string
	AuthorID string
	// FollowerID selects posts whose author is followed by this user.
	FollowerID string
}

func (f PostFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.GroupID != "" {
		clauses = append(clauses, "p.group_id = ?")
		args = append(args, f.GroupID)
	}
	if f.AuthorID != "" {
		clauses = append(clauses, "p.author_id = ?")
		args = append(args, f.AuthorID)
	}
	if f.FollowerID != "" {
		clauses = append(clauses, "p.author_id IN (SELECT author_id FROM follows WHERE user_id = ?)")
		args = append(args, f.FollowerID)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanPost(row rowScanner) (domain.Post, error) {
	p := domain.Post{}
	var gID, gTitle, gSlug, gDesc sql.NullString
	var gCreated sql.NullTime
	err := row.Scan(&p.ID, &p.Text, &p.AuthorID, &p.Image, &p.PubDate, &p.UpdatedAt,
		&p.Author.ID, &p.Author.Username, &p.Author.FirstName, &p.Author.LastName, &p.Author.Email, &p.Author.CreatedAt, &p.Author.UpdatedAt,
		&gID, &gTitle, &gSlug, &gDesc, &gCreated)
	if err != nil {
		return domain.Post{}, err
	}
	if gID.Valid {
		p.Group = &domain.Group{
			ID:          gID.String,
			Title:       gTitle.String,
			Slug:        gSlug.String,
			Description: gDesc.String,
			CreatedAt:   gCreated.Time,
		}
	}
	return p, nil
}

func groupArg(g *domain.Group) any {
	if g == nil {
		return nil
	}
	return g.ID
}

// CreatePost stores p authored by p.AuthorID; Group may be nil.
func (s *Store) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := s.now()
	p.PubDate, p.UpdatedAt = now, now

	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO posts (id, text, author_id, group_id, image, pub_date, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Text, p.AuthorID, groupArg(p.Group), p.Image, p.PubDate, p.UpdatedAt)
	if err != nil {
		return domain.Post{}, fmt.Errorf("insert post: %w", err)
	}
	return s.PostByID(ctx, p.ID)
}

// UpdatePost overwrites text, group and image of an existing post.
func (s *Store) UpdatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE posts SET text = ?, group_id = ?, image = ?, updated_at = ? WHERE id = ?",
		p.Text, groupArg(p.Group), p.Image, s.now(), p.ID)
	if err != nil {
		return domain.Post{}, fmt.Errorf("update post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Post{}, ErrNotFound
	}
	return s.PostByID(ctx, p.ID)
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) PostByID(ctx context.Context, id string) (domain.Post, error) {
	p, err := scanPost(s.DB.QueryRowContext(ctx, postSelect+" WHERE p.id = ?", id))
	if err != nil {
		return domain.Post{}, notFound(err)
	}
	return p, nil
}

// ListPosts returns one window of the filtered posts, newest first.
func (s *Store) ListPosts(ctx context.Context, f PostFilter, limit, offset int) ([]domain.Post, error) {
	where, args := f.where()
	args = append(args, limit, offset)
	rows, err := s.DB.QueryContext(ctx,
		postSelect+where+" ORDER BY p.pub_date DESC, p.rowid DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Store) CountPosts(ctx context.Context, f PostFilter) (int, error) {
	where, args := f.where()
	var n int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts p"+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}
