package store

import (
	"context"
	"fmt"

	"yatube/domain"

	"github.com/google/uuid"
)

const groupColumns = "id, title, slug, description, created_at"

func scanGroup(row rowScanner) (domain.Group, error) {
	g := domain.Group{}
	err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description, &g.CreatedAt)
	return g, err
}

func (s *Store) CreateGroup(ctx context.Context, g domain.Group) (domain.Group, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.CreatedAt = s.now()
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO post_groups (id, title, slug, description, created_at) VALUES (?, ?, ?, ?, ?)",
		g.ID, g.Title, g.Slug, g.Description, g.CreatedAt)
	if isUniqueViolation(err) {
		return domain.Group{}, ErrConflict
	}
	if err != nil {
		return domain.Group{}, fmt.Errorf("insert group: %w", err)
	}
	return g, nil
}

func (s *Store) GroupBySlug(ctx context.Context, slug string) (domain.Group, error) {
	g, err := scanGroup(s.DB.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM post_groups WHERE slug = ?", slug))
	if err != nil {
		return domain.Group{}, notFound(err)
	}
	return g, nil
}

func (s *Store) GroupByID(ctx context.Context, id string) (domain.Group, error) {
	g, err := scanGroup(s.DB.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM post_groups WHERE id = ?", id))
	if err != nil {
		return domain.Group{}, notFound(err)
	}
	return g, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]domain.Group, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+groupColumns+" FROM post_groups ORDER BY title")
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	groups := []domain.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
