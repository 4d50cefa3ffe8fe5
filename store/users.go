package store

import (
	"context"
	"fmt"

	"yatube/domain"

	"github.com/google/uuid"
)

const userColumns = "id, username, first_name, last_name, email, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	u := domain.User{}
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts u with the given bcrypt hash, assigning an ID when u
// has none. ErrConflict means the username is taken.
func (s *Store) CreateUser(ctx context.Context, u domain.User, passwordHash []byte) (domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO users (id, username, first_name, last_name, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Username, u.FirstName, u.LastName, u.Email, string(passwordHash), u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.User{}, ErrConflict
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (domain.User, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, notFound(err)
	}
	return u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, notFound(err)
	}
	return u, nil
}

// PasswordHash returns the user together with its stored bcrypt hash.
func (s *Store) PasswordHash(ctx context.Context, username string) (domain.User, []byte, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+userColumns+", password FROM users WHERE username = ?", username)
	u := domain.User{}
	var hash string
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt, &u.UpdatedAt, &hash)
	if err != nil {
		return domain.User{}, nil, notFound(err)
	}
	return u, []byte(hash), nil
}
