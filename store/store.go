// Package store is the relational persistence layer for users, groups,
// posts, comments and follows.
package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: already exists")
)

type Store struct {
	DB *sql.DB

	// now is replaceable so ordering can be pinned in tests.
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{DB: db, now: func() time.Time { return time.Now().UTC() }}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
