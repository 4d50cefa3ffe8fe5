package domain

import (
	"strings"
	"time"
)

type User struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName falls back to the username when no name was given at signup.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
