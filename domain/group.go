package domain

import "time"

type Group struct {
	ID          string
	Title       string
	Slug        string
	Description string
	CreatedAt   time.Time
}

func (g Group) String() string {
	return g.Title
}
