package domain

import "time"

type Comment struct {
	ID       string
	PostID   string
	AuthorID string
	Author   User
	Text     string
	Active   bool
	Created  time.Time
	Updated  time.Time
}

// Follow is a directed edge: UserID sees AuthorID's posts in the feed.
type Follow struct {
	UserID    string
	AuthorID  string
	CreatedAt time.Time
}
