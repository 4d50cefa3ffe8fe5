package domain

import (
	"time"
)

const postStringLen = 15

type Post struct {
	ID        string
	Text      string
	AuthorID  string
	Author    User
	Group     *Group
	Image     string
	PubDate   time.Time
	UpdatedAt time.Time
}

func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > postStringLen {
		r = r[:postStringLen]
	}
	return string(r)
}

func (p Post) IsAuthor(userID string) bool {
	return userID != "" && p.AuthorID == userID
}
