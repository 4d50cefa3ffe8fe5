// Package events publishes domain events after successful writes so other
// services can react to new posts, comments and follows.
package events

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

type Type string

const (
	PostCreated    Type = "post.created"
	PostUpdated    Type = "post.updated"
	PostDeleted    Type = "post.deleted"
	CommentCreated Type = "comment.created"
	FollowCreated  Type = "follow.created"
	FollowDeleted  Type = "follow.deleted"
)

type Event struct {
	Type      Type      `json:"type"`
	ActorID   string    `json:"actor_id"`
	PostID    string    `json:"post_id,omitempty"`
	CommentID string    `json:"comment_id,omitempty"`
	AuthorID  string    `json:"author_id,omitempty"`
	GroupID   string    `json:"group_id,omitempty"`
	Time      time.Time `json:"time"`
}

// Key is used for partitioning: events about one post or one author stay
// ordered.
func (e Event) Key() string {
	if e.PostID != "" {
		return e.PostID
	}
	if e.AuthorID != "" {
		return e.AuthorID
	}
	return e.ActorID
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }
