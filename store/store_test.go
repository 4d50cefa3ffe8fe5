package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"yatube/db"
	"yatube/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := db.OpenTemp(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	s := New(conn)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func mustUser(t *testing.T, s *Store, username string) domain.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), domain.User{Username: username}, []byte("hash"))
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func mustGroup(t *testing.T, s *Store, slug string) domain.Group {
	t.Helper()
	g, err := s.CreateGroup(context.Background(), domain.Group{Title: "Group " + slug, Slug: slug})
	if err != nil {
		t.Fatalf("CreateGroup(%s): %v", slug, err)
	}
	return g
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	email := "user@example.com"

	u, err := s.CreateUser(ctx, domain.User{Username: "UserName", FirstName: "Leo", Email: &email}, []byte("secret-hash"))
	if err != nil {
		t.Fatal(err)
	}
	if u.ID == "" {
		t.Fatal("expected generated id")
	}

	if _, err := s.CreateUser(ctx, domain.User{Username: "UserName"}, []byte("x")); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate username: got %v, want ErrConflict", err)
	}

	got, err := s.UserByUsername(ctx, "UserName")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != u.ID || got.FirstName != "Leo" || got.Email == nil || *got.Email != email {
		t.Errorf("UserByUsername = %+v", got)
	}

	byID, err := s.UserByID(ctx, u.ID)
	if err != nil || byID.Username != "UserName" {
		t.Errorf("UserByID = %+v, %v", byID, err)
	}

	_, hash, err := s.PasswordHash(ctx, "UserName")
	if err != nil || string(hash) != "secret-hash" {
		t.Errorf("PasswordHash = %q, %v", hash, err)
	}

	if _, err := s.UserByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: got %v", err)
	}
}

func TestGroups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustGroup(t, s, "b-slug")
	a, err := s.CreateGroup(ctx, domain.Group{Title: "A title", Slug: "a-slug", Description: "desc"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateGroup(ctx, domain.Group{Title: "dup", Slug: "a-slug"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate slug: got %v", err)
	}

	got, err := s.GroupBySlug(ctx, "a-slug")
	if err != nil || got.ID != a.ID || got.Description != "desc" {
		t.Errorf("GroupBySlug = %+v, %v", got, err)
	}
	if _, err := s.GroupByID(ctx, a.ID); err != nil {
		t.Error(err)
	}
	if _, err := s.GroupBySlug(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing group: got %v", err)
	}

	groups, err := s.ListGroups(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 || groups[0].Slug != "a-slug" {
		t.Errorf("ListGroups = %+v", groups)
	}
}

func TestPostLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := mustUser(t, s, "author")
	group := mustGroup(t, s, "test-slug")

	p, err := s.CreatePost(ctx, domain.Post{Text: "test-text", AuthorID: author.ID, Group: &group})
	if err != nil {
		t.Fatal(err)
	}
	if p.Author.Username != "author" || p.Group == nil || p.Group.Slug != "test-slug" {
		t.Fatalf("CreatePost = %+v", p)
	}

	p.Text = "edited"
	p.Group = nil
	p.Image = "posts/x.gif"
	updated, err := s.UpdatePost(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Text != "edited" || updated.Group != nil || updated.Image != "posts/x.gif" {
		t.Errorf("UpdatePost = %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.PubDate) {
		t.Errorf("updated_at %v not after pub_date %v", updated.UpdatedAt, updated.PubDate)
	}

	if err := s.DeletePost(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PostByID(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted post: got %v", err)
	}
	if err := s.DeletePost(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v", err)
	}
	if _, err := s.UpdatePost(ctx, p); !errors.Is(err, ErrNotFound) {
		t.Errorf("update deleted: got %v", err)
	}
}

func TestListPostsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	carol := mustUser(t, s, "carol")
	group := mustGroup(t, s, "cats")

	for i := 0; i < 13; i++ {
		if _, err := s.CreatePost(ctx, domain.Post{Text: fmt.Sprintf("alice %d", i), AuthorID: alice.ID, Group: &group}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.CreatePost(ctx, domain.Post{Text: "bob 0", AuthorID: bob.ID}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Follow(ctx, carol.ID, bob.ID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter PostFilter
		count  int
		first  string
	}{
		{"all", PostFilter{}, 14, "bob 0"},
		{"group", PostFilter{GroupID: group.ID}, 13, "alice 12"},
		{"author", PostFilter{AuthorID: alice.ID}, 13, "alice 12"},
		{"feed", PostFilter{FollowerID: carol.ID}, 1, "bob 0"},
		{"empty feed", PostFilter{FollowerID: alice.ID}, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := s.CountPosts(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if n != tt.count {
				t.Errorf("CountPosts = %d, want %d", n, tt.count)
			}
			posts, err := s.ListPosts(ctx, tt.filter, 10, 0)
			if err != nil {
				t.Fatal(err)
			}
			want := tt.count
			if want > 10 {
				want = 10
			}
			if len(posts) != want {
				t.Fatalf("ListPosts len = %d, want %d", len(posts), want)
			}
			if want > 0 && posts[0].Text != tt.first {
				t.Errorf("first = %q, want %q", posts[0].Text, tt.first)
			}
		})
	}

	second, err := s.ListPosts(ctx, PostFilter{GroupID: group.ID}, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 3 || second[2].Text != "alice 0" {
		t.Errorf("second page = %d posts", len(second))
	}
}

func TestDeleteGroupKeepsPosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := mustUser(t, s, "author")
	group := mustGroup(t, s, "gone")
	p, err := s.CreatePost(ctx, domain.Post{Text: "stays", AuthorID: author.ID, Group: &group})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.DB.ExecContext(ctx, "DELETE FROM post_groups WHERE id = ?", group.ID); err != nil {
		t.Fatal(err)
	}
	got, err := s.PostByID(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Group != nil {
		t.Errorf("group should be cleared, got %+v", got.Group)
	}
}

func TestComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := mustUser(t, s, "author")
	reader := mustUser(t, s, "reader")
	p, err := s.CreatePost(ctx, domain.Post{Text: "post", AuthorID: author.ID})
	if err != nil {
		t.Fatal(err)
	}

	first, err := s.CreateComment(ctx, domain.Comment{PostID: p.ID, AuthorID: reader.ID, Text: "first"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateComment(ctx, domain.Comment{PostID: p.ID, AuthorID: author.ID, Text: "second"}); err != nil {
		t.Fatal(err)
	}

	comments, err := s.ListComments(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 2 || comments[0].Text != "first" || comments[0].Author.Username != "reader" {
		t.Fatalf("ListComments = %+v", comments)
	}

	if err := s.SetCommentActive(ctx, first.ID, false); err != nil {
		t.Fatal(err)
	}
	n, err := s.CountComments(ctx, p.ID)
	if err != nil || n != 1 {
		t.Errorf("CountComments = %d, %v", n, err)
	}

	if _, err := s.CreateComment(ctx, domain.Comment{PostID: "missing", AuthorID: reader.ID, Text: "x"}); err == nil {
		t.Error("comment on a missing post must fail the foreign key")
	}
}

func TestFollows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	created, err := s.Follow(ctx, alice.ID, bob.ID)
	if err != nil || !created {
		t.Fatalf("Follow = %v, %v", created, err)
	}
	created, err = s.Follow(ctx, alice.ID, bob.ID)
	if err != nil || created {
		t.Errorf("repeated Follow = %v, %v", created, err)
	}
	if created, err := s.Follow(ctx, alice.ID, alice.ID); err != nil || created {
		t.Errorf("self Follow = %v, %v", created, err)
	}

	ok, err := s.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil || !ok {
		t.Errorf("IsFollowing = %v, %v", ok, err)
	}
	if ok, _ := s.IsFollowing(ctx, bob.ID, alice.ID); ok {
		t.Error("follow must be directed")
	}

	removed, err := s.Unfollow(ctx, alice.ID, bob.ID)
	if err != nil || !removed {
		t.Errorf("Unfollow = %v, %v", removed, err)
	}
	if removed, _ := s.Unfollow(ctx, alice.ID, bob.ID); removed {
		t.Error("second Unfollow should report nothing removed")
	}
}
