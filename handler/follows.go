package handler

import (
	"net/http"

	"yatube/events"
	"yatube/metrics"
	"yatube/store"

	"github.com/labstack/echo/v4"
)

func (h *Handler) FollowIndex(c echo.Context) error {
	list, err := h.listPosts(c, store.PostFilter{FollowerID: currentUser(c).ID})
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/follow.html", list)
}

// ProfileFollow subscribes the current user to the author. Following
// yourself is silently ignored.
func (h *Handler) ProfileFollow(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.Store.UserByUsername(ctx, c.Param("username"))
	if err != nil {
		return notFoundOr(err)
	}
	user := currentUser(c)
	if author.ID != user.ID {
		created, err := h.Store.Follow(ctx, user.ID, author.ID)
		if err != nil {
			return err
		}
		if created {
			metrics.Follows.WithLabelValues("follow").Inc()
			h.publish(c, events.Event{Type: events.FollowCreated, ActorID: user.ID, AuthorID: author.ID})
		}
	}
	return c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

func (h *Handler) ProfileUnfollow(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.Store.UserByUsername(ctx, c.Param("username"))
	if err != nil {
		return notFoundOr(err)
	}
	user := currentUser(c)
	removed, err := h.Store.Unfollow(ctx, user.ID, author.ID)
	if err != nil {
		return err
	}
	if removed {
		metrics.Follows.WithLabelValues("unfollow").Inc()
		h.publish(c, events.Event{Type: events.FollowDeleted, ActorID: user.ID, AuthorID: author.ID})
	}
	return c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}
