package handler

import (
	"net/http"
	"strings"

	"yatube/domain"
	"yatube/events"
	"yatube/metrics"

	"github.com/labstack/echo/v4"
)

// AddComment saves a valid comment and always returns to the post.
func (h *Handler) AddComment(c echo.Context) error {
	p, err := h.postFromParam(c)
	if err != nil {
		return err
	}
	detail := "/posts/" + p.ID + "/"

	var form CommentForm
	if err := c.Bind(&form); err != nil {
		return c.Redirect(http.StatusFound, detail)
	}
	form.Text = strings.TrimSpace(form.Text)
	if errs := validateForm(form); errs != nil {
		return c.Redirect(http.StatusFound, detail)
	}

	user := currentUser(c)
	comment, err := h.Store.CreateComment(c.Request().Context(), domain.Comment{
		PostID:   p.ID,
		AuthorID: user.ID,
		Text:     form.Text,
	})
	if err != nil {
		return err
	}
	metrics.CommentsCreated.Inc()
	h.publish(c, events.Event{
		Type:      events.CommentCreated,
		ActorID:   user.ID,
		PostID:    p.ID,
		CommentID: comment.ID,
		AuthorID:  p.AuthorID,
	})

	return c.Redirect(http.StatusFound, detail)
}
