package handler

import (
	"errors"
	"net/http"
	"strings"

	"yatube/domain"
	"yatube/events"
	"yatube/media"
	"yatube/metrics"
	"yatube/paginator"
	"yatube/store"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *Handler) listPosts(c echo.Context, f store.PostFilter) (ListPage, error) {
	ctx := c.Request().Context()
	count, err := h.Store.CountPosts(ctx, f)
	if err != nil {
		return ListPage{}, err
	}
	page := paginator.New(count, h.perPage(), c.QueryParam("page"))
	posts, err := h.Store.ListPosts(ctx, f, page.Limit(), page.Offset())
	if err != nil {
		return ListPage{}, err
	}

	base := h.base(c)
	dtos := make([]PostDTO, 0, len(posts))
	for _, p := range posts {
		dtos = append(dtos, toPostDTO(p, base.User))
	}
	return ListPage{Base: base, Page: page, Posts: dtos}, nil
}

func (h *Handler) Index(c echo.Context) error {
	list, err := h.listPosts(c, store.PostFilter{})
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/index.html", list)
}

func (h *Handler) GroupPosts(c echo.Context) error {
	group, err := h.Store.GroupBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return notFoundOr(err)
	}
	list, err := h.listPosts(c, store.PostFilter{GroupID: group.ID})
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/group_list.html", GroupPage{ListPage: list, Group: group})
}

func (h *Handler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.Store.UserByUsername(ctx, c.Param("username"))
	if err != nil {
		return notFoundOr(err)
	}
	list, err := h.listPosts(c, store.PostFilter{AuthorID: author.ID})
	if err != nil {
		return err
	}

	page := ProfilePage{ListPage: list, Author: author, PostCount: list.Page.Count}
	if viewer := list.User; viewer != nil && viewer.ID != author.ID {
		page.CanFollow = true
		page.Following, err = h.Store.IsFollowing(ctx, viewer.ID, author.ID)
		if err != nil {
			return err
		}
	}
	return c.Render(http.StatusOK, "posts/profile.html", page)
}

// postFromParam loads the post named by the :id path parameter.
func (h *Handler) postFromParam(c echo.Context) (domain.Post, error) {
	id := c.Param("id")
	if uuid.Validate(id) != nil {
		return domain.Post{}, echo.ErrNotFound
	}
	p, err := h.Store.PostByID(c.Request().Context(), id)
	if err != nil {
		return domain.Post{}, notFoundOr(err)
	}
	return p, nil
}

func (h *Handler) PostDetail(c echo.Context) error {
	p, err := h.postFromParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	count, err := h.Store.CountPosts(ctx, store.PostFilter{AuthorID: p.AuthorID})
	if err != nil {
		return err
	}
	comments, err := h.Store.ListComments(ctx, p.ID)
	if err != nil {
		return err
	}

	base := h.base(c)
	page := PostDetailPage{
		Base:            base,
		Post:            toPostDTO(p, base.User),
		AuthorPostCount: count,
		Comments:        make([]CommentDTO, 0, len(comments)),
	}
	for _, cm := range comments {
		page.Comments = append(page.Comments, toCommentDTO(cm))
	}
	return c.Render(http.StatusOK, "posts/post_detail.html", page)
}

func (h *Handler) renderPostForm(c echo.Context, status int, page PostFormPage) error {
	groups, err := h.Store.ListGroups(c.Request().Context())
	if err != nil {
		return err
	}
	page.Base = h.base(c)
	page.Groups = groups
	return c.Render(status, "posts/create_post.html", page)
}

// bindPostForm reads and validates the submitted post form. On success it
// resolves the chosen group; with errs set nothing should be saved.
func (h *Handler) bindPostForm(c echo.Context) (form PostForm, group *domain.Group, errs FormErrors, err error) {
	if err := c.Bind(&form); err != nil {
		return form, nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Bad request")
	}
	form.Text = strings.TrimSpace(form.Text)
	form.Group = strings.TrimSpace(form.Group)

	errs = validateForm(form)
	if form.Group != "" {
		g, err := h.Store.GroupByID(c.Request().Context(), form.Group)
		switch {
		case errors.Is(err, store.ErrNotFound):
			if errs == nil {
				errs = FormErrors{}
			}
			errs["group"] = "Select a valid choice. That choice is not one of the available choices."
		case err != nil:
			return form, nil, nil, err
		default:
			group = &g
		}
	}
	return form, group, errs, nil
}

// saveUpload stores the "image" file when one was sent. It returns "" when
// the request carries no file.
func (h *Handler) saveUpload(c echo.Context) (string, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if fh.Size == 0 && fh.Filename == "" {
		return "", nil
	}
	if h.Media == nil {
		return "", errors.New("image uploads are not configured")
	}
	return h.Media.SavePostImage(fh)
}

func uploadError(err error) (FormErrors, bool) {
	if errors.Is(err, media.ErrNotImage) || errors.Is(err, media.ErrTooLarge) {
		return FormErrors{"image": err.Error()}, true
	}
	return nil, false
}

func (h *Handler) removeImage(name string) {
	if h.Media == nil || name == "" {
		return
	}
	if err := h.Media.Remove(name); err != nil {
		h.Log.Warn().Err(err).Str("image", name).Msg("remove image")
	}
}

func (h *Handler) GetPostCreateForm(c echo.Context) error {
	return h.renderPostForm(c, http.StatusOK, PostFormPage{})
}

func (h *Handler) PostCreate(c echo.Context) error {
	user := currentUser(c)
	form, group, errs, err := h.bindPostForm(c)
	if err != nil {
		return err
	}
	if errs != nil {
		return h.renderPostForm(c, http.StatusOK, PostFormPage{Form: form, Errors: errs})
	}

	image, err := h.saveUpload(c)
	if err != nil {
		if errs, ok := uploadError(err); ok {
			return h.renderPostForm(c, http.StatusOK, PostFormPage{Form: form, Errors: errs})
		}
		return err
	}

	p, err := h.Store.CreatePost(c.Request().Context(), domain.Post{
		Text:     form.Text,
		AuthorID: user.ID,
		Group:    group,
		Image:    image,
	})
	if err != nil {
		h.removeImage(image)
		return err
	}
	metrics.PostsCreated.Inc()
	h.publish(c, postEvent(events.PostCreated, p))

	return c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

func (h *Handler) GetPostEditForm(c echo.Context) error {
	p, err := h.postFromParam(c)
	if err != nil {
		return err
	}
	if !p.IsAuthor(currentUser(c).ID) {
		return c.Redirect(http.StatusFound, "/posts/"+p.ID+"/")
	}

	form := PostForm{Text: p.Text}
	if p.Group != nil {
		form.Group = p.Group.ID
	}
	return h.renderPostForm(c, http.StatusOK, PostFormPage{
		IsEdit:   true,
		PostID:   p.ID,
		Form:     form,
		ImageURL: media.URL(p.Image),
	})
}

func (h *Handler) PostEdit(c echo.Context) error {
	p, err := h.postFromParam(c)
	if err != nil {
		return err
	}
	if !p.IsAuthor(currentUser(c).ID) {
		return c.Redirect(http.StatusFound, "/posts/"+p.ID+"/")
	}

	form, group, errs, err := h.bindPostForm(c)
	if err != nil {
		return err
	}
	formPage := PostFormPage{IsEdit: true, PostID: p.ID, Form: form, ImageURL: media.URL(p.Image)}
	if errs != nil {
		formPage.Errors = errs
		return h.renderPostForm(c, http.StatusOK, formPage)
	}

	image, err := h.saveUpload(c)
	if err != nil {
		if errs, ok := uploadError(err); ok {
			formPage.Errors = errs
			return h.renderPostForm(c, http.StatusOK, formPage)
		}
		return err
	}

	oldImage := p.Image
	switch {
	case image != "":
		p.Image = image
	case c.FormValue("image-clear") != "":
		p.Image = ""
	}
	p.Text = form.Text
	p.Group = group

	if _, err := h.Store.UpdatePost(c.Request().Context(), p); err != nil {
		h.removeImage(image)
		return notFoundOr(err)
	}
	if oldImage != p.Image {
		h.removeImage(oldImage)
	}
	h.publish(c, postEvent(events.PostUpdated, p))

	return c.Redirect(http.StatusFound, "/posts/"+p.ID+"/")
}

func (h *Handler) PostDelete(c echo.Context) error {
	p, err := h.postFromParam(c)
	if err != nil {
		return err
	}
	user := currentUser(c)
	if !p.IsAuthor(user.ID) {
		return c.Redirect(http.StatusFound, "/posts/"+p.ID+"/")
	}

	if err := h.Store.DeletePost(c.Request().Context(), p.ID); err != nil {
		return notFoundOr(err)
	}
	h.removeImage(p.Image)
	metrics.PostsDeleted.Inc()
	h.publish(c, postEvent(events.PostDeleted, p))

	return c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

func postEvent(t events.Type, p domain.Post) events.Event {
	e := events.Event{Type: t, ActorID: p.AuthorID, PostID: p.ID, AuthorID: p.AuthorID}
	if p.Group != nil {
		e.GroupID = p.Group.ID
	}
	return e
}
