package handler

import (
	"net/http"
	"time"

	"yatube/cache"
	"yatube/domain"
	"yatube/events"
	"yatube/media"
	"yatube/metrics"
	"yatube/paginator"
	"yatube/store"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const csrfField = "_csrf"

type Handler struct {
	Store  *store.Store
	Media  *media.Storage
	Cache  cache.Cache
	Events events.Publisher
	Log    zerolog.Logger

	JWTSecret    string
	EnableSignup bool
	Environment  string
	Site         domain.Site

	PerPage  int
	IndexTTL time.Duration
	// AuthRateLimit caps login and signup POSTs per client IP per second;
	// zero disables the limit.
	AuthRateLimit float64
}

func (h *Handler) perPage() int {
	if h.PerPage <= 0 {
		return paginator.DefaultPerPage
	}
	return h.PerPage
}

// Register installs the error handler, session middleware and every route
// on e.
func (h *Handler) Register(e *echo.Echo) {
	e.HTTPErrorHandler = h.HTTPErrorHandler
	e.Use(h.parseSession(), h.loadUser)

	auth := []echo.MiddlewareFunc{}
	if h.AuthRateLimit > 0 {
		limiter := middleware.NewRateLimiterMemoryStore(rate.Limit(h.AuthRateLimit))
		auth = append(auth, middleware.RateLimiter(limiter))
	}

	// Posts
	e.GET("/", h.Index, h.pageCache())
	e.GET("/group/:slug/", h.GroupPosts)
	e.GET("/profile/:username/", h.Profile)
	e.GET("/posts/:id/", h.PostDetail)
	e.GET("/create/", h.GetPostCreateForm, h.loginRequired)
	e.POST("/create/", h.PostCreate, h.loginRequired)
	e.GET("/posts/:id/edit/", h.GetPostEditForm, h.loginRequired)
	e.POST("/posts/:id/edit/", h.PostEdit, h.loginRequired)
	e.POST("/posts/:id/delete/", h.PostDelete, h.loginRequired)
	e.POST("/posts/:id/comment/", h.AddComment, h.loginRequired)

	// Follows
	e.GET("/follow/", h.FollowIndex, h.loginRequired)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/profile/:username/follow/", h.ProfileFollow, h.loginRequired)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/profile/:username/unfollow/", h.ProfileUnfollow, h.loginRequired)

	// Users
	e.GET("/auth/signup/", h.GetSignupForm)
	e.POST("/auth/signup/", h.Signup, auth...)
	e.GET("/auth/login/", h.GetLoginForm)
	e.POST("/auth/login/", h.Login, auth...)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/auth/logout/", h.Logout)

	e.GET("/404/", h.NotFound)
	e.GET("/metrics", metrics.Handler())
}

// CSRF checks the _csrf form field of unsafe requests against the _csrf
// cookie. Views read the token back through Base.CSRF.
func CSRF() echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + csrfField,
		CookieName:     csrfField,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

// pageCache keys pages by viewer and URI. Signed-in pages embed the
// session's CSRF token in the logout form, so the token is part of their
// key; guest pages carry no forms and are shared.
func (h *Handler) pageCache() echo.MiddlewareFunc {
	return cache.Page(h.Cache, h.IndexTTL, func(c echo.Context) string {
		viewer := ""
		if u := currentUser(c); u != nil {
			viewer = u.ID + ":" + csrfToken(c)
		}
		return "page:" + viewer + ":" + c.Request().URL.RequestURI()
	})
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

func (h *Handler) base(c echo.Context) Base {
	return Base{Site: h.Site, User: currentUser(c), CSRF: csrfToken(c)}
}

func (h *Handler) publish(c echo.Context, e events.Event) {
	if h.Events == nil {
		return
	}
	e.Time = time.Now().UTC()
	if err := h.Events.Publish(c.Request().Context(), e); err != nil {
		metrics.EventPublishErrors.WithLabelValues(string(e.Type)).Inc()
		h.Log.Warn().Err(err).Str("type", string(e.Type)).Msg("publish event")
	}
}
