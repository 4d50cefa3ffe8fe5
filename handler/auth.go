package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"yatube/domain"
	"yatube/metrics"
	"yatube/store"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	cookieName      = "Authorization"
	sessionTTL      = time.Hour * 24 * 7
	userContextKey  = "currentUser"
	tokenContextKey = "user"
	loginPath       = "/auth/login/"
)

// parseSession validates the session cookie when present. Requests
// without a valid token continue anonymously.
func (h *Handler) parseSession() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:             []byte(h.JWTSecret),
		SigningMethod:          jwt.SigningMethodHS256.Alg(),
		TokenLookup:            "cookie:" + cookieName,
		ContextKey:             tokenContextKey,
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
	})
}

func getUserID(c echo.Context) string {
	token, ok := c.Get(tokenContextKey).(*jwt.Token)
	if !ok || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	userID, _ := claims["userID"].(string)
	return userID
}

func (h *Handler) loadUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if userID := getUserID(c); userID != "" {
			u, err := h.Store.UserByID(c.Request().Context(), userID)
			switch {
			case err == nil:
				c.Set(userContextKey, &u)
			case !errors.Is(err, store.ErrNotFound):
				return err
			}
		}
		return next(c)
	}
}

func currentUser(c echo.Context) *domain.User {
	u, _ := c.Get(userContextKey).(*domain.User)
	return u
}

var nextEscaper = strings.NewReplacer("&", "%26", "+", "%2B", "#", "%23", "?", "%3F")

func loginURL(next string) string {
	return loginPath + "?next=" + nextEscaper.Replace(next)
}

func (h *Handler) loginRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUser(c) == nil {
			return c.Redirect(http.StatusFound, loginURL(c.Request().URL.RequestURI()))
		}
		return next(c)
	}
}

// safeNext only allows redirects to local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func authorizationCookie(ID string, secret string) (*http.Cookie, error) {
	if secret == "" {
		return nil, errors.New("missing secret")
	}
	exp := time.Now().Add(sessionTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID": ID,
		"exp":    exp.Unix(),
	})
	signedData, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	cookie := new(http.Cookie)
	cookie.Name = cookieName
	cookie.Value = signedData
	cookie.Expires = exp
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteLaxMode

	return cookie, nil
}

func (h *Handler) signupAllowed() bool {
	return h.Environment == "dev" || h.EnableSignup
}

func (h *Handler) GetLoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "users/login.html", LoginPage{
		Base: h.base(c),
		Next: c.QueryParam("next"),
	})
}

func (h *Handler) Login(c echo.Context) error {
	formUsername := strings.TrimSpace(c.FormValue("username"))
	formPassword := c.FormValue("password")
	next := safeNext(c.FormValue("next"))

	fail := func() error {
		return c.Render(http.StatusOK, "users/login.html", LoginPage{
			Base:     h.base(c),
			Username: formUsername,
			Next:     c.FormValue("next"),
			Error:    "Please enter a correct username and password.",
		})
	}
	if formUsername == "" || formPassword == "" {
		return fail()
	}

	user, storedPassword, err := h.Store.PasswordHash(c.Request().Context(), formUsername)
	if errors.Is(err, store.ErrNotFound) {
		return fail()
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(storedPassword, []byte(formPassword)); err != nil {
		return fail()
	}

	cookie, err := authorizationCookie(user.ID, h.JWTSecret)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, next)
}

func (h *Handler) Logout(c echo.Context) error {
	cookie := new(http.Cookie)
	cookie.Name = cookieName
	cookie.Value = ""
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.MaxAge = -1
	cookie.Expires = time.Now().Add(-1 * time.Second)
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) GetSignupForm(c echo.Context) error {
	if !h.signupAllowed() {
		return echo.NewHTTPError(http.StatusForbidden, "Sign up has been disabled.")
	}
	return c.Render(http.StatusOK, "users/signup.html", SignupPage{Base: h.base(c)})
}

func (h *Handler) Signup(c echo.Context) error {
	if !h.signupAllowed() {
		return echo.NewHTTPError(http.StatusForbidden, "Sign up has been disabled.")
	}

	var form SignupForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Bad request")
	}
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)

	rerender := func(errs FormErrors) error {
		form.Password1, form.Password2 = "", ""
		return c.Render(http.StatusOK, "users/signup.html", SignupPage{Base: h.base(c), Form: form, Errors: errs})
	}
	if errs := validateForm(form); errs != nil {
		return rerender(errs)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(form.Password1), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := domain.User{
		Username:  form.Username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
	}
	if form.Email != "" {
		user.Email = &form.Email
	}
	user, err = h.Store.CreateUser(c.Request().Context(), user, hashedPassword)
	if errors.Is(err, store.ErrConflict) {
		return rerender(FormErrors{"username": "A user with that username already exists."})
	}
	if err != nil {
		return err
	}
	metrics.Signups.Inc()

	cookie, err := authorizationCookie(user.ID, h.JWTSecret)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/")
}
