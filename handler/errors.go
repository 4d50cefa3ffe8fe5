package handler

import (
	"errors"
	"fmt"
	"net/http"

	"yatube/store"

	"github.com/labstack/echo/v4"
)

func notFoundOr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return echo.ErrNotFound
	}
	return err
}

var errorMessages = map[int]string{
	http.StatusNotFound:            "The page you requested was not found.",
	http.StatusForbidden:           "You do not have permission to do that.",
	http.StatusBadRequest:          "The request could not be understood.",
	http.StatusTooManyRequests:     "Too many attempts. Try again in a moment.",
	http.StatusInternalServerError: "Something went wrong on our side.",
}

func (h *Handler) NotFound(c echo.Context) error {
	return echo.ErrNotFound
}

// HTTPErrorHandler renders core/error.html for every error that reaches
// echo, logging everything but client errors.
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := ""
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok && s != http.StatusText(code) {
			msg = s
		}
	}
	if code >= http.StatusInternalServerError {
		h.Log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("request failed")
	}
	if msg == "" {
		msg = errorMessages[code]
	}
	if msg == "" {
		msg = http.StatusText(code)
	}

	if c.Request().Method == http.MethodHead {
		if err := c.NoContent(code); err != nil {
			h.Log.Error().Err(err).Msg("write error response")
		}
		return
	}
	page := ErrorPage{Base: h.base(c), Code: code, Message: msg}
	if err := c.Render(code, "core/error.html", page); err != nil {
		h.Log.Error().Err(err).Msg("render error page")
		if !c.Response().Committed {
			c.String(code, fmt.Sprintf("%d %s", code, msg))
		}
	}
}
