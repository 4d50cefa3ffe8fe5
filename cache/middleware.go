package cache

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const cacheHeader = "X-Cache"

// KeyFunc derives the cache key of a request. Returning "" skips caching.
type KeyFunc func(c echo.Context) string

type bodyRecorder struct {
	io.Writer
	http.ResponseWriter
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *bodyRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Page caches successful GET responses of the wrapped route for ttl.
func Page(store Cache, ttl time.Duration, key KeyFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if store == nil || c.Request().Method != http.MethodGet {
				return next(c)
			}
			k := key(c)
			if k == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			if body, ok := store.Get(ctx, k); ok {
				c.Response().Header().Set(cacheHeader, "HIT")
				return c.HTMLBlob(http.StatusOK, body)
			}

			c.Response().Header().Set(cacheHeader, "MISS")
			buf := new(bytes.Buffer)
			res := c.Response()
			res.Writer = &bodyRecorder{Writer: io.MultiWriter(res.Writer, buf), ResponseWriter: res.Writer}

			if err := next(c); err != nil {
				return err
			}
			if res.Status == http.StatusOK {
				store.Set(ctx, k, buf.Bytes(), ttl)
			}
			return nil
		}
	}
}
