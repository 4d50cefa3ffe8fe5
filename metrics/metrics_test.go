package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/posts/:id/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", Handler())

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/posts/:id/", "200"))
	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/"+id+"/", nil))
	}
	after := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/posts/:id/", "200"))
	if after-before != 2 {
		t.Errorf("counter grew by %v, want 2", after-before)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d", rec.Code)
	}
	if got := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404")); got < 1 {
		if got := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/*", "404")); got < 1 {
			t.Error("404 was not recorded")
		}
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "yatube_http_requests_total") {
		t.Error("metrics endpoint does not expose request counter")
	}
}
