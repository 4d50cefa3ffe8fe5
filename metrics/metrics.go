// Package metrics exposes Prometheus instrumentation for HTTP traffic and
// the community actions users take.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yatube_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yatube_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yatube_posts_created_total",
		Help: "Total number of posts created",
	})

	PostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yatube_posts_deleted_total",
		Help: "Total number of posts deleted",
	})

	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yatube_comments_created_total",
		Help: "Total number of comments created",
	})

	Follows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yatube_follows_total",
			Help: "Follow and unfollow actions that changed state",
		},
		[]string{"action"}, // "follow", "unfollow"
	)

	Signups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yatube_signups_total",
		Help: "Total number of registered users",
	})

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yatube_event_publish_errors_total",
			Help: "Domain events that could not be published",
		},
		[]string{"type"},
	)
)

// Middleware records HTTP metrics labelled by route pattern, not raw path,
// to keep cardinality bounded.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)
			HTTPRequests.WithLabelValues(method, route, status).Inc()
			HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
