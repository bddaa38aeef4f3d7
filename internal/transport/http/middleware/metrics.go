package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "oneps", Name: "http_requests_total", Help: "HTTP requests by route and status"},
		[]string{"surface", "path", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oneps",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"surface", "path", "method"},
	)
	httpInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "oneps", Name: "http_in_flight_requests", Help: "Requests being served"},
		[]string{"surface"},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency, httpInFlight) }

// Metrics surface 为 api 或 admin
func Metrics(surface string) gin.HandlerFunc {
	inFlight := httpInFlight.WithLabelValues(surface)
	return func(c *gin.Context) {
		start := time.Now()
		inFlight.Inc()
		defer inFlight.Dec()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched" // 404 不按原始 URL 打标签
		}
		httpReqTotal.WithLabelValues(surface, path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(surface, path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
