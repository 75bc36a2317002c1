package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal counts handled HTTP requests by method, route and status.
	// httpRequestsTotal 按方法、路由与状态统计已处理的 HTTP 请求数
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sss_http_requests_total",
			Help: "Total number of HTTP requests handled by the share service",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration observes request latency per method and route.
	// httpRequestDuration 按方法与路由统计请求耗时
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sss_http_request_duration_seconds",
			Help:    "HTTP request latency of the share service in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Metrics records Prometheus metrics for every request.
// The route template is used as the path label so share ids
// do not blow up label cardinality.
// Metrics 为每个请求记录 Prometheus 指标,路径标签使用路由模板,
// 避免分享 ID 导致标签基数膨胀
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			// unmatched routes collapse into a single label
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
