package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "oneps/internal/transport/http/response"
)

// ConcurrencyLimit 同时处理的请求不超过 limit；排队超过 wait 返回 503
func ConcurrencyLimit(limit int64, wait time.Duration) gin.HandlerFunc {
	sem := semaphore.NewWeighted(limit)
	retryAfter := strconv.Itoa(max(1, int(wait.Seconds())))
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
			err := sem.Acquire(ctx, 1)
			cancel()
			if err != nil {
				c.Header("Retry-After", retryAfter)
				resp.Abort(c, resp.CodeUnavailable, "server busy")
				return
			}
		}
		defer sem.Release(1)
		c.Next()
	}
}
