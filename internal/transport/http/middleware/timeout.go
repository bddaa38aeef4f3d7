package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	resp "oneps/internal/transport/http/response"
)

// Timeout 给请求 context 加截止时间；handler 超时且还没写响应时返回 504。
// 客户端自己断开的请求不再写任何东西
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		parent := c.Request.Context()
		ctx, cancel := context.WithTimeout(parent, d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if c.Writer.Written() || parent.Err() != nil {
			return
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			resp.Abort(c, resp.CodeTimeout, "request timed out")
		}
	}
}
