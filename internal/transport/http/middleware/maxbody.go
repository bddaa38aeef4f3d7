package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "oneps/internal/transport/http/response"
)

// MaxBodyBytes API 客户端声明的 Content-Length 超限直接 413。
// 浏览器表单和分块上传读到超限时 ShouldBind / FormFile 返回 *http.MaxBytesError，
// 由 handler 带 flash 重定向
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > n && !resp.WantsHTML(c) {
			resp.Abort(c, resp.CodeTooLarge, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
