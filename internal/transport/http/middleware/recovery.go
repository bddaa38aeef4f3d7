package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"oneps/internal/core/apperr"
	resp "oneps/internal/transport/http/response"
)

// Errors 边界处理：handler 通过 c.Error 推入的错误在这里统一渲染。
// 已经写过响应或已经重定向的请求只记日志
func Errors(l *zap.Logger, dev bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		if apperr.KindOf(err) == apperr.KindInternal {
			l.Error("request failed",
				zap.String("rid", c.GetString(KeyRequestID)),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
		}
		if c.Writer.Written() || redirected(c) {
			return
		}
		resp.Fail(c, err, dev)
	}
}

func redirected(c *gin.Context) bool {
	st := c.Writer.Status()
	return c.IsAborted() && st >= 300 && st < 400
}
