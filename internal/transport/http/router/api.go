package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"oneps/internal/core/server"
)

// NewAPIEngine 用户端：路由直接挂在根上
func NewAPIEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, d.onPanic)
	r.Use(d.common("api")...)
	r.NoRoute(notFound)
	r.NoMethod(notAllowed)

	// 健康检查 + 指标
	r.GET("/health", d.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	d.registry().MountAllAPI(&r.RouterGroup)
	return r
}
