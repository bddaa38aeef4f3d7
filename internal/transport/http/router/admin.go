package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"oneps/internal/core/auth"
	"oneps/internal/core/server"
	mdw "oneps/internal/transport/http/middleware"
)

const AdminLoginPath = "/admin/login"

// NewAdminEngine 管理端：独立端口，统一挂在 /admin 下
func NewAdminEngine(d Deps) *gin.Engine {
	r := server.NewRouter(d.Log, d.onPanic)
	r.Use(d.common("admin")...)
	r.NoRoute(notFound)
	r.NoMethod(notAllowed)

	r.GET("/health", d.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/admin")
	// 管理端（统一要求 admin 角色）
	admin := r.Group("/admin", mdw.RequireAuthTo(d.Cookie, d.Flash, AdminLoginPath), mdw.RequireRole(auth.RoleAdmin))
	admin.GET("", d.adminHandler().Dashboard)

	d.registry().MountAllAdmin(public, admin)
	return r
}
