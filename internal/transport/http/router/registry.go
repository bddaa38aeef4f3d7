package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule 模块可选择实现其中一个或多个接口
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// AdminPublicModule 挂在管理端无需登录的分组（如 /admin/login）
type AdminPublicModule interface{ MountAdminPublic(*gin.RouterGroup) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 每个进程构造一次，按类型断言分发
type Registry struct {
	mods []any
}

func (r *Registry) Register(mods ...any) { r.mods = append(r.mods, mods...) }

func (r *Registry) sorted() []any {
	mods := append([]any(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	return mods
}

// MountAllAPI 在用户端根分组上挂载
func (r *Registry) MountAllAPI(g *gin.RouterGroup) {
	for _, m := range r.sorted() {
		if am, ok := m.(APIModule); ok {
			am.MountAPI(g)
		}
	}
}

// MountAllAdmin public 为 /admin 无鉴权分组，admin 为已校验管理员的分组
func (r *Registry) MountAllAdmin(public, admin *gin.RouterGroup) {
	for _, m := range r.sorted() {
		if pm, ok := m.(AdminPublicModule); ok {
			pm.MountAdminPublic(public)
		}
		if am, ok := m.(AdminModule); ok {
			am.MountAdmin(admin)
		}
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
