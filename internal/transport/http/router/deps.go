package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"oneps/internal/feature/like"
	"oneps/internal/feature/post"
	"oneps/internal/feature/user"
	"oneps/internal/service"
	"oneps/internal/transport/http/flash"
	"oneps/internal/transport/http/handler"
	mdw "oneps/internal/transport/http/middleware"
	resp "oneps/internal/transport/http/response"
)

// Deps 两个 engine 共用的依赖，由 main 组装
type Deps struct {
	Log    *zap.Logger
	DB     *gorm.DB
	Dev    bool
	Cookie mdw.TokenCookie
	Flash  *flash.Store

	Users *service.UserService
	Posts *service.PostService
	Likes *service.LikeService

	MaxUploadBytes int64
	RequestTimeout time.Duration
	Ready          func(ctx context.Context) error // /health 探测 DB、Redis
}

func (d Deps) registry() *Registry {
	reg := &Registry{}
	reg.Register(
		user.New(d.Users, d.Cookie, d.Flash, mdw.RateLimitPerIP(rate.Every(time.Second), 10)),
		post.New(d.Posts, d.DB, d.Cookie, d.Flash),
		like.New(d.Likes, d.Cookie, d.Flash),
	)
	return reg
}

func (d Deps) adminHandler() *handler.AdminHandler { return handler.NewAdminHandler(d.Users) }

func (d Deps) onPanic(c *gin.Context, rec any) {
	resp.Fail(c, fmt.Errorf("panic: %v", rec), d.Dev)
}

// common 两个 engine 相同的中间件栈
func (d Deps) common(surface string) []gin.HandlerFunc {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return []gin.HandlerFunc{
		mdw.RequestID(),
		mdw.AccessLog(d.Log),
		mdw.Metrics(surface),
		mdw.Errors(d.Log, d.Dev),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300, time.Second),
		mdw.MaxBodyBytes(d.MaxUploadBytes + 1<<20), // multipart 头部留 1MB 余量
		mdw.Timeout(timeout),
	}
}

func (d Deps) health(c *gin.Context) {
	if d.Ready != nil {
		if err := d.Ready(c.Request.Context()); err != nil {
			d.Log.Warn("health check failed", zap.Error(err))
			resp.Abort(c, resp.CodeUnavailable, "not ready")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": 1})
}

func notFound(c *gin.Context)   { resp.Abort(c, resp.CodeNotFound, "") }
func notAllowed(c *gin.Context) { resp.Abort(c, http.StatusMethodNotAllowed, "method not allowed") }
