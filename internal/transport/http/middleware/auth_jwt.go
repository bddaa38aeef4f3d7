package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oneps/internal/core/apperr"
	"oneps/internal/core/auth"
	"oneps/internal/transport/http/flash"
	resp "oneps/internal/transport/http/response"
)

const (
	KeyClaims = "claims"
	KeyUserID = "userId"
	KeyRole   = "role"

	LoginPath = "/login"
)

// TokenCookie 令牌放在 HttpOnly cookie 里
type TokenCookie struct {
	Name   string
	MaxAge int // 秒
	Secure bool
	JWT    *auth.JWTer
}

func (tc TokenCookie) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tc.Name, token, tc.MaxAge, "/", "", tc.Secure, true)
}

func (tc TokenCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tc.Name, "", -1, "/", "", tc.Secure, true)
}

// Issue 签发并写入 cookie
func (tc TokenCookie) Issue(c *gin.Context, id auth.Identity) error {
	tok, err := tc.JWT.Issue(id)
	if err != nil {
		return apperr.Internal("", err)
	}
	tc.Set(c, tok)
	return nil
}

// read 返回 (claims, 是否带了 cookie)
func (tc TokenCookie) read(c *gin.Context) (*auth.Claims, bool) {
	raw, err := c.Cookie(tc.Name)
	if err != nil || raw == "" {
		return nil, false
	}
	claims, err := tc.JWT.Parse(raw)
	if err != nil {
		return nil, true
	}
	return claims, true
}

func attach(c *gin.Context, claims *auth.Claims) {
	c.Set(KeyClaims, claims)
	c.Set(KeyUserID, claims.UID)
	c.Set(KeyRole, claims.Role)
}

// Identity 读取鉴权中间件放入的身份
func Identity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(KeyClaims)
	if !ok {
		return auth.Identity{}, false
	}
	claims, ok := v.(*auth.Claims)
	if !ok {
		return auth.Identity{}, false
	}
	return claims.Identity(), true
}

// RequireAuth 必须登录：无 cookie 或无效 cookie（先清掉）都拒绝。
// 浏览器 303 到登录页并带 flash，其余返回 401 + data.redirect
func RequireAuth(tc TokenCookie, fl *flash.Store) gin.HandlerFunc {
	return RequireAuthTo(tc, fl, LoginPath)
}

// RequireAuthTo 同 RequireAuth，登录页可指定（管理端用 /admin/login）
func RequireAuthTo(tc TokenCookie, fl *flash.Store, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, present := tc.read(c)
		if claims != nil {
			attach(c, claims)
			c.Next()
			return
		}
		msg := "please log in to continue"
		if present {
			tc.Clear(c)
			msg = "your session has expired, please log in again"
		}
		if resp.WantsHTML(c) {
			fl.Add(c, msg)
			resp.SeeOther(c, loginPath)
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			resp.New(resp.CodeUnauthorized, msg, gin.H{"redirect": loginPath}))
	}
}

// OptionalAuth 可选登录：无效 cookie 清掉后按匿名继续
func OptionalAuth(tc TokenCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, present := tc.read(c)
		if claims != nil {
			attach(c, claims)
		} else if present {
			tc.Clear(c)
		}
		c.Next()
	}
}

// RequireRole 无身份 401，角色不符 403
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := Identity(c)
		if !ok {
			resp.Abort(c, resp.CodeUnauthorized, apperr.KindUnauthenticated.String())
			return
		}
		if id.Role != role {
			resp.Abort(c, resp.CodeForbidden, apperr.KindForbidden.String())
			return
		}
		c.Next()
	}
}
