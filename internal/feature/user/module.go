// Package user mounts the account routes: signup, login, logout and the
// caller's own profile, plus user management on the admin surface.
package user

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"oneps/internal/core/apperr"
	"oneps/internal/core/auth"
	"oneps/internal/domain"
	"oneps/internal/service"
	"oneps/internal/transport/http/ez"
	"oneps/internal/transport/http/flash"
	mdw "oneps/internal/transport/http/middleware"
)

type Module struct {
	users      *service.UserService
	cookie     mdw.TokenCookie
	flash      *flash.Store
	loginLimit gin.HandlerFunc
}

func New(users *service.UserService, cookie mdw.TokenCookie, fl *flash.Store, loginLimit gin.HandlerFunc) *Module {
	return &Module{users: users, cookie: cookie, flash: fl, loginLimit: loginLimit}
}

func (m *Module) Priority() int { return 10 }

type signupIn struct {
	Name            string `json:"name"            form:"name"            binding:"required,max=64"`
	Email           string `json:"email"           form:"email"           binding:"required,max=191"`
	Phone           string `json:"phone"           form:"phone"           binding:"required,max=32"`
	Password        string `json:"password"        form:"password"        binding:"required"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" binding:"required"`
}

type loginIn struct {
	Email    string `json:"email"    form:"email"    binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type loginOut struct {
	User     *domain.User `json:"user"`
	Redirect string       `json:"redirect"`
}

type profileIn struct {
	Name            string `json:"name"            form:"name"            binding:"omitempty,max=64"`
	Email           string `json:"email"           form:"email"           binding:"omitempty,max=191"`
	Phone           string `json:"phone"           form:"phone"           binding:"omitempty,max=32"`
	Password        string `json:"password"        form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

func (in profileIn) toService() service.ProfileInput {
	return service.ProfileInput{
		Name: in.Name, Email: in.Email, Phone: in.Phone,
		Password: in.Password, ConfirmPassword: in.ConfirmPassword,
	}
}

type pageOut struct {
	Messages []string `json:"messages"`
}

func homeFor(u *domain.User) string {
	if u.Role == auth.RoleAdmin {
		return "/admin"
	}
	return "/"
}

func (m *Module) MountAPI(g *gin.RouterGroup) {
	pub := ez.New(g, m.flash)

	for _, path := range []string{"/login", "/signup"} {
		ez.RegisterAction(pub, ez.Action[struct{}, pageOut]{
			Method: http.MethodGet,
			Path:   path,
			Binder: ez.BindNone,
			Handler: func(c *gin.Context, _ *struct{}) (pageOut, error) {
				return pageOut{Messages: pub.Messages(c)}, nil
			},
		})
	}

	ez.RegisterAction(pub, ez.Action[signupIn, *domain.User]{
		Method: http.MethodPost,
		Path:   "/signup",
		Binder: ez.BindAuto,
		Handler: func(c *gin.Context, in *signupIn) (*domain.User, error) {
			u, err := m.users.Register(c.Request.Context(), service.RegisterInput(*in))
			if err != nil {
				return nil, err
			}
			pub.Flash(c, "registration successful, please log in")
			return u, nil
		},
		Redirect: func(*gin.Context, *domain.User) string { return mdw.LoginPath },
		FailTo:   "/signup",
	})

	ez.RegisterAction(pub, ez.Action[loginIn, loginOut]{
		Method:     http.MethodPost,
		Path:       "/login",
		Binder:     ez.BindAuto,
		Middleware: m.limit(),
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			u, err := m.users.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			if err := m.cookie.Issue(c, service.IdentityOf(u)); err != nil {
				return loginOut{}, err
			}
			return loginOut{User: u, Redirect: homeFor(u)}, nil
		},
		Redirect: func(_ *gin.Context, out loginOut) string { return out.Redirect },
		FailTo:   mdw.LoginPath,
	})

	ez.RegisterAction(pub, ez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/logout",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			m.cookie.Clear(c)
			pub.Flash(c, "you have been logged out")
			return gin.H{"redirect": mdw.LoginPath}, nil
		},
		Redirect: func(*gin.Context, gin.H) string { return mdw.LoginPath },
	})

	authed := ez.New(g.Group("", mdw.RequireAuth(m.cookie, m.flash)), m.flash)

	ez.RegisterAction(authed, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/my",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return m.users.Get(c.Request.Context(), c.GetString(mdw.KeyUserID))
		},
	})

	ez.RegisterAction(authed, ez.Action[profileIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/my",
		Binder: ez.BindAuto,
		Handler: func(c *gin.Context, in *profileIn) (*domain.User, error) {
			u, err := m.users.UpdateProfile(c.Request.Context(), c.GetString(mdw.KeyUserID), in.toService())
			if err != nil {
				return nil, err
			}
			// 名字/邮箱可能变了，重新签发
			if err := m.cookie.Issue(c, service.IdentityOf(u)); err != nil {
				return nil, err
			}
			return u, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/my",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := m.users.DeleteAccount(c.Request.Context(), c.GetString(mdw.KeyUserID)); err != nil {
				return nil, err
			}
			m.cookie.Clear(c)
			return gin.H{"message": "account deleted", "redirect": "/"}, nil
		},
	})
}

func (m *Module) limit() []gin.HandlerFunc {
	if m.loginLimit == nil {
		return nil
	}
	return []gin.HandlerFunc{m.loginLimit}
}

// MountAdminPublic 管理端登录：只接受管理员账号
func (m *Module) MountAdminPublic(g *gin.RouterGroup) {
	pub := ez.New(g, m.flash)
	ez.RegisterAction(pub, ez.Action[struct{}, pageOut]{
		Method: http.MethodGet,
		Path:   "/login",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (pageOut, error) {
			return pageOut{Messages: pub.Messages(c)}, nil
		},
	})
	ez.RegisterAction(pub, ez.Action[loginIn, loginOut]{
		Method:     http.MethodPost,
		Path:       "/login",
		Binder:     ez.BindAuto,
		Middleware: m.limit(),
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			u, err := m.users.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			if u.Role != auth.RoleAdmin {
				return loginOut{}, apperr.Forbidden("administrator account required")
			}
			if err := m.cookie.Issue(c, service.IdentityOf(u)); err != nil {
				return loginOut{}, err
			}
			return loginOut{User: u, Redirect: "/admin"}, nil
		},
		Redirect: func(_ *gin.Context, out loginOut) string { return out.Redirect },
		FailTo:   "/admin/login",
	})
}

type listQ struct {
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"` // 按 email/name 模糊搜
}

func (q listQ) bounded() (int, int) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q.Offset, q.Limit
}

type listOut struct {
	Total int64         `json:"total"`
	Items []domain.User `json:"items"`
}

type adminUserIn struct {
	signupIn
	Role string `json:"role" form:"role" binding:"omitempty,oneof=user admin"`
}

type adminUpdateIn struct {
	profileIn
	Role string `json:"role" form:"role" binding:"omitempty,oneof=user admin"`
}

type idURI struct {
	ID string `uri:"id" binding:"required"`
}

func (m *Module) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, m.flash)

	ez.RegisterAction(e, ez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			offset, limit := in.bounded()
			users, total, err := m.users.List(c.Request.Context(), domain.UserFilter{
				Q: strings.TrimSpace(in.Q), Offset: offset, Limit: limit,
			})
			if err != nil {
				return listOut{}, err
			}
			return listOut{Total: total, Items: users}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[adminUserIn, *domain.User]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindAuto,
		Handler: func(c *gin.Context, in *adminUserIn) (*domain.User, error) {
			return m.users.Create(c.Request.Context(), service.RegisterInput(in.signupIn), in.Role)
		},
	})

	ez.RegisterAction(e, ez.Action[idURI, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (*domain.User, error) {
			return m.users.Get(c.Request.Context(), in.ID)
		},
	})

	ez.RegisterAction(e, ez.Action[adminUpdateIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: ez.BindAuto,
		Handler: func(c *gin.Context, in *adminUpdateIn) (*domain.User, error) {
			return m.users.AdminUpdate(c.Request.Context(), c.Param("id"), in.toService(), in.Role)
		},
	})

	ez.RegisterAction(e, ez.Action[idURI, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (gin.H, error) {
			if err := m.users.DeleteAccount(c.Request.Context(), in.ID); err != nil {
				return nil, err
			}
			return gin.H{"id": in.ID}, nil
		},
	})
}
