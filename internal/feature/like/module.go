// Package like mounts the like toggle and like moderation routes.
package like

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oneps/internal/domain"
	"oneps/internal/service"
	"oneps/internal/transport/http/ez"
	"oneps/internal/transport/http/flash"
	mdw "oneps/internal/transport/http/middleware"
)

type Module struct {
	likes  *service.LikeService
	cookie mdw.TokenCookie
	flash  *flash.Store
}

func New(likes *service.LikeService, cookie mdw.TokenCookie, fl *flash.Store) *Module {
	return &Module{likes: likes, cookie: cookie, flash: fl}
}

type idURI struct {
	ID string `uri:"id" binding:"required"`
}

type toggleOut struct {
	Message string `json:"message"`
	service.ToggleResult
}

func (m *Module) MountAPI(g *gin.RouterGroup) {
	authed := ez.New(g.Group("", mdw.RequireAuth(m.cookie, m.flash)), m.flash)

	ez.RegisterAction(authed, ez.Action[idURI, toggleOut]{
		Method: http.MethodPost,
		Path:   "/like-post/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (toggleOut, error) {
			r, err := m.likes.Toggle(c.Request.Context(), c.GetString(mdw.KeyUserID), in.ID)
			if err != nil {
				return toggleOut{}, err
			}
			msg := "post unliked"
			if r.IsLiked {
				msg = "post liked"
			}
			return toggleOut{Message: msg, ToggleResult: r}, nil
		},
	})
}

type listQ struct {
	Offset int `form:"offset,default=0"`
	Limit  int `form:"limit,default=20"`
}

type listOut struct {
	Total int64            `json:"total"`
	Items []domain.LikeRow `json:"items"`
}

func (m *Module) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, m.flash)

	ez.RegisterAction(e, ez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/likes",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			rows, total, err := m.likes.List(c.Request.Context(), max(in.Offset, 0), in.Limit)
			if err != nil {
				return listOut{}, err
			}
			return listOut{Total: total, Items: rows}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[idURI, gin.H]{
		Method: http.MethodDelete,
		Path:   "/likes/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (gin.H, error) {
			if err := m.likes.Delete(c.Request.Context(), in.ID); err != nil {
				return nil, err
			}
			return gin.H{"id": in.ID}, nil
		},
	})
}
