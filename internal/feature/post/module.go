// Package post mounts the feed, upload, caption edit and delete routes,
// and post moderation on the admin surface.
package post

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"oneps/internal/core/apperr"
	"oneps/internal/core/auth"
	"oneps/internal/domain"
	"oneps/internal/service"
	"oneps/internal/transport/http/ez"
	"oneps/internal/transport/http/flash"
	mdw "oneps/internal/transport/http/middleware"
)

type Module struct {
	posts  *service.PostService
	db     *gorm.DB // "我的帖子"只读列表直接走 ez.OwnedReads
	cookie mdw.TokenCookie
	flash  *flash.Store
}

func New(posts *service.PostService, db *gorm.DB, cookie mdw.TokenCookie, fl *flash.Store) *Module {
	return &Module{posts: posts, db: db, cookie: cookie, flash: fl}
}

type feedOut struct {
	User  *auth.Identity     `json:"user"`
	Posts []service.FeedItem `json:"posts"`
}

type captionIn struct {
	PostText string `json:"postText" form:"postText" binding:"required"`
}

type captionOut struct {
	Message string `json:"message"`
	NewText string `json:"newText"`
}

type uploadPage struct {
	Messages []string `json:"messages"`
	Allowed  []string `json:"allowed"`
	MaxBytes int64    `json:"maxBytes"`
}

type idURI struct {
	ID string `uri:"id" binding:"required"`
}

func actor(c *gin.Context) service.Actor {
	return service.Actor{UserID: c.GetString(mdw.KeyUserID)}
}

// readUpload 从 multipart 里取 imageFile；校验交给 service
func readUpload(c *gin.Context) (service.Upload, func(), error) {
	fh, err := c.FormFile("imageFile")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return service.Upload{}, nil, apperr.Validation("imageFile", "image exceeds the size limit")
		}
		return service.Upload{}, nil, apperr.Validation("imageFile", "image file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, nil, apperr.Internal("", err)
	}
	return service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func (m *Module) MountAPI(g *gin.RouterGroup) {
	opt := ez.New(g.Group("", mdw.OptionalAuth(m.cookie)), m.flash)

	ez.RegisterAction(opt, ez.Action[struct{}, feedOut]{
		Method: http.MethodGet,
		Path:   "/",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (feedOut, error) {
			var out feedOut
			if id, ok := mdw.Identity(c); ok {
				out.User = &id
			}
			items, err := m.posts.Feed(c.Request.Context(), c.GetString(mdw.KeyUserID))
			if err != nil {
				return out, err
			}
			out.Posts = items
			return out, nil
		},
	})

	ag := g.Group("", mdw.RequireAuth(m.cookie, m.flash))
	authed := ez.New(ag, m.flash)

	ez.RegisterAction(authed, ez.Action[struct{}, uploadPage]{
		Method: http.MethodGet,
		Path:   "/upload",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (uploadPage, error) {
			return uploadPage{
				Messages: authed.Messages(c),
				Allowed:  []string{"jpeg", "jpg", "png", "gif"},
				MaxBytes: m.posts.MaxBytes(),
			}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, *domain.Post]{
		Method: http.MethodPost,
		Path:   "/submit-upload",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Post, error) {
			up, closeFn, err := readUpload(c)
			if err != nil {
				return nil, err
			}
			defer closeFn()
			p, err := m.posts.Create(c.Request.Context(), c.GetString(mdw.KeyUserID), up, c.PostForm("postText"))
			if err != nil {
				return nil, err
			}
			authed.Flash(c, "post published")
			return p, nil
		},
		Redirect: func(*gin.Context, *domain.Post) string { return "/" },
		FailTo:   "/upload",
	})

	ez.OwnedReads(ez.OwnedConfig[domain.Post]{
		DB:      m.db,
		Group:   ag,
		Path:    "/my-posts",
		New:     func() *domain.Post { return &domain.Post{} },
		OrderBy: "created_at DESC",
	})

	ez.RegisterAction(authed, ez.Action[struct{}, []domain.Post]{
		Method: http.MethodGet,
		Path:   "/likes",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Post, error) {
			return m.posts.LikedPosts(c.Request.Context(), c.GetString(mdw.KeyUserID))
		},
	})

	ez.RegisterAction(authed, ez.Action[captionIn, captionOut]{
		Method: http.MethodPut,
		Path:   "/posts/:id",
		Binder: ez.BindAuto,
		Handler: func(c *gin.Context, in *captionIn) (captionOut, error) {
			p, err := m.posts.UpdateCaption(c.Request.Context(), actor(c), c.Param("id"), in.PostText)
			if err != nil {
				return captionOut{}, err
			}
			return captionOut{Message: "caption updated", NewText: p.PostText}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[idURI, gin.H]{
		Method: http.MethodDelete,
		Path:   "/posts/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (gin.H, error) {
			if err := m.posts.Delete(c.Request.Context(), actor(c), in.ID); err != nil {
				return nil, err
			}
			return gin.H{"message": "post deleted"}, nil
		},
	})
}

type listQ struct {
	Offset int `form:"offset,default=0"`
	Limit  int `form:"limit,default=20"`
}

type listOut struct {
	Total int64                   `json:"total"`
	Items []domain.PostWithAuthor `json:"items"`
}

func adminActor(c *gin.Context) service.Actor {
	return service.Actor{UserID: c.GetString(mdw.KeyUserID), Admin: true}
}

func (m *Module) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, m.flash)

	ez.RegisterAction(e, ez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/posts",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			rows, total, err := m.posts.List(c.Request.Context(), max(in.Offset, 0), in.Limit)
			if err != nil {
				return listOut{}, err
			}
			return listOut{Total: total, Items: rows}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[idURI, *domain.Post]{
		Method: http.MethodGet,
		Path:   "/posts/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (*domain.Post, error) {
			return m.posts.Get(c.Request.Context(), in.ID)
		},
	})

	ez.RegisterAction(e, ez.Action[captionIn, *domain.Post]{
		Method: http.MethodPut,
		Path:   "/posts/:id",
		Binder: ez.BindAuto,
		Handler: func(c *gin.Context, in *captionIn) (*domain.Post, error) {
			return m.posts.UpdateCaption(c.Request.Context(), adminActor(c), c.Param("id"), in.PostText)
		},
	})

	ez.RegisterAction(e, ez.Action[idURI, gin.H]{
		Method: http.MethodDelete,
		Path:   "/posts/:id",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (gin.H, error) {
			if err := m.posts.Delete(c.Request.Context(), adminActor(c), in.ID); err != nil {
				return nil, err
			}
			return gin.H{"id": in.ID}, nil
		},
	})
}
