package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"oneps/internal/core/apperr"
	"oneps/internal/transport/http/flash"
	resp "oneps/internal/transport/http/response"
)

type EZ struct {
	g     *gin.RouterGroup
	flash *flash.Store
}

func New(g *gin.RouterGroup, fl *flash.Store) EZ { return EZ{g: g, flash: fl} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindURI   Binder = "uri"   // 从路径参数绑定
	BindAuto  Binder = "auto"  // 按 Content-Type：JSON 或表单
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.FormFile 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method     string // "GET" | "POST" | "PUT" | "DELETE"
	Path       string // 例："/login"、"/like-post/:id"
	Binder     Binder
	Middleware []gin.HandlerFunc // 仅作用于本动作，如登录限速
	Handler    func(c *gin.Context, in *I) (O, error)

	// 浏览器表单：成功后 303 到 Redirect(out)；失败时带 flash 303 回 FailTo
	Redirect func(c *gin.Context, out O) string
	FailTo   string
}

func bindError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return apperr.Validation("", "request body too large")
	}
	return apperr.Validation("", err.Error())
}

func (e EZ) fail(c *gin.Context, err error, failTo string) {
	_ = c.Error(err)
	if failTo != "" && resp.WantsHTML(c) {
		e.flash.Add(c, apperr.Message(err))
		resp.SeeOther(c, failTo)
		return
	}
	c.Abort()
}

// RegisterAction 错误推给 c.Error，由 middleware.Errors 统一渲染
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindURI:
			bindErr = c.ShouldBindUri(&in)
		case BindAuto:
			bindErr = c.ShouldBind(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			e.fail(c, bindError(bindErr), a.FailTo)
			return
		}

		// 2) 执行
		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err, a.FailTo)
			return
		}

		// 3) handler 自己写过响应（如重定向）就不再输出
		if c.Writer.Written() || c.IsAborted() {
			return
		}
		if a.Redirect != nil && resp.WantsHTML(c) {
			resp.SeeOther(c, a.Redirect(c, out))
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	handlers := append(append([]gin.HandlerFunc{}, a.Middleware...), h)
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, handlers...)
	case http.MethodPut:
		e.g.PUT(a.Path, handlers...)
	case http.MethodDelete:
		e.g.DELETE(a.Path, handlers...)
	default: // 默认 POST
		e.g.POST(a.Path, handlers...)
	}
}

// Flash 处理函数里追加一条一次性消息
func (e EZ) Flash(c *gin.Context, msg string) { e.flash.Add(c, msg) }

// Messages 取出待显示的 flash 消息
func (e EZ) Messages(c *gin.Context) []string { return e.flash.Pop(c) }
