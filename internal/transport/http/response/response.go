package response

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"oneps/internal/core/apperr"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// Abort 以 code 作为 HTTP 状态码中止请求
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Error(code, msg))
}

// Fail 把任意错误映射为状态码 + envelope；细节与堆栈只在开发环境返回
func Fail(c *gin.Context, err error, dev bool) {
	kind := apperr.KindOf(err)
	status := kind.Status()
	data := gin.H{}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Field != "" {
		data["field"] = ae.Field
	}
	if dev {
		data["detail"] = err.Error()
		if kind == apperr.KindInternal {
			data["stack"] = string(debug.Stack())
		}
	}
	c.AbortWithStatusJSON(status, New(status, apperr.Message(err), data))
}

// WantsHTML 浏览器表单请求走重定向，其余按 JSON 返回
func WantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

// SeeOther 303 重定向，表单 POST 之后用。
// 非 GET 请求的重定向没有响应体，这里立即写出状态行，后面的中间件不会再覆盖
func SeeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
	c.Writer.WriteHeaderNow()
	c.Abort()
}
