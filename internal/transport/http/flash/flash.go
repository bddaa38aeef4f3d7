// Package flash keeps one-shot messages across a redirect in a signed
// cookie session.
package flash

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const sessionName = "1ps_flash"

type Store struct {
	cs *sessions.CookieStore
}

func New(secret string, secure bool) *Store {
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cs: cs}
}

// Add 追加一条消息；nil Store 时忽略
func (s *Store) Add(c *gin.Context, msg string) {
	if s == nil || msg == "" {
		return
	}
	// 签名校验失败时 Get 仍返回新 session
	sess, _ := s.cs.Get(c.Request, sessionName)
	sess.AddFlash(msg)
	_ = sess.Save(c.Request, c.Writer)
}

// Pop 取出并清空全部消息
func (s *Store) Pop(c *gin.Context) []string {
	out := []string{}
	if s == nil {
		return out
	}
	sess, _ := s.cs.Get(c.Request, sessionName)
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return out
	}
	for _, f := range flashes {
		if m, ok := f.(string); ok {
			out = append(out, m)
		}
	}
	_ = sess.Save(c.Request, c.Writer)
	return out
}
