package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func TestAddPop(t *testing.T) {
	s := New("flash-secret-at-least-16", false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	s.Add(c, "please log in")
	s.Add(c, "second")
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/login", nil)
	c2.Request.AddCookie(cookies[len(cookies)-1])
	assert.Equal(t, []string{"please log in", "second"}, s.Pop(c2))

	// 再读一次已经清空
	w3 := httptest.NewRecorder()
	c3, _ := gin.CreateTestContext(w3)
	c3.Request = httptest.NewRequest(http.MethodGet, "/login", nil)
	for _, ck := range w2.Result().Cookies() {
		c3.Request.AddCookie(ck)
	}
	assert.Empty(t, s.Pop(c3))
}

func TestNilStore(t *testing.T) {
	var s *Store
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	s.Add(c, "x")
	assert.Empty(t, s.Pop(c))
}
