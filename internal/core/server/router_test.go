package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() { gin.SetMode(gin.TestMode) }

func TestNewRouter_RecoversPanics(t *testing.T) {
	var recovered any
	r := NewRouter(zap.NewNop(), func(c *gin.Context, rec any) {
		recovered = rec
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
	})
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "kaboom", recovered)
}

func TestAddr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:4000", Addr("0.0.0.0", 4000))
}

func TestBuildServer(t *testing.T) {
	srv := BuildServer(":0", http.NotFoundHandler(), 1, 2, 3)
	assert.Equal(t, 1<<20, srv.MaxHeaderBytes)
	assert.EqualValues(t, 2, srv.WriteTimeout)
}
