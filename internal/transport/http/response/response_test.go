package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oneps/internal/core/apperr"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Code int            `json:"code"`
	Msg  string         `json:"msg"`
	Data map[string]any `json:"data"`
}

func failWith(t *testing.T, err error, dev bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Fail(c, err, dev)
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestFail_Statuses(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Validation("postText", "caption is required"), http.StatusBadRequest, "caption is required"},
		{apperr.Unauthenticated(""), http.StatusUnauthorized, "login required"},
		{apperr.Forbidden(""), http.StatusForbidden, "forbidden"},
		{apperr.NotFound("post not found"), http.StatusNotFound, "post not found"},
		{apperr.Conflict("email already registered"), http.StatusConflict, "email already registered"},
		{errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			w, body := failWith(t, tt.err, false)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.status, body.Code)
			assert.Equal(t, tt.msg, body.Msg)
			assert.NotContains(t, body.Data, "detail")
			assert.NotContains(t, body.Data, "stack")
		})
	}
}

func TestFail_ValidationField(t *testing.T) {
	_, body := failWith(t, apperr.Validation("postText", "caption is required"), false)
	assert.Equal(t, "postText", body.Data["field"])
}

func TestFail_DevDetail(t *testing.T) {
	_, body := failWith(t, apperr.Internal("", errors.New("secret dsn")), true)
	assert.Equal(t, "internal error", body.Msg)
	assert.Contains(t, body.Data["detail"], "secret dsn")
	assert.NotEmpty(t, body.Data["stack"])
}

func TestWantsHTML(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Accept", "text/html,application/xhtml+xml")
	assert.True(t, WantsHTML(c))
	c.Request.Header.Set("Accept", "application/json")
	assert.False(t, WantsHTML(c))
}
