package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oneps/internal/core/auth"
	"oneps/internal/service"
	mdw "oneps/internal/transport/http/middleware"
	resp "oneps/internal/transport/http/response"
)

// AdminHandler 管理首页
type AdminHandler struct {
	users *service.UserService
}

func NewAdminHandler(users *service.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

type dashboard struct {
	Admin  auth.Identity  `json:"admin"`
	Counts service.Counts `json:"counts"`
}

// Dashboard GET /admin
func (h *AdminHandler) Dashboard(c *gin.Context) {
	counts, err := h.users.Counts(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	id, _ := mdw.Identity(c)
	c.JSON(http.StatusOK, resp.OK(dashboard{Admin: id, Counts: counts}))
}
