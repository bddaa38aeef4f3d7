package ez

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"oneps/internal/core/apperr"
	resp "oneps/internal/transport/http/response"
)

// OwnedConfig 按 owner 字段限定的只读列表/详情（"我的 xxx"）。
// 模型需要导出的 string 字段 ID 和 UserID
type OwnedConfig[T any] struct {
	DB    *gorm.DB
	Group *gin.RouterGroup // 已鉴权分组（能拿 userId）
	Path  string
	New   func() *T

	// 列表排序，为空不排序
	OrderBy string // 例如 "created_at DESC"
}

var (
	idFieldNames    = []string{"ID"}
	ownerFieldNames = []string{"UserID"}
)

// 反射 & 工具
func getStringFieldPtr(obj any, candidates []string) (*string, bool) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr {
		return nil, false
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	t := v.Type()
	for _, cand := range candidates {
		f, ok := t.FieldByName(cand)
		// 未导出字段跳过
		if !ok || f.PkgPath != "" {
			continue
		}
		fv := v.FieldByIndex(f.Index)
		if fv.Kind() == reflect.String && fv.CanSet() {
			return fv.Addr().Interface().(*string), true
		}
	}
	return nil, false
}

func writeStringField(obj any, candidates []string, val string) bool {
	p, ok := getStringFieldPtr(obj, candidates)
	if !ok {
		return false
	}
	*p = val
	return true
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

// OwnedReads 注册 GET path（分页列表）与 GET path/:id
func OwnedReads[T any](cfg OwnedConfig[T]) {
	cfg.Group.GET(cfg.Path, func(c *gin.Context) {
		uid := c.GetString("userId")
		if uid == "" {
			_ = c.Error(apperr.Unauthenticated(""))
			c.Abort()
			return
		}
		page := atoiDefault(c.Query("page"), 1)
		size := atoiDefault(c.Query("size"), 20)
		if size > 100 {
			size = 20
		}

		// 用结构体 Where 自动映射列名，避免手写 user_id
		ownerFilter := cfg.New()
		if !writeStringField(ownerFilter, ownerFieldNames, uid) {
			_ = c.Error(apperr.Internal("owner field not found", nil))
			c.Abort()
			return
		}
		q := cfg.DB.WithContext(c.Request.Context()).Model(cfg.New()).Where(ownerFilter)

		var total int64
		if err := q.Count(&total).Error; err != nil {
			_ = c.Error(apperr.Internal("", err))
			c.Abort()
			return
		}
		items := []T{}
		if err := q.Order(cfg.OrderBy).Limit(size).Offset((page - 1) * size).Find(&items).Error; err != nil {
			_ = c.Error(apperr.Internal("", err))
			c.Abort()
			return
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{
			"list": items, "total": total, "page": page, "size": size,
		}))
	})

	cfg.Group.GET(cfg.Path+"/:id", func(c *gin.Context) {
		uid := c.GetString("userId")
		if uid == "" {
			_ = c.Error(apperr.Unauthenticated(""))
			c.Abort()
			return
		}
		filter := cfg.New()
		_ = writeStringField(filter, idFieldNames, c.Param("id"))
		_ = writeStringField(filter, ownerFieldNames, uid)

		// 不是自己的也按不存在处理
		m := cfg.New()
		if err := cfg.DB.WithContext(c.Request.Context()).Where(filter).First(m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = apperr.NotFound("not found")
			} else {
				err = apperr.Internal("", err)
			}
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.JSON(http.StatusOK, resp.OK(m))
	})
}
