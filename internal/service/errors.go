package service

import (
	"errors"

	"oneps/internal/core/apperr"
	"oneps/internal/domain"
)

// classify 把仓储哨兵错误转成 apperr；已分类的错误原样返回
func classify(err error, what string) error {
	var ae *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return err
	case errors.Is(err, domain.ErrNotFound):
		return apperr.NotFound(what + " not found")
	case errors.Is(err, domain.ErrUserGone):
		return apperr.Unauthenticated("account no longer exists")
	case errors.Is(err, domain.ErrDuplicate):
		return apperr.Conflict(what + " already exists")
	}
	return apperr.Internal("", err)
}
