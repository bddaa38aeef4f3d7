// Package apperr classifies failures into the small set of kinds the HTTP
// boundary knows how to render.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

var kindStatus = map[Kind]int{
	KindInternal:        http.StatusInternalServerError,
	KindValidation:      http.StatusBadRequest,
	KindUnauthenticated: http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusConflict,
}

var kindMsg = map[Kind]string{
	KindInternal:        "internal error",
	KindValidation:      "validation failed",
	KindUnauthenticated: "login required",
	KindForbidden:       "forbidden",
	KindNotFound:        "not found",
	KindConflict:        "conflict",
}

// Error 统一错误对象：Kind 决定状态码，Msg 给用户看，Err 只进日志
type Error struct {
	Kind  Kind
	Msg   string
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return kindMsg[e.Kind]
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(field, msg string) error { return &Error{Kind: KindValidation, Msg: msg, Field: field} }
func Unauthenticated(msg string) error   { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func Forbidden(msg string) error         { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error          { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error          { return &Error{Kind: KindConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf 非 *Error 一律按 Internal 处理
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

func (k Kind) Status() int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func (k Kind) String() string { return kindMsg[k] }

// Message is the text safe to show a user. Internal failures never leak
// their own message.
func Message(err error) string {
	var ae *Error
	if !errors.As(err, &ae) {
		return kindMsg[KindInternal]
	}
	if ae.Kind == KindInternal {
		if ae.Msg != "" {
			return ae.Msg
		}
		return kindMsg[KindInternal]
	}
	if ae.Msg != "" {
		return ae.Msg
	}
	return kindMsg[ae.Kind]
}
