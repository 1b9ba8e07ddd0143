// Package errs 定义业务错误码，handler 统一通过 response.Error 输出。
package errs

import (
	"errors"
	"net/http"
)

// Code 机器可读的错误分类
type Code string

const (
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodePermissionDenied   Code = "PERMISSION_DENIED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeInternal           Code = "INTERNAL"
)

// HTTPStatus 错误码对应的 HTTP 状态
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument, CodeFailedPrecondition:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error 带错误码的业务错误。Message 面向用户，Cause 只进日志。
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is 按错误码比较
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func InvalidArgument(message string) *Error  { return New(CodeInvalidArgument, message) }
func NotFound(message string) *Error         { return New(CodeNotFound, message) }
func Conflict(message string) *Error         { return New(CodeConflict, message) }
func PermissionDenied(message string) *Error { return New(CodePermissionDenied, message) }
func Unauthenticated(message string) *Error  { return New(CodeUnauthenticated, message) }
func FailedPrecondition(message string) *Error {
	return New(CodeFailedPrecondition, message)
}

// Internal 包装底层错误，对外只暴露 message
func Internal(message string, cause error) *Error {
	return Wrap(CodeInternal, message, cause)
}

// CodeOf 取出错误链上的错误码，非业务错误视为 Internal
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
