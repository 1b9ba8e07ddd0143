// Package response 统一 JSON 响应格式 {code, message, data}
package response

import (
	"errors"
	"log"
	"net/http"

	"admin_backend/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 业务码，与前端拦截器约定一致
const (
	CodeSuccess      = 0
	CodeFail         = -1
	CodeTokenExpired = 401
	CodeNoPermission = 403
)

type Body struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// PageResult 分页结果
type PageResult[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

func NewPage[T any](list []T, total int64, page, pageSize int) PageResult[T] {
	if list == nil {
		list = []T{}
	}
	return PageResult[T]{List: list, Total: total, Page: page, PageSize: pageSize}
}

func OK(c *gin.Context, data any) {
	OKWithMessage(c, "success", data)
}

func OKWithMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Body{Code: CodeSuccess, Message: message, Data: data})
}

// Error 把错误转换成响应并终止后续 handler
func Error(c *gin.Context, err error) {
	var appErr *errs.Error
	switch {
	case errors.As(err, &appErr):
	case errors.Is(err, gorm.ErrRecordNotFound):
		appErr = errs.NotFound("记录不存在")
	default:
		appErr = errs.Internal("服务器内部错误", err)
	}

	status := appErr.Code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	c.AbortWithStatusJSON(status, Body{
		Code:    bizCode(appErr.Code),
		Message: appErr.Message,
		Data:    nil,
	})
}

func bizCode(code errs.Code) int {
	switch code {
	case errs.CodeUnauthenticated:
		return CodeTokenExpired
	case errs.CodePermissionDenied:
		return CodeNoPermission
	default:
		return CodeFail
	}
}
