package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"admin_backend/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func run(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Body) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	h(c)

	var body Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return w, body
}

func TestOK(t *testing.T) {
	w, body := run(t, func(c *gin.Context) { OK(c, gin.H{"id": 1}) })
	if w.Code != http.StatusOK || body.Code != CodeSuccess || body.Message != "success" {
		t.Fatalf("unexpected response %d %+v", w.Code, body)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
		wantMsg    string
	}{
		{"not found", errs.NotFound("用户不存在"), http.StatusNotFound, CodeFail, "用户不存在"},
		{"gorm not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), http.StatusNotFound, CodeFail, "记录不存在"},
		{"unauthenticated", errs.Unauthenticated("未登录"), http.StatusUnauthorized, CodeTokenExpired, "未登录"},
		{"forbidden", errs.PermissionDenied("没有权限"), http.StatusForbidden, CodeNoPermission, "没有权限"},
		{"conflict", errs.Conflict("已存在"), http.StatusConflict, CodeFail, "已存在"},
		{"internal hides cause", errors.New("pq: connection refused"), http.StatusInternalServerError, CodeFail, "服务器内部错误"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := run(t, func(c *gin.Context) { Error(c, tt.err) })
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d want %d", w.Code, tt.wantStatus)
			}
			if body.Code != tt.wantCode || body.Message != tt.wantMsg {
				t.Fatalf("body = %+v", body)
			}
		})
	}
}

func TestNewPageNeverNil(t *testing.T) {
	p := NewPage[int](nil, 0, 1, 10)
	raw, _ := json.Marshal(p)
	if string(raw) != `{"list":[],"total":0,"page":1,"pageSize":10}` {
		t.Fatalf("got %s", raw)
	}
}
