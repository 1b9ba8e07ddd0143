package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"admin_backend/internal/database"
	"admin_backend/internal/pkg/auth"
	"admin_backend/internal/pkg/cache"
	"admin_backend/internal/pkg/utils"
	"admin_backend/internal/seed"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	utils.SetHashCost(bcrypt.MinCost)
	auth.InitJWT("handler-test-secret", time.Hour, 24*time.Hour)
}

// fakeQueue 记录入队的报表，不做处理
type fakeQueue struct {
	mu  sync.Mutex
	ids []uint
	err error
}

func (q *fakeQueue) Enqueue(id uint) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, id)
	return nil
}

type testServer struct {
	t     *testing.T
	db    *gorm.DB
	queue *fakeQueue
	r     *gin.Engine
}

// envelope 解析统一响应，data 延迟解码
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	if err := seed.Run(db); err != nil {
		t.Fatal(err)
	}
	if err := cache.InitPermissionCache(db); err != nil {
		t.Fatal(err)
	}
	q := &fakeQueue{}
	return &testServer{t: t, db: db, queue: q, r: NewRouter(db, q, []string{"*"})}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		s.t.Fatalf("%s %s: invalid body %q", method, path, w.Body.String())
	}
	return w.Code, env
}

// ok 断言成功并把 data 解码到 dst
func (s *testServer) ok(method, path, token string, body, dst any) {
	s.t.Helper()
	status, env := s.do(method, path, token, body)
	if status != http.StatusOK || env.Code != 0 {
		s.t.Fatalf("%s %s: status %d code %d message %q", method, path, status, env.Code, env.Message)
	}
	if dst != nil {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			s.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
}

// fail 断言失败的 HTTP 状态码
func (s *testServer) fail(method, path, token string, body any, wantStatus int) envelope {
	s.t.Helper()
	status, env := s.do(method, path, token, body)
	if status != wantStatus {
		s.t.Fatalf("%s %s: status %d, want %d (message %q)", method, path, status, wantStatus, env.Message)
	}
	return env
}

type loginResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Expire       int64  `json:"expire"`
	UserInfo     struct {
		ID          uint     `json:"id"`
		Username    string   `json:"username"`
		Roles       []string `json:"roles"`
		Permissions []string `json:"permissions"`
	} `json:"userInfo"`
}

func (s *testServer) login(username, password string) loginResult {
	s.t.Helper()
	var res loginResult
	s.ok(http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password}, &res)
	return res
}

func (s *testServer) token(username string) string {
	s.t.Helper()
	for _, a := range seed.DemoAccounts {
		if a.Username == username {
			return s.login(a.Username, a.Password).Token
		}
	}
	s.t.Fatalf("unknown demo account %s", username)
	return ""
}

type page[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}
