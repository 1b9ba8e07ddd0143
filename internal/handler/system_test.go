package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"testing"

	"admin_backend/internal/dto"
	"admin_backend/internal/model"
	"admin_backend/internal/pkg/rbac"
	"admin_backend/internal/pkg/response"
)

// 种子角色 ID 与 rbac.BuiltinRoles 顺序一致
const (
	superAdminRoleID = 1
	adminRoleID      = 2
	editorRoleID     = 3
	userRoleID       = 4
)

func TestListUsersFilters(t *testing.T) {
	s := newTestServer(t)
	token := s.token("admin")

	tests := []struct {
		query string
		total int64
	}{
		{"", 5},
		{"?status=0", 1},
		{fmt.Sprintf("?roleId=%d", userRoleID), 2},
		{"?username=ADMIN", 2},
		{"?department=" + url.QueryEscape("技术部"), 2},
		{"?realName=" + url.QueryEscape("编辑"), 1},
	}
	for _, tt := range tests {
		var p page[dto.UserDTO]
		s.ok(http.MethodGet, "/api/system/user/list"+tt.query, token, nil, &p)
		if p.Total != tt.total {
			t.Errorf("%q: total %d, want %d", tt.query, p.Total, tt.total)
		}
	}

	var p page[dto.UserDTO]
	s.ok(http.MethodGet, "/api/system/user/list?page=2&pageSize=2", token, nil, &p)
	if p.Page != 2 || p.PageSize != 2 || len(p.List) != 2 || p.List[0].ID != 3 {
		t.Fatalf("page 2 = %+v", p)
	}
	var all page[dto.UserDTO]
	s.ok(http.MethodGet, "/api/system/user/list?pageSize=1000", token, nil, &all)
	if all.PageSize != maxPageSize || len(all.List) != 5 {
		t.Errorf("pageSize = %d, len = %d", all.PageSize, len(all.List))
	}
	if len(all.List[0].RoleIDs) != 1 || all.List[0].Roles[0] != rbac.RoleSuperAdmin {
		t.Errorf("first user = %+v", all.List[0])
	}

	s.fail(http.MethodGet, "/api/system/user/list?status=x", token, nil, http.StatusBadRequest)
}

func TestUserPermissionDenied(t *testing.T) {
	s := newTestServer(t)
	env := s.fail(http.MethodGet, "/api/system/user/list", s.token("editor"), nil, http.StatusForbidden)
	if env.Code != response.CodeNoPermission {
		t.Fatalf("code = %d", env.Code)
	}
}

func TestUserLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.token("admin")

	s.fail(http.MethodPost, "/api/system/user", token, map[string]any{"username": "admin", "password": "123456"}, http.StatusConflict)
	s.fail(http.MethodPost, "/api/system/user", token, map[string]any{"username": "neo", "password": "123"}, http.StatusBadRequest)
	s.fail(http.MethodPost, "/api/system/user", token, map[string]any{"username": "neo", "password": "123456", "roleIds": []int{999}}, http.StatusBadRequest)
	s.fail(http.MethodPost, "/api/system/user", token, map[string]any{"username": "neo", "password": "123456", "gender": 7}, http.StatusBadRequest)

	var created dto.UserDTO
	s.ok(http.MethodPost, "/api/system/user", token, map[string]any{
		"username":   "neo",
		"password":   "123456",
		"realName":   "尼奥",
		"email":      "neo@example.com",
		"department": "研发部",
		"roleIds":    []int{editorRoleID},
	}, &created)
	if created.ID == 0 || created.Status != model.StatusEnabled || !slices.Equal(created.Roles, []string{rbac.RoleEditor}) {
		t.Fatalf("created = %+v", created)
	}
	s.login("neo", "123456")

	path := fmt.Sprintf("/api/system/user/%d", created.ID)
	var updated dto.UserDTO
	s.ok(http.MethodPut, path, token, map[string]any{"realName": "Neo", "roleIds": []int{}}, &updated)
	if updated.RealName != "Neo" || updated.Email != "neo@example.com" || len(updated.Roles) != 0 {
		t.Fatalf("updated = %+v", updated)
	}
	s.fail(http.MethodPut, path, token, map[string]any{"username": "editor"}, http.StatusConflict)

	s.ok(http.MethodPut, path+"/password", token, map[string]string{"password": "654321"}, nil)
	s.login("neo", "654321")

	s.ok(http.MethodDelete, path, token, nil, nil)
	s.fail(http.MethodGet, path, token, nil, http.StatusNotFound)

	var links int64
	s.db.Table("user_roles").Where("user_id = ?", created.ID).Count(&links)
	if links != 0 {
		t.Errorf("role links left: %d", links)
	}
}

func TestDeleteSelfRefused(t *testing.T) {
	s := newTestServer(t)
	res := s.login("admin", "admin123")
	s.fail(http.MethodDelete, fmt.Sprintf("/api/system/user/%d", res.UserInfo.ID), res.Token, nil, http.StatusBadRequest)
	s.fail(http.MethodGet, "/api/system/user/abc", res.Token, nil, http.StatusBadRequest)
}

func TestRoleLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.token("admin")

	var all []model.Role
	s.ok(http.MethodGet, "/api/system/role/all", token, nil, &all)
	if len(all) != 4 || all[0].Code != rbac.RoleSuperAdmin {
		t.Fatalf("all = %+v", all)
	}

	s.fail(http.MethodPost, "/api/system/role", token, map[string]any{"code": "x", "name": "X", "permissions": []string{"bad"}}, http.StatusBadRequest)
	s.fail(http.MethodPost, "/api/system/role", token, map[string]any{"code": rbac.RoleAdmin, "name": "dup"}, http.StatusConflict)
	s.fail(http.MethodPost, "/api/system/role", token, map[string]any{"name": "no code"}, http.StatusBadRequest)

	var role model.Role
	s.ok(http.MethodPost, "/api/system/role", token, map[string]any{
		"code":        "auditor",
		"name":        "审计员",
		"permissions": []string{rbac.AnalyticsReportView, rbac.AnalyticsReportView},
	}, &role)
	if role.Status != model.StatusEnabled || len(role.Permissions) != 1 {
		t.Fatalf("role = %+v", role)
	}

	// 新角色分配给用户后立即生效
	s.ok(http.MethodPut, "/api/system/user/4", token, map[string]any{"roleIds": []uint{role.ID}}, nil)
	auditor := s.login("user", "user123")
	if !slices.Contains(auditor.UserInfo.Permissions, rbac.AnalyticsReportView) {
		t.Fatalf("permissions = %v", auditor.UserInfo.Permissions)
	}
	s.ok(http.MethodGet, "/api/report/list", auditor.Token, nil, nil)

	path := fmt.Sprintf("/api/system/role/%d", role.ID)
	s.fail(http.MethodPut, path, token, map[string]any{"code": "other"}, http.StatusBadRequest)
	var cleared model.Role
	s.ok(http.MethodPut, path, token, map[string]any{"permissions": []string{}}, &cleared)
	if len(cleared.Permissions) != 0 || cleared.Name != "审计员" || cleared.Code != "auditor" {
		t.Fatalf("after update = %+v", cleared)
	}
	s.fail(http.MethodGet, "/api/report/list", auditor.Token, nil, http.StatusForbidden)

	s.fail(http.MethodDelete, path, token, nil, http.StatusBadRequest)
	s.ok(http.MethodPut, "/api/system/user/4", token, map[string]any{"roleIds": []uint{userRoleID}}, nil)
	s.ok(http.MethodDelete, path, token, nil, nil)

	s.fail(http.MethodDelete, fmt.Sprintf("/api/system/role/%d", superAdminRoleID), token, nil, http.StatusBadRequest)
	s.fail(http.MethodDelete, fmt.Sprintf("/api/system/role/%d", adminRoleID), token, nil, http.StatusBadRequest)
}

func TestDisabledRoleLosesPermissions(t *testing.T) {
	s := newTestServer(t)
	editor := s.token("editor")
	s.ok(http.MethodGet, "/api/content/article/list", editor, nil, nil)

	s.ok(http.MethodPut, fmt.Sprintf("/api/system/role/%d", editorRoleID), s.token("admin"), map[string]any{"status": 0}, nil)
	s.fail(http.MethodGet, "/api/content/article/list", editor, nil, http.StatusForbidden)

	var all []model.Role
	s.ok(http.MethodGet, "/api/system/role/all", s.token("admin"), nil, &all)
	if len(all) != 3 {
		t.Errorf("enabled roles = %d", len(all))
	}
}

func TestMenuTree(t *testing.T) {
	s := newTestServer(t)
	token := s.token("admin")

	var tree []model.Menu
	s.ok(http.MethodGet, "/api/system/menu/list", token, nil, &tree)
	if len(tree) != 2 || tree[0].Name != "首页" || len(tree[1].Children) != 4 {
		t.Fatalf("tree = %+v", tree)
	}

	// 父节点被过滤掉时子节点提升为根
	var filtered []model.Menu
	s.ok(http.MethodGet, "/api/system/menu/list?name="+url.QueryEscape("用户"), token, nil, &filtered)
	if len(filtered) != 1 || filtered[0].Name != "用户管理" {
		t.Fatalf("filtered = %+v", filtered)
	}
	var dirs []model.Menu
	s.ok(http.MethodGet, fmt.Sprintf("/api/system/menu/list?type=%d", model.MenuTypeDirectory), token, nil, &dirs)
	if len(dirs) != 2 || len(dirs[1].Children) != 0 {
		t.Fatalf("directories = %+v", dirs)
	}
}

func TestMenuWrites(t *testing.T) {
	s := newTestServer(t)
	token := s.token("admin")

	s.fail(http.MethodPost, "/api/system/menu", token, map[string]any{"name": "x", "parentId": 999}, http.StatusBadRequest)
	s.fail(http.MethodPost, "/api/system/menu", token, map[string]any{"name": "x", "type": 9}, http.StatusBadRequest)

	var btn model.Menu
	s.ok(http.MethodPost, "/api/system/menu", token, map[string]any{
		"name": "新增用户", "parentId": 3, "type": model.MenuTypeButton, "permissions": []string{rbac.SystemUserCreate},
	}, &btn)
	if btn.ParentID != 3 || btn.Status != model.StatusEnabled {
		t.Fatalf("btn = %+v", btn)
	}

	// 不能移到自身或后代之下
	s.fail(http.MethodPut, "/api/system/menu/2", token, map[string]any{"parentId": 2}, http.StatusBadRequest)
	s.fail(http.MethodPut, "/api/system/menu/2", token, map[string]any{"parentId": btn.ID}, http.StatusBadRequest)

	var moved model.Menu
	s.ok(http.MethodPut, fmt.Sprintf("/api/system/menu/%d", btn.ID), token, map[string]any{"parentId": 4, "sort": 5}, &moved)
	if moved.ParentID != 4 || moved.Sort != 5 || moved.Name != "新增用户" {
		t.Fatalf("moved = %+v", moved)
	}

	s.fail(http.MethodDelete, "/api/system/menu/2", token, nil, http.StatusBadRequest)
	s.ok(http.MethodDelete, fmt.Sprintf("/api/system/menu/%d", btn.ID), token, nil, nil)
	s.fail(http.MethodGet, fmt.Sprintf("/api/system/menu/%d", btn.ID), token, nil, http.StatusNotFound)
}

func TestSettings(t *testing.T) {
	s := newTestServer(t)
	token := s.token("admin")

	var settings model.Settings
	s.ok(http.MethodGet, "/api/system/settings", token, nil, &settings)
	if settings.SiteTitle == "" || len(settings.SeoKeywords) == 0 {
		t.Fatalf("settings = %+v", settings)
	}
	title := settings.SiteTitle

	var fromString model.Settings
	s.ok(http.MethodPut, "/api/system/settings", token, map[string]any{"seoKeywords": " Go, gin ,, gorm ", "copyright": "c"}, &fromString)
	if !slices.Equal([]string(fromString.SeoKeywords), []string{"Go", "gin", "gorm"}) {
		t.Errorf("keywords = %v", fromString.SeoKeywords)
	}
	if fromString.SiteTitle != title || fromString.Copyright != "c" {
		t.Errorf("settings = %+v", fromString)
	}

	var fromList model.Settings
	s.ok(http.MethodPut, "/api/system/settings", token, map[string]any{"seoKeywords": []string{"a", " ", "b"}}, &fromList)
	if !slices.Equal([]string(fromList.SeoKeywords), []string{"a", "b"}) || fromList.Copyright != "c" {
		t.Errorf("settings = %+v", fromList)
	}
	s.fail(http.MethodPut, "/api/system/settings", token, map[string]any{"seoKeywords": 5}, http.StatusBadRequest)

	s.fail(http.MethodGet, "/api/system/settings", s.token("editor"), nil, http.StatusForbidden)
}
