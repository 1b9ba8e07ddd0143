package cache

import (
	"slices"
	"sync"
	"testing"

	"admin_backend/internal/database"
	"admin_backend/internal/model"
	"admin_backend/internal/pkg/rbac"
)

func TestPermissionsFallBackToDefaults(t *testing.T) {
	c := NewPermissionCache()
	got := c.Permissions([]string{rbac.RoleEditor})
	if !slices.Equal(got, rbac.RolePermissions(rbac.RoleEditor)) {
		t.Fatalf("got %v", got)
	}
}

func TestReloadFromDatabase(t *testing.T) {
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	roles := []model.Role{
		{Code: "auditor", Name: "审计", Permissions: []string{rbac.AnalyticsReportView}, Status: model.StatusEnabled},
		{Code: rbac.RoleEditor, Name: "编辑", Permissions: []string{rbac.ContentArticleList}, Status: model.StatusDisabled},
	}
	if err := db.Create(&roles).Error; err != nil {
		t.Fatal(err)
	}

	c := NewPermissionCache()
	if err := c.Reload(db); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := c.Permissions([]string{"auditor"}); !slices.Equal(got, []string{rbac.AnalyticsReportView}) {
		t.Fatalf("auditor = %v", got)
	}
	// 数据库里禁用的角色不回落到默认权限
	if got := c.Permissions([]string{rbac.RoleEditor}); len(got) != 0 {
		t.Fatalf("disabled editor = %v", got)
	}
	merged := c.Permissions([]string{"auditor", rbac.RoleUser})
	if !rbac.HasPermission(merged, rbac.AnalyticsReportView) || !rbac.HasPermission(merged, rbac.ContentTagList) {
		t.Fatalf("merged = %v", merged)
	}
}

func TestReloadConcurrentWithReads(t *testing.T) {
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	ops := model.Role{Code: "ops", Name: "运维", Permissions: []string{rbac.SystemMenuList}, Status: model.StatusEnabled}
	if err := db.Create(&ops).Error; err != nil {
		t.Fatal(err)
	}

	c := NewPermissionCache()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := c.Reload(db); err != nil {
				t.Error(err)
			}
		}()
		go func() {
			defer wg.Done()
			_ = c.Permissions([]string{"ops", rbac.RoleUser})
		}()
	}
	wg.Wait()

	if got := c.Permissions([]string{"ops"}); !slices.Equal(got, []string{rbac.SystemMenuList}) {
		t.Fatalf("got %v", got)
	}
	// 未入库的角色回落到内置默认值，未知角色为空
	if got := c.Permissions([]string{"nobody"}); len(got) != 0 {
		t.Fatalf("unknown role = %v", got)
	}
}
