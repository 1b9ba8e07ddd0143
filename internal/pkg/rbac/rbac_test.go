package rbac

import (
	"slices"
	"testing"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name    string
		granted []string
		code    string
		want    bool
	}{
		{"exact", []string{SystemUserList}, SystemUserList, true},
		{"missing", []string{SystemUserList}, SystemUserDelete, false},
		{"wildcard all", []string{AllPermissions}, ContentArticlePublish, true},
		{"segment wildcard", []string{"content:*:view"}, ContentTagView, true},
		{"segment wildcard mismatch", []string{"content:*:view"}, ContentTagEdit, false},
		{"resource wildcard", []string{"system:user:*"}, SystemUserDelete, true},
		{"different length", []string{"system:*"}, SystemUserList, false},
		{"empty grant", nil, SystemUserList, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPermission(tt.granted, tt.code); got != tt.want {
				t.Fatalf("HasPermission(%v, %q) = %v", tt.granted, tt.code, got)
			}
		})
	}
}

func TestAnyAllPermissions(t *testing.T) {
	granted := RolePermissions(RoleEditor)
	if !HasAnyPermission(granted, []string{SystemUserList, ContentArticleList}) {
		t.Fatal("editor should match article list")
	}
	if HasAnyPermission(granted, []string{SystemUserList}) {
		t.Fatal("editor should not list users")
	}
	if !HasAnyPermission(granted, nil) {
		t.Fatal("no requirement means allowed")
	}
	if HasAllPermissions(granted, []string{ContentArticleEdit, ContentArticlePublish}) {
		t.Fatal("editor cannot publish")
	}
	if !HasAllPermissions(RolePermissions(RoleAdmin), []string{ContentArticleEdit, ContentArticlePublish}) {
		t.Fatal("admin can edit and publish")
	}
}

func TestRoleChecks(t *testing.T) {
	roles := []string{RoleEditor, RoleAnalyst}
	if !HasAnyRole(roles, []string{RoleAdmin, RoleAnalyst}) {
		t.Fatal("expected any match")
	}
	if HasAllRoles(roles, []string{RoleEditor, RoleAdmin}) {
		t.Fatal("unexpected all match")
	}
	if !HasAllRoles(roles, nil) || !HasAnyRole(roles, nil) {
		t.Fatal("empty requirement is satisfied")
	}
	if IsSuperAdmin(roles) || !IsSuperAdmin([]string{RoleAdmin}) || !IsSuperAdmin([]string{RoleSuperAdmin}) {
		t.Fatal("super admin detection")
	}
}

func TestMergePermissionsDedups(t *testing.T) {
	merged := MergePermissions([]string{RoleEditor, RoleUser, "ghost"})
	seen := map[string]bool{}
	for _, p := range merged {
		if seen[p] {
			t.Fatalf("duplicate %s", p)
		}
		seen[p] = true
	}
	if len(merged) != len(RolePermissions(RoleEditor)) {
		t.Fatalf("user perms are a subset of editor, got %d", len(merged))
	}
}

func TestRolePermissionsReturnsCopy(t *testing.T) {
	p := RolePermissions(RoleUser)
	p[0] = "hacked"
	if RolePermissions(RoleUser)[0] == "hacked" {
		t.Fatal("default map mutated through returned slice")
	}
	if len(RolePermissions("nobody")) != 0 {
		t.Fatal("unknown role should have no permissions")
	}
}

func TestValidCode(t *testing.T) {
	for code, want := range map[string]bool{
		SystemUserList: true,
		AllPermissions: true,
		"system:user":  false,
		"a::b":         false,
		"":             false,
	} {
		if ValidCode(code) != want {
			t.Errorf("ValidCode(%q) != %v", code, want)
		}
	}
}

func TestFilterRoutes(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		perms []string
		want  []string
	}{
		{
			name:  "editor sees content and profile",
			roles: []string{RoleEditor},
			perms: RolePermissions(RoleEditor),
			want: []string{
				"/content", "/content/article", "/content/category", "/content/tag",
				"/profile", "/profile/index",
			},
		},
		{
			name:  "plain user sees profile only",
			roles: []string{RoleUser},
			perms: RolePermissions(RoleUser),
			want:  []string{"/profile", "/profile/index"},
		},
		{
			name:  "analyst limited by child permission",
			roles: []string{RoleAnalyst},
			perms: []string{AnalyticsOverviewView},
			want:  []string{"/analytics", "/analytics/overview", "/profile", "/profile/index"},
		},
		{
			name:  "directory with no visible children is dropped",
			roles: []string{RoleAnalyst},
			perms: nil,
			want:  []string{"/profile", "/profile/index"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flatten(FilterRoutes(AsyncRoutes(), tt.roles, tt.perms))
			if !slices.Equal(got, tt.want) {
				t.Fatalf("got %v\nwant %v", got, tt.want)
			}
		})
	}
}

func TestFilterRoutesSuperAdminGetsEverything(t *testing.T) {
	all := flatten(AsyncRoutes())
	for _, role := range []string{RoleAdmin, RoleSuperAdmin} {
		got := flatten(FilterRoutes(AsyncRoutes(), []string{role}, nil))
		if !slices.Equal(got, all) {
			t.Fatalf("%s: got %v", role, got)
		}
	}
}

func TestFilterRoutesDoesNotMutateInput(t *testing.T) {
	src := AsyncRoutes()
	out := FilterRoutes(src, []string{RoleSuperAdmin}, nil)
	out[0].Meta.Roles[0] = "changed"
	out[0].Children[0].Meta.Title = "changed"

	if src[0].Meta.Roles[0] == "changed" || src[0].Children[0].Meta.Title == "changed" {
		t.Fatal("filter result shares memory with input")
	}

	before := len(src[1].Children)
	_ = FilterRoutes(src, []string{RoleUser}, RolePermissions(RoleUser))
	if len(src[1].Children) != before {
		t.Fatal("input children were trimmed")
	}
}

func TestCanAccessRoute(t *testing.T) {
	system := AsyncRoutes()[0]
	if CanAccessRoute(system, []string{RoleEditor}, RolePermissions(RoleEditor)) {
		t.Fatal("editor must not access system")
	}
	if !CanAccessRoute(system, []string{RoleSuperAdmin}, nil) {
		t.Fatal("super admin bypass")
	}
	// 配置了角色时不再看权限
	if CanAccessRoute(system, []string{RoleUser}, []string{AllPermissions}) {
		t.Fatal("roles take precedence over permissions")
	}
}

// flatten 展开为完整路径列表，子路径相对父路径拼接
func flatten(routes []Route) []string {
	var out []string
	var walk func(prefix string, rs []Route)
	walk = func(prefix string, rs []Route) {
		for _, r := range rs {
			full := r.Path
			if prefix != "" && len(full) > 0 && full[0] != '/' {
				full = prefix + "/" + full
			}
			out = append(out, full)
			walk(full, r.Children)
		}
	}
	walk("", routes)
	return out
}
