package rbac

import (
	"slices"
	"strings"
)

// ValidCode 校验权限码是否为三段式且每段非空
func ValidCode(code string) bool {
	parts := strings.Split(code, ":")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// match 判断已授予的权限 granted 是否覆盖 code
func match(granted, code string) bool {
	if granted == code || granted == AllPermissions {
		return true
	}
	if !strings.Contains(granted, "*") {
		return false
	}
	g := strings.Split(granted, ":")
	c := strings.Split(code, ":")
	if len(g) != len(c) {
		return false
	}
	for i := range g {
		if g[i] != "*" && g[i] != c[i] {
			return false
		}
	}
	return true
}

// HasPermission 判断权限列表是否包含 code
func HasPermission(granted []string, code string) bool {
	for _, g := range granted {
		if match(g, code) {
			return true
		}
	}
	return false
}

// HasAnyPermission 任意一个满足即可。codes 为空视为无要求。
func HasAnyPermission(granted, codes []string) bool {
	if len(codes) == 0 {
		return true
	}
	for _, code := range codes {
		if HasPermission(granted, code) {
			return true
		}
	}
	return false
}

// HasAllPermissions 必须全部满足
func HasAllPermissions(granted, codes []string) bool {
	for _, code := range codes {
		if !HasPermission(granted, code) {
			return false
		}
	}
	return true
}

// HasAnyRole 任意一个角色匹配即可。required 为空视为无要求。
func HasAnyRole(roles, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if slices.Contains(roles, r) {
			return true
		}
	}
	return false
}

// HasAllRoles 必须拥有全部角色
func HasAllRoles(roles, required []string) bool {
	for _, r := range required {
		if !slices.Contains(roles, r) {
			return false
		}
	}
	return true
}

// IsSuperAdmin admin 与 super_admin 都视为超级管理员，路由不做过滤
func IsSuperAdmin(roles []string) bool {
	return slices.Contains(roles, RoleAdmin) || slices.Contains(roles, RoleSuperAdmin)
}
