// Package rbac 角色、权限码与路由过滤。
//
// 权限码格式为 "域:资源:操作"，例如 "system:user:list"。
// "*:*:*" 表示全部权限，任一段为 "*" 时匹配该段的任意值。
package rbac

// 内置角色编码
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleEditor     = "editor"
	RoleUser       = "user"
	RoleAnalyst    = "analyst"
)

// AllPermissions 通配权限
const AllPermissions = "*:*:*"

// 系统管理
const (
	SystemUserList   = "system:user:list"
	SystemUserCreate = "system:user:create"
	SystemUserEdit   = "system:user:edit"
	SystemUserDelete = "system:user:delete"
	SystemUserView   = "system:user:view"

	SystemRoleList   = "system:role:list"
	SystemRoleCreate = "system:role:create"
	SystemRoleEdit   = "system:role:edit"
	SystemRoleDelete = "system:role:delete"
	SystemRoleView   = "system:role:view"

	SystemMenuList   = "system:menu:list"
	SystemMenuCreate = "system:menu:create"
	SystemMenuEdit   = "system:menu:edit"
	SystemMenuDelete = "system:menu:delete"
	SystemMenuView   = "system:menu:view"

	SystemSettingsView = "system:settings:view"
	SystemSettingsEdit = "system:settings:edit"
)

// 内容管理
const (
	ContentArticleList    = "content:article:list"
	ContentArticleCreate  = "content:article:create"
	ContentArticleEdit    = "content:article:edit"
	ContentArticleDelete  = "content:article:delete"
	ContentArticleView    = "content:article:view"
	ContentArticlePublish = "content:article:publish"

	ContentCategoryList   = "content:category:list"
	ContentCategoryCreate = "content:category:create"
	ContentCategoryEdit   = "content:category:edit"
	ContentCategoryDelete = "content:category:delete"
	ContentCategoryView   = "content:category:view"

	ContentTagList   = "content:tag:list"
	ContentTagCreate = "content:tag:create"
	ContentTagEdit   = "content:tag:edit"
	ContentTagDelete = "content:tag:delete"
	ContentTagView   = "content:tag:view"
)

// 数据分析
const (
	AnalyticsOverviewView = "analytics:overview:view"
	AnalyticsReportView   = "analytics:report:view"
	AnalyticsReportExport = "analytics:report:export"
)

var adminPermissions = []string{
	SystemUserList, SystemUserCreate, SystemUserEdit, SystemUserDelete, SystemUserView,
	SystemRoleList, SystemRoleCreate, SystemRoleEdit, SystemRoleDelete, SystemRoleView,
	SystemMenuList, SystemMenuCreate, SystemMenuEdit, SystemMenuDelete, SystemMenuView,
	SystemSettingsView, SystemSettingsEdit,

	ContentArticleList, ContentArticleCreate, ContentArticleEdit, ContentArticleDelete,
	ContentArticleView, ContentArticlePublish,
	ContentCategoryList, ContentCategoryCreate, ContentCategoryEdit, ContentCategoryDelete,
	ContentCategoryView,
	ContentTagList, ContentTagCreate, ContentTagEdit, ContentTagDelete, ContentTagView,

	AnalyticsOverviewView, AnalyticsReportView, AnalyticsReportExport,
}

// defaultRolePermissions 内置角色的默认权限，角色表为空或缺失时使用
var defaultRolePermissions = map[string][]string{
	RoleSuperAdmin: {AllPermissions},
	RoleAdmin:      adminPermissions,
	RoleEditor: {
		ContentArticleList, ContentArticleCreate, ContentArticleEdit, ContentArticleView,
		ContentCategoryList, ContentCategoryView,
		ContentTagList, ContentTagView,
		AnalyticsOverviewView,
	},
	RoleUser: {
		ContentArticleList, ContentArticleView,
		ContentCategoryList, ContentCategoryView,
		ContentTagList, ContentTagView,
	},
}

// RoleDescriptions 内置角色说明
var RoleDescriptions = map[string]string{
	RoleSuperAdmin: "超级管理员，拥有系统所有权限",
	RoleAdmin:      "管理员，拥有系统管理和内容管理权限",
	RoleEditor:     "编辑员，主要负责内容的编辑和管理",
	RoleUser:       "普通用户，拥有基础的查看权限",
}

// BuiltinRoles 内置角色，按排序
func BuiltinRoles() []string {
	return []string{RoleSuperAdmin, RoleAdmin, RoleEditor, RoleUser}
}

// RolePermissions 内置角色的默认权限副本，未知角色返回空
func RolePermissions(role string) []string {
	perms := defaultRolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// MergePermissions 合并多个角色的默认权限并去重，保持首次出现的顺序
func MergePermissions(roles []string) []string {
	lists := make([][]string, 0, len(roles))
	for _, r := range roles {
		lists = append(lists, defaultRolePermissions[r])
	}
	return Union(lists...)
}

// Union 合并多个权限列表并去重
func Union(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, list := range lists {
		for _, p := range list {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
