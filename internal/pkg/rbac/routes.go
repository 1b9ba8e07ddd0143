package rbac

import "slices"

// RouteMeta 路由元信息。Roles 优先于 Permissions，两者都为空表示不限制。
type RouteMeta struct {
	Title       string   `json:"title"`
	Icon        string   `json:"icon,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Hidden      bool     `json:"hidden,omitempty"`
}

// Route 前端动态路由节点
type Route struct {
	Path      string    `json:"path"`
	Name      string    `json:"name,omitempty"`
	Component string    `json:"component"`
	Redirect  string    `json:"redirect,omitempty"`
	Meta      RouteMeta `json:"meta"`
	Children  []Route   `json:"children,omitempty"`
}

const layoutComponent = "Layout"

// AsyncRoutes 需要按权限下发的路由表
func AsyncRoutes() []Route {
	return []Route{
		{
			Path:      "/system",
			Component: layoutComponent,
			Redirect:  "/system/user",
			Meta: RouteMeta{
				Title: "系统管理",
				Icon:  "i-ep-setting",
				Roles: []string{RoleAdmin, RoleSuperAdmin},
			},
			Children: []Route{
				{Path: "user", Name: "SystemUser", Component: "system/user/index",
					Meta: RouteMeta{Title: "用户管理", Icon: "i-ep-user", Permissions: []string{SystemUserList}}},
				{Path: "role", Name: "SystemRole", Component: "system/role/index",
					Meta: RouteMeta{Title: "角色管理", Icon: "i-ep-avatar", Permissions: []string{SystemRoleList}}},
				{Path: "menu", Name: "SystemMenu", Component: "system/menu/index",
					Meta: RouteMeta{Title: "菜单管理", Icon: "i-ep-menu", Permissions: []string{SystemMenuList}}},
				{Path: "settings", Name: "SystemSettings", Component: "system/settings/index",
					Meta: RouteMeta{Title: "系统设置", Icon: "i-ep-setting", Permissions: []string{SystemSettingsView}}},
			},
		},
		{
			Path:      "/content",
			Component: layoutComponent,
			Redirect:  "/content/article",
			Meta: RouteMeta{
				Title: "内容管理",
				Icon:  "i-ep-document",
				Roles: []string{RoleAdmin, RoleEditor},
			},
			Children: []Route{
				{Path: "article", Name: "ContentArticle", Component: "content/article/index",
					Meta: RouteMeta{Title: "文章管理", Icon: "i-ep-reading", Permissions: []string{ContentArticleList}}},
				{Path: "category", Name: "ContentCategory", Component: "content/category/index",
					Meta: RouteMeta{Title: "分类管理", Icon: "i-ep-collection-tag", Permissions: []string{ContentCategoryList}}},
				{Path: "tag", Name: "ContentTag", Component: "content/tag/index",
					Meta: RouteMeta{Title: "标签管理", Icon: "i-ep-price-tag", Permissions: []string{ContentTagList}}},
			},
		},
		{
			Path:      "/analytics",
			Component: layoutComponent,
			Redirect:  "/analytics/overview",
			Meta: RouteMeta{
				Title: "数据分析",
				Icon:  "i-ep-data-analysis",
				Roles: []string{RoleAdmin, RoleAnalyst},
			},
			Children: []Route{
				{Path: "overview", Name: "AnalyticsOverview", Component: "analytics/overview/index",
					Meta: RouteMeta{Title: "数据概览", Icon: "i-ep-data-line", Permissions: []string{AnalyticsOverviewView}}},
				{Path: "report", Name: "AnalyticsReport", Component: "analytics/report/index",
					Meta: RouteMeta{Title: "报表管理", Icon: "i-ep-document-checked", Permissions: []string{AnalyticsReportView}}},
			},
		},
		{
			Path:      "/profile",
			Component: layoutComponent,
			Redirect:  "/profile/index",
			Meta:      RouteMeta{Title: "个人中心", Icon: "i-ep-user", Hidden: true},
			Children: []Route{
				{Path: "index", Name: "Profile", Component: "profile/index",
					Meta: RouteMeta{Title: "个人信息", Icon: "i-ep-user"}},
			},
		},
	}
}

// allowed 单个节点的访问判断，不含超级管理员放行
func allowed(meta RouteMeta, roles, perms []string) bool {
	if len(meta.Roles) > 0 {
		return HasAnyRole(roles, meta.Roles)
	}
	if len(meta.Permissions) > 0 {
		return HasAnyPermission(perms, meta.Permissions)
	}
	return true
}

// CanAccessRoute 判断当前角色与权限能否访问单个路由
func CanAccessRoute(r Route, roles, perms []string) bool {
	if IsSuperAdmin(roles) {
		return true
	}
	return allowed(r.Meta, roles, perms)
}

// FilterRoutes 递归过滤路由树，返回深拷贝，不修改入参。
// 子路由被全部过滤掉的目录节点同样移除。
func FilterRoutes(routes []Route, roles, perms []string) []Route {
	if IsSuperAdmin(roles) {
		return cloneRoutes(routes)
	}
	return filter(routes, roles, perms)
}

func filter(routes []Route, roles, perms []string) []Route {
	out := make([]Route, 0, len(routes))
	for _, r := range routes {
		if !allowed(r.Meta, roles, perms) {
			continue
		}
		node := cloneRoute(r)
		if len(r.Children) > 0 {
			node.Children = filter(r.Children, roles, perms)
			if len(node.Children) == 0 {
				continue
			}
		}
		out = append(out, node)
	}
	return out
}

func cloneRoutes(routes []Route) []Route {
	out := make([]Route, 0, len(routes))
	for _, r := range routes {
		node := cloneRoute(r)
		node.Children = nil
		if len(r.Children) > 0 {
			node.Children = cloneRoutes(r.Children)
		}
		out = append(out, node)
	}
	return out
}

func cloneRoute(r Route) Route {
	r.Meta.Roles = slices.Clone(r.Meta.Roles)
	r.Meta.Permissions = slices.Clone(r.Meta.Permissions)
	r.Children = nil
	return r
}
