// Package seed 写入演示数据，内容与前端开发期的 mock 数据保持一致
package seed

import (
	"fmt"
	"time"

	"admin_backend/internal/model"
	"admin_backend/internal/pkg/rbac"
	"admin_backend/internal/pkg/utils"

	"gorm.io/gorm"
)

const defaultAvatar = "https://wpimg.wallstcn.com/f778738c-e4f8-4870-b634-56703b4acafe.gif"

// Run 角色表为空时写入全部演示数据；已有数据时直接返回
func Run(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Role{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		roles, err := seedRoles(tx)
		if err != nil {
			return fmt.Errorf("seed roles: %w", err)
		}
		users, err := seedUsers(tx, roles)
		if err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		if err := seedMenus(tx); err != nil {
			return fmt.Errorf("seed menus: %w", err)
		}
		if err := tx.Create(DefaultSettings()).Error; err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
		categories, tags, err := seedTaxonomy(tx)
		if err != nil {
			return fmt.Errorf("seed taxonomy: %w", err)
		}
		if err := seedArticles(tx, users, categories, tags); err != nil {
			return fmt.Errorf("seed articles: %w", err)
		}
		if err := seedReports(tx); err != nil {
			return fmt.Errorf("seed reports: %w", err)
		}
		if err := seedActivities(tx, users); err != nil {
			return fmt.Errorf("seed activities: %w", err)
		}
		return nil
	})
}

func day(offset int) time.Time {
	return time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local).AddDate(0, 0, offset)
}

func seedRoles(tx *gorm.DB) (map[string]model.Role, error) {
	names := map[string]string{
		rbac.RoleSuperAdmin: "超级管理员",
		rbac.RoleAdmin:      "管理员",
		rbac.RoleEditor:     "编辑员",
		rbac.RoleUser:       "普通用户",
	}
	out := make(map[string]model.Role)
	for i, code := range rbac.BuiltinRoles() {
		role := model.Role{
			Base:        model.Base{CreatedAt: day(0), UpdatedAt: day(0)},
			Code:        code,
			Name:        names[code],
			Description: rbac.RoleDescriptions[code],
			Permissions: rbac.RolePermissions(code),
			Status:      model.StatusEnabled,
			Sort:        i + 1,
		}
		if err := tx.Create(&role).Error; err != nil {
			return nil, err
		}
		out[code] = role
	}
	return out, nil
}

// DemoAccount 演示账号，密码为明文，写库时哈希
type DemoAccount struct {
	Username   string
	Password   string
	RealName   string
	Role       string
	Department string
	Status     int
}

// DemoAccounts 与登录页提示的账号一致
var DemoAccounts = []DemoAccount{
	{"super_admin", "super_admin123", "超级管理员", rbac.RoleSuperAdmin, "技术部", model.StatusEnabled},
	{"admin", "admin123", "管理员", rbac.RoleAdmin, "技术部", model.StatusEnabled},
	{"editor", "editor123", "编辑员", rbac.RoleEditor, "运营部", model.StatusEnabled},
	{"user", "user123", "普通用户", rbac.RoleUser, "市场部", model.StatusEnabled},
	{"test_user", "test123", "测试用户", rbac.RoleUser, "产品部", model.StatusDisabled},
}

func seedUsers(tx *gorm.DB, roles map[string]model.Role) ([]model.User, error) {
	users := make([]model.User, 0, len(DemoAccounts))
	for i, a := range DemoAccounts {
		hash, err := utils.HashPassword(a.Password)
		if err != nil {
			return nil, err
		}
		u := model.User{
			Base:       model.Base{CreatedAt: day(i), UpdatedAt: day(i)},
			Username:   a.Username,
			Password:   hash,
			RealName:   a.RealName,
			Email:      a.Username + "@example.com",
			Phone:      fmt.Sprintf("1380013800%d", i),
			Avatar:     defaultAvatar,
			Status:     a.Status,
			Department: a.Department,
			Roles:      []model.Role{roles[a.Role]},
		}
		if err := tx.Create(&u).Error; err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func seedMenus(tx *gorm.DB) error {
	type m struct {
		parent    uint
		name      string
		path      string
		component string
		icon      string
		typ       int
		keepAlive bool
		perms     []string
	}
	menus := []m{
		{0, "首页", "/home", "Layout", "ep:home-filled", model.MenuTypeDirectory, true, []string{"dashboard:home:view"}},
		{0, "系统管理", "/system", "Layout", "ep:setting", model.MenuTypeDirectory, true, []string{"system:menu:view"}},
		{2, "用户管理", "/system/user", "system/user/index", "ep:user", model.MenuTypeMenu, true, []string{rbac.SystemUserList, rbac.SystemUserView}},
		{2, "角色管理", "/system/role", "system/role/index", "ep:user-filled", model.MenuTypeMenu, true, []string{rbac.SystemRoleList, rbac.SystemRoleView}},
		{2, "菜单管理", "/system/menu", "system/menu/index", "ep:menu", model.MenuTypeMenu, true, []string{rbac.SystemMenuList, rbac.SystemMenuView}},
		{2, "系统设置", "/system/settings", "system/settings/index", "ep:setting", model.MenuTypeMenu, false, []string{rbac.SystemSettingsView}},
	}
	sortInParent := map[uint]int{}
	for _, x := range menus {
		sortInParent[x.parent]++
		row := model.Menu{
			Base:        model.Base{CreatedAt: day(0), UpdatedAt: day(0)},
			ParentID:    x.parent,
			Name:        x.name,
			Path:        x.path,
			Component:   x.component,
			Icon:        x.icon,
			Type:        x.typ,
			Status:      model.StatusEnabled,
			Sort:        sortInParent[x.parent],
			Permissions: x.perms,
			KeepAlive:   x.keepAlive,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// DefaultSettings 系统设置初始值
func DefaultSettings() *model.Settings {
	return &model.Settings{
		ID:              model.SettingsID,
		SiteTitle:       "Vue3 Admin 企业后台",
		SiteSubtitle:    "高效、灵活的管理系统模板",
		SiteLogo:        "https://dummyimage.com/160x40/409eff/ffffff&text=Vue3+Admin",
		SiteFavicon:     "https://dummyimage.com/32x32/409eff/ffffff&text=V",
		SeoKeywords:     []string{"Vue3", "后台管理", "企业级", "Admin Template"},
		SeoDescription:  "Vue3 Admin 是基于 Vue3 + TypeScript + Element Plus 的企业级后台管理系统模板。",
		SeoAuthor:       "Vue3 Admin 团队",
		Copyright:       "© 2025 Vue3 Admin. All rights reserved.",
		IcpNumber:       "粤ICP备12345678号",
		AnalyticsScript: "<!-- analytics script placeholder -->",
	}
}

var tagColors = []string{"#409eff", "#67c23a", "#e6a23c", "#f56c6c", "#909399", "#00d9ff", "#ff6a00"}

func seedTaxonomy(tx *gorm.DB) ([]model.Category, []model.Tag, error) {
	categories := []model.Category{
		{Name: "前端开发", Slug: "frontend", Description: "前端技术相关文章", Sort: 1},
		{Name: "后端开发", Slug: "backend", Description: "后端技术相关文章", Sort: 2},
		{Name: "数据库", Slug: "database", Description: "数据库技术相关文章", Sort: 3},
		{Name: "运维部署", Slug: "devops", Description: "DevOps和运维相关文章", Sort: 4},
		{Name: "架构设计", Slug: "architecture", Description: "系统架构和设计模式", Sort: 5},
	}
	for i := range categories {
		categories[i].Base = model.Base{CreatedAt: day(0), UpdatedAt: day(0)}
	}
	if err := tx.Create(&categories).Error; err != nil {
		return nil, nil, err
	}

	names := []string{
		"Vue3", "React", "TypeScript", "Node.js", "Python", "Java", "Go", "MySQL",
		"Redis", "MongoDB", "Docker", "Kubernetes", "微服务", "性能优化", "设计模式",
	}
	tags := make([]model.Tag, 0, len(names))
	for i, name := range names {
		tags = append(tags, model.Tag{
			Base:  model.Base{CreatedAt: day(0), UpdatedAt: day(0)},
			Name:  name,
			Slug:  utils.Slugify(name),
			Color: tagColors[i%len(tagColors)],
		})
	}
	if err := tx.Create(&tags).Error; err != nil {
		return nil, nil, err
	}
	return categories, tags, nil
}

var articleTitles = []string{
	"Vue3 + TypeScript 企业级项目实战指南",
	"React Hooks 最佳实践与性能优化",
	"Node.js 微服务架构设计与实现",
	"Python 异步编程完全指南",
	"MySQL 索引优化实战技巧",
	"Redis 缓存设计模式详解",
	"Docker 容器化部署最佳实践",
	"Kubernetes 集群管理与监控",
	"微服务架构下的服务治理",
	"TypeScript 高级类型系统详解",
	"前端性能优化实战总结",
	"设计模式在实际项目中的应用",
	"MongoDB 聚合管道完全指南",
	"Go 并发编程模式与实践",
	"Java Spring Boot 微服务开发",
	"Vue3 Composition API 深入浅出",
	"React Server Components 实战",
	"GraphQL API 设计最佳实践",
	"分布式系统一致性解决方案",
	"WebAssembly 性能优化技术",
}

// ArticleCount 演示文章数量
const ArticleCount = 50

func seedArticles(tx *gorm.DB, users []model.User, categories []model.Category, tags []model.Tag) error {
	// 前四个账号轮流署名
	authors := users[:4]
	for i := 0; i < ArticleCount; i++ {
		category := categories[i%len(categories)]
		author := authors[i%len(authors)]

		status := model.ArticlePublished
		switch {
		case i%5 == 0:
			status = model.ArticleDraft
		case i%7 == 0:
			status = model.ArticleArchived
		}

		title := articleTitles[i%len(articleTitles)]
		if i >= len(articleTitles) {
			title = fmt.Sprintf("%s (第%d部分)", title, i/len(articleTitles)+1)
		}

		// 每篇 2-4 个标签，步长 4 与 15 互质，保证不重复
		n := 2 + i%3
		articleTags := make([]model.Tag, 0, n)
		for k := 0; k < n; k++ {
			articleTags = append(articleTags, tags[(i+4*k)%len(tags)])
		}

		created := day(i)
		var published *time.Time
		if status == model.ArticlePublished {
			p := created.Add(24 * time.Hour)
			published = &p
		}

		a := model.Article{
			Base:         model.Base{CreatedAt: created, UpdatedAt: created.Add(24 * time.Hour)},
			Title:        title,
			Slug:         fmt.Sprintf("article-%d", i+1),
			Summary:      fmt.Sprintf("这是一篇关于%s的文章摘要。本文将详细介绍相关技术要点、最佳实践以及实战经验分享。", title),
			Content:      fmt.Sprintf("# %s\n\n## 引言\n\n这是文章的详细内容...\n\n## 核心概念\n\n这里是核心概念的介绍...\n\n## 实战案例\n\n这里是实战案例的展示...", title),
			Cover:        fmt.Sprintf("https://picsum.photos/seed/%d/800/450", i+1),
			Author:       author.RealName,
			AuthorID:     author.ID,
			CategoryID:   category.ID,
			CategoryName: category.Name,
			Tags:         articleTags,
			Status:       status,
			ViewCount:    int64(100 + (i*7919)%10000),
			LikeCount:    int64(10 + (i*613)%1000),
			CommentCount: int64(1 + (i*37)%100),
			IsTop:        i < 3 && status == model.ArticlePublished,
			IsRecommend:  i < 10 && status == model.ArticlePublished,
			PublishedAt:  published,
		}
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReportCount 演示报表数量
const ReportCount = 25

var reportTypeNames = map[string]string{
	"sales":     "销售报表",
	"user":      "用户报表",
	"content":   "内容报表",
	"visit":     "访问报表",
	"financial": "财务报表",
}

// ReportTypeName 报表类型的中文名
func ReportTypeName(typ string) string {
	if name, ok := reportTypeNames[typ]; ok {
		return name
	}
	return typ
}

func seedReports(tx *gorm.DB) error {
	creators := []string{"张三", "李四", "王五", "赵六", "钱七", "孙八"}
	for i := 1; i <= ReportCount; i++ {
		typ := model.ReportTypes[i%len(model.ReportTypes)]
		format := model.ReportFormats[i%len(model.ReportFormats)]
		status := model.ReportCompleted
		if i%5 == 0 {
			status = model.ReportFailed
		}

		end := day(30 + i)
		start := end.AddDate(0, 0, -(7 + i%21))
		created := end.Add(time.Duration(i%3) * 24 * time.Hour)
		name := fmt.Sprintf("%s - %s月", ReportTypeName(typ), start.Format("2006-01"))

		r := model.Report{
			Base:        model.Base{CreatedAt: created, UpdatedAt: created},
			Name:        name,
			Type:        typ,
			StartDate:   start.Format(time.DateOnly),
			EndDate:     end.Format(time.DateOnly),
			Format:      format,
			Status:      status,
			Creator:     creators[i%len(creators)],
			CreatorID:   uint(i%len(creators)) + 1,
			Description: ReportTypeName(typ) + "统计报告，包含详细的数据分析和图表展示",
			IncludeData: []string{"chart", "table", "summary"},
		}
		if status == model.ReportCompleted {
			r.FileSize = int64(100000 + (i*104729)%1000000)
			r.FilePath = fmt.Sprintf("/reports/%s_%d.%s", typ, i, format)
			r.FileName = utils.SafeFileName(name) + "." + format
			r.DownloadURL = r.FilePath
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedActivities(tx *gorm.DB, users []model.User) error {
	types := []string{model.ActivityPublish, model.ActivityComment, model.ActivityEdit, model.ActivityComment, model.ActivityCreate}
	verbs := map[string]string{
		model.ActivityPublish: "发布了新文章",
		model.ActivityComment: "评论了文章",
		model.ActivityEdit:    "更新了文章",
		model.ActivityCreate:  "创建了文章",
	}
	now := time.Now()
	activities := make([]model.Activity, 0, 30)
	for i := 0; i < 30; i++ {
		typ := types[i%len(types)]
		u := users[i%4]
		activities = append(activities, model.Activity{
			Type:      typ,
			Content:   fmt.Sprintf("%s《%s》", verbs[typ], articleTitles[i%len(articleTitles)]),
			User:      u.RealName,
			UserID:    u.ID,
			CreatedAt: now.Add(-time.Duration(i*150) * time.Minute),
		})
	}
	return tx.Create(&activities).Error
}
