package handler

import (
	"admin_backend/internal/pkg/middleware"
	"admin_backend/internal/pkg/rbac"
	"admin_backend/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewRouter 注册全部路由
func NewRouter(db *gorm.DB, queue ReportQueue, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	r.GET("/ping", func(c *gin.Context) { response.OK(c, "pong") })

	api := r.Group("/api")

	// === 认证 ===
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", Login(db))
		authGroup.POST("/refresh-token", RefreshToken(db))
	}

	authorized := api.Group("/")
	authorized.Use(middleware.JWTAuth(db))

	{
		me := authorized.Group("/auth")
		me.GET("/user-info", GetUserInfo(db))
		me.POST("/logout", Logout(db))
		me.GET("/routes", GetRoutes())
		me.PUT("/profile", UpdateProfile(db))
		me.PUT("/password", ChangePassword(db))
	}

	perm := middleware.RequirePermission

	// === 系统管理 ===
	system := authorized.Group("/system")
	{
		users := system.Group("/user")
		users.GET("/list", perm(rbac.SystemUserList), ListUsers(db))
		users.GET("/:id", perm(rbac.SystemUserView, rbac.SystemUserList), GetUser(db))
		users.POST("", perm(rbac.SystemUserCreate), CreateUser(db))
		users.PUT("/:id", perm(rbac.SystemUserEdit), UpdateUser(db))
		users.PUT("/:id/password", perm(rbac.SystemUserEdit), ResetUserPassword(db))
		users.DELETE("/:id", perm(rbac.SystemUserDelete), DeleteUser(db))

		roles := system.Group("/role")
		roles.GET("/list", perm(rbac.SystemRoleList), ListRoles(db))
		// 用户表单的角色下拉也会用到
		roles.GET("/all", perm(rbac.SystemRoleList, rbac.SystemUserCreate, rbac.SystemUserEdit), AllRoles(db))
		roles.GET("/:id", perm(rbac.SystemRoleView, rbac.SystemRoleList), GetRole(db))
		roles.POST("", perm(rbac.SystemRoleCreate), CreateRole(db))
		roles.PUT("/:id", perm(rbac.SystemRoleEdit), UpdateRole(db))
		roles.DELETE("/:id", perm(rbac.SystemRoleDelete), DeleteRole(db))

		menus := system.Group("/menu")
		menus.GET("/list", perm(rbac.SystemMenuList), ListMenus(db))
		menus.GET("/:id", perm(rbac.SystemMenuView, rbac.SystemMenuList), GetMenu(db))
		menus.POST("", perm(rbac.SystemMenuCreate), CreateMenu(db))
		menus.PUT("/:id", perm(rbac.SystemMenuEdit), UpdateMenu(db))
		menus.DELETE("/:id", perm(rbac.SystemMenuDelete), DeleteMenu(db))

		system.GET("/settings", perm(rbac.SystemSettingsView), GetSettings(db))
		system.PUT("/settings", perm(rbac.SystemSettingsEdit), UpdateSettings(db))
	}

	// === 内容管理 ===
	content := authorized.Group("/content")
	{
		articles := content.Group("/article")
		articles.GET("/list", perm(rbac.ContentArticleList), ListArticles(db))
		articles.GET("/statistics", perm(rbac.ContentArticleList), GetArticleStatistics(db))
		articles.GET("/:id", perm(rbac.ContentArticleView, rbac.ContentArticleList), GetArticle(db))
		articles.POST("", perm(rbac.ContentArticleCreate), CreateArticle(db))
		articles.PUT("/:id", perm(rbac.ContentArticleEdit), UpdateArticle(db))
		articles.PUT("/:id/status", perm(rbac.ContentArticlePublish), UpdateArticleStatus(db))
		articles.DELETE("/batch", perm(rbac.ContentArticleDelete), BatchDeleteArticles(db))
		articles.DELETE("/:id", perm(rbac.ContentArticleDelete), DeleteArticle(db))

		categories := content.Group("/category")
		categories.GET("/list", perm(rbac.ContentCategoryList), ListCategories(db))
		categories.GET("/all", perm(rbac.ContentCategoryList, rbac.ContentArticleCreate, rbac.ContentArticleEdit), AllCategories(db))
		categories.GET("/:id", perm(rbac.ContentCategoryView, rbac.ContentCategoryList), GetCategory(db))
		categories.POST("", perm(rbac.ContentCategoryCreate), CreateCategory(db))
		categories.PUT("/:id", perm(rbac.ContentCategoryEdit), UpdateCategory(db))
		categories.DELETE("/:id", perm(rbac.ContentCategoryDelete), DeleteCategory(db))

		tags := content.Group("/tag")
		tags.GET("/list", perm(rbac.ContentTagList), ListTags(db))
		tags.GET("/all", perm(rbac.ContentTagList, rbac.ContentArticleCreate, rbac.ContentArticleEdit), AllTags(db))
		tags.GET("/:id", perm(rbac.ContentTagView, rbac.ContentTagList), GetTag(db))
		tags.POST("", perm(rbac.ContentTagCreate), CreateTag(db))
		tags.PUT("/:id", perm(rbac.ContentTagEdit), UpdateTag(db))
		tags.DELETE("/batch", perm(rbac.ContentTagDelete), BatchDeleteTags(db))
		tags.DELETE("/:id", perm(rbac.ContentTagDelete), DeleteTag(db))
	}

	// === 报表 ===
	reports := authorized.Group("/report")
	{
		reports.GET("/list", perm(rbac.AnalyticsReportView), ListReports(db))
		reports.GET("/statistics", perm(rbac.AnalyticsReportView), GetReportStatistics(db))
		reports.GET("/:id", perm(rbac.AnalyticsReportView), GetReport(db))
		reports.POST("", perm(rbac.AnalyticsReportExport), CreateReport(db, queue))
		reports.POST("/:id/regenerate", perm(rbac.AnalyticsReportExport), RegenerateReport(db, queue))
		reports.DELETE("/batch", perm(rbac.AnalyticsReportExport), BatchDeleteReports(db))
		reports.DELETE("/:id", perm(rbac.AnalyticsReportExport), DeleteReport(db))
		reports.GET("/:id/download", perm(rbac.AnalyticsReportExport), DownloadReport(db))
	}

	// === 数据分析 ===
	analytics := authorized.Group("/analytics", perm(rbac.AnalyticsOverviewView))
	{
		analytics.GET("/overview", GetOverview(db))
		analytics.GET("/user/statistics", GetUserStatistics(db))
		analytics.GET("/user/list", ListUserActivity(db))
		analytics.GET("/trend", GetTrend(db))
		analytics.GET("/content/hot", GetHotContent(db))
		analytics.GET("/activities", GetActivities(db))
		analytics.GET("/department/statistics", GetDepartmentStatistics(db))
	}

	return r
}
