package middleware

import (
	"errors"
	"strings"

	"admin_backend/internal/model"
	"admin_backend/internal/pkg/auth"
	"admin_backend/internal/pkg/cache"
	"admin_backend/internal/pkg/errs"
	"admin_backend/internal/pkg/rbac"
	"admin_backend/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	ctxUserID      = "userID"
	ctxUsername    = "username"
	ctxRoles       = "roles"
	ctxPermissions = "permissions"
)

// JWTAuth 鉴权中间件，只接受访问令牌。
// 角色按数据库当前状态解析，账号被删除或禁用后令牌立即失效。
func JWTAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenHeader := c.GetHeader("Authorization")
		if tokenHeader == "" {
			response.Error(c, errs.Unauthenticated("未提供认证 Token"))
			return
		}

		// 支持 "Bearer <token>" 格式
		parts := strings.SplitN(tokenHeader, " ", 2)
		var tokenStr string
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenStr = strings.TrimSpace(parts[1])
		} else {
			tokenStr = tokenHeader
		}

		claims, err := auth.ParseToken(tokenStr, auth.AccessToken)
		if err != nil {
			response.Error(c, errs.Unauthenticated("Token 无效或已过期"))
			return
		}

		var user model.User
		if err := db.Select("id, username, status").Preload("Roles").First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.Error(c, errs.Unauthenticated("用户不存在"))
				return
			}
			response.Error(c, err)
			return
		}
		if !user.Enabled() {
			response.Error(c, errs.Unauthenticated("账号已被禁用"))
			return
		}

		// 将用户信息存入上下文，后续 Handler 可用
		c.Set(ctxUserID, user.ID)
		c.Set(ctxUsername, user.Username)
		c.Set(ctxRoles, user.RoleCodes())

		c.Next()
	}
}

// RequirePermission 拥有任意一个权限码即可放行
func RequirePermission(codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rbac.HasAnyPermission(Permissions(c), codes) {
			response.Error(c, errs.PermissionDenied("没有权限访问该资源"))
			return
		}
		c.Next()
	}
}

// UserID 当前登录用户 ID，未登录为 0
func UserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// Username 当前登录用户名
func Username(c *gin.Context) string {
	return c.GetString(ctxUsername)
}

// Roles 当前用户的角色编码
func Roles(c *gin.Context) []string {
	return c.GetStringSlice(ctxRoles)
}

// Permissions 当前用户的权限，按角色从缓存解析，单次请求内复用
func Permissions(c *gin.Context) []string {
	if v, ok := c.Get(ctxPermissions); ok {
		return v.([]string)
	}
	perms := cache.GlobalPermissions.Permissions(Roles(c))
	c.Set(ctxPermissions, perms)
	return perms
}

// HasPermission 供 handler 内部做细粒度判断
func HasPermission(c *gin.Context, code string) bool {
	return rbac.HasPermission(Permissions(c), code)
}
