package handler

import (
	"errors"
	"time"

	"admin_backend/internal/dto"
	"admin_backend/internal/model"
	"admin_backend/internal/pkg/auth"
	"admin_backend/internal/pkg/cache"
	"admin_backend/internal/pkg/errs"
	"admin_backend/internal/pkg/middleware"
	"admin_backend/internal/pkg/rbac"
	"admin_backend/internal/pkg/response"
	"admin_backend/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const minPasswordLen = 6

type tokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Expire       int64  `json:"expire"`
}

// issueTokens 签发一对令牌并记录刷新令牌
func issueTokens(db *gorm.DB, user model.User) (tokenPair, error) {
	access, err := auth.GenerateAccessToken(user.ID, user.Username, user.RoleCodes())
	if err != nil {
		return tokenPair{}, err
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return tokenPair{}, err
	}
	record := model.RefreshToken{ID: refresh.ID, UserID: user.ID, ExpiresAt: refresh.ExpiresAt}
	if err := db.Create(&record).Error; err != nil {
		return tokenPair{}, err
	}
	return tokenPair{
		Token:        access.Value,
		RefreshToken: refresh.Value,
		Expire:       access.ExpiresAt.UnixMilli(),
	}, nil
}

// revokeRefreshTokens 吊销用户全部刷新令牌
func revokeRefreshTokens(db *gorm.DB, userID uint) error {
	return db.Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

// loadActiveUser 读取当前用户，已删除或禁用视为未登录
func loadActiveUser(db *gorm.DB, id uint) (model.User, error) {
	var user model.User
	if err := db.Preload("Roles").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, errs.Unauthenticated("用户不存在")
		}
		return user, err
	}
	if !user.Enabled() {
		return user, errs.Unauthenticated("账号已被禁用")
	}
	return user, nil
}

func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}

		var user model.User
		err := db.Preload("Roles").Where("username = ?", req.Username).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, errs.Unauthenticated("用户名或密码错误"))
			return
		}
		if err != nil {
			response.Error(c, err)
			return
		}
		if !utils.CheckPassword(req.Password, user.Password) {
			response.Error(c, errs.Unauthenticated("用户名或密码错误"))
			return
		}
		if !user.Enabled() {
			response.Error(c, errs.PermissionDenied("账号已被禁用"))
			return
		}

		now := time.Now()
		if err := db.Model(&model.User{}).Where("id = ?", user.ID).UpdateColumn("last_login_time", now).Error; err != nil {
			response.Error(c, err)
			return
		}
		user.LastLoginTime = &now

		pair, err := issueTokens(db, user)
		if err != nil {
			response.Error(c, errs.Internal("Token生成失败", err))
			return
		}

		perms := cache.GlobalPermissions.Permissions(user.RoleCodes())
		response.OKWithMessage(c, "登录成功", gin.H{
			"token":        pair.Token,
			"refreshToken": pair.RefreshToken,
			"expire":       pair.Expire,
			"userInfo":     dto.ToUserInfoDTO(user, perms),
		})
	}
}

func GetUserInfo(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := loadActiveUser(db, middleware.UserID(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		perms := cache.GlobalPermissions.Permissions(user.RoleCodes())
		response.OKWithMessage(c, "获取成功", dto.ToUserInfoDTO(user, perms))
	}
}

func Logout(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := revokeRefreshTokens(db, middleware.UserID(c)); err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "登出成功", nil)
	}
}

// RefreshToken 轮换刷新令牌：旧令牌作废，签发新的一对
func RefreshToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refreshToken" binding:"required"`
		}
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}

		invalid := errs.Unauthenticated("Refresh Token 无效")
		claims, err := auth.ParseToken(req.RefreshToken, auth.RefreshToken)
		if err != nil {
			response.Error(c, invalid)
			return
		}

		var pair tokenPair
		err = db.Transaction(func(tx *gorm.DB) error {
			// 条件更新保证同一个令牌只能使用一次
			res := tx.Model(&model.RefreshToken{}).
				Where("id = ? AND user_id = ? AND revoked = ?", claims.ID, claims.UserID, false).
				Update("revoked", true)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return invalid
			}

			user, err := loadActiveUser(tx, claims.UserID)
			if err != nil {
				return err
			}
			pair, err = issueTokens(tx, user)
			return err
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "刷新成功", pair)
	}
}

// GetRoutes 按当前用户的角色与权限过滤动态路由
func GetRoutes() gin.HandlerFunc {
	return func(c *gin.Context) {
		routes := rbac.FilterRoutes(rbac.AsyncRoutes(), middleware.Roles(c), middleware.Permissions(c))
		if routes == nil {
			routes = []rbac.Route{}
		}
		response.OK(c, routes)
	}
}

func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RealName *string `json:"realName"`
			Email    *string `json:"email"`
			Phone    *string `json:"phone"`
			Avatar   *string `json:"avatar"`
		}
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}

		user, err := loadActiveUser(db, middleware.UserID(c))
		if err != nil {
			response.Error(c, err)
			return
		}

		updates := map[string]any{}
		if req.RealName != nil {
			updates["real_name"] = *req.RealName
		}
		if req.Email != nil {
			updates["email"] = *req.Email
		}
		if req.Phone != nil {
			updates["phone"] = *req.Phone
		}
		if req.Avatar != nil {
			updates["avatar"] = *req.Avatar
		}
		if len(updates) > 0 {
			if err := db.Model(&model.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
				response.Error(c, err)
				return
			}
			if user, err = loadActiveUser(db, user.ID); err != nil {
				response.Error(c, err)
				return
			}
		}

		perms := cache.GlobalPermissions.Permissions(user.RoleCodes())
		response.OKWithMessage(c, "更新成功", dto.ToUserInfoDTO(user, perms))
	}
}

func ChangePassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			OldPassword string `json:"oldPassword" binding:"required"`
			NewPassword string `json:"newPassword" binding:"required"`
		}
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if len(req.NewPassword) < minPasswordLen {
			response.Error(c, errs.InvalidArgument("新密码至少 6 位"))
			return
		}

		user, err := loadActiveUser(db, middleware.UserID(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		if !utils.CheckPassword(req.OldPassword, user.Password) {
			response.Error(c, errs.InvalidArgument("原密码错误"))
			return
		}

		if err := setPassword(db, user.ID, req.NewPassword); err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "密码修改成功", nil)
	}
}

// setPassword 更新密码并吊销刷新令牌
func setPassword(db *gorm.DB, userID uint, plain string) error {
	hash, err := utils.HashPassword(plain)
	if err != nil {
		return errs.Internal("密码加密失败", err)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", userID).Update("password", hash).Error; err != nil {
			return err
		}
		return revokeRefreshTokens(tx, userID)
	})
}
