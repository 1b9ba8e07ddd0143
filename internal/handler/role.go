package handler

import (
	"log"
	"strings"

	"admin_backend/internal/model"
	"admin_backend/internal/pkg/cache"
	"admin_backend/internal/pkg/errs"
	"admin_backend/internal/pkg/rbac"
	"admin_backend/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type roleListQuery struct {
	PageQuery
	Name   string `form:"name"`
	Code   string `form:"code"`
	Status string `form:"status"`
}

type roleRequest struct {
	Code        *string   `json:"code"`
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
	Status      *int      `json:"status"`
	Sort        *int      `json:"sort"`
}

func (r roleRequest) validate() error {
	if r.Status != nil && *r.Status != model.StatusEnabled && *r.Status != model.StatusDisabled {
		return errs.InvalidArgument("无效的状态")
	}
	if r.Permissions != nil {
		for _, p := range *r.Permissions {
			if !rbac.ValidCode(p) {
				return errs.InvalidArgument("无效的权限码: " + p)
			}
		}
	}
	return nil
}

// reloadPermissions 角色变更后刷新权限缓存，失败只记日志
func reloadPermissions(db *gorm.DB) {
	if err := cache.GlobalPermissions.Reload(db); err != nil {
		log.Printf("[WARN] 权限缓存刷新失败: %v", err)
	}
}

func ListRoles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q roleListQuery
		if err := bindQuery(c, &q); err != nil {
			response.Error(c, err)
			return
		}
		q.Normalize()

		query := db.Model(&model.Role{})
		query = whereContains(query, "name", q.Name)
		query = whereContains(query, "code", q.Code)
		status, ok, err := optInt(q.Status)
		if err != nil {
			response.Error(c, err)
			return
		}
		if ok {
			query = query.Where("status = ?", status)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			response.Error(c, err)
			return
		}
		var roles []model.Role
		if err := query.Order("sort ASC, id ASC").Offset(q.Offset()).Limit(q.PageSize).Find(&roles).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, response.NewPage(roles, total, q.Page, q.PageSize))
	}
}

// AllRoles 启用的角色，用于下拉选择
func AllRoles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := []model.Role{}
		if err := db.Where("status = ?", model.StatusEnabled).Order("sort ASC, id ASC").Find(&roles).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, roles)
	}
}

func GetRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var role model.Role
		if err := db.First(&role, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, role)
	}
}

func CreateRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req roleRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if req.Code == nil || strings.TrimSpace(*req.Code) == "" || req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			response.Error(c, errs.InvalidArgument("角色编码和名称不能为空"))
			return
		}
		if err := req.validate(); err != nil {
			response.Error(c, err)
			return
		}

		role := model.Role{
			Code:        strings.TrimSpace(*req.Code),
			Name:        strings.TrimSpace(*req.Name),
			Permissions: []string{},
			Status:      model.StatusEnabled,
		}
		if req.Description != nil {
			role.Description = *req.Description
		}
		if req.Permissions != nil {
			role.Permissions = rbac.Union(*req.Permissions)
		}
		if req.Status != nil {
			role.Status = *req.Status
		}
		if req.Sort != nil {
			role.Sort = *req.Sort
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&model.Role{}).Where("code = ?", role.Code).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return errs.Conflict("角色编码已存在")
			}
			return tx.Create(&role).Error
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		reloadPermissions(db)
		response.OKWithMessage(c, "创建成功", role)
	}
}

// UpdateRole 部分更新，角色编码不可修改
func UpdateRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var req roleRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if err := req.validate(); err != nil {
			response.Error(c, err)
			return
		}

		var role model.Role
		if err := db.First(&role, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		if req.Code != nil && strings.TrimSpace(*req.Code) != role.Code {
			response.Error(c, errs.InvalidArgument("角色编码不可修改"))
			return
		}

		updates := map[string]any{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				response.Error(c, errs.InvalidArgument("角色名称不能为空"))
				return
			}
			updates["name"] = name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Permissions != nil {
			updates["permissions"] = datatypes.JSONSlice[string](rbac.Union(*req.Permissions))
		}
		if req.Status != nil {
			updates["status"] = *req.Status
		}
		if req.Sort != nil {
			updates["sort"] = *req.Sort
		}
		if len(updates) > 0 {
			if err := db.Model(&model.Role{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				response.Error(c, err)
				return
			}
		}

		if err := db.First(&role, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		reloadPermissions(db)
		response.OKWithMessage(c, "更新成功", role)
	}
}

// DeleteRole 内置超级管理员和仍被用户使用的角色不可删除
func DeleteRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			var role model.Role
			if err := tx.First(&role, id).Error; err != nil {
				return err
			}
			if role.Code == rbac.RoleSuperAdmin {
				return errs.FailedPrecondition("超级管理员角色不可删除")
			}
			var used int64
			if err := tx.Table("user_roles").Where("role_id = ?", id).Count(&used).Error; err != nil {
				return err
			}
			if used > 0 {
				return errs.FailedPrecondition("该角色下还有用户，无法删除")
			}
			return tx.Delete(&role).Error
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		reloadPermissions(db)
		response.OKWithMessage(c, "删除成功", nil)
	}
}
