package handler

import (
	"strings"

	"admin_backend/internal/dto"
	"admin_backend/internal/model"
	"admin_backend/internal/pkg/errs"
	"admin_backend/internal/pkg/middleware"
	"admin_backend/internal/pkg/response"
	"admin_backend/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// --- DTO ---

type userListQuery struct {
	PageQuery
	Username   string `form:"username"`
	RealName   string `form:"realName"`
	Department string `form:"department"`
	Status     string `form:"status"`
	RoleID     string `form:"roleId"`
}

// userRequest 创建与部分更新共用，nil 字段表示不修改
type userRequest struct {
	Username   *string `json:"username"`
	Password   *string `json:"password"`
	RealName   *string `json:"realName"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Avatar     *string `json:"avatar"`
	Gender     *int    `json:"gender"`
	Status     *int    `json:"status"`
	RoleIDs    *[]uint `json:"roleIds"`
	Department *string `json:"department"`
	Remark     *string `json:"remark"`
}

func (r userRequest) validate() error {
	if r.Gender != nil && (*r.Gender < model.GenderUnknown || *r.Gender > model.GenderFemale) {
		return errs.InvalidArgument("无效的性别")
	}
	if r.Status != nil && *r.Status != model.StatusEnabled && *r.Status != model.StatusDisabled {
		return errs.InvalidArgument("无效的状态")
	}
	return nil
}

// updates 转换为列更新，不含用户名、密码和角色
func (r userRequest) updates() map[string]any {
	m := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			m[col] = strings.TrimSpace(*v)
		}
	}
	set("real_name", r.RealName)
	set("email", r.Email)
	set("phone", r.Phone)
	set("avatar", r.Avatar)
	set("department", r.Department)
	set("remark", r.Remark)
	if r.Gender != nil {
		m["gender"] = *r.Gender
	}
	if r.Status != nil {
		m["status"] = *r.Status
	}
	return m
}

// resolveRoles 根据 ID 查询角色，任一不存在即报错
func resolveRoles(db *gorm.DB, ids []uint) ([]model.Role, error) {
	roles := []model.Role{}
	if len(ids) == 0 {
		return roles, nil
	}
	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	if err := db.Where("id IN ?", ids).Find(&roles).Error; err != nil {
		return nil, err
	}
	if len(roles) != len(unique) {
		return nil, errs.InvalidArgument("角色不存在")
	}
	return roles, nil
}

func usernameTaken(db *gorm.DB, username string, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(&model.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error
	return count > 0, err
}

// --- Handler ---

// ListUsers 用户分页列表
func ListUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q userListQuery
		if err := bindQuery(c, &q); err != nil {
			response.Error(c, err)
			return
		}
		q.Normalize()

		query := db.Model(&model.User{})
		query = whereContains(query, "username", q.Username)
		query = whereContains(query, "real_name", q.RealName)
		query = whereContains(query, "department", q.Department)
		status, ok, err := optInt(q.Status)
		if err != nil {
			response.Error(c, err)
			return
		}
		if ok {
			query = query.Where("status = ?", status)
		}
		roleID, ok, err := optInt(q.RoleID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if ok {
			query = query.Where("id IN (?)", db.Table("user_roles").Select("user_id").Where("role_id = ?", roleID))
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			response.Error(c, err)
			return
		}

		var users []model.User
		if err := query.Preload("Roles").Order("id ASC").
			Offset(q.Offset()).Limit(q.PageSize).Find(&users).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, response.NewPage(dto.ToUserDTOs(users), total, q.Page, q.PageSize))
	}
}

func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var user model.User
		if err := db.Preload("Roles").First(&user, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, dto.ToUserDTO(user))
	}
}

func CreateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req userRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if req.Username == nil || strings.TrimSpace(*req.Username) == "" {
			response.Error(c, errs.InvalidArgument("用户名不能为空"))
			return
		}
		if req.Password == nil || len(*req.Password) < minPasswordLen {
			response.Error(c, errs.InvalidArgument("密码至少 6 位"))
			return
		}
		if err := req.validate(); err != nil {
			response.Error(c, err)
			return
		}
		username := strings.TrimSpace(*req.Username)

		var user model.User
		err := db.Transaction(func(tx *gorm.DB) error {
			taken, err := usernameTaken(tx, username, 0)
			if err != nil {
				return err
			}
			if taken {
				return errs.Conflict("用户名已存在")
			}

			var roleIDs []uint
			if req.RoleIDs != nil {
				roleIDs = *req.RoleIDs
			}
			roles, err := resolveRoles(tx, roleIDs)
			if err != nil {
				return err
			}

			hash, err := utils.HashPassword(*req.Password)
			if err != nil {
				return errs.Internal("密码加密失败", err)
			}

			user = model.User{
				Username: username,
				Password: hash,
				Status:   model.StatusEnabled,
				Roles:    roles,
			}
			applyUserFields(&user, req)
			return tx.Create(&user).Error
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "创建成功", dto.ToUserDTO(user))
	}
}

func applyUserFields(u *model.User, req userRequest) {
	str := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	str(&u.RealName, req.RealName)
	str(&u.Email, req.Email)
	str(&u.Phone, req.Phone)
	str(&u.Avatar, req.Avatar)
	str(&u.Department, req.Department)
	str(&u.Remark, req.Remark)
	if req.Gender != nil {
		u.Gender = *req.Gender
	}
	if req.Status != nil {
		u.Status = *req.Status
	}
}

// UpdateUser 部分更新，roleIds 存在时整体替换角色
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var req userRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if err := req.validate(); err != nil {
			response.Error(c, err)
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			var user model.User
			if err := tx.First(&user, id).Error; err != nil {
				return err
			}

			updates := req.updates()
			if req.Username != nil {
				username := strings.TrimSpace(*req.Username)
				if username == "" {
					return errs.InvalidArgument("用户名不能为空")
				}
				taken, err := usernameTaken(tx, username, id)
				if err != nil {
					return err
				}
				if taken {
					return errs.Conflict("用户名已存在")
				}
				updates["username"] = username
			}
			if len(updates) > 0 {
				if err := tx.Model(&model.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
					return err
				}
			}

			if req.RoleIDs != nil {
				roles, err := resolveRoles(tx, *req.RoleIDs)
				if err != nil {
					return err
				}
				assoc := tx.Model(&user).Association("Roles")
				if len(roles) == 0 {
					return assoc.Clear()
				}
				return assoc.Replace(roles)
			}
			return nil
		})
		if err != nil {
			response.Error(c, err)
			return
		}

		var user model.User
		if err := db.Preload("Roles").First(&user, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "更新成功", dto.ToUserDTO(user))
	}
}

// ResetUserPassword 管理员重置密码
func ResetUserPassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var req struct {
			Password string `json:"password" binding:"required"`
		}
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if len(req.Password) < minPasswordLen {
			response.Error(c, errs.InvalidArgument("密码至少 6 位"))
			return
		}
		if err := db.First(&model.User{}, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		if err := setPassword(db, id, req.Password); err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "密码重置成功", nil)
	}
}

func DeleteUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		if id == middleware.UserID(c) {
			response.Error(c, errs.FailedPrecondition("不能删除当前登录用户"))
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			var user model.User
			if err := tx.First(&user, id).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", id).Delete(&model.RefreshToken{}).Error; err != nil {
				return err
			}
			return tx.Select("Roles").Delete(&user).Error
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "删除成功", nil)
	}
}
