package dto

import (
	"time"

	"admin_backend/internal/model"
)

// ========================================
// 用户相关 DTO
// ========================================

// UserDTO 用户管理列表与详情
type UserDTO struct {
	ID            uint       `json:"id"`
	Username      string     `json:"username"`
	RealName      string     `json:"realName"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Avatar        string     `json:"avatar"`
	Gender        int        `json:"gender"`
	Status        int        `json:"status"`
	RoleIDs       []uint     `json:"roleIds"`
	Roles         []string   `json:"roles"`
	Department    string     `json:"department"`
	Remark        string     `json:"remark"`
	LastLoginTime *time.Time `json:"lastLoginTime"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// UserInfoDTO 登录后返回给前端的当前用户信息
type UserInfoDTO struct {
	ID          uint     `json:"id"`
	Username    string   `json:"username"`
	RealName    string   `json:"realName"`
	Avatar      string   `json:"avatar"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// UserActivityDTO 数据分析里的用户行，带发文与评论统计
type UserActivityDTO struct {
	ID           uint       `json:"id"`
	Username     string     `json:"username"`
	RealName     string     `json:"realName"`
	Avatar       string     `json:"avatar"`
	Department   string     `json:"department"`
	Status       string     `json:"status"`
	ArticleCount int64      `json:"articleCount"`
	CommentCount int64      `json:"commentCount"`
	JoinDate     string     `json:"joinDate"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ActivityDTO 动态流条目
type ActivityDTO struct {
	ID        uint   `json:"id"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	User      string `json:"user"`
	Time      string `json:"time"`
	Timestamp int64  `json:"timestamp"`
}

// ========================================
// 转换函数
// ========================================

// ToUserDTO 需要预加载 Roles
func ToUserDTO(u model.User) UserDTO {
	codes := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		codes = append(codes, r.Code)
	}
	return UserDTO{
		ID:            u.ID,
		Username:      u.Username,
		RealName:      u.RealName,
		Email:         u.Email,
		Phone:         u.Phone,
		Avatar:        u.Avatar,
		Gender:        u.Gender,
		Status:        u.Status,
		RoleIDs:       u.RoleIDs(),
		Roles:         codes,
		Department:    u.Department,
		Remark:        u.Remark,
		LastLoginTime: u.LastLoginTime,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func ToUserDTOs(users []model.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserDTO(u))
	}
	return out
}

// ToUserInfoDTO 只带已启用角色，权限由调用方解析好传入
func ToUserInfoDTO(u model.User, permissions []string) UserInfoDTO {
	if permissions == nil {
		permissions = []string{}
	}
	return UserInfoDTO{
		ID:          u.ID,
		Username:    u.Username,
		RealName:    u.RealName,
		Avatar:      u.Avatar,
		Email:       u.Email,
		Phone:       u.Phone,
		Roles:       u.RoleCodes(),
		Permissions: permissions,
	}
}

// ActivityStatus 数据分析里用 active/inactive 表示账号状态
func ActivityStatus(status int) string {
	if status == model.StatusEnabled {
		return "active"
	}
	return "inactive"
}

// ToUserActivityDTO 计数由调用方统计后传入
func ToUserActivityDTO(u model.User, articles, comments int64) UserActivityDTO {
	return UserActivityDTO{
		ID:           u.ID,
		Username:     u.Username,
		RealName:     u.RealName,
		Avatar:       u.Avatar,
		Department:   u.Department,
		Status:       ActivityStatus(u.Status),
		ArticleCount: articles,
		CommentCount: comments,
		JoinDate:     u.CreatedAt.Format(time.DateOnly),
		LastLoginAt:  u.LastLoginTime,
		CreatedAt:    u.CreatedAt,
	}
}

func ToActivityDTOs(list []model.Activity) []ActivityDTO {
	out := make([]ActivityDTO, 0, len(list))
	for _, a := range list {
		out = append(out, ActivityDTO{
			ID:        a.ID,
			Type:      a.Type,
			Content:   a.Content,
			User:      a.User,
			Time:      a.CreatedAt.Format("2006-01-02 15:04"),
			Timestamp: a.CreatedAt.UnixMilli(),
		})
	}
	return out
}
