package model

import "time"

const (
	GenderUnknown = 0
	GenderMale    = 1
	GenderFemale  = 2
)

// User 后台账号。密码只存 bcrypt 哈希，永不序列化。
type User struct {
	Base
	Username      string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	Password      string     `gorm:"not null"`
	RealName      string     `gorm:"type:varchar(64)"`
	Email         string     `gorm:"type:varchar(128)"`
	Phone         string     `gorm:"type:varchar(32)"`
	Avatar        string     `gorm:"type:varchar(255)"`
	Gender        int        `gorm:"not null"`
	Status        int        `gorm:"not null;index"`
	Department    string     `gorm:"type:varchar(64);index"`
	Remark        string     `gorm:"type:varchar(255)"`
	LastLoginTime *time.Time `gorm:"index"`

	Roles []Role `gorm:"many2many:user_roles;"`
}

// RoleCodes 用户拥有的角色编码（只含已启用角色）
func (u *User) RoleCodes() []string {
	codes := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		if r.Status == StatusEnabled {
			codes = append(codes, r.Code)
		}
	}
	return codes
}

// RoleIDs 用户关联的全部角色 ID
func (u *User) RoleIDs() []uint {
	ids := make([]uint, 0, len(u.Roles))
	for _, r := range u.Roles {
		ids = append(ids, r.ID)
	}
	return ids
}

func (u *User) Enabled() bool {
	return u.Status == StatusEnabled
}

// RefreshToken 记录已签发的刷新令牌，ID 即 JWT 的 jti
type RefreshToken struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Revoked   bool      `gorm:"not null"`
	CreatedAt time.Time
}
