package model

import "time"

// Base 所有实体共用的主键与时间戳
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// 启用/禁用状态，用户、角色、菜单共用
const (
	StatusDisabled = 0
	StatusEnabled  = 1
)

// All 返回需要迁移的全部模型
func All() []any {
	return []any{
		&Role{},
		&User{},
		&RefreshToken{},
		&Menu{},
		&Settings{},
		&Category{},
		&Tag{},
		&Article{},
		&Report{},
		&Activity{},
	}
}
