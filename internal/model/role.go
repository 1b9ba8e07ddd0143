package model

import "gorm.io/datatypes"

// Role 角色及其权限码列表
type Role struct {
	Base
	Code        string                      `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Name        string                      `gorm:"type:varchar(64);not null" json:"name"`
	Description string                      `gorm:"type:varchar(255)" json:"description"`
	Permissions datatypes.JSONSlice[string] `json:"permissions"`
	Status      int                         `gorm:"not null" json:"status"`
	Sort        int                         `gorm:"not null" json:"sort"`
}
