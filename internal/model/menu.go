package model

import "gorm.io/datatypes"

// 菜单类型
const (
	MenuTypeDirectory = 1
	MenuTypeMenu      = 2
	MenuTypeButton    = 3
)

// Menu 菜单节点，ParentID 为 0 表示根节点
type Menu struct {
	Base
	ParentID    uint                        `gorm:"index;not null" json:"parentId"`
	Name        string                      `gorm:"type:varchar(64);not null" json:"name"`
	Path        string                      `gorm:"type:varchar(255)" json:"path"`
	Component   string                      `gorm:"type:varchar(255)" json:"component,omitempty"`
	Redirect    string                      `gorm:"type:varchar(255)" json:"redirect,omitempty"`
	Icon        string                      `gorm:"type:varchar(64)" json:"icon,omitempty"`
	Type        int                         `gorm:"not null" json:"type"`
	Status      int                         `gorm:"not null" json:"status"`
	Sort        int                         `gorm:"not null" json:"sort"`
	Permissions datatypes.JSONSlice[string] `json:"permissions"`
	Hidden      bool                        `gorm:"not null" json:"hidden"`
	KeepAlive   bool                        `gorm:"not null" json:"keepAlive"`

	Children []*Menu `gorm:"-" json:"children,omitempty"`
}
