package model

import "time"

// 动态类型
const (
	ActivityPublish = "publish"
	ActivityComment = "comment"
	ActivityEdit    = "edit"
	ActivityCreate  = "create"
	ActivityDelete  = "delete"
)

// Activity 操作动态，仓储只追加
type Activity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"type:varchar(16);index;not null" json:"type"`
	Content   string    `gorm:"type:varchar(255)" json:"content"`
	User      string    `gorm:"type:varchar(64)" json:"user"`
	UserID    uint      `gorm:"index" json:"userId"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
