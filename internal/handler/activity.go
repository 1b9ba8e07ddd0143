package handler

import (
	"fmt"

	"admin_backend/internal/model"
	"admin_backend/internal/pkg/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var activityVerbs = map[string]string{
	model.ActivityPublish: "发布了文章",
	model.ActivityEdit:    "更新了文章",
	model.ActivityCreate:  "创建了文章",
	model.ActivityDelete:  "删除了文章",
}

// actor 当前操作人的展示名，取不到真实姓名时用用户名
func actor(db *gorm.DB, c *gin.Context) (uint, string) {
	id := middleware.UserID(c)
	var user model.User
	if err := db.Select("id, username, real_name").First(&user, id).Error; err == nil && user.RealName != "" {
		return id, user.RealName
	}
	return id, middleware.Username(c)
}

// recordArticleActivity 追加一条文章动态
func recordArticleActivity(tx *gorm.DB, c *gin.Context, typ, title string) error {
	id, name := actor(tx, c)
	return tx.Create(&model.Activity{
		Type:    typ,
		Content: fmt.Sprintf("%s《%s》", activityVerbs[typ], title),
		User:    name,
		UserID:  id,
	}).Error
}
