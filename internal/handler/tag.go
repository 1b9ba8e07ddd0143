package handler

import (
	"fmt"
	"strings"

	"admin_backend/internal/model"
	"admin_backend/internal/pkg/errs"
	"admin_backend/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type tagListQuery struct {
	PageQuery
	Name string `form:"name"`
}

type tagRequest struct {
	Name  *string `json:"name"`
	Slug  *string `json:"slug"`
	Color *string `json:"color"`
}

func fillTagCounts(db *gorm.DB, tags []model.Tag) error {
	var rows []countRow
	if err := db.Table("article_tags").Select("tag_id AS id, COUNT(*) AS count").
		Group("tag_id").Scan(&rows).Error; err != nil {
		return err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ID] = r.Count
	}
	for i := range tags {
		tags[i].ArticleCount = counts[tags[i].ID]
	}
	return nil
}

func ListTags(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q tagListQuery
		if err := bindQuery(c, &q); err != nil {
			response.Error(c, err)
			return
		}
		q.Normalize()

		query := whereContains(db.Model(&model.Tag{}), "name", q.Name)
		var total int64
		if err := query.Count(&total).Error; err != nil {
			response.Error(c, err)
			return
		}
		var tags []model.Tag
		if err := query.Order("id ASC").Offset(q.Offset()).Limit(q.PageSize).Find(&tags).Error; err != nil {
			response.Error(c, err)
			return
		}
		if err := fillTagCounts(db, tags); err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, response.NewPage(tags, total, q.Page, q.PageSize))
	}
}

func AllTags(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tags := []model.Tag{}
		if err := db.Order("id ASC").Find(&tags).Error; err != nil {
			response.Error(c, err)
			return
		}
		if err := fillTagCounts(db, tags); err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, tags)
	}
}

func GetTag(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var tag model.Tag
		if err := db.First(&tag, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		tags := []model.Tag{tag}
		if err := fillTagCounts(db, tags); err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, tags[0])
	}
}

func CreateTag(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tagRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			response.Error(c, errs.InvalidArgument("标签名称不能为空"))
			return
		}

		tag := model.Tag{Name: strings.TrimSpace(*req.Name), Color: "#409eff"}
		if req.Color != nil && *req.Color != "" {
			tag.Color = *req.Color
		}
		var slug string
		if req.Slug != nil {
			slug = *req.Slug
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			if tag.Slug, err = resolveSlug(tx, &model.Tag{}, slug, tag.Name, 0); err != nil {
				return err
			}
			return tx.Create(&tag).Error
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "创建成功", tag)
	}
}

func UpdateTag(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var req tagRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}

		var tag model.Tag
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&tag, id).Error; err != nil {
				return err
			}
			if req.Name != nil {
				name := strings.TrimSpace(*req.Name)
				if name == "" {
					return errs.InvalidArgument("标签名称不能为空")
				}
				tag.Name = name
			}
			if req.Slug != nil {
				slug, err := resolveSlug(tx, &model.Tag{}, *req.Slug, tag.Name, id)
				if err != nil {
					return err
				}
				tag.Slug = slug
			}
			if req.Color != nil {
				tag.Color = *req.Color
			}
			return tx.Save(&tag).Error
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		tags := []model.Tag{tag}
		if err := fillTagCounts(db, tags); err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "更新成功", tags[0])
	}
}

// deleteTags 同时移除文章上的标签关联
func deleteTags(tx *gorm.DB, ids []uint) (int64, error) {
	if err := tx.Exec("DELETE FROM article_tags WHERE tag_id IN ?", ids).Error; err != nil {
		return 0, err
	}
	res := tx.Where("id IN ?", ids).Delete(&model.Tag{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, errs.NotFound("标签不存在")
	}
	return res.RowsAffected, nil
}

func DeleteTag(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			_, err := deleteTags(tx, []uint{id})
			return err
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "删除成功", nil)
	}
}

func BatchDeleteTags(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := bindIDs(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var deleted int64
		err = db.Transaction(func(tx *gorm.DB) error {
			deleted, err = deleteTags(tx, ids)
			return err
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, fmt.Sprintf("成功删除 %d 个标签", deleted), gin.H{"deleted": deleted})
	}
}
