package handler

import (
	"strings"

	"admin_backend/internal/model"
	"admin_backend/internal/pkg/errs"
	"admin_backend/internal/pkg/response"
	"admin_backend/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type categoryListQuery struct {
	PageQuery
	Name string `form:"name"`
}

type categoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Sort        *int    `json:"sort"`
}

type countRow struct {
	ID    uint
	Count int64
}

// categoryArticleCounts 按分类统计文章数
func categoryArticleCounts(db *gorm.DB) (map[uint]int64, error) {
	var rows []countRow
	if err := db.Model(&model.Article{}).Select("category_id AS id, COUNT(*) AS count").
		Group("category_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Count
	}
	return out, nil
}

func fillCategoryCounts(db *gorm.DB, categories []model.Category) error {
	counts, err := categoryArticleCounts(db)
	if err != nil {
		return err
	}
	for i := range categories {
		categories[i].ArticleCount = counts[categories[i].ID]
	}
	return nil
}

// slugTaken 在 table 中检查 slug 是否被其它记录占用
func slugTaken(db *gorm.DB, m any, slug string, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(m).Where("slug = ? AND id <> ?", slug, exceptID).Count(&count).Error
	return count > 0, err
}

// resolveSlug 为空时由名称生成，并检查唯一性
func resolveSlug(db *gorm.DB, m any, slug, name string, exceptID uint) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = utils.Slugify(name)
	}
	if slug == "" {
		return "", errs.InvalidArgument("无法根据名称生成别名，请手动填写")
	}
	taken, err := slugTaken(db, m, slug, exceptID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", errs.Conflict("别名已存在: " + slug)
	}
	return slug, nil
}

func ListCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q categoryListQuery
		if err := bindQuery(c, &q); err != nil {
			response.Error(c, err)
			return
		}
		q.Normalize()

		query := whereContains(db.Model(&model.Category{}), "name", q.Name)
		var total int64
		if err := query.Count(&total).Error; err != nil {
			response.Error(c, err)
			return
		}
		var categories []model.Category
		if err := query.Order("sort ASC, id ASC").Offset(q.Offset()).Limit(q.PageSize).Find(&categories).Error; err != nil {
			response.Error(c, err)
			return
		}
		if err := fillCategoryCounts(db, categories); err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, response.NewPage(categories, total, q.Page, q.PageSize))
	}
}

// AllCategories 不分页，用于下拉选择
func AllCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories := []model.Category{}
		if err := db.Order("sort ASC, id ASC").Find(&categories).Error; err != nil {
			response.Error(c, err)
			return
		}
		if err := fillCategoryCounts(db, categories); err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, categories)
	}
}

func GetCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var category model.Category
		if err := db.First(&category, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		if err := db.Model(&model.Article{}).Where("category_id = ?", id).Count(&category.ArticleCount).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, category)
	}
}

func CreateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req categoryRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			response.Error(c, errs.InvalidArgument("分类名称不能为空"))
			return
		}

		category := model.Category{Name: strings.TrimSpace(*req.Name)}
		if req.Description != nil {
			category.Description = *req.Description
		}
		if req.Sort != nil {
			category.Sort = *req.Sort
		}
		var slug string
		if req.Slug != nil {
			slug = *req.Slug
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			if category.Slug, err = resolveSlug(tx, &model.Category{}, slug, category.Name, 0); err != nil {
				return err
			}
			return tx.Create(&category).Error
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "创建成功", category)
	}
}

// UpdateCategory 改名时同步文章上的冗余分类名
func UpdateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var req categoryRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}

		var category model.Category
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&category, id).Error; err != nil {
				return err
			}
			renamed := false
			if req.Name != nil {
				name := strings.TrimSpace(*req.Name)
				if name == "" {
					return errs.InvalidArgument("分类名称不能为空")
				}
				renamed = name != category.Name
				category.Name = name
			}
			if req.Slug != nil {
				slug, err := resolveSlug(tx, &model.Category{}, *req.Slug, category.Name, id)
				if err != nil {
					return err
				}
				category.Slug = slug
			}
			if req.Description != nil {
				category.Description = *req.Description
			}
			if req.Sort != nil {
				category.Sort = *req.Sort
			}
			if err := tx.Save(&category).Error; err != nil {
				return err
			}
			if renamed {
				return tx.Model(&model.Article{}).Where("category_id = ?", id).
					UpdateColumn("category_name", category.Name).Error
			}
			return nil
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		if err := db.Model(&model.Article{}).Where("category_id = ?", id).Count(&category.ArticleCount).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "更新成功", category)
	}
}

// DeleteCategory 分类下还有文章时拒绝删除
func DeleteCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			var category model.Category
			if err := tx.First(&category, id).Error; err != nil {
				return err
			}
			var count int64
			if err := tx.Model(&model.Article{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return errs.FailedPrecondition("该分类下还有文章，无法删除")
			}
			return tx.Delete(&category).Error
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "删除成功", nil)
	}
}
