package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"admin_backend/internal/model"
	"admin_backend/internal/pkg/errs"
	"admin_backend/internal/pkg/middleware"
	"admin_backend/internal/pkg/rbac"
	"admin_backend/internal/pkg/response"
	"admin_backend/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// --- DTO ---

type articleListQuery struct {
	PageQuery
	Title       string `form:"title"`
	Author      string `form:"author"`
	CategoryID  string `form:"categoryId"`
	TagID       string `form:"tagId"`
	Status      string `form:"status"`
	IsTop       string `form:"isTop"`
	IsRecommend string `form:"isRecommend"`
	StartDate   string `form:"startDate"`
	EndDate     string `form:"endDate"`
}

type articleRequest struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Summary     *string `json:"summary"`
	Content     *string `json:"content"`
	Cover       *string `json:"cover"`
	CategoryID  *uint   `json:"categoryId"`
	TagIDs      *[]uint `json:"tagIds"`
	Status      *int    `json:"status"`
	IsTop       *bool   `json:"isTop"`
	IsRecommend *bool   `json:"isRecommend"`
}

// ArticleStatistics 文章统计
type ArticleStatistics struct {
	Total          int64 `json:"total"`
	Draft          int64 `json:"draft"`
	Published      int64 `json:"published"`
	Archived       int64 `json:"archived"`
	TodayPublished int64 `json:"todayPublished"`
	TotalViews     int64 `json:"totalViews"`
	TotalLikes     int64 `json:"totalLikes"`
	TotalComments  int64 `json:"totalComments"`
}

func validArticleStatus(s int) bool {
	return s == model.ArticleDraft || s == model.ArticlePublished || s == model.ArticleArchived
}

func (r articleRequest) validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return errs.InvalidArgument("文章标题不能为空")
	}
	if r.Status != nil && !validArticleStatus(*r.Status) {
		return errs.InvalidArgument("无效的文章状态")
	}
	return nil
}

func resolveCategory(db *gorm.DB, id uint) (model.Category, error) {
	var category model.Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return category, errs.InvalidArgument("分类不存在")
		}
		return category, err
	}
	return category, nil
}

func resolveTags(db *gorm.DB, ids []uint) ([]model.Tag, error) {
	tags := []model.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}
	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	if err := db.Where("id IN ?", ids).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(unique) {
		return nil, errs.InvalidArgument("标签不存在")
	}
	return tags, nil
}

func articleSlug(title string) string {
	if s := utils.Slugify(title); s != "" {
		return s
	}
	return fmt.Sprintf("article-%d", time.Now().UnixNano())
}

// canPublish 发布需要 content:article:publish
func canPublish(c *gin.Context) error {
	if !middleware.HasPermission(c, rbac.ContentArticlePublish) {
		return errs.PermissionDenied("没有发布文章的权限")
	}
	return nil
}

func loadArticle(db *gorm.DB, id uint) (model.Article, error) {
	var article model.Article
	if err := db.Preload("Tags").First(&article, id).Error; err != nil {
		return article, err
	}
	article.FillTagIDs()
	return article, nil
}

// --- Handler ---

// ListArticles 置顶优先，再按发布时间（未发布用创建时间）倒序
func ListArticles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q articleListQuery
		if err := bindQuery(c, &q); err != nil {
			response.Error(c, err)
			return
		}
		q.Normalize()

		query := db.Model(&model.Article{})
		query = whereContains(query, "title", q.Title)
		query = whereContains(query, "author", q.Author)

		for col, raw := range map[string]string{"category_id": q.CategoryID, "status": q.Status} {
			v, ok, err := optInt(raw)
			if err != nil {
				response.Error(c, err)
				return
			}
			if ok {
				query = query.Where(col+" = ?", v)
			}
		}
		for col, raw := range map[string]string{"is_top": q.IsTop, "is_recommend": q.IsRecommend} {
			v, ok, err := optBool(raw)
			if err != nil {
				response.Error(c, err)
				return
			}
			if ok {
				query = query.Where(col+" = ?", v)
			}
		}
		tagID, ok, err := optInt(q.TagID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if ok {
			query = query.Where("id IN (?)", db.Table("article_tags").Select("article_id").Where("tag_id = ?", tagID))
		}
		from, to, err := dayRange(q.StartDate, q.EndDate)
		if err != nil {
			response.Error(c, err)
			return
		}
		if !from.IsZero() {
			query = query.Where("created_at >= ?", from)
		}
		if !to.IsZero() {
			query = query.Where("created_at < ?", to)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			response.Error(c, err)
			return
		}

		var articles []model.Article
		if err := query.Preload("Tags").
			Order("is_top DESC").
			Order("COALESCE(published_at, created_at) DESC").
			Order("id DESC").
			Offset(q.Offset()).Limit(q.PageSize).
			Find(&articles).Error; err != nil {
			response.Error(c, err)
			return
		}
		for i := range articles {
			articles[i].FillTagIDs()
		}
		response.OK(c, response.NewPage(articles, total, q.Page, q.PageSize))
	}
}

// ArticleStats 汇总文章统计
func ArticleStats(db *gorm.DB) (ArticleStatistics, error) {
	var s ArticleStatistics
	var rows []struct {
		Status int
		Count  int64
	}
	if err := db.Model(&model.Article{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return s, err
	}
	for _, r := range rows {
		s.Total += r.Count
		switch r.Status {
		case model.ArticleDraft:
			s.Draft = r.Count
		case model.ArticlePublished:
			s.Published = r.Count
		case model.ArticleArchived:
			s.Archived = r.Count
		}
	}

	if err := db.Model(&model.Article{}).
		Where("status = ? AND published_at >= ?", model.ArticlePublished, startOfDay(time.Now())).
		Count(&s.TodayPublished).Error; err != nil {
		return s, err
	}

	var sums struct {
		Views    int64
		Likes    int64
		Comments int64
	}
	if err := db.Model(&model.Article{}).
		Select("COALESCE(SUM(view_count), 0) AS views, COALESCE(SUM(like_count), 0) AS likes, COALESCE(SUM(comment_count), 0) AS comments").
		Scan(&sums).Error; err != nil {
		return s, err
	}
	s.TotalViews, s.TotalLikes, s.TotalComments = sums.Views, sums.Likes, sums.Comments
	return s, nil
}

func GetArticleStatistics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := ArticleStats(db)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, stats)
	}
}

// GetArticle 详情，每次访问浏览量加一
func GetArticle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		res := db.Model(&model.Article{}).Where("id = ?", id).
			UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
		if res.Error != nil {
			response.Error(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			response.Error(c, errs.NotFound("文章不存在"))
			return
		}
		article, err := loadArticle(db, id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, article)
	}
}

func CreateArticle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req articleRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if req.Title == nil || req.CategoryID == nil {
			response.Error(c, errs.InvalidArgument("标题和分类不能为空"))
			return
		}
		if err := req.validate(); err != nil {
			response.Error(c, err)
			return
		}
		status := model.ArticleDraft
		if req.Status != nil {
			status = *req.Status
		}
		if status == model.ArticlePublished {
			if err := canPublish(c); err != nil {
				response.Error(c, err)
				return
			}
		}

		var article model.Article
		err := db.Transaction(func(tx *gorm.DB) error {
			category, err := resolveCategory(tx, *req.CategoryID)
			if err != nil {
				return err
			}
			var tagIDs []uint
			if req.TagIDs != nil {
				tagIDs = *req.TagIDs
			}
			tags, err := resolveTags(tx, tagIDs)
			if err != nil {
				return err
			}
			authorID, author := actor(tx, c)

			article = model.Article{
				Title:        strings.TrimSpace(*req.Title),
				Author:       author,
				AuthorID:     authorID,
				CategoryID:   category.ID,
				CategoryName: category.Name,
				Tags:         tags,
				Status:       status,
			}
			applyArticleText(&article, req)
			if article.Slug == "" {
				article.Slug = articleSlug(article.Title)
			}
			if status == model.ArticlePublished {
				now := time.Now()
				article.PublishedAt = &now
			}
			if err := tx.Create(&article).Error; err != nil {
				return err
			}

			typ := model.ActivityCreate
			if status == model.ArticlePublished {
				typ = model.ActivityPublish
			}
			return recordArticleActivity(tx, c, typ, article.Title)
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		article.FillTagIDs()
		response.OKWithMessage(c, "创建成功", article)
	}
}

func applyArticleText(a *model.Article, req articleRequest) {
	if req.Slug != nil {
		a.Slug = strings.TrimSpace(*req.Slug)
	}
	if req.Summary != nil {
		a.Summary = *req.Summary
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	if req.Cover != nil {
		a.Cover = *req.Cover
	}
	if req.IsTop != nil {
		a.IsTop = *req.IsTop
	}
	if req.IsRecommend != nil {
		a.IsRecommend = *req.IsRecommend
	}
}

// UpdateArticle 部分更新，分类名与标签随 ID 重新解析
func UpdateArticle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var req articleRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if err := req.validate(); err != nil {
			response.Error(c, err)
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			var article model.Article
			if err := tx.First(&article, id).Error; err != nil {
				return err
			}

			publishing := req.Status != nil && *req.Status == model.ArticlePublished && article.Status != model.ArticlePublished
			if publishing {
				if err := canPublish(c); err != nil {
					return err
				}
			}

			updates := map[string]any{}
			if req.Title != nil {
				updates["title"] = strings.TrimSpace(*req.Title)
			}
			if req.Slug != nil {
				slug := strings.TrimSpace(*req.Slug)
				if slug == "" {
					title := article.Title
					if req.Title != nil {
						title = strings.TrimSpace(*req.Title)
					}
					slug = articleSlug(title)
				}
				updates["slug"] = slug
			}
			if req.Summary != nil {
				updates["summary"] = *req.Summary
			}
			if req.Content != nil {
				updates["content"] = *req.Content
			}
			if req.Cover != nil {
				updates["cover"] = *req.Cover
			}
			if req.IsTop != nil {
				updates["is_top"] = *req.IsTop
			}
			if req.IsRecommend != nil {
				updates["is_recommend"] = *req.IsRecommend
			}
			if req.CategoryID != nil {
				category, err := resolveCategory(tx, *req.CategoryID)
				if err != nil {
					return err
				}
				updates["category_id"] = category.ID
				updates["category_name"] = category.Name
			}
			if req.Status != nil {
				updates["status"] = *req.Status
				if publishing && article.PublishedAt == nil {
					updates["published_at"] = time.Now()
				}
			}
			if len(updates) > 0 {
				if err := tx.Model(&model.Article{}).Where("id = ?", id).Updates(updates).Error; err != nil {
					return err
				}
			}

			if req.TagIDs != nil {
				tags, err := resolveTags(tx, *req.TagIDs)
				if err != nil {
					return err
				}
				assoc := tx.Model(&article).Association("Tags")
				if len(tags) == 0 {
					err = assoc.Clear()
				} else {
					err = assoc.Replace(tags)
				}
				if err != nil {
					return err
				}
			}

			typ, title := model.ActivityEdit, article.Title
			if publishing {
				typ = model.ActivityPublish
			}
			if t, ok := updates["title"].(string); ok {
				title = t
			}
			return recordArticleActivity(tx, c, typ, title)
		})
		if err != nil {
			response.Error(c, err)
			return
		}

		article, err := loadArticle(db, id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "更新成功", article)
	}
}

// UpdateArticleStatus 发布、撤回或归档
func UpdateArticleStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var req struct {
			Status int `json:"status" binding:"required"`
		}
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if !validArticleStatus(req.Status) {
			response.Error(c, errs.InvalidArgument("无效的文章状态"))
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			var article model.Article
			if err := tx.First(&article, id).Error; err != nil {
				return err
			}
			updates := map[string]any{"status": req.Status}
			if req.Status == model.ArticlePublished && article.PublishedAt == nil {
				updates["published_at"] = time.Now()
			}
			if err := tx.Model(&model.Article{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
			typ := model.ActivityEdit
			if req.Status == model.ArticlePublished {
				typ = model.ActivityPublish
			}
			return recordArticleActivity(tx, c, typ, article.Title)
		})
		if err != nil {
			response.Error(c, err)
			return
		}

		article, err := loadArticle(db, id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "状态更新成功", article)
	}
}

// deleteArticles 删除文章及标签关联，返回删除条数
func deleteArticles(tx *gorm.DB, c *gin.Context, ids []uint) (int64, error) {
	var articles []model.Article
	if err := tx.Select("id, title").Where("id IN ?", ids).Find(&articles).Error; err != nil {
		return 0, err
	}
	if len(articles) == 0 {
		return 0, errs.NotFound("文章不存在")
	}
	found := make([]uint, 0, len(articles))
	for _, a := range articles {
		found = append(found, a.ID)
	}
	if err := tx.Exec("DELETE FROM article_tags WHERE article_id IN ?", found).Error; err != nil {
		return 0, err
	}
	res := tx.Where("id IN ?", found).Delete(&model.Article{})
	if res.Error != nil {
		return 0, res.Error
	}
	for _, a := range articles {
		if err := recordArticleActivity(tx, c, model.ActivityDelete, a.Title); err != nil {
			return 0, err
		}
	}
	return res.RowsAffected, nil
}

func DeleteArticle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			_, err := deleteArticles(tx, c, []uint{id})
			return err
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "删除成功", nil)
	}
}

func BatchDeleteArticles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := bindIDs(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var deleted int64
		err = db.Transaction(func(tx *gorm.DB) error {
			deleted, err = deleteArticles(tx, c, ids)
			return err
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, fmt.Sprintf("成功删除 %d 篇文章", deleted), gin.H{"deleted": deleted})
	}
}
