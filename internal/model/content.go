package model

import "time"

// 文章状态
const (
	ArticleDraft     = 1
	ArticlePublished = 2
	ArticleArchived  = 3
)

// Category 文章分类。ArticleCount 查询时统计，不落库。
type Category struct {
	Base
	Name         string `gorm:"type:varchar(64);not null" json:"name"`
	Slug         string `gorm:"type:varchar(64);uniqueIndex;not null" json:"slug"`
	Description  string `gorm:"type:varchar(255)" json:"description"`
	Sort         int    `gorm:"not null" json:"sort"`
	ArticleCount int64  `gorm:"-" json:"articleCount"`
}

// Tag 文章标签
type Tag struct {
	Base
	Name         string `gorm:"type:varchar(64);not null" json:"name"`
	Slug         string `gorm:"type:varchar(64);uniqueIndex;not null" json:"slug"`
	Color        string `gorm:"type:varchar(16)" json:"color"`
	ArticleCount int64  `gorm:"-" json:"articleCount"`
}

// Article 文章。CategoryName 冗余存储，分类改名时同步。
type Article struct {
	Base
	Title        string     `gorm:"type:varchar(255);not null" json:"title"`
	Slug         string     `gorm:"type:varchar(255);index" json:"slug"`
	Summary      string     `gorm:"type:text" json:"summary"`
	Content      string     `gorm:"type:text" json:"content"`
	Cover        string     `gorm:"type:varchar(255)" json:"cover"`
	Author       string     `gorm:"type:varchar(64);index" json:"author"`
	AuthorID     uint       `gorm:"index" json:"authorId"`
	CategoryID   uint       `gorm:"index;not null" json:"categoryId"`
	CategoryName string     `gorm:"type:varchar(64)" json:"categoryName"`
	Tags         []Tag      `gorm:"many2many:article_tags;" json:"tags"`
	TagIDs       []uint     `gorm:"-" json:"tagIds"`
	Status       int        `gorm:"not null;index" json:"status"`
	ViewCount    int64      `gorm:"not null" json:"viewCount"`
	LikeCount    int64      `gorm:"not null" json:"likeCount"`
	CommentCount int64      `gorm:"not null" json:"commentCount"`
	IsTop        bool       `gorm:"not null" json:"isTop"`
	IsRecommend  bool       `gorm:"not null" json:"isRecommend"`
	PublishedAt  *time.Time `gorm:"index" json:"publishedAt,omitempty"`
}

// FillTagIDs 根据已加载的 Tags 填充 TagIDs
func (a *Article) FillTagIDs() {
	a.TagIDs = make([]uint, 0, len(a.Tags))
	for _, t := range a.Tags {
		a.TagIDs = append(a.TagIDs, t.ID)
	}
	if a.Tags == nil {
		a.Tags = []Tag{}
	}
}
