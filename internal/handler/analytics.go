package handler

import (
	"sort"
	"strconv"
	"time"

	"admin_backend/internal/dto"
	"admin_backend/internal/model"
	"admin_backend/internal/pkg/errs"
	"admin_backend/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultTrendDays = 7
	maxTrendDays     = 90
	defaultLimit     = 10
	maxLimit         = 100
)

type Overview struct {
	Users struct {
		Total     int64 `json:"total"`
		Today     int64 `json:"today"`
		ThisMonth int64 `json:"thisMonth"`
		Active    int64 `json:"active"`
	} `json:"users"`
	Content struct {
		TotalArticles int64 `json:"totalArticles"`
		TodayArticles int64 `json:"todayArticles"`
		TotalViews    int64 `json:"totalViews"`
		TotalComments int64 `json:"totalComments"`
		TodayComments int64 `json:"todayComments"`
	} `json:"content"`
	Activities struct {
		Total   int64 `json:"total"`
		Today   int64 `json:"today"`
		Publish int64 `json:"publish"`
		Comment int64 `json:"comment"`
		Edit    int64 `json:"edit"`
	} `json:"activities"`
}

type UserStatistics struct {
	TotalUsers     int64 `json:"totalUsers"`
	TodayUsers     int64 `json:"todayUsers"`
	ThisMonthUsers int64 `json:"thisMonthUsers"`
	ActiveUsers    int64 `json:"activeUsers"`
	InactiveUsers  int64 `json:"inactiveUsers"`
	TotalArticles  int64 `json:"totalArticles"`
	TotalComments  int64 `json:"totalComments"`
}

type TrendPoint struct {
	Date     string `json:"date"`
	Views    int64  `json:"views"`
	Users    int64  `json:"users"`
	Articles int64  `json:"articles"`
	Comments int64  `json:"comments"`
}

type HotContent struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Views    int64  `json:"views"`
	Likes    int64  `json:"likes"`
	Comments int64  `json:"comments"`
}

type DepartmentStatistics struct {
	Department    string `json:"department"`
	UserCount     int64  `json:"userCount"`
	ActiveUsers   int64  `json:"activeUsers"`
	TotalArticles int64  `json:"totalArticles"`
	TotalComments int64  `json:"totalComments"`
}

// count 统计 m 上满足条件的行数
func count(db *gorm.DB, m any, query string, args ...any) (int64, error) {
	var n int64
	q := db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	err := q.Count(&n).Error
	return n, err
}

// counter 依次执行统计，遇到第一个错误后跳过其余
type counter struct {
	db  *gorm.DB
	err error
}

func (c *counter) count(dst *int64, m any, query string, args ...any) {
	if c.err != nil {
		return
	}
	*dst, c.err = count(c.db, m, query, args...)
}

func (c *counter) sum(dst *int64, m any, col string) {
	if c.err != nil {
		return
	}
	c.err = c.db.Model(m).Select("COALESCE(SUM(" + col + "), 0)").Scan(dst).Error
}

// groupCount 按 col 分组计数，结果以 col 值为键
func groupCount(db *gorm.DB, m any, col, query string, args ...any) (map[uint]int64, error) {
	var rows []countRow
	q := db.Model(m).Select(col + " AS id, COUNT(*) AS count")
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Group(col).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Count
	}
	return out, nil
}

func limitParam(c *gin.Context, def, max int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.InvalidArgument("无效的 limit")
	}
	if n < 1 {
		n = 1
	}
	if n > max {
		n = max
	}
	return n, nil
}

// BuildOverview 数据概览
func BuildOverview(db *gorm.DB, now time.Time) (Overview, error) {
	var o Overview
	today, month := startOfDay(now), startOfMonth(now)
	c := &counter{db: db}

	c.count(&o.Users.Total, &model.User{}, "")
	c.count(&o.Users.Today, &model.User{}, "created_at >= ?", today)
	c.count(&o.Users.ThisMonth, &model.User{}, "created_at >= ?", month)
	c.count(&o.Users.Active, &model.User{}, "status = ?", model.StatusEnabled)

	c.count(&o.Content.TotalArticles, &model.Article{}, "")
	c.count(&o.Content.TodayArticles, &model.Article{}, "created_at >= ?", today)
	c.sum(&o.Content.TotalViews, &model.Article{}, "view_count")
	c.sum(&o.Content.TotalComments, &model.Article{}, "comment_count")
	c.count(&o.Content.TodayComments, &model.Activity{}, "type = ? AND created_at >= ?", model.ActivityComment, today)

	c.count(&o.Activities.Total, &model.Activity{}, "")
	c.count(&o.Activities.Today, &model.Activity{}, "created_at >= ?", today)
	c.count(&o.Activities.Publish, &model.Activity{}, "type = ?", model.ActivityPublish)
	c.count(&o.Activities.Comment, &model.Activity{}, "type = ?", model.ActivityComment)
	c.count(&o.Activities.Edit, &model.Activity{}, "type = ?", model.ActivityEdit)
	return o, c.err
}

func GetOverview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := BuildOverview(db, time.Now())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, o)
	}
}

func GetUserStatistics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var s UserStatistics
		now := time.Now()
		ct := &counter{db: db}
		ct.count(&s.TotalUsers, &model.User{}, "")
		ct.count(&s.TodayUsers, &model.User{}, "created_at >= ?", startOfDay(now))
		ct.count(&s.ThisMonthUsers, &model.User{}, "created_at >= ?", startOfMonth(now))
		ct.count(&s.ActiveUsers, &model.User{}, "status = ?", model.StatusEnabled)
		ct.count(&s.TotalArticles, &model.Article{}, "")
		ct.sum(&s.TotalComments, &model.Article{}, "comment_count")
		if ct.err != nil {
			response.Error(c, ct.err)
			return
		}
		s.InactiveUsers = s.TotalUsers - s.ActiveUsers
		response.OK(c, s)
	}
}

type analyticsUserQuery struct {
	PageQuery
	Department string `form:"department"`
	Status     string `form:"status"`
	Keyword    string `form:"keyword"`
}

// ListUserActivity 用户活跃度列表，按最近登录倒序，从未登录的排在最后
func ListUserActivity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q analyticsUserQuery
		if err := bindQuery(c, &q); err != nil {
			response.Error(c, err)
			return
		}
		q.Normalize()

		query := db.Model(&model.User{})
		if q.Department != "" {
			query = query.Where("department = ?", q.Department)
		}
		switch q.Status {
		case "":
		case "active":
			query = query.Where("status = ?", model.StatusEnabled)
		case "inactive":
			query = query.Where("status <> ?", model.StatusEnabled)
		default:
			response.Error(c, errs.InvalidArgument("status 只能是 active 或 inactive"))
			return
		}
		if q.Keyword != "" {
			p := likePattern(q.Keyword)
			query = query.Where("(LOWER(username) LIKE ? ESCAPE '\\' OR LOWER(real_name) LIKE ? ESCAPE '\\')", p, p)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			response.Error(c, err)
			return
		}
		var users []model.User
		if err := query.Order("last_login_time IS NULL, last_login_time DESC, id ASC").
			Offset(q.Offset()).Limit(q.PageSize).Find(&users).Error; err != nil {
			response.Error(c, err)
			return
		}

		ids := make([]uint, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		articles, err := groupCount(db, &model.Article{}, "author_id", "author_id IN ?", ids)
		if err != nil {
			response.Error(c, err)
			return
		}
		comments, err := groupCount(db, &model.Activity{}, "user_id", "type = ? AND user_id IN ?", model.ActivityComment, ids)
		if err != nil {
			response.Error(c, err)
			return
		}

		list := make([]dto.UserActivityDTO, 0, len(users))
		for _, u := range users {
			list = append(list, dto.ToUserActivityDTO(u, articles[u.ID], comments[u.ID]))
		}
		response.OK(c, response.NewPage(list, total, q.Page, q.PageSize))
	}
}

// BuildTrend 最近 days 天的每日数据，最早的一天在前
func BuildTrend(db *gorm.DB, now time.Time, days int) ([]TrendPoint, error) {
	first := startOfDay(now).AddDate(0, 0, -(days - 1))
	points := make([]TrendPoint, days)
	index := make(map[string]int, days)
	for i := range points {
		d := first.AddDate(0, 0, i).Format(time.DateOnly)
		points[i].Date = d
		index[d] = i
	}
	bucket := func(t time.Time) *TrendPoint {
		if i, ok := index[t.In(time.Local).Format(time.DateOnly)]; ok {
			return &points[i]
		}
		return nil
	}

	var activities []model.Activity
	if err := db.Select("type, created_at").Where("created_at >= ?", first).Find(&activities).Error; err != nil {
		return nil, err
	}
	for _, a := range activities {
		if p := bucket(a.CreatedAt); p != nil {
			p.Views++
			if a.Type == model.ActivityComment {
				p.Comments++
			}
		}
	}

	var userTimes, articleTimes []time.Time
	if err := db.Model(&model.User{}).Where("created_at >= ?", first).Pluck("created_at", &userTimes).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Article{}).Where("created_at >= ?", first).Pluck("created_at", &articleTimes).Error; err != nil {
		return nil, err
	}
	for _, t := range userTimes {
		if p := bucket(t); p != nil {
			p.Users++
		}
	}
	for _, t := range articleTimes {
		if p := bucket(t); p != nil {
			p.Articles++
		}
	}
	return points, nil
}

func GetTrend(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		days := defaultTrendDays
		if raw := c.Query("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				response.Error(c, errs.InvalidArgument("无效的 days"))
				return
			}
			days = min(max(n, 1), maxTrendDays)
		}
		points, err := BuildTrend(db, time.Now(), days)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, points)
	}
}

// GetHotContent 浏览量最高的文章
func GetHotContent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := limitParam(c, defaultLimit, maxLimit)
		if err != nil {
			response.Error(c, err)
			return
		}
		var articles []model.Article
		if err := db.Select("id, title, view_count, like_count, comment_count").
			Order("view_count DESC, id ASC").Limit(limit).Find(&articles).Error; err != nil {
			response.Error(c, err)
			return
		}
		out := make([]HotContent, 0, len(articles))
		for _, a := range articles {
			out = append(out, HotContent{ID: a.ID, Title: a.Title, Views: a.ViewCount, Likes: a.LikeCount, Comments: a.CommentCount})
		}
		response.OK(c, out)
	}
}

// GetActivities 最新动态，可按类型过滤
func GetActivities(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := limitParam(c, 20, maxLimit)
		if err != nil {
			response.Error(c, err)
			return
		}
		query := db.Model(&model.Activity{})
		if typ := c.Query("type"); typ != "" {
			query = query.Where("type = ?", typ)
		}
		var list []model.Activity
		if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, dto.ToActivityDTOs(list))
	}
}

// BuildDepartmentStatistics 按部门汇总，部门名升序
func BuildDepartmentStatistics(db *gorm.DB) ([]DepartmentStatistics, error) {
	var users []model.User
	if err := db.Select("id, department, status").Find(&users).Error; err != nil {
		return nil, err
	}
	articles, err := groupCount(db, &model.Article{}, "author_id", "")
	if err != nil {
		return nil, err
	}
	comments, err := groupCount(db, &model.Activity{}, "user_id", "type = ?", model.ActivityComment)
	if err != nil {
		return nil, err
	}

	byDept := make(map[string]*DepartmentStatistics)
	for _, u := range users {
		dept := u.Department
		if dept == "" {
			dept = "未分配"
		}
		s, ok := byDept[dept]
		if !ok {
			s = &DepartmentStatistics{Department: dept}
			byDept[dept] = s
		}
		s.UserCount++
		if u.Status == model.StatusEnabled {
			s.ActiveUsers++
		}
		s.TotalArticles += articles[u.ID]
		s.TotalComments += comments[u.ID]
	}

	out := make([]DepartmentStatistics, 0, len(byDept))
	for _, s := range byDept {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out, nil
}

func GetDepartmentStatistics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := BuildDepartmentStatistics(db)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, stats)
	}
}
