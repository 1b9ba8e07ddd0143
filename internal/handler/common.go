package handler

import (
	"strconv"
	"strings"
	"time"

	"admin_backend/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PageQuery 分页参数，page 从 1 开始
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

// Normalize 填充默认值并限制 pageSize 范围
func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// bindQuery 绑定查询参数；dst 若内嵌 PageQuery 由调用方自行 Normalize
func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return errs.Wrap(errs.CodeInvalidArgument, "查询参数错误", err)
	}
	return nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return errs.Wrap(errs.CodeInvalidArgument, "参数错误", err)
	}
	return nil
}

// IDsRequest 批量操作的请求体
type IDsRequest struct {
	IDs []int64 `json:"ids"`
}

// Normalize 去掉非正数与重复 ID，结果为空时报错
func (r IDsRequest) Normalize() ([]uint, error) {
	seen := make(map[int64]struct{}, len(r.IDs))
	out := make([]uint, 0, len(r.IDs))
	for _, id := range r.IDs {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, uint(id))
	}
	if len(out) == 0 {
		return nil, errs.InvalidArgument("请选择要操作的数据")
	}
	return out, nil
}

func bindIDs(c *gin.Context) ([]uint, error) {
	var req IDsRequest
	if err := bindJSON(c, &req); err != nil {
		return nil, err
	}
	return req.Normalize()
}

// paramID 解析路径参数 :id
func paramID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.InvalidArgument("无效的 ID")
	}
	return uint(id), nil
}

// optInt 解析可选的整数过滤条件，空串表示不过滤
func optInt(s string) (int, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, errs.InvalidArgument("无效的数字参数: " + s)
	}
	return v, true, nil
}

// optBool 解析可选的布尔过滤条件
func optBool(s string) (bool, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false, errs.InvalidArgument("无效的布尔参数: " + s)
	}
	return v, true, nil
}

// parseDate 接受 YYYY-MM-DD 或 RFC3339
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errs.InvalidArgument("无效的日期: " + s)
	}
	return t, nil
}

// dayRange 把起止日期转换为 [start, end+1天) 的时间区间，空串表示不限
func dayRange(start, end string) (from, to time.Time, err error) {
	if start != "" {
		if from, err = parseDate(start); err != nil {
			return
		}
		from = startOfDay(from)
	}
	if end != "" {
		if to, err = parseDate(end); err != nil {
			return
		}
		to = startOfDay(to).AddDate(0, 0, 1)
	}
	return
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.In(time.Local).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.Local)
}

// likePattern 用于大小写不敏感的模糊查询
func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(strings.ToLower(strings.TrimSpace(s)))
	return "%" + s + "%"
}

// whereContains 追加 LOWER(col) LIKE 条件，关键字为空时原样返回
func whereContains(q *gorm.DB, col, kw string) *gorm.DB {
	if strings.TrimSpace(kw) == "" {
		return q
	}
	return q.Where("LOWER("+col+") LIKE ? ESCAPE '\\'", likePattern(kw))
}
