package handler

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"admin_backend/internal/model"
	"admin_backend/internal/pkg/errs"
	"admin_backend/internal/pkg/report"
	"admin_backend/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportQueue 报表生成队列，入队不得阻塞请求
type ReportQueue interface {
	Enqueue(id uint) error
}

type reportListQuery struct {
	PageQuery
	Name      string   `form:"name"`
	Type      string   `form:"type"`
	Status    string   `form:"status"`
	StartDate string   `form:"startDate"`
	EndDate   string   `form:"endDate"`
	DateRange []string `form:"dateRange[]"`
}

type createReportRequest struct {
	Name        string   `json:"name" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	DateRange   []string `json:"dateRange"`
	Format      string   `json:"format" binding:"required"`
	IncludeData []string `json:"includeData"`
	Description string   `json:"description"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// ReportStatistics 报表统计
type ReportStatistics struct {
	TotalCount          int64       `json:"totalCount"`
	GeneratingCount     int64       `json:"generatingCount"`
	CompletedCount      int64       `json:"completedCount"`
	FailedCount         int64       `json:"failedCount"`
	TodayGeneratedCount int64       `json:"todayGeneratedCount"`
	MonthGeneratedCount int64       `json:"monthGeneratedCount"`
	TotalDownloads      int64       `json:"totalDownloads"`
	PopularTypes        []TypeCount `json:"popularTypes"`
}

func (r createReportRequest) validate() (start, end time.Time, err error) {
	if strings.TrimSpace(r.Name) == "" {
		return start, end, errs.InvalidArgument("报表名称不能为空")
	}
	if !slices.Contains(model.ReportTypes, r.Type) {
		return start, end, errs.InvalidArgument("无效的报表类型: " + r.Type)
	}
	if !slices.Contains(model.ReportFormats, r.Format) {
		return start, end, errs.InvalidArgument("无效的导出格式: " + r.Format)
	}
	if len(r.DateRange) != 2 {
		return start, end, errs.InvalidArgument("请选择日期范围")
	}
	if start, err = parseDate(r.DateRange[0]); err != nil {
		return
	}
	if end, err = parseDate(r.DateRange[1]); err != nil {
		return
	}
	if startOfDay(start).After(startOfDay(end)) {
		return start, end, errs.InvalidArgument("开始日期不能晚于结束日期")
	}
	return start, end, nil
}

// enqueueReport 入队失败时直接标记失败，不阻塞请求
func enqueueReport(db *gorm.DB, queue ReportQueue, r *model.Report) {
	if err := queue.Enqueue(r.ID); err != nil {
		log.Printf("[WARN] 报表 %d 入队失败: %v", r.ID, err)
		report.MarkFailed(db, r.ID)
		r.Status = model.ReportFailed
	}
}

func ListReports(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q reportListQuery
		if err := bindQuery(c, &q); err != nil {
			response.Error(c, err)
			return
		}
		q.Normalize()
		if len(q.DateRange) == 2 && q.StartDate == "" && q.EndDate == "" {
			q.StartDate, q.EndDate = q.DateRange[0], q.DateRange[1]
		}

		query := whereContains(db.Model(&model.Report{}), "name", q.Name)
		if q.Type != "" {
			query = query.Where("type = ?", q.Type)
		}
		if q.Status != "" {
			query = query.Where("status = ?", q.Status)
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
		var reports []model.Report
		if err := query.Order("created_at DESC, id DESC").Offset(q.Offset()).Limit(q.PageSize).Find(&reports).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, response.NewPage(reports, total, q.Page, q.PageSize))
	}
}

// ReportStats 按状态、时间和类型汇总报表
func ReportStats(db *gorm.DB) (ReportStatistics, error) {
	var s ReportStatistics
	var byStatus []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&model.Report{}).Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return s, err
	}
	for _, r := range byStatus {
		s.TotalCount += r.Count
		switch r.Status {
		case model.ReportGenerating:
			s.GeneratingCount = r.Count
		case model.ReportCompleted:
			s.CompletedCount = r.Count
		case model.ReportFailed:
			s.FailedCount = r.Count
		}
	}

	now := time.Now()
	if err := db.Model(&model.Report{}).Where("created_at >= ?", startOfDay(now)).Count(&s.TodayGeneratedCount).Error; err != nil {
		return s, err
	}
	if err := db.Model(&model.Report{}).Where("created_at >= ?", startOfMonth(now)).Count(&s.MonthGeneratedCount).Error; err != nil {
		return s, err
	}
	if err := db.Model(&model.Report{}).Select("COALESCE(SUM(download_count), 0)").Scan(&s.TotalDownloads).Error; err != nil {
		return s, err
	}

	var byType []TypeCount
	if err := db.Model(&model.Report{}).Select("type, COUNT(*) AS count").Group("type").Scan(&byType).Error; err != nil {
		return s, err
	}
	counts := make(map[string]int64, len(byType))
	for _, t := range byType {
		counts[t.Type] = t.Count
	}
	s.PopularTypes = make([]TypeCount, 0, len(model.ReportTypes))
	for _, typ := range model.ReportTypes {
		s.PopularTypes = append(s.PopularTypes, TypeCount{Type: typ, Count: counts[typ]})
	}
	return s, nil
}

func GetReportStatistics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := ReportStats(db)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, stats)
	}
}

func GetReport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var r model.Report
		if err := db.First(&r, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, r)
	}
}

// CreateReport 创建生成任务，状态为 generating，由队列异步完成
func CreateReport(db *gorm.DB, queue ReportQueue) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createReportRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		start, end, err := req.validate()
		if err != nil {
			response.Error(c, err)
			return
		}

		creatorID, creator := actor(db, c)
		include := req.IncludeData
		if include == nil {
			include = []string{}
		}
		r := model.Report{
			Name:        strings.TrimSpace(req.Name),
			Type:        req.Type,
			StartDate:   startOfDay(start).Format(time.DateOnly),
			EndDate:     startOfDay(end).Format(time.DateOnly),
			Format:      req.Format,
			Status:      model.ReportGenerating,
			Creator:     creator,
			CreatorID:   creatorID,
			Description: req.Description,
			IncludeData: datatypes.JSONSlice[string](include),
		}
		if err := db.Create(&r).Error; err != nil {
			response.Error(c, err)
			return
		}
		enqueueReport(db, queue, &r)
		response.OKWithMessage(c, "报表生成任务已创建", r)
	}
}

// RegenerateReport 重置为 generating 并重新入队
func RegenerateReport(db *gorm.DB, queue ReportQueue) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var r model.Report
		if err := db.First(&r, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		if r.Status == model.ReportGenerating {
			response.Error(c, errs.FailedPrecondition("报表正在生成中"))
			return
		}

		res := db.Model(&model.Report{}).
			Where("id = ? AND status <> ?", id, model.ReportGenerating).
			Updates(map[string]any{
				"status":       model.ReportGenerating,
				"file_size":    0,
				"file_path":    "",
				"file_name":    "",
				"download_url": "",
			})
		if res.Error != nil {
			response.Error(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			response.Error(c, errs.FailedPrecondition("报表正在生成中"))
			return
		}
		if err := db.First(&r, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		enqueueReport(db, queue, &r)
		response.OKWithMessage(c, "报表重新生成中", r)
	}
}

func DeleteReport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		res := db.Delete(&model.Report{}, id)
		if res.Error != nil {
			response.Error(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			response.Error(c, errs.NotFound("报表不存在"))
			return
		}
		response.OKWithMessage(c, "删除成功", nil)
	}
}

func BatchDeleteReports(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := bindIDs(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		res := db.Where("id IN ?", ids).Delete(&model.Report{})
		if res.Error != nil {
			response.Error(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			response.Error(c, errs.NotFound("报表不存在"))
			return
		}
		response.OKWithMessage(c, fmt.Sprintf("成功删除 %d 个报表", res.RowsAffected), gin.H{"deleted": res.RowsAffected})
	}
}

// DownloadReport 返回下载信息并累计下载次数
func DownloadReport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var r model.Report
		if err := db.First(&r, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		if r.Status != model.ReportCompleted {
			response.Error(c, errs.FailedPrecondition("报表尚未生成完成"))
			return
		}
		if err := db.Model(&model.Report{}).Where("id = ?", id).
			UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error; err != nil {
			response.Error(c, err)
			return
		}
		url := r.DownloadURL
		if url == "" {
			url = r.FilePath
		}
		response.OK(c, gin.H{
			"downloadUrl": url,
			"fileName":    report.FileName(r),
			"fileSize":    r.FileSize,
		})
	}
}
