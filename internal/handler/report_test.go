package handler

import (
	"net/http"
	"slices"
	"testing"
	"time"

	"admin_backend/internal/model"
	"admin_backend/internal/pkg/report"
	"admin_backend/internal/seed"
)

func reportBody() map[string]any {
	return map[string]any{
		"name":        "月度销售",
		"type":        "sales",
		"dateRange":   []string{"2024-03-01", "2024-03-31"},
		"format":      "excel",
		"includeData": []string{"chart"},
	}
}

func TestListReports(t *testing.T) {
	s := newTestServer(t)
	token := s.token("admin")

	tests := []struct {
		query string
		total int64
	}{
		{"", seed.ReportCount},
		{"?status=" + model.ReportFailed, 5},
		{"?type=user", 5},
		{"?type=sales&status=" + model.ReportCompleted, 0},
		{"?startDate=2024-02-01&endDate=2024-02-05", 4},
		{"?dateRange[]=2024-02-01&dateRange[]=2024-02-05", 4},
	}
	for _, tt := range tests {
		var p page[model.Report]
		s.ok(http.MethodGet, "/api/report/list"+tt.query, token, nil, &p)
		if p.Total != tt.total {
			t.Errorf("%q: total %d, want %d", tt.query, p.Total, tt.total)
		}
	}

	var p page[model.Report]
	s.ok(http.MethodGet, "/api/report/list?pageSize=25", token, nil, &p)
	for i := 1; i < len(p.List); i++ {
		if p.List[i].CreatedAt.After(p.List[i-1].CreatedAt) {
			t.Fatalf("not sorted by createdAt desc at %d", i)
		}
	}
	s.fail(http.MethodGet, "/api/report/list", s.token("user"), nil, http.StatusForbidden)
	s.fail(http.MethodGet, "/api/report/list", s.token("editor"), nil, http.StatusForbidden)
}

func TestReportStatistics(t *testing.T) {
	s := newTestServer(t)
	var stats ReportStatistics
	s.ok(http.MethodGet, "/api/report/statistics", s.token("admin"), nil, &stats)
	if stats.TotalCount != 25 || stats.CompletedCount != 20 || stats.FailedCount != 5 || stats.GeneratingCount != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.TodayGeneratedCount != 0 || stats.TotalDownloads != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(stats.PopularTypes) != len(model.ReportTypes) {
		t.Fatalf("popularTypes = %+v", stats.PopularTypes)
	}
	for i, tc := range stats.PopularTypes {
		if tc.Type != model.ReportTypes[i] || tc.Count != 5 {
			t.Errorf("popularTypes[%d] = %+v", i, tc)
		}
	}
}

func TestCreateReportEnqueues(t *testing.T) {
	s := newTestServer(t)
	token := s.token("admin")

	var r model.Report
	s.ok(http.MethodPost, "/api/report", token, reportBody(), &r)
	if r.Status != model.ReportGenerating || r.Creator != "管理员" || r.StartDate != "2024-03-01" || r.EndDate != "2024-03-31" {
		t.Fatalf("report = %+v", r)
	}
	if !slices.Equal(s.queue.ids, []uint{r.ID}) {
		t.Fatalf("queue = %v", s.queue.ids)
	}

	var stats ReportStatistics
	s.ok(http.MethodGet, "/api/report/statistics", token, nil, &stats)
	if stats.GeneratingCount != 1 || stats.TodayGeneratedCount != 1 || stats.MonthGeneratedCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

// 带时区的时间按本地日期入库，与区间校验使用同一个日期
func TestCreateReportStoresLocalDates(t *testing.T) {
	old := time.Local
	time.Local = time.FixedZone("UTC+8", 8*60*60)
	t.Cleanup(func() { time.Local = old })

	s := newTestServer(t)
	body := reportBody()
	body["dateRange"] = []string{"2024-03-01T23:30:00Z", "2024-03-02T00:30:00Z"}

	var r model.Report
	s.ok(http.MethodPost, "/api/report", s.token("admin"), body, &r)
	if r.StartDate != "2024-03-02" || r.EndDate != "2024-03-02" {
		t.Fatalf("dates = %s ~ %s", r.StartDate, r.EndDate)
	}
	var stored model.Report
	if err := s.db.First(&stored, r.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.StartDate != r.StartDate || stored.EndDate != r.EndDate {
		t.Errorf("stored = %s ~ %s", stored.StartDate, stored.EndDate)
	}
}

func TestCreateReportValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.token("admin")

	bad := []func(m map[string]any){
		func(m map[string]any) { m["type"] = "weekly" },
		func(m map[string]any) { m["format"] = "csv" },
		func(m map[string]any) { m["dateRange"] = []string{"2024-03-01"} },
		func(m map[string]any) { m["dateRange"] = []string{"2024-03-31", "2024-03-01"} },
		func(m map[string]any) { m["dateRange"] = []string{"march", "2024-03-01"} },
		func(m map[string]any) { m["name"] = "  " },
		func(m map[string]any) { delete(m, "format") },
	}
	for i, mutate := range bad {
		body := reportBody()
		mutate(body)
		if status, _ := s.do(http.MethodPost, "/api/report", token, body); status != http.StatusBadRequest {
			t.Errorf("case %d: status %d", i, status)
		}
	}
	if len(s.queue.ids) != 0 {
		t.Errorf("queue = %v", s.queue.ids)
	}
}

func TestCreateReportQueueFull(t *testing.T) {
	s := newTestServer(t)
	s.queue.err = report.ErrQueueFull

	var r model.Report
	s.ok(http.MethodPost, "/api/report", s.token("admin"), reportBody(), &r)
	if r.Status != model.ReportFailed {
		t.Fatalf("status = %s", r.Status)
	}
	var stored model.Report
	if err := s.db.First(&stored, r.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Status != model.ReportFailed {
		t.Errorf("stored status = %s", stored.Status)
	}
}

func TestRegenerateReport(t *testing.T) {
	s := newTestServer(t)
	token := s.token("admin")

	// 1 号报表已完成
	var r model.Report
	s.ok(http.MethodPost, "/api/report/1/regenerate", token, nil, &r)
	if r.Status != model.ReportGenerating || r.FileName != "" || r.FileSize != 0 || r.DownloadURL != "" {
		t.Fatalf("report = %+v", r)
	}
	if !slices.Equal(s.queue.ids, []uint{1}) {
		t.Fatalf("queue = %v", s.queue.ids)
	}
	s.fail(http.MethodPost, "/api/report/1/regenerate", token, nil, http.StatusBadRequest)
	s.fail(http.MethodGet, "/api/report/1/download", token, nil, http.StatusBadRequest)

	// 失败的报表也可以重新生成
	var failed model.Report
	s.ok(http.MethodPost, "/api/report/5/regenerate", token, nil, &failed)
	if failed.ID != 5 || failed.Status != model.ReportGenerating || failed.FileName != "" {
		t.Fatalf("report 5 = %+v", failed)
	}
	s.fail(http.MethodPost, "/api/report/999/regenerate", token, nil, http.StatusNotFound)
}

func TestDownloadReport(t *testing.T) {
	s := newTestServer(t)
	token := s.token("admin")

	s.fail(http.MethodGet, "/api/report/5/download", token, nil, http.StatusBadRequest)

	var stored model.Report
	if err := s.db.First(&stored, 2).Error; err != nil {
		t.Fatal(err)
	}
	var info struct {
		DownloadURL string `json:"downloadUrl"`
		FileName    string `json:"fileName"`
		FileSize    int64  `json:"fileSize"`
	}
	s.ok(http.MethodGet, "/api/report/2/download", token, nil, nil)
	s.ok(http.MethodGet, "/api/report/2/download", token, nil, &info)
	if info.DownloadURL != stored.DownloadURL || info.FileName != report.FileName(stored) || info.FileSize != stored.FileSize {
		t.Fatalf("info = %+v", info)
	}

	var after model.Report
	s.ok(http.MethodGet, "/api/report/2", token, nil, &after)
	if after.DownloadCount != 2 {
		t.Errorf("downloadCount = %d", after.DownloadCount)
	}
}

func TestDeleteReports(t *testing.T) {
	s := newTestServer(t)
	token := s.token("admin")

	s.ok(http.MethodDelete, "/api/report/1", token, nil, nil)
	s.fail(http.MethodDelete, "/api/report/1", token, nil, http.StatusNotFound)
	s.fail(http.MethodGet, "/api/report/1", token, nil, http.StatusNotFound)

	var res struct {
		Deleted int64 `json:"deleted"`
	}
	s.ok(http.MethodDelete, "/api/report/batch", token, map[string]any{"ids": []int{1, 2, 3}}, &res)
	if res.Deleted != 2 {
		t.Fatalf("deleted = %d", res.Deleted)
	}
	s.fail(http.MethodDelete, "/api/report/batch", token, map[string]any{"ids": []int{0, -1}}, http.StatusBadRequest)
	s.fail(http.MethodDelete, "/api/report/batch", token, map[string]any{"ids": []int{998}}, http.StatusNotFound)

	var n int64
	s.db.Model(&model.Report{}).Count(&n)
	if n != seed.ReportCount-3 {
		t.Errorf("reports left = %d", n)
	}
}
