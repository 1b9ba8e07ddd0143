package model

import "gorm.io/datatypes"

// 报表状态
const (
	ReportGenerating = "generating"
	ReportCompleted  = "completed"
	ReportFailed     = "failed"
)

var (
	ReportTypes   = []string{"sales", "user", "content", "visit", "financial"}
	ReportFormats = []string{"excel", "pdf"}
)

// Report 报表生成任务。文件字段只在 completed 时有值。
type Report struct {
	Base
	Name          string                      `gorm:"type:varchar(128);not null" json:"name"`
	Type          string                      `gorm:"type:varchar(16);index;not null" json:"type"`
	StartDate     string                      `gorm:"type:varchar(10)" json:"startDate"`
	EndDate       string                      `gorm:"type:varchar(10)" json:"endDate"`
	Format        string                      `gorm:"type:varchar(8);not null" json:"format"`
	Status        string                      `gorm:"type:varchar(16);index;not null" json:"status"`
	FileSize      int64                       `json:"fileSize,omitempty"`
	FilePath      string                      `gorm:"type:varchar(255)" json:"-"`
	FileName      string                      `gorm:"type:varchar(255)" json:"fileName,omitempty"`
	DownloadURL   string                      `gorm:"type:varchar(255)" json:"downloadUrl,omitempty"`
	Creator       string                      `gorm:"type:varchar(64)" json:"creator"`
	CreatorID     uint                        `gorm:"index" json:"creatorId"`
	Description   string                      `gorm:"type:varchar(255)" json:"description,omitempty"`
	IncludeData   datatypes.JSONSlice[string] `json:"includeData"`
	DownloadCount int64                       `gorm:"not null" json:"downloadCount"`
}
