package model

import (
	"time"

	"gorm.io/datatypes"
)

// SettingsID 系统设置只有一行
const SettingsID = 1

type Settings struct {
	ID              uint                        `gorm:"primaryKey" json:"-"`
	SiteTitle       string                      `gorm:"type:varchar(128)" json:"siteTitle"`
	SiteSubtitle    string                      `gorm:"type:varchar(255)" json:"siteSubtitle"`
	SiteLogo        string                      `gorm:"type:varchar(255)" json:"siteLogo"`
	SiteFavicon     string                      `gorm:"type:varchar(255)" json:"siteFavicon"`
	SeoKeywords     datatypes.JSONSlice[string] `json:"seoKeywords"`
	SeoDescription  string                      `gorm:"type:text" json:"seoDescription"`
	SeoAuthor       string                      `gorm:"type:varchar(128)" json:"seoAuthor"`
	Copyright       string                      `gorm:"type:varchar(255)" json:"copyright"`
	IcpNumber       string                      `gorm:"type:varchar(64)" json:"icpNumber"`
	AnalyticsScript string                      `gorm:"type:text" json:"analyticsScript"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}
