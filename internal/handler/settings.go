package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"admin_backend/internal/model"
	"admin_backend/internal/pkg/errs"
	"admin_backend/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Keywords 兼容数组与逗号分隔字符串两种写法
type Keywords []string

func (k *Keywords) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*k = cleanKeywords(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("seoKeywords 需要数组或逗号分隔的字符串")
	}
	*k = cleanKeywords(strings.Split(s, ","))
	return nil
}

func cleanKeywords(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type settingsRequest struct {
	SiteTitle       *string   `json:"siteTitle"`
	SiteSubtitle    *string   `json:"siteSubtitle"`
	SiteLogo        *string   `json:"siteLogo"`
	SiteFavicon     *string   `json:"siteFavicon"`
	SeoKeywords     *Keywords `json:"seoKeywords"`
	SeoDescription  *string   `json:"seoDescription"`
	SeoAuthor       *string   `json:"seoAuthor"`
	Copyright       *string   `json:"copyright"`
	IcpNumber       *string   `json:"icpNumber"`
	AnalyticsScript *string   `json:"analyticsScript"`
}

func (r settingsRequest) apply(s *model.Settings) {
	str := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	str(&s.SiteTitle, r.SiteTitle)
	str(&s.SiteSubtitle, r.SiteSubtitle)
	str(&s.SiteLogo, r.SiteLogo)
	str(&s.SiteFavicon, r.SiteFavicon)
	str(&s.SeoDescription, r.SeoDescription)
	str(&s.SeoAuthor, r.SeoAuthor)
	str(&s.Copyright, r.Copyright)
	str(&s.IcpNumber, r.IcpNumber)
	str(&s.AnalyticsScript, r.AnalyticsScript)
	if r.SeoKeywords != nil {
		s.SeoKeywords = datatypes.JSONSlice[string](*r.SeoKeywords)
	}
}

// loadSettings 单行不存在时返回零值设置
func loadSettings(db *gorm.DB) (model.Settings, error) {
	settings := model.Settings{ID: model.SettingsID}
	err := db.First(&settings, model.SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = nil
	}
	if settings.SeoKeywords == nil {
		settings.SeoKeywords = datatypes.JSONSlice[string]{}
	}
	return settings, err
}

func GetSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := loadSettings(db)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, settings)
	}
}

// UpdateSettings 合并请求体中出现的字段
func UpdateSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req settingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, errs.Wrap(errs.CodeInvalidArgument, "参数错误: "+err.Error(), err))
			return
		}

		settings, err := loadSettings(db)
		if err != nil {
			response.Error(c, err)
			return
		}
		req.apply(&settings)
		if err := db.Save(&settings).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "保存成功", settings)
	}
}
