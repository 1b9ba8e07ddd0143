package handler

import (
	"strings"

	"admin_backend/internal/model"
	"admin_backend/internal/pkg/errs"
	"admin_backend/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type menuQuery struct {
	Name   string `form:"name"`
	Status string `form:"status"`
	Type   string `form:"type"`
}

type menuRequest struct {
	ParentID    *uint     `json:"parentId"`
	Name        *string   `json:"name"`
	Path        *string   `json:"path"`
	Component   *string   `json:"component"`
	Redirect    *string   `json:"redirect"`
	Icon        *string   `json:"icon"`
	Type        *int      `json:"type"`
	Status      *int      `json:"status"`
	Sort        *int      `json:"sort"`
	Permissions *[]string `json:"permissions"`
	Hidden      *bool     `json:"hidden"`
	KeepAlive   *bool     `json:"keepAlive"`
}

func (r menuRequest) validate() error {
	if r.Type != nil && (*r.Type < model.MenuTypeDirectory || *r.Type > model.MenuTypeButton) {
		return errs.InvalidArgument("无效的菜单类型")
	}
	if r.Status != nil && *r.Status != model.StatusEnabled && *r.Status != model.StatusDisabled {
		return errs.InvalidArgument("无效的状态")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return errs.InvalidArgument("菜单名称不能为空")
	}
	return nil
}

func (r menuRequest) apply(m *model.Menu) {
	if r.ParentID != nil {
		m.ParentID = *r.ParentID
	}
	if r.Name != nil {
		m.Name = strings.TrimSpace(*r.Name)
	}
	if r.Path != nil {
		m.Path = *r.Path
	}
	if r.Component != nil {
		m.Component = *r.Component
	}
	if r.Redirect != nil {
		m.Redirect = *r.Redirect
	}
	if r.Icon != nil {
		m.Icon = *r.Icon
	}
	if r.Type != nil {
		m.Type = *r.Type
	}
	if r.Status != nil {
		m.Status = *r.Status
	}
	if r.Sort != nil {
		m.Sort = *r.Sort
	}
	if r.Permissions != nil {
		m.Permissions = datatypes.JSONSlice[string](append([]string{}, *r.Permissions...))
	}
	if r.Hidden != nil {
		m.Hidden = *r.Hidden
	}
	if r.KeepAlive != nil {
		m.KeepAlive = *r.KeepAlive
	}
}

// BuildMenuTree 按 ParentID 组装树，父节点不在集合中的节点视为根节点。
// 输入顺序即兄弟节点顺序。
func BuildMenuTree(menus []model.Menu) []*model.Menu {
	nodes := make(map[uint]*model.Menu, len(menus))
	for i := range menus {
		menus[i].Children = nil
		nodes[menus[i].ID] = &menus[i]
	}
	roots := make([]*model.Menu, 0)
	for i := range menus {
		node := &menus[i]
		if parent, ok := nodes[node.ParentID]; ok && node.ParentID != node.ID {
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}
	return roots
}

// checkParent 校验父节点存在，且不是自身或自身的后代
func checkParent(db *gorm.DB, id, parentID uint) error {
	if parentID == 0 {
		return nil
	}
	if parentID == id {
		return errs.InvalidArgument("上级菜单不能是自身")
	}

	var rows []model.Menu
	if err := db.Select("id, parent_id").Find(&rows).Error; err != nil {
		return err
	}
	parents := make(map[uint]uint, len(rows))
	for _, r := range rows {
		parents[r.ID] = r.ParentID
	}
	if _, ok := parents[parentID]; !ok {
		return errs.InvalidArgument("上级菜单不存在")
	}
	if id == 0 {
		return nil
	}
	// 沿父链向上，遇到自身说明形成环
	for cur, steps := parentID, 0; cur != 0 && steps <= len(rows); steps++ {
		if cur == id {
			return errs.InvalidArgument("不能移动到自身的子菜单下")
		}
		cur = parents[cur]
	}
	return nil
}

// ListMenus 返回菜单树
func ListMenus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q menuQuery
		if err := bindQuery(c, &q); err != nil {
			response.Error(c, err)
			return
		}

		query := whereContains(db.Model(&model.Menu{}), "name", q.Name)
		for col, raw := range map[string]string{"status": q.Status, "type": q.Type} {
			v, ok, err := optInt(raw)
			if err != nil {
				response.Error(c, err)
				return
			}
			if ok {
				query = query.Where(col+" = ?", v)
			}
		}

		var menus []model.Menu
		if err := query.Order("sort ASC, id ASC").Find(&menus).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, BuildMenuTree(menus))
	}
}

func GetMenu(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var menu model.Menu
		if err := db.First(&menu, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, menu)
	}
}

func CreateMenu(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req menuRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if req.Name == nil {
			response.Error(c, errs.InvalidArgument("菜单名称不能为空"))
			return
		}
		if err := req.validate(); err != nil {
			response.Error(c, err)
			return
		}

		menu := model.Menu{
			Type:        model.MenuTypeMenu,
			Status:      model.StatusEnabled,
			Permissions: datatypes.JSONSlice[string]{},
		}
		req.apply(&menu)
		if err := checkParent(db, 0, menu.ParentID); err != nil {
			response.Error(c, err)
			return
		}
		if err := db.Create(&menu).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "创建成功", menu)
	}
}

func UpdateMenu(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var req menuRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if err := req.validate(); err != nil {
			response.Error(c, err)
			return
		}

		var menu model.Menu
		if err := db.First(&menu, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		if req.ParentID != nil && *req.ParentID != menu.ParentID {
			if err := checkParent(db, id, *req.ParentID); err != nil {
				response.Error(c, err)
				return
			}
		}
		req.apply(&menu)
		if menu.Permissions == nil {
			menu.Permissions = datatypes.JSONSlice[string]{}
		}
		if err := db.Save(&menu).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "更新成功", menu)
	}
}

// DeleteMenu 存在子菜单时不可删除
func DeleteMenu(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		var menu model.Menu
		if err := db.First(&menu, id).Error; err != nil {
			response.Error(c, err)
			return
		}
		var children int64
		if err := db.Model(&model.Menu{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			response.Error(c, err)
			return
		}
		if children > 0 {
			response.Error(c, errs.FailedPrecondition("请先删除子菜单"))
			return
		}
		if err := db.Delete(&menu).Error; err != nil {
			response.Error(c, err)
			return
		}
		response.OKWithMessage(c, "删除成功", nil)
	}
}
