package cache

import (
	"sync"

	"admin_backend/internal/model"
	"admin_backend/internal/pkg/rbac"

	"gorm.io/gorm"
)

// PermissionCache 线程安全的角色权限缓存
// 映射: 角色编码 -> 权限码列表，只包含启用的角色
type PermissionCache struct {
	sync.RWMutex
	mapping map[string][]string
}

var GlobalPermissions = NewPermissionCache()

func NewPermissionCache() *PermissionCache {
	return &PermissionCache{mapping: make(map[string][]string)}
}

// InitPermissionCache 从数据库加载全部角色
func InitPermissionCache(db *gorm.DB) error {
	return GlobalPermissions.Reload(db)
}

// Reload 全量加载，角色增删改后调用
func (c *PermissionCache) Reload(db *gorm.DB) error {
	var roles []model.Role
	if err := db.Select("code, permissions, status").Find(&roles).Error; err != nil {
		return err
	}

	mapping := make(map[string][]string, len(roles))
	for _, r := range roles {
		if r.Status != model.StatusEnabled {
			// 禁用角色记为空权限，避免回落到内置默认值
			mapping[r.Code] = nil
			continue
		}
		mapping[r.Code] = append([]string(nil), r.Permissions...)
	}

	c.Lock()
	defer c.Unlock()
	c.mapping = mapping
	return nil
}

// Permissions 合并多个角色的权限并去重。
// 缓存中没有的角色使用内置默认权限。
func (c *PermissionCache) Permissions(roles []string) []string {
	c.RLock()
	defer c.RUnlock()

	lists := make([][]string, 0, len(roles))
	for _, role := range roles {
		if perms, ok := c.mapping[role]; ok {
			lists = append(lists, perms)
			continue
		}
		lists = append(lists, rbac.RolePermissions(role))
	}
	return rbac.Union(lists...)
}
