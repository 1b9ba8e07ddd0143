package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// hashCost 默认 10；种子数据和测试会批量哈希，过高会明显拖慢启动
var hashCost = bcrypt.DefaultCost

// SetHashCost 调整 bcrypt cost，测试中使用 bcrypt.MinCost
func SetHashCost(cost int) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	hashCost = cost
}

// HashPassword 生成密码哈希
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	return string(bytes), err
}

// CheckPassword 验证密码，第一个参数是明文，第二个是哈希
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
