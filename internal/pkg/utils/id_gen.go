package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
)

// GenerateID 由前缀和若干 key 派生 16 位十六进制 ID，相同输入得到相同结果
func GenerateID(pre string, keys ...string) string {
	h := md5.New()
	for _, key := range keys {
		io.WriteString(h, key)
	}
	hash := hex.EncodeToString(h.Sum(nil))[:16]
	return fmt.Sprintf("%s%s", pre, hash)
}
