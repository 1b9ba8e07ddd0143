package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid  = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	fileNameBad  = regexp.MustCompile(`[^a-zA-Z0-9\x{4e00}-\x{9fa5}]`)
	foldCaser    = cases.Fold()
	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify 去掉变音符号、统一小写，非字母数字折叠为 "-"。
// 例如 "Node.js" -> "node-js"，"Café Déjà" -> "cafe-deja"。中文保留原字符。
func Slugify(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	out = foldCaser.String(out)
	out = slugInvalid.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// SafeFileName 只保留英文字母、数字和基本区汉字（U+4E00..U+9FA5），其余替换为 "_"。
// 扩展区汉字和〇这类 Han 字符同样替换。
func SafeFileName(name string) string {
	return fileNameBad.ReplaceAllString(name, "_")
}
