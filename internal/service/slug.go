package service

import (
	"strings"
	"unicode"
)

// Slugify 从标题派生对外使用的标识。保留 Unicode 字母与数字（日文标题常见），
// 其余字符折叠为单个连字符。
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
