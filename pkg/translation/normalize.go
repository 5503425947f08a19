package translation

import (
	"strings"
	"unicode"
)

// Normalize 生成缓存键：移除文本中的全部空白字符。
// 提取阶段和缓存来源对同一段文字的换行、缩进往往不一致，
// 只有完全去掉空白后才能互相比对。存入和查询必须使用同一变换。
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
