package extractor

import "strings"

// 出现即判定为操作符残渣的 PostScript 关键字
var psKeywords = []string{
	"currentpoint", "gsave", "grestore", "newpath", "closepath",
	"setrgbcolor", "setgray", "setlinewidth", "showpage",
	"moveto", "lineto", "curveto",
}

// isPostScriptCode 判断文本是否是混进内容流的 PostScript/PDF 操作符。
// 部分生成器会把内部命令当文本写进页面，这些内容不应进入翻译流程。
func isPostScriptCode(text string) bool {
	if text == "" {
		return false
	}

	lower := strings.ToLower(text)

	// "/name ... def" 形式的定义语句
	if strings.Contains(text, "/") &&
		(strings.Contains(text, " def ") || strings.HasSuffix(text, " def")) {
		return true
	}
	if strings.Contains(lower, "null def") {
		return true
	}

	// 超链接注入用的内部标记
	if strings.Contains(text, "@stx") || strings.Contains(text, "@etx") {
		return true
	}
	if strings.Contains(lower, "/burl") || strings.Contains(lower, "burl@") {
		return true
	}

	for _, kw := range psKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	// 多个 /Name 形式的 PostScript 名字连续出现。URL 里也有斜杠，先排除
	if !strings.Contains(text, "://") && !strings.Contains(lower, "http") {
		slashNames := 0
		for _, word := range strings.Fields(text) {
			if len(word) > 1 && word[0] == '/' && isPostScriptName(word[1:]) {
				slashNames++
			}
		}
		if slashNames >= 3 {
			return true
		}
	}

	return false
}

func isPostScriptName(s string) bool {
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' && c != '@' {
			return false
		}
	}
	return true
}

// hasExcessiveNonPrintable 控制字符占比超过一成的块视为乱码
func hasExcessiveNonPrintable(text string) bool {
	if text == "" {
		return false
	}

	nonPrintable := 0
	total := 0
	for _, r := range text {
		total++
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			nonPrintable++
		}
		if r >= 0x7F && r <= 0x9F {
			nonPrintable++
		}
	}

	return float64(nonPrintable)/float64(total) > 0.1
}
