package document

import (
	"bytes"
	"io"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText 检测并转换文本编码。
// 块数据和术语表偶尔来自其他工具链导出的非 UTF-8 文件，
// 这里按 UTF-8、BOM、常见编码的顺序尝试，全部失败时原样返回。
func DecodeText(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	if utf8.Valid(data) {
		return string(data)
	}

	// 检查 BOM
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return string(data[3:])
	}

	if len(data) >= 2 {
		if data[0] == 0xFF && data[1] == 0xFE {
			// UTF-16 LE BOM
			dec := xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewDecoder()
			res, err := io.ReadAll(transform.NewReader(bytes.NewReader(data[2:]), dec))
			if err == nil && utf8.Valid(res) {
				return string(res)
			}
		} else if data[0] == 0xFE && data[1] == 0xFF {
			// UTF-16 BE BOM
			dec := xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM).NewDecoder()
			res, err := io.ReadAll(transform.NewReader(bytes.NewReader(data[2:]), dec))
			if err == nil && utf8.Valid(res) {
				return string(res)
			}
		}
	}

	// 尝试常见编码
	encodings := []encoding.Encoding{
		simplifiedchinese.GBK,
		simplifiedchinese.GB18030,
		traditionalchinese.Big5,
		japanese.ShiftJIS,
		japanese.EUCJP,
		korean.EUCKR,
		charmap.Windows1252,
		charmap.ISO8859_1,
		xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM),
		xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM),
	}

	for _, enc := range encodings {
		dec := enc.NewDecoder()
		res, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), dec))
		if err == nil && utf8.Valid(res) && isReasonableText(string(res)) {
			return string(res)
		}
	}

	return string(data)
}

// isReasonableText 检查解码结果是否像正常文本：可打印字符超过九成
func isReasonableText(text string) bool {
	if len(text) == 0 {
		return false
	}

	printableCount := 0
	total := 0
	for _, r := range text {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printableCount++
		}
	}

	return float64(printableCount)/float64(total) > 0.9
}
