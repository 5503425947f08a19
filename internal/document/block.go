package document

import (
	"fmt"
	"sort"
)

// 页面尺寸缺失时使用 US Letter 点数
const (
	DefaultPageWidth  = 612.0
	DefaultPageHeight = 792.0
)

// 块类型的线格式取值
const (
	BlockTypeText        = "text"
	BlockTypeFormula     = "formula"
	BlockTypeLineNumbers = "line_numbers"
)

// Block 页面上一段连续文本及其包围盒。
// 坐标系为左上原点、y 向下，单位是 PDF 点。
// TranslatedText 为空表示该块尚未翻译或被跳过；
// FontSize 是适配后的渲染字号，缺省时由排版器重新估算。
type Block struct {
	ID             string  `json:"id"`
	Page           int     `json:"page"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Text           string  `json:"text"`
	BlockType      string  `json:"block_type"`
	Translatable   bool    `json:"translatable"`
	TranslatedText string  `json:"translated_text,omitempty"`
	FontSize       float64 `json:"font_size,omitempty"`
}

// BlockID 生成块的标准标识
func BlockID(page, index int) string {
	return fmt.Sprintf("page_%d_block_%d", page, index)
}

// PageInfo 单页的几何信息
type PageInfo struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document 一次抽取或翻译的完整结果
type Document struct {
	Pages  []PageInfo `json:"pages,omitempty"`
	Blocks []Block    `json:"blocks"`
}

// PageSize 返回指定页的尺寸，没有记录时退回默认页面大小
func (d *Document) PageSize(number int) (width, height float64) {
	for _, p := range d.Pages {
		if p.Number == number {
			if p.Width > 0 && p.Height > 0 {
				return p.Width, p.Height
			}
			break
		}
	}
	return DefaultPageWidth, DefaultPageHeight
}

// PageNumbers 返回文档中出现过的页号，升序。
// 以块为准，几何信息只作补充，避免空页混入。
func (d *Document) PageNumbers() []int {
	seen := make(map[int]struct{})
	for _, b := range d.Blocks {
		seen[b.Page] = struct{}{}
	}
	numbers := make([]int, 0, len(seen))
	for n := range seen {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// BlocksOnPage 返回指定页上的块，保持原有顺序
func (d *Document) BlocksOnPage(number int) []Block {
	var blocks []Block
	for _, b := range d.Blocks {
		if b.Page == number {
			blocks = append(blocks, b)
		}
	}
	return blocks
}
