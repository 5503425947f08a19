package extractor

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-paper-overlay/internal/classifier"
	"github.com/nerdneilsfield/go-paper-overlay/internal/document"
)

const (
	defaultFontSize = 10.0
	// 同一行内基线的容差，排序时低于它视为同一行
	rowYTolerance = 5.0
	// 近似字体度量：上缘取 0.8 倍字号，行高取 1.2 倍
	ascentFactor     = 0.8
	lineHeightFactor = 1.2
)

// Extractor 从 PDF 中按行抽取文本块并分类。
// 抽取出的坐标统一转换成左上原点、y 向下的内部坐标系。
type Extractor struct {
	classifier *classifier.Classifier
	logger     *zap.Logger
}

// New 创建抽取器
func New(cls *classifier.Classifier, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{classifier: cls, logger: logger}
}

// Extract 抽取整个 PDF 的文本块
func (e *Extractor) Extract(pdfPath string) (*document.Document, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("打开 PDF 失败: %w", err)
	}
	defer f.Close()

	doc := &document.Document{}
	totalPages := r.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		if page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}

		pageWidth, pageHeight := mediaBoxSize(page)
		doc.Pages = append(doc.Pages, document.PageInfo{
			Number: pageNum,
			Width:  pageWidth,
			Height: pageHeight,
		})

		rows, err := page.GetTextByRow()
		if err != nil {
			e.logger.Warn("读取页面文本失败，跳过该页",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}

		blocks := e.collectRows(rows, pageNum, pageHeight)
		doc.Blocks = append(doc.Blocks, blocks...)
	}

	e.logger.Info("PDF 抽取完成",
		zap.String("path", pdfPath),
		zap.Int("pages", totalPages),
		zap.Int("blocks", len(doc.Blocks)))

	return doc, nil
}

// PageSizes 只读取每页的 MediaBox 尺寸，不抽取文本。
// 用于给缺少页面信息的块文件补齐几何。
func PageSizes(pdfPath string) ([]document.PageInfo, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("打开 PDF 失败: %w", err)
	}
	defer f.Close()

	var pages []document.PageInfo
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		width, height := mediaBoxSize(page)
		pages = append(pages, document.PageInfo{Number: pageNum, Width: width, Height: height})
	}
	return pages, nil
}

// collectRows 把一页的行合并成块，过滤排版残渣并分类
func (e *Extractor) collectRows(rows pdf.Rows, pageNum int, pageHeight float64) []document.Block {
	var blocks []document.Block

	for _, row := range rows {
		if len(row.Content) == 0 {
			continue
		}

		var builder strings.Builder
		var minX, right, baseline float64
		var totalFontSize float64
		counted := 0

		for _, t := range row.Content {
			if t.S == "" {
				continue
			}
			// PDF 操作符残渣不算正文
			if isPostScriptCode(t.S) {
				continue
			}

			builder.WriteString(t.S)

			if counted == 0 {
				minX = t.X
				right = t.X + t.W
				baseline = t.Y
			} else {
				if t.X < minX {
					minX = t.X
				}
				if t.X+t.W > right {
					right = t.X + t.W
				}
				if t.Y > baseline {
					baseline = t.Y
				}
			}
			totalFontSize += t.FontSize
			counted++
		}

		text := strings.TrimSpace(builder.String())
		if text == "" {
			continue
		}
		if isPostScriptCode(text) || hasExcessiveNonPrintable(text) {
			continue
		}

		fontSize := defaultFontSize
		if counted > 0 && totalFontSize > 0 {
			fontSize = totalFontSize / float64(counted)
		}

		width := right - minX
		if width <= 0 {
			// 个别字体不带宽度信息，按半角字符近似
			width = float64(utf8.RuneCountInString(text)) * fontSize * 0.5
		}
		height := fontSize * lineHeightFactor

		// PDF 坐标是左下原点 y 向上，这里转成内部的左上原点 y 向下
		top := pageHeight - (baseline + fontSize*ascentFactor)
		if top < 0 {
			top = 0
		}

		result := e.classifier.Classify(text)
		blockType := string(result.Category)
		if e.classifier.IsLineNumber(text) {
			blockType = document.BlockTypeLineNumbers
		}

		blocks = append(blocks, document.Block{
			Page:         pageNum,
			X:            minX,
			Y:            top,
			Width:        width,
			Height:       height,
			Text:         text,
			BlockType:    blockType,
			Translatable: result.Translatable,
			FontSize:     fontSize,
		})
	}

	// 阅读顺序：内部坐标 y 越小越靠上，同一行内从左到右
	sort.SliceStable(blocks, func(i, j int) bool {
		if abs(blocks[i].Y-blocks[j].Y) < rowYTolerance {
			return blocks[i].X < blocks[j].X
		}
		return blocks[i].Y < blocks[j].Y
	})

	for i := range blocks {
		blocks[i].ID = document.BlockID(pageNum, i)
	}

	return blocks
}

// mediaBoxSize 读取页面尺寸，沿 Parent 链解析继承值
func mediaBoxSize(page pdf.Page) (width, height float64) {
	v := page.V
	for !v.IsNull() {
		mb := v.Key("MediaBox")
		if mb.Kind() == pdf.Array && mb.Len() == 4 {
			x0 := mb.Index(0).Float64()
			y0 := mb.Index(1).Float64()
			x1 := mb.Index(2).Float64()
			y1 := mb.Index(3).Float64()
			w := x1 - x0
			h := y1 - y0
			if w > 0 && h > 0 {
				return w, h
			}
		}
		v = v.Key("Parent")
	}
	return document.DefaultPageWidth, document.DefaultPageHeight
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
