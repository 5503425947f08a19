package layout

import (
	"github.com/mattn/go-runewidth"
)

// Options 字号适配的阈值配置
type Options struct {
	MinFontSize   float64 `mapstructure:"min_font_size"`  // 钳制下限
	MaxFontSize   float64 `mapstructure:"max_font_size"`  // 钳制上限
	ReadableFloor float64 `mapstructure:"readable_floor"` // 单行缩放的可读下限，低于它改走多行
	LineHeight    float64 `mapstructure:"line_height"`    // 行高倍数
	NarrowWeight  float64 `mapstructure:"narrow_weight"`  // 半角字符相对字号的宽度权重
}

// DefaultOptions 返回默认的适配参数
func DefaultOptions() Options {
	return Options{
		MinFontSize:   5,
		MaxFontSize:   14,
		ReadableFloor: 6,
		LineHeight:    1.2,
		NarrowWeight:  0.5,
	}
}

// FitResult 一次适配的结果
type FitResult struct {
	FontSize float64 // 适配后的字号
	Lines    int     // 预计占用的行数
}

// Fitter 根据原始包围盒估算译文的渲染字号。
// 这里只做快速估宽，不做真正的字形排版：全角字符按一个字号宽、
// 半角按半个字号宽，牺牲精度换取跨文字体系的通用性和速度。
type Fitter struct {
	opts Options
}

// New 创建适配器
func New(opts Options) *Fitter {
	return &Fitter{opts: opts}
}

// NewDefault 使用默认参数创建适配器
func NewDefault() *Fitter {
	return New(DefaultOptions())
}

// EstimateWidth 估算文本按单行渲染的宽度。
// 宽度权重来自终端单元格宽度：全角 1.0、半角 0.5、零宽字符不计。
func (f *Fitter) EstimateWidth(text string, fontSize float64) float64 {
	var width float64
	for _, r := range text {
		width += float64(runewidth.RuneWidth(r)) * f.opts.NarrowWeight * fontSize
	}
	return width
}

// Fit 在包围盒内为译文选择字号。
// 退化的包围盒（宽或高不为正）原样返回输入字号；
// 其余情况下结果总会钳制在 [MinFontSize, MaxFontSize] 区间内。
func (f *Fitter) Fit(text string, fontSize, boxWidth, boxHeight float64) FitResult {
	if boxWidth <= 0 || boxHeight <= 0 {
		return FitResult{FontSize: fontSize, Lines: 1}
	}

	estimated := f.EstimateWidth(text, fontSize)
	if estimated <= boxWidth {
		return FitResult{FontSize: f.clamp(fontSize), Lines: 1}
	}

	scale := boxWidth / estimated
	adjusted := fontSize * scale
	if adjusted >= f.opts.ReadableFloor {
		return FitResult{FontSize: f.clamp(adjusted), Lines: 1}
	}

	// 单行缩放已小到难以辨认，尝试折行
	linesNeeded := estimated / boxWidth
	lineHeight := fontSize * f.opts.LineHeight
	if linesNeeded*lineHeight <= boxHeight {
		size := boxHeight / (linesNeeded * f.opts.LineHeight)
		if size > fontSize {
			size = fontSize
		}
		return FitResult{FontSize: f.clamp(size), Lines: ceilLines(linesNeeded)}
	}

	return FitResult{FontSize: f.clamp(f.opts.ReadableFloor), Lines: ceilLines(linesNeeded)}
}

func (f *Fitter) clamp(size float64) float64 {
	if size < f.opts.MinFontSize {
		return f.opts.MinFontSize
	}
	if size > f.opts.MaxFontSize {
		return f.opts.MaxFontSize
	}
	return size
}

func ceilLines(n float64) int {
	lines := int(n)
	if float64(lines) < n {
		lines++
	}
	if lines < 1 {
		lines = 1
	}
	return lines
}
