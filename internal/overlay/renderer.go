package overlay

import "errors"

// 渲染面的约定错误。DrawTextBox 用它们区分可换策略重试的失败。
var (
	// ErrOverflow 文本在给定字号下放不进盒子
	ErrOverflow = errors.New("文本超出包围盒")
	// ErrFontUnsupported 渲染面不支持请求的字体
	ErrFontUnsupported = errors.New("渲染面不支持该字体")
)

// Rect 矩形区域，左上原点、y 向下
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Inflate 向四周扩展 pad，并裁剪到页面边界内
func (r Rect) Inflate(pad, pageWidth, pageHeight float64) Rect {
	out := Rect{
		X:      r.X - pad,
		Y:      r.Y - pad,
		Width:  r.Width + 2*pad,
		Height: r.Height + 2*pad,
	}
	if out.X < 0 {
		out.Width += out.X
		out.X = 0
	}
	if out.Y < 0 {
		out.Height += out.Y
		out.Y = 0
	}
	if out.X+out.Width > pageWidth {
		out.Width = pageWidth - out.X
	}
	if out.Y+out.Height > pageHeight {
		out.Height = pageHeight - out.Y
	}
	return out
}

// FlipY 转换到左下原点、y 向上的坐标系。
// 返回矩形的 Y 是下边缘在目标坐标系中的位置。
func (r Rect) FlipY(pageHeight float64) Rect {
	return Rect{
		X:      r.X,
		Y:      pageHeight - r.Y - r.Height,
		Width:  r.Width,
		Height: r.Height,
	}
}

// Color RGB 颜色，分量取值 [0,1]
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// White 遮白填充色
var White = Color{1, 1, 1}

// TextOptions 文本绘制参数。译文总是黑色、左对齐。
// HTMLBox 表示交给渲染面自动排版，此时字体和字号仅作参考。
type TextOptions struct {
	Font     string
	FontSize float64
	HTMLBox  bool
}

// Renderer 渲染面。合成器按内部坐标系（左上原点）发出指令，
// 渲染面负责转换到自己的原生坐标系。
type Renderer interface {
	// StartPage 开始一页。width、height 是页面尺寸（点）。
	StartPage(number int, width, height float64) error
	// FillRect 用纯色填充区域
	FillRect(rect Rect, color Color) error
	// DrawTextBox 在区域内绘制文本。
	// 放不下返回 ErrOverflow，字体不可用返回 ErrFontUnsupported。
	DrawTextBox(rect Rect, text string, opts TextOptions) error
	// Flush 落盘所有累积的绘制结果
	Flush() error
}
