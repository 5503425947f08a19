package overlay

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nerdneilsfield/go-paper-overlay/internal/layout"
)

// Origin 渲染计划使用的坐标系
type Origin string

const (
	OriginTopLeft    Origin = "top-left"
	OriginBottomLeft Origin = "bottom-left"
)

const planVersion = "1"

// 操作类型
const (
	OpFillRect = "fill_rect"
	OpTextBox  = "text_box"
	OpHTMLBox  = "html_box"
)

// ErrNoPage 在 StartPage 之前发出了绘制指令
var ErrNoPage = errors.New("尚未开始页面")

// RenderPlan 渲染计划的线格式。下游工具按 ops 顺序重放即可得到成品页面。
type RenderPlan struct {
	Version string      `json:"version"`
	Origin  Origin      `json:"origin"`
	Pages   []*PlanPage `json:"pages"`
}

// PlanPage 单页的绘制指令序列
type PlanPage struct {
	Number int      `json:"number"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Ops    []PlanOp `json:"ops"`
}

// PlanOp 一条绘制指令
type PlanOp struct {
	Op       string  `json:"op"`
	Rect     Rect    `json:"rect"`
	Color    *Color  `json:"color,omitempty"`
	Text     string  `json:"text,omitempty"`
	Font     string  `json:"font,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
}

// PlanOption 配置计划渲染面
type PlanOption func(*PlanRenderer)

// WithOrigin 指定计划使用的坐标系，默认左上原点
func WithOrigin(origin Origin) PlanOption {
	return func(p *PlanRenderer) {
		p.plan.Origin = origin
	}
}

// WithFonts 限定渲染面支持的字体集合
func WithFonts(fonts ...string) PlanOption {
	return func(p *PlanRenderer) {
		p.supported = make(map[string]struct{}, len(fonts))
		for _, f := range fonts {
			p.supported[f] = struct{}{}
		}
	}
}

// PlanRenderer 把绘制指令累积成 JSON 渲染计划的渲染面。
// 文本是否放得下用与排版器相同的快速估宽判断，偏保守。
type PlanRenderer struct {
	plan      RenderPlan
	current   *PlanPage
	supported map[string]struct{}
	fitter    *layout.Fitter
	path      string
}

// NewPlanRenderer 创建计划渲染面。path 为空时只在内存中累积。
func NewPlanRenderer(path string, opts ...PlanOption) *PlanRenderer {
	p := &PlanRenderer{
		plan: RenderPlan{Version: planVersion, Origin: OriginTopLeft},
		supported: map[string]struct{}{
			FontCJK:       {},
			FontHelvetica: {},
		},
		fitter: layout.NewDefault(),
		path:   path,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StartPage 开始一页
func (p *PlanRenderer) StartPage(number int, width, height float64) error {
	page := &PlanPage{Number: number, Width: width, Height: height}
	p.plan.Pages = append(p.plan.Pages, page)
	p.current = page
	return nil
}

// FillRect 记录一条填充指令
func (p *PlanRenderer) FillRect(rect Rect, color Color) error {
	if p.current == nil {
		return ErrNoPage
	}
	c := color
	p.current.Ops = append(p.current.Ops, PlanOp{
		Op:    OpFillRect,
		Rect:  p.convert(rect),
		Color: &c,
	})
	return nil
}

// DrawTextBox 记录一条文本指令。
// HTML 盒子交给重放方自动排版，永远视为成功。
func (p *PlanRenderer) DrawTextBox(rect Rect, text string, opts TextOptions) error {
	if p.current == nil {
		return ErrNoPage
	}

	if opts.HTMLBox {
		p.current.Ops = append(p.current.Ops, PlanOp{
			Op:       OpHTMLBox,
			Rect:     p.convert(rect),
			Text:     text,
			FontSize: opts.FontSize,
		})
		return nil
	}

	if _, ok := p.supported[opts.Font]; !ok {
		return fmt.Errorf("%w: %s", ErrFontUnsupported, opts.Font)
	}
	if !p.textFits(rect, text, opts.FontSize) {
		return ErrOverflow
	}

	p.current.Ops = append(p.current.Ops, PlanOp{
		Op:       OpTextBox,
		Rect:     p.convert(rect),
		Text:     text,
		Font:     opts.Font,
		FontSize: opts.FontSize,
	})
	return nil
}

// Flush 把计划写到目标文件。未指定路径时只保留在内存中。
func (p *PlanRenderer) Flush() error {
	if p.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(&p.plan, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化渲染计划失败: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(p.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("写入渲染计划失败: %w", err)
	}
	return nil
}

// Plan 返回当前累积的计划
func (p *PlanRenderer) Plan() *RenderPlan {
	return &p.plan
}

// textFits 按快速估宽判断文本在给定字号下能否装进矩形
func (p *PlanRenderer) textFits(rect Rect, text string, fontSize float64) bool {
	if rect.Width <= 0 || rect.Height <= 0 {
		return false
	}
	estimated := p.fitter.EstimateWidth(text, fontSize)
	lines := 1
	if estimated > rect.Width {
		lines = int(estimated / rect.Width)
		if float64(lines) < estimated/rect.Width {
			lines++
		}
	}
	return float64(lines)*fontSize*1.2 <= rect.Height
}

// convert 把内部坐标换算到计划声明的坐标系
func (p *PlanRenderer) convert(rect Rect) Rect {
	if p.plan.Origin == OriginBottomLeft && p.current != nil {
		return rect.FlipY(p.current.Height)
	}
	return rect
}
