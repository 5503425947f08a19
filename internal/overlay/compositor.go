package overlay

import (
	"errors"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-paper-overlay/internal/document"
	"github.com/nerdneilsfield/go-paper-overlay/internal/layout"
	"github.com/nerdneilsfield/go-paper-overlay/internal/stats"
)

// BlockState 合成过程中块的状态
type BlockState string

const (
	StatePending          BlockState = "pending"
	StateRedacted         BlockState = "redacted"
	StateRendered         BlockState = "rendered"
	StateRenderFailed     BlockState = "render_failed"
	StateFallbackRendered BlockState = "fallback_rendered"
	StateDropped          BlockState = "dropped"
	StateSkipped          BlockState = "skipped"
)

// Outcome 单个块的合成结果
type Outcome struct {
	BlockID  string
	State    BlockState
	Strategy string
	FontSize float64
	Err      error
}

const (
	defaultRedactPadding = 2.0
	defaultFontSize      = 10.0
	minRenderFontSize    = 5.0
)

// Option 配置合成器
type Option func(*Compositor)

// WithStrategies 替换默认的渲染策略序列
func WithStrategies(strategies []Strategy) Option {
	return func(c *Compositor) {
		c.strategies = strategies
	}
}

// WithPadding 调整遮白时向四周扩展的距离
func WithPadding(pad float64) Option {
	return func(c *Compositor) {
		c.padding = pad
	}
}

// WithFitter 替换字号适配器
func WithFitter(f *layout.Fitter) Option {
	return func(c *Compositor) {
		c.fitter = f
	}
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compositor) {
		c.logger = logger
	}
}

// Compositor 把译文块合成到渲染面上。
// 每个块独立走完遮白、按策略渲染的状态机，
// 单个块的失败只会让该块退化成空白，不影响整页。
type Compositor struct {
	renderer   Renderer
	strategies []Strategy
	fitter     *layout.Fitter
	stats      *stats.RunStats
	logger     *zap.Logger
	padding    float64
}

// New 创建合成器
func New(renderer Renderer, st *stats.RunStats, opts ...Option) *Compositor {
	c := &Compositor{
		renderer:   renderer,
		strategies: DefaultStrategies(),
		fitter:     layout.NewDefault(),
		stats:      st,
		logger:     zap.NewNop(),
		padding:    defaultRedactPadding,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose 合成整个文档并落盘
func (c *Compositor) Compose(doc *document.Document) ([]Outcome, error) {
	var outcomes []Outcome

	for _, pageNum := range doc.PageNumbers() {
		width, height := doc.PageSize(pageNum)
		pageOutcomes, err := c.ComposePage(pageNum, width, height, doc.BlocksOnPage(pageNum))
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, pageOutcomes...)
	}

	if err := c.renderer.Flush(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// ComposePage 合成单页。返回错误仅表示渲染面本身不可用，
// 块级失败都体现在 Outcome 里。
func (c *Compositor) ComposePage(number int, width, height float64, blocks []document.Block) ([]Outcome, error) {
	if err := c.renderer.StartPage(number, width, height); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(blocks))
	for _, block := range blocks {
		outcomes = append(outcomes, c.composeBlock(block, width, height))
	}

	c.stats.PagesDone++
	return outcomes, nil
}

func (c *Compositor) composeBlock(block document.Block, pageWidth, pageHeight float64) Outcome {
	outcome := Outcome{BlockID: block.ID, State: StatePending}

	// 没有译文的块原样保留
	if block.TranslatedText == "" {
		outcome.State = StateSkipped
		return outcome
	}

	rect := Rect{X: block.X, Y: block.Y, Width: block.Width, Height: block.Height}
	if !c.geometryValid(rect, pageWidth, pageHeight) {
		c.stats.GeometrySkips++
		outcome.State = StateSkipped
		c.logger.Debug("包围盒越界，跳过该块",
			zap.String("block", block.ID),
			zap.Float64("x", rect.X),
			zap.Float64("y", rect.Y))
		return outcome
	}

	// 先遮白，保证原文不会透出来
	cover := rect.Inflate(c.padding, pageWidth, pageHeight)
	if err := c.renderer.FillRect(cover, White); err != nil {
		c.stats.Dropped++
		outcome.State = StateDropped
		outcome.Err = err
		c.logger.Warn("遮白失败，放弃该块", zap.String("block", block.ID), zap.Error(err))
		return outcome
	}
	outcome.State = StateRedacted

	fontSize := block.FontSize
	if fontSize <= 0 {
		fontSize = c.fitter.Fit(block.TranslatedText, defaultFontSize, rect.Width, rect.Height).FontSize
	}

	failedFonts := make(map[string]struct{})
	for i, strat := range c.strategies {
		if _, failed := failedFonts[strat.Font]; failed && !strat.HTMLBox {
			continue
		}

		opts := TextOptions{Font: strat.Font, FontSize: fontSize * strat.Scale, HTMLBox: strat.HTMLBox}
		if !strat.HTMLBox && opts.FontSize < minRenderFontSize {
			continue
		}

		err := c.renderer.DrawTextBox(rect, block.TranslatedText, opts)
		if err == nil {
			outcome.Strategy = strat.Name
			outcome.FontSize = opts.FontSize
			if i == 0 {
				outcome.State = StateRendered
			} else {
				outcome.State = StateFallbackRendered
				c.stats.Fallbacks++
			}
			c.stats.Rendered++
			return outcome
		}

		outcome.State = StateRenderFailed
		outcome.Err = err
		if errors.Is(err, ErrFontUnsupported) {
			failedFonts[strat.Font] = struct{}{}
		}
		c.logger.Debug("渲染策略失败",
			zap.String("block", block.ID),
			zap.String("strategy", strat.Name),
			zap.Error(err))
	}

	// 所有策略用尽，区域保持空白
	c.stats.Dropped++
	outcome.State = StateDropped
	c.logger.Warn("所有渲染策略失败，块退化为空白",
		zap.String("block", block.ID),
		zap.Error(outcome.Err))
	return outcome
}

func (c *Compositor) geometryValid(rect Rect, pageWidth, pageHeight float64) bool {
	if rect.Width <= 0 || rect.Height <= 0 {
		return false
	}
	if rect.X < 0 || rect.Y < 0 {
		return false
	}
	if rect.X+rect.Width > pageWidth || rect.Y+rect.Height > pageHeight {
		return false
	}
	return true
}
