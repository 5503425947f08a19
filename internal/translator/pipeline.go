package translator

import (
	"context"
	"errors"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-paper-overlay/internal/classifier"
	"github.com/nerdneilsfield/go-paper-overlay/internal/document"
	"github.com/nerdneilsfield/go-paper-overlay/internal/layout"
	"github.com/nerdneilsfield/go-paper-overlay/internal/stats"
	"github.com/nerdneilsfield/go-paper-overlay/pkg/translation"
)

const defaultFontSize = 10.0

// Option 配置流水线
type Option func(*Pipeline)

// WithClassifier 替换分类器
func WithClassifier(c *classifier.Classifier) Option {
	return func(p *Pipeline) {
		p.classifier = c
	}
}

// WithFitter 替换字号适配器
func WithFitter(f *layout.Fitter) Option {
	return func(p *Pipeline) {
		p.fitter = f
	}
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithProgress 在终端显示进度条
func WithProgress(show bool) Option {
	return func(p *Pipeline) {
		p.progress = show
	}
}

// Pipeline 按页、按块顺序驱动分类、翻译解析和字号适配。
// 块之间互相独立，单块的失败只记入计数，不会中断整个文档。
type Pipeline struct {
	service    *translation.Service
	classifier *classifier.Classifier
	fitter     *layout.Fitter
	stats      *stats.RunStats
	logger     *zap.Logger
	progress   bool
}

// New 创建流水线
func New(service *translation.Service, st *stats.RunStats, opts ...Option) *Pipeline {
	p := &Pipeline{
		service:    service,
		classifier: classifier.NewDefault(),
		fitter:     layout.NewDefault(),
		stats:      st,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Translate 就地翻译文档里的所有块。
// 块保持原有顺序，译文写回 TranslatedText，字号写回 FontSize。
func (p *Pipeline) Translate(ctx context.Context, doc *document.Document) error {
	var bar *pterm.ProgressbarPrinter
	if p.progress && len(doc.Blocks) > 0 {
		bar, _ = pterm.DefaultProgressbar.
			WithTotal(len(doc.Blocks)).
			WithTitle("翻译进度").
			Start()
	}
	defer func() {
		if bar != nil {
			_, _ = bar.Stop()
		}
	}()

	for i := range doc.Blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.translateBlock(ctx, &doc.Blocks[i])
		if bar != nil {
			bar.Increment()
		}
	}
	return nil
}

func (p *Pipeline) translateBlock(ctx context.Context, block *document.Block) {
	p.stats.Blocks++

	// 旧脚本导出的块没有类型标注，这里补一次分类
	if block.BlockType == "" {
		result := p.classifier.Classify(block.Text)
		block.BlockType = string(result.Category)
		if p.classifier.IsLineNumber(block.Text) {
			block.BlockType = document.BlockTypeLineNumbers
		}
		block.Translatable = result.Translatable
	}

	if !block.Translatable {
		p.stats.Skipped++
		return
	}

	// 已带译文的输入保持译文不变，只补适配字号
	if block.TranslatedText != "" {
		p.stats.Processed++
		if block.FontSize <= 0 {
			p.fitBlock(block)
		}
		return
	}

	resolution, err := p.service.Resolve(ctx, block.Text)
	if err != nil {
		// 失败的块保留原文继续跑，相应区域不会被遮盖
		p.stats.Skipped++
		if !errors.Is(err, translation.ErrNoBackend) {
			p.stats.ServiceErrors++
			p.logger.Warn("块翻译失败，保留原文",
				zap.String("block", block.ID),
				zap.Error(err))
		}
		return
	}

	block.TranslatedText = resolution.Text
	p.stats.Processed++
	switch resolution.Source {
	case translation.SourceGlossary:
		p.stats.FromGlossary++
	case translation.SourceCache:
		p.stats.FromCache++
	case translation.SourceFuzzy:
		p.stats.FromFuzzy++
	case translation.SourceService:
		p.stats.FromService++
	}

	p.fitBlock(block)
}

// fitBlock 以原字号为起点适配译文字号，结果写回块
func (p *Pipeline) fitBlock(block *document.Block) {
	size := block.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	fit := p.fitter.Fit(block.TranslatedText, size, block.Width, block.Height)
	block.FontSize = fit.FontSize
}
