package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-paper-overlay/internal/document"
	"github.com/nerdneilsfield/go-paper-overlay/internal/extractor"
	"github.com/nerdneilsfield/go-paper-overlay/internal/layout"
	"github.com/nerdneilsfield/go-paper-overlay/internal/overlay"
	"github.com/nerdneilsfield/go-paper-overlay/internal/stats"
)

var (
	// overlay 命令的标志
	overlayOutput  string
	overlayPDF     string
	overlayPageW   float64
	overlayPageH   float64
	overlayPadding float64
	overlayOrigin  string
	overlayReport  string
)

// NewOverlayCommand 创建 overlay 命令
func NewOverlayCommand() *cobra.Command {
	overlayCmd := &cobra.Command{
		Use:   "overlay <translated.json>",
		Short: "对已翻译的块文件生成渲染计划",
		Long: `读取带 translated_text 的块文件，对每个块先遮白再覆盖译文，
输出渲染计划 (JSON 绘制指令序列)。译文为空的块原样跳过。

块文件缺少页面尺寸时，可用 --pdf 从原始 PDF 补齐，
或用 --page-width/--page-height 手工指定；都不给则按 US Letter 处理。

示例:
  paperoverlay overlay paper.translated.json
  paperoverlay overlay blocks.json --pdf paper.pdf -o plan.json
  paperoverlay overlay blocks.json --page-width 595 --page-height 842`,
		Args: cobra.ExactArgs(1),
		RunE: runOverlay,
	}

	overlayCmd.Flags().StringVarP(&overlayOutput, "output", "o", "", "渲染计划输出路径（默认 <输入名>.plan.json）")
	overlayCmd.Flags().StringVar(&overlayPDF, "pdf", "", "原始 PDF，用于补齐缺失的页面尺寸")
	overlayCmd.Flags().Float64Var(&overlayPageW, "page-width", 0, "页面宽度 (pt)，块文件缺少页面尺寸时生效")
	overlayCmd.Flags().Float64Var(&overlayPageH, "page-height", 0, "页面高度 (pt)")
	overlayCmd.Flags().Float64Var(&overlayPadding, "padding", 0, "遮白区域的外扩边距 (pt)")
	overlayCmd.Flags().StringVar(&overlayOrigin, "origin", "", "渲染计划坐标系 (top-left|bottom-left)")
	overlayCmd.Flags().StringVar(&overlayReport, "report", "", "运行报告输出路径（.html 生成网页，其余生成 Markdown）")

	return overlayCmd
}

// runOverlay 执行 overlay 命令
func runOverlay(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("padding") {
		cfg.Overlay.RedactPadding = overlayPadding
	}
	if cmd.Flags().Changed("origin") {
		cfg.Overlay.Origin = overlayOrigin
	}

	inputPath := args[0]
	planPath := overlayOutput
	if planPath == "" {
		planPath = deriveOutputPath(inputPath, ".plan.json")
	}

	doc, err := document.Load(inputPath)
	if err != nil {
		return err
	}
	if len(doc.Pages) == 0 {
		if err := fillPageSizes(doc, log); err != nil {
			return err
		}
	}

	st := stats.NewRunStats()
	st.InputPath = inputPath
	st.OutputPath = planPath

	renderer := overlay.NewPlanRenderer(planPath,
		overlay.WithOrigin(cfg.PlanOrigin()),
		overlay.WithFonts(cfg.Overlay.PrimaryFont, cfg.Overlay.FallbackFont),
	)
	comp := overlay.New(renderer, st,
		overlay.WithStrategies(cfg.Strategies()),
		overlay.WithPadding(cfg.Overlay.RedactPadding),
		overlay.WithFitter(layout.New(cfg.Fitter)),
		overlay.WithLogger(log),
	)
	outcomes, err := comp.Compose(doc)
	if err != nil {
		return fmt.Errorf("生成渲染计划失败: %w", err)
	}
	st.Finish()

	stats.PrintOverview(st)

	if overlayReport != "" {
		if err := writeReport(overlayReport, st); err != nil {
			return err
		}
		fmt.Printf("📄 运行报告已写入 %s\n", overlayReport)
	}
	fmt.Printf("✅ 渲染计划已写入 %s（%d 块）\n", planPath, len(outcomes))

	return nil
}

// fillPageSizes 给缺少页面信息的块文件补页面尺寸
func fillPageSizes(doc *document.Document, log *zap.Logger) error {
	switch {
	case overlayPDF != "":
		pages, err := extractor.PageSizes(overlayPDF)
		if err != nil {
			return err
		}
		doc.Pages = pages
		log.Info("页面尺寸取自 PDF", zap.String("path", overlayPDF), zap.Int("pages", len(pages)))
	case overlayPageW > 0 && overlayPageH > 0:
		for _, number := range doc.PageNumbers() {
			doc.Pages = append(doc.Pages, document.PageInfo{
				Number: number,
				Width:  overlayPageW,
				Height: overlayPageH,
			})
		}
	default:
		log.Warn("块文件没有页面尺寸，按 US Letter 处理",
			zap.Float64("width", document.DefaultPageWidth),
			zap.Float64("height", document.DefaultPageHeight))
	}
	return nil
}
