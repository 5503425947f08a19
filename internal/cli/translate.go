package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-paper-overlay/internal/classifier"
	"github.com/nerdneilsfield/go-paper-overlay/internal/config"
	"github.com/nerdneilsfield/go-paper-overlay/internal/document"
	"github.com/nerdneilsfield/go-paper-overlay/internal/extractor"
	"github.com/nerdneilsfield/go-paper-overlay/internal/layout"
	"github.com/nerdneilsfield/go-paper-overlay/internal/overlay"
	"github.com/nerdneilsfield/go-paper-overlay/internal/stats"
	"github.com/nerdneilsfield/go-paper-overlay/internal/translator"
	"github.com/nerdneilsfield/go-paper-overlay/pkg/providers"
	"github.com/nerdneilsfield/go-paper-overlay/pkg/providers/openai"
	"github.com/nerdneilsfield/go-paper-overlay/pkg/translation"
)

var (
	// translate 命令的标志
	translateOutput string
	translateBlocks string
	translateReport string
	translateDryRun bool
	noProgress      bool
)

// NewTranslateCommand 创建 translate 命令
func NewTranslateCommand() *cobra.Command {
	translateCmd := &cobra.Command{
		Use:   "translate <input.pdf|blocks.json>",
		Short: "完整流水线：抽取、翻译并生成渲染计划",
		Long: `对 PDF 或块文件执行完整流水线：抽取文本块（PDF 输入时）、
逐块解析译文（术语表 → 缓存精确 → 缓存模糊 → 翻译服务），
再按"遮白 + 覆盖译文"生成渲染计划。

翻译服务失败的块保留原文并计入统计，不会中断整次运行；
相同文本在缓存预热后的再次运行中得到完全一致的结果。

示例:
  paperoverlay translate paper.pdf
  paperoverlay translate paper.pdf --cache cache.json --glossary terms.toml
  paperoverlay translate blocks.json -o plan.json --report run.html
  paperoverlay translate paper.pdf --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: runTranslate,
	}

	translateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "渲染计划输出路径（默认 <输入名>.plan.json）")
	translateCmd.Flags().StringVar(&translateBlocks, "blocks", "", "翻译后块文件的输出路径（默认 <输入名>.translated.json）")
	translateCmd.Flags().StringVar(&translateReport, "report", "", "运行报告输出路径（.html 生成网页，其余生成 Markdown）")
	translateCmd.Flags().BoolVar(&translateDryRun, "dry-run", false, "预演模式：不访问翻译服务，译文原样回填")
	translateCmd.Flags().BoolVar(&noProgress, "no-progress", false, "关闭进度条")

	return translateCmd
}

// runTranslate 执行 translate 命令
func runTranslate(cmd *cobra.Command, args []string) error {
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
	if translateDryRun {
		cfg.DryRun = true
	}
	if noProgress {
		cfg.Progress = false
	}
	if !cfg.DryRun && cfg.Provider.APIKey == "" {
		return errors.New("缺少 API Key：请设置 OPENAI_API_KEY 或配置 provider.api_key，预演请使用 --dry-run")
	}

	inputPath := args[0]
	planPath := translateOutput
	if planPath == "" {
		planPath = deriveOutputPath(inputPath, ".plan.json")
	}
	blocksPath := translateBlocks
	if blocksPath == "" {
		blocksPath = deriveOutputPath(inputPath, ".translated.json")
	}

	cls := classifier.New(cfg.Classifier)
	doc, err := loadInputDocument(inputPath, cls, log)
	if err != nil {
		return err
	}

	service, err := newTranslationService(cfg, log)
	if err != nil {
		return err
	}

	st := stats.NewRunStats()
	st.InputPath = inputPath
	st.OutputPath = planPath

	fitter := layout.New(cfg.Fitter)
	pipe := translator.New(service, st,
		translator.WithClassifier(cls),
		translator.WithFitter(fitter),
		translator.WithLogger(log),
		translator.WithProgress(cfg.Progress),
	)
	if err := pipe.Translate(cmd.Context(), doc); err != nil {
		return err
	}

	if err := document.Save(blocksPath, doc); err != nil {
		return err
	}
	log.Info("翻译结果已写入", zap.String("path", blocksPath))

	renderer := overlay.NewPlanRenderer(planPath,
		overlay.WithOrigin(cfg.PlanOrigin()),
		overlay.WithFonts(cfg.Overlay.PrimaryFont, cfg.Overlay.FallbackFont),
	)
	comp := overlay.New(renderer, st,
		overlay.WithStrategies(cfg.Strategies()),
		overlay.WithPadding(cfg.Overlay.RedactPadding),
		overlay.WithFitter(fitter),
		overlay.WithLogger(log),
	)
	if _, err := comp.Compose(doc); err != nil {
		return fmt.Errorf("生成渲染计划失败: %w", err)
	}
	st.Finish()

	stats.PrintOverview(st)

	if translateReport != "" {
		if err := writeReport(translateReport, st); err != nil {
			return err
		}
		fmt.Printf("📄 运行报告已写入 %s\n", translateReport)
	}
	fmt.Printf("✅ 渲染计划已写入 %s，译文块已写入 %s\n", planPath, blocksPath)

	return nil
}

// loadInputDocument 读取输入。PDF 先走抽取器，其余按块文件解析。
func loadInputDocument(inputPath string, cls *classifier.Classifier, log *zap.Logger) (*document.Document, error) {
	if strings.EqualFold(filepath.Ext(inputPath), ".pdf") {
		return extractor.New(cls, log).Extract(inputPath)
	}
	return document.Load(inputPath)
}

// newTranslationService 组装术语表、缓存和翻译后端
func newTranslationService(cfg *config.Config, log *zap.Logger) (*translation.Service, error) {
	opts := []translation.ServiceOption{translation.WithLogger(log)}

	if cfg.GlossaryPath != "" {
		glossary, err := config.LoadGlossary(cfg.GlossaryPath)
		if err != nil {
			return nil, err
		}
		if glossary.SourceLang != cfg.SourceLang || glossary.TargetLang != cfg.TargetLang {
			log.Warn("术语表语言对与当前配置不一致，跳过",
				zap.String("glossary", glossary.SourceLang+"→"+glossary.TargetLang),
				zap.String("config", cfg.SourceLang+"→"+cfg.TargetLang))
		} else {
			opts = append(opts, translation.WithGlossary(glossary.Translations))
			log.Info("术语表已加载",
				zap.String("path", cfg.GlossaryPath),
				zap.Int("terms", len(glossary.Translations)))
		}
	}

	if cfg.DryRun {
		// 预演只在内存中跑，避免把原样回填的"译文"写进持久缓存
		log.Info("预演模式：使用直通提供商，不访问翻译服务")
		return translation.NewService(translation.NewMemoryCache(), providers.NewRaw(), opts...), nil
	}

	cache := translation.NewCache(cfg.CachePath, log)
	backend := openai.New(cfg.BackendConfig(), log)
	return translation.NewService(cache, backend, opts...), nil
}

// writeReport 按扩展名写运行报告
func writeReport(path string, st *stats.RunStats) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return stats.WriteHTMLReport(path, st)
	default:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("创建报告目录失败: %w", err)
		}
		return os.WriteFile(path, []byte(stats.Markdown(st)), 0o644)
	}
}
