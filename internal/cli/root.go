package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-paper-overlay/internal/config"
	"github.com/nerdneilsfield/go-paper-overlay/internal/logger"
)

var (
	// 全局标志变量
	cfgFile     string
	verboseMode bool // 显示详细日志
	logFilePath string

	// 语言与数据源覆盖，flags > env > 配置文件 > 默认值
	sourceLang   string
	targetLang   string
	cachePath    string
	glossaryPath string
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "paperoverlay",
		Short: "paperoverlay 在保留原始版面的前提下翻译扫描排版的 PDF 文稿",
		Long: `paperoverlay 把 PDF 文稿按文本块抽取、分类、翻译，再以"遮白 + 覆盖译文"
的方式生成渲染计划，译文始终落在原文的包围盒内，页面版式保持不变。

工作流程:
  extract   从 PDF 抽取文本块并标注可翻译性
  translate 完整流水线：抽取(或读入块文件) → 翻译 → 生成渲染计划
  overlay   对已翻译的块文件单独生成渲染计划
  cache     查看、清空或预热翻译缓存

公式、行号、纯数字等区域会被自动识别并跳过，译文字号按包围盒自动适配。`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewExtractCommand())
	rootCmd.AddCommand(NewTranslateCommand())
	rootCmd.AddCommand(NewOverlayCommand())
	rootCmd.AddCommand(NewCacheCommand())
	rootCmd.AddCommand(NewVersionCommand(version, commit, buildDate))

	return rootCmd
}

// addGlobalFlags 添加全局标志
func addGlobalFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "显示详细日志")
	rootCmd.PersistentFlags().StringVar(&logFilePath, "log-file", "", "同时把日志写入该文件")
	rootCmd.PersistentFlags().StringVar(&sourceLang, "source", "", "源语言")
	rootCmd.PersistentFlags().StringVar(&targetLang, "target", "", "目标语言")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "翻译缓存文件路径")
	rootCmd.PersistentFlags().StringVar(&glossaryPath, "glossary", "", "术语表文件路径 (TOML)")
}

// newLogger 按全局标志初始化日志
func newLogger() (*zap.Logger, error) {
	return logger.New(logger.Options{
		Verbose: verboseMode,
		LogFile: logFilePath,
	})
}

// loadConfig 加载配置并套用命令行覆盖
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	updateConfigFromFlags(cmd, cfg)
	return cfg, nil
}

// updateConfigFromFlags 使用命令行参数更新配置
func updateConfigFromFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("source") {
		cfg.SourceLang = sourceLang
	}
	if cmd.Flags().Changed("target") {
		cfg.TargetLang = targetLang
	}
	if cmd.Flags().Changed("cache") {
		cfg.CachePath = cachePath
	}
	if cmd.Flags().Changed("glossary") {
		cfg.GlossaryPath = glossaryPath
	}
}
