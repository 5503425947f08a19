package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-paper-overlay/internal/classifier"
	"github.com/nerdneilsfield/go-paper-overlay/internal/document"
	"github.com/nerdneilsfield/go-paper-overlay/internal/extractor"
)

var (
	// extract 命令的标志
	extractOutput string
)

// NewExtractCommand 创建 extract 命令
func NewExtractCommand() *cobra.Command {
	extractCmd := &cobra.Command{
		Use:   "extract <input.pdf>",
		Short: "从 PDF 抽取文本块并标注可翻译性",
		Long: `从 PDF 按行抽取文本块，过滤 PostScript 残留等渲染垃圾，
对每个块做公式/行号/正文分类，输出带包围盒和页面尺寸的块文件 (JSON)。

块文件可以直接交给 translate 或 overlay 继续处理，
也可以人工修改 translatable 标记后再翻译。

示例:
  paperoverlay extract paper.pdf
  paperoverlay extract paper.pdf -o blocks.json`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "输出块文件路径（默认 <输入名>.blocks.json）")

	return extractCmd
}

// runExtract 执行 extract 命令
func runExtract(cmd *cobra.Command, args []string) error {
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

	inputPath := args[0]
	outputPath := extractOutput
	if outputPath == "" {
		outputPath = deriveOutputPath(inputPath, ".blocks.json")
	}

	ext := extractor.New(classifier.New(cfg.Classifier), log)
	doc, err := ext.Extract(inputPath)
	if err != nil {
		return err
	}

	if err := document.Save(outputPath, doc); err != nil {
		return err
	}

	translatable := 0
	for _, block := range doc.Blocks {
		if block.Translatable {
			translatable++
		}
	}
	log.Info("块文件已写入",
		zap.String("path", outputPath),
		zap.Int("pages", len(doc.Pages)),
		zap.Int("blocks", len(doc.Blocks)),
		zap.Int("translatable", translatable))
	fmt.Printf("✅ 抽取完成: %d 页 %d 块（可翻译 %d 块）→ %s\n",
		len(doc.Pages), len(doc.Blocks), translatable, outputPath)

	return nil
}

// deriveOutputPath 把输入文件的扩展名替换成给定后缀
func deriveOutputPath(inputPath, suffix string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + suffix
}
