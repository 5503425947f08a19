package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-paper-overlay/internal/document"
	"github.com/nerdneilsfield/go-paper-overlay/pkg/translation"
)

var (
	// cache 命令的标志
	cacheYes bool
)

// NewCacheCommand 创建 cache 命令
func NewCacheCommand() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "管理翻译缓存",
		Long: `查看、清空或预热翻译缓存。

缓存按归一化原文（去除全部空白）做键，同一段文字在后续运行中
直接命中，不再访问翻译服务。缓存路径来自 --cache 或配置 cache_path。`,
	}

	cacheCmd.AddCommand(newCacheStatsCommand())
	cacheCmd.AddCommand(newCacheClearCommand())
	cacheCmd.AddCommand(newCacheImportCommand())

	return cacheCmd
}

// newCacheStatsCommand 创建 cache stats 子命令
func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "显示缓存概况",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, log, err := openFileCache(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			title := color.New(color.FgCyan, color.Bold)
			title.Println("💾 翻译缓存")
			title.Println(strings.Repeat("=", 50))

			fmt.Printf("  缓存文件: %s\n", cache.Path())
			fmt.Printf("  条目数:   %d\n", cache.Len())
			if info, err := os.Stat(cache.Path()); err == nil {
				fmt.Printf("  文件大小: %s\n", formatBytes(info.Size()))
				fmt.Printf("  更新时间: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Println("  缓存文件尚未创建")
			}

			return nil
		},
	}
}

// newCacheClearCommand 创建 cache clear 子命令
func newCacheClearCommand() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "清空翻译缓存",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, log, err := openFileCache(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			if !cacheYes {
				fmt.Print("确定要清空翻译缓存吗？该操作不可恢复。(y/N): ")
				var confirmation string
				_, _ = fmt.Scanln(&confirmation)
				if confirmation != "y" && confirmation != "Y" && confirmation != "yes" {
					fmt.Println("已取消。")
					return nil
				}
			}

			entries := cache.Len()
			if err := cache.Clear(); err != nil {
				return err
			}
			log.Info("缓存已清空", zap.String("path", cache.Path()), zap.Int("entries", entries))
			fmt.Printf("✅ 已清空缓存（%d 条）: %s\n", entries, cache.Path())

			return nil
		},
	}

	clearCmd.Flags().BoolVarP(&cacheYes, "yes", "y", false, "跳过确认直接清空")

	return clearCmd
}

// newCacheImportCommand 创建 cache import 子命令
func newCacheImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <translated.json>",
		Short: "用翻译后的块文件预热缓存",
		Long: `读取翻译后的块文件，把其中的 原文 → 译文 对批量写入缓存。
适合把上一轮运行或人工校对后的结果变成后续运行的精确命中。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, log, err := openFileCache(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}

			entries := make([]translation.Entry, 0, len(doc.Blocks))
			for _, block := range doc.Blocks {
				if block.TranslatedText == "" {
					continue
				}
				entries = append(entries, translation.Entry{
					Original:    block.Text,
					Translation: block.TranslatedText,
				})
			}
			if len(entries) == 0 {
				return errors.New("块文件中没有可导入的译文")
			}

			if err := cache.Seed(entries); err != nil {
				return err
			}
			log.Info("缓存预热完成", zap.Int("entries", len(entries)), zap.String("path", cache.Path()))
			fmt.Printf("✅ 已导入 %d 条译文 → %s\n", len(entries), cache.Path())

			return nil
		},
	}
}

// openFileCache 按配置打开文件缓存
func openFileCache(cmd *cobra.Command) (*translation.FileCache, *zap.Logger, error) {
	log, err := newLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.CachePath == "" {
		return nil, nil, errors.New("未配置缓存路径：使用 --cache 或在配置中设置 cache_path")
	}

	return translation.NewFileCache(cfg.CachePath, log), log, nil
}

// formatBytes 把字节数格式化成可读形式
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"KB", "MB", "GB", "TB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}
