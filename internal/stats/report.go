package stats

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// RenderTable 把计数渲染成终端表格
func RenderTable(w io.Writer, s *RunStats) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)

	tw.AppendRow(table.Row{"项", "值"})
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"运行标识", s.RunID})
	tw.AppendRow(table.Row{"处理页数", s.PagesDone})
	tw.AppendRow(table.Row{"块总数", s.Blocks})
	tw.AppendRow(table.Row{"参与翻译", s.Processed})
	tw.AppendRow(table.Row{"跳过", s.Skipped})
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"术语表命中", s.FromGlossary})
	tw.AppendRow(table.Row{"缓存命中", s.FromCache})
	tw.AppendRow(table.Row{"模糊命中", s.FromFuzzy})
	tw.AppendRow(table.Row{"服务翻译", s.FromService})
	tw.AppendRow(table.Row{"服务失败", s.ServiceErrors})
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"渲染成功", s.Rendered})
	tw.AppendRow(table.Row{"退级渲染", s.Fallbacks})
	tw.AppendRow(table.Row{"丢弃", s.Dropped})
	tw.AppendRow(table.Row{"几何越界", s.GeometrySkips})
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"总耗时", formatDuration(s.Duration())})

	tw.SetStyle(table.StyleLight)
	tw.Render()
}

// PrintOverview 在终端打印带标题的运行总结
func PrintOverview(s *RunStats) {
	title := color.New(color.FgCyan, color.Bold)
	title.Println("📊 翻译叠加运行总结")
	title.Println(strings.Repeat("=", 50))
	fmt.Println()
	RenderTable(os.Stdout, s)
}

// Markdown 渲染 Markdown 格式的运行报告
func Markdown(s *RunStats) string {
	var b strings.Builder

	b.WriteString("# 翻译叠加运行报告\n\n")
	fmt.Fprintf(&b, "- 运行标识: `%s`\n", s.RunID)
	if s.InputPath != "" {
		fmt.Fprintf(&b, "- 输入: `%s`\n", s.InputPath)
	}
	if s.OutputPath != "" {
		fmt.Fprintf(&b, "- 输出: `%s`\n", s.OutputPath)
	}
	fmt.Fprintf(&b, "- 耗时: %s\n\n", formatDuration(s.Duration()))

	b.WriteString("| 项 | 值 |\n")
	b.WriteString("| --- | --- |\n")
	rows := []struct {
		label string
		value int
	}{
		{"处理页数", s.PagesDone},
		{"块总数", s.Blocks},
		{"参与翻译", s.Processed},
		{"跳过", s.Skipped},
		{"术语表命中", s.FromGlossary},
		{"缓存命中", s.FromCache},
		{"模糊命中", s.FromFuzzy},
		{"服务翻译", s.FromService},
		{"服务失败", s.ServiceErrors},
		{"渲染成功", s.Rendered},
		{"退级渲染", s.Fallbacks},
		{"丢弃", s.Dropped},
		{"几何越界", s.GeometrySkips},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %d |\n", row.label, row.value)
	}

	return b.String()
}

// WriteHTMLReport 把运行报告转成 HTML 写到文件
func WriteHTMLReport(path string, s *RunStats) error {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(s)), &body); err != nil {
		return fmt.Errorf("渲染 HTML 报告失败: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"zh\">\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>翻译叠加运行报告</title>\n")
	page.WriteString("<style>body{font-family:sans-serif;max-width:48em;margin:2em auto;padding:0 1em}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 10px}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建报告目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, page.Bytes(), 0o644); err != nil {
		return fmt.Errorf("写入 HTML 报告失败: %w", err)
	}
	return nil
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}
