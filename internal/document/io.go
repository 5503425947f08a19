package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEmptyDocument 输入文件没有任何内容
var ErrEmptyDocument = errors.New("块文件为空")

// Load 从 JSON 文件读入文档
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取块文件失败: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	return doc, nil
}

// Parse 解析文档 JSON。
// 既接受带页面信息的完整格式，也接受早期脚本导出的裸块数组。
func Parse(data []byte) (*Document, error) {
	text := bytes.TrimSpace([]byte(DecodeText(data)))
	if len(text) == 0 {
		return nil, ErrEmptyDocument
	}

	if text[0] == '[' {
		var blocks []Block
		if err := json.Unmarshal(text, &blocks); err != nil {
			return nil, err
		}
		return &Document{Blocks: blocks}, nil
	}

	var doc Document
	if err := json.Unmarshal(text, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save 将文档写成缩进 JSON，必要时创建输出目录
func Save(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化块文件失败: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入块文件失败: %w", err)
	}
	return nil
}
