package providers

import "context"

// Raw 直通提供商：跳过翻译，原样返回输入。
// 用于 dry-run 模式下检查分类和排版路径，不产生任何网络调用。
type Raw struct{}

// NewRaw 创建直通提供商
func NewRaw() *Raw {
	return &Raw{}
}

// Translate 直接返回原文
func (p *Raw) Translate(ctx context.Context, text string) (string, error) {
	return text, nil
}

// Name 获取提供商名称
func (p *Raw) Name() string {
	return "raw"
}
