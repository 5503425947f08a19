package translation

import "errors"

// 预定义错误
var (
	// ErrEmptyText 空文本
	ErrEmptyText = errors.New("empty text provided")

	// ErrNoBackend 未配置翻译后端
	ErrNoBackend = errors.New("translation backend not configured")
)
