package providers

import (
	"context"
	"time"

	"github.com/nerdneilsfield/go-paper-overlay/pkg/providers/retry"
)

// Provider 翻译提供商接口。一次调用翻译一段文本，
// 失败时返回错误，由调用方决定降级策略。
type Provider interface {
	// Translate 执行翻译
	Translate(ctx context.Context, text string) (string, error)

	// Name 获取提供商名称
	Name() string
}

// BaseConfig 提供商基础配置
type BaseConfig struct {
	// API配置
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	Model   string `json:"model,omitempty"`

	// 语言对
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`

	// 单次请求的固定超时
	Timeout time.Duration `json:"timeout"`

	// 传输层重试
	Retry retry.Config `json:"retry"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() BaseConfig {
	return BaseConfig{
		BaseURL:    "https://api.openai.com/v1",
		Model:      "gpt-4",
		SourceLang: "English",
		TargetLang: "Chinese",
		Timeout:    60 * time.Second,
		Retry:      retry.DefaultConfig(),
	}
}

// Error 提供商错误
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// IsRetryable 判断错误是否可重试
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case ErrCodeRateLimit, ErrCodeTimeout, ErrCodeServer:
		return true
	default:
		return false
	}
}

// NewError 创建提供商错误
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// 错误代码常量
const (
	ErrCodeAuth      = "auth"
	ErrCodeRateLimit = "rate_limit"
	ErrCodeTimeout   = "timeout"
	ErrCodeServer    = "server_error"
	ErrCodeResponse  = "bad_response"
	ErrCodeNetwork   = "network"
)
