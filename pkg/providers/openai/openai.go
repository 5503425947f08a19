package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-paper-overlay/pkg/providers"
	"github.com/nerdneilsfield/go-paper-overlay/pkg/providers/retry"
)

// translatePrompt 固定的翻译指令模板。
// 要求模型保留术语、公式、数字和专有名词，只输出译文本身。
const translatePrompt = "Translate the following %s text to %s. Keep any technical terms, formulas, numbers, or proper nouns unchanged. Only output the translation, nothing else.\n\n%s"

// translateTemperature 固定采样温度，让相同输入尽量得到稳定的译文
const translateTemperature = 0.3

// Provider OpenAI 兼容的翻译提供商。
// BaseURL 可以指向任何实现 chat/completions 协议的服务。
type Provider struct {
	config providers.BaseConfig
	client *openai.Client
	logger *zap.Logger
}

// New 创建 OpenAI 提供商
func New(config providers.BaseConfig, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientCfg := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientCfg.BaseURL = config.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout:   config.Timeout,
		Transport: retry.NewTransport(nil, config.Retry),
	}

	return &Provider{
		config: config,
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger,
	}
}

// Name 获取提供商名称
func (p *Provider) Name() string {
	return "openai"
}

// Translate 翻译一段文本。网络失败、非 2xx 状态、响应缺少内容
// 都以错误返回，由上层决定降级。
func (p *Provider) Translate(ctx context.Context, text string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(translatePrompt, p.config.SourceLang, p.config.TargetLang, text),
			},
		},
		Temperature: translateTemperature,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", p.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", providers.NewError(providers.ErrCodeResponse, "response has no choices")
	}
	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", providers.NewError(providers.ErrCodeResponse, "response content is empty")
	}
	return translated, nil
}

// wrapError 把底层错误映射成带错误码的提供商错误
func (p *Provider) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden:
			return providers.NewError(providers.ErrCodeAuth, apiErr.Message)
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return providers.NewError(providers.ErrCodeRateLimit, apiErr.Message)
		case apiErr.HTTPStatusCode >= 500:
			return providers.NewError(providers.ErrCodeServer, apiErr.Message)
		}
		return providers.NewError(providers.ErrCodeResponse, apiErr.Message)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return providers.NewError(providers.ErrCodeTimeout, "translation request timed out")
	}
	if retry.IsNetworkError(err) {
		return providers.NewError(providers.ErrCodeNetwork, err.Error())
	}
	return err
}
