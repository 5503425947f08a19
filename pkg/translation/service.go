package translation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Source 标识一条译文的来源
type Source string

const (
	SourceNone     Source = ""         // 未获得译文
	SourceGlossary Source = "glossary" // 预定义词汇表
	SourceCache    Source = "cache"    // 缓存精确命中
	SourceFuzzy    Source = "fuzzy"    // 缓存模糊命中
	SourceService  Source = "service"  // 翻译后端
)

// Resolution 一次翻译解析的结果
type Resolution struct {
	Text       string    // 译文
	Source     Source    // 来源
	Rule       MatchRule // 模糊命中时的规则，其余来源为空
	Confidence float64   // 模糊命中时的相似度，其余来源恒为 1
}

// Service 把词汇表、缓存和翻译后端组合成单一的解析入口。
// 解析顺序：词汇表 → 缓存精确 → 缓存模糊 → 后端。
// 后端取得的译文会写回缓存，保证同一段文字在后续运行中结果一致。
type Service struct {
	cache    Cache
	backend  Backend
	glossary map[string]string // 归一化原文 → 固定译文
	fuzzy    bool
	logger   *zap.Logger
}

// ServiceOption Service 的配置选项
type ServiceOption func(*Service)

// WithGlossary 设置预定义词汇表，键在设置时归一化
func WithGlossary(terms map[string]string) ServiceOption {
	return func(s *Service) {
		for k, v := range terms {
			s.glossary[Normalize(k)] = v
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithoutFuzzy 关闭模糊匹配，只做精确查找
func WithoutFuzzy() ServiceOption {
	return func(s *Service) {
		s.fuzzy = false
	}
}

// NewService 创建翻译解析服务。backend 可以为 nil，
// 此时缓存未命中的文本保持原样（离线模式）。
func NewService(cache Cache, backend Backend, opts ...ServiceOption) *Service {
	s := &Service{
		cache:    cache,
		backend:  backend,
		glossary: make(map[string]string),
		fuzzy:    true,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve 解析一段文本的译文。
// 返回错误仅表示后端调用失败，调用方应把失败处理为"保留原文"。
func (s *Service) Resolve(ctx context.Context, text string) (Resolution, error) {
	if Normalize(text) == "" {
		return Resolution{}, ErrEmptyText
	}

	if translated, ok := s.glossary[Normalize(text)]; ok {
		return Resolution{Text: translated, Source: SourceGlossary, Confidence: 1}, nil
	}

	if translated, ok := s.cache.Get(text); ok {
		return Resolution{Text: translated, Source: SourceCache, Confidence: 1}, nil
	}

	if s.fuzzy {
		if m, ok := s.cache.FindFuzzy(text); ok {
			if m.Rule == MatchExact {
				return Resolution{Text: m.Translation, Source: SourceCache, Confidence: 1}, nil
			}
			s.logger.Debug("模糊匹配命中",
				zap.String("rule", string(m.Rule)),
				zap.Float64("confidence", m.Confidence))
			return Resolution{
				Text:       m.Translation,
				Source:     SourceFuzzy,
				Rule:       m.Rule,
				Confidence: m.Confidence,
			}, nil
		}
	}

	if s.backend == nil {
		return Resolution{}, ErrNoBackend
	}

	translated, err := s.backend.Translate(ctx, text)
	if err != nil {
		return Resolution{}, fmt.Errorf("翻译后端调用失败: %w", err)
	}

	if err := s.cache.Set(text, translated); err != nil {
		// 缓存写入失败不影响本次译文，运行继续
		s.logger.Warn("写入缓存失败", zap.Error(err))
	}
	return Resolution{Text: translated, Source: SourceService, Confidence: 1}, nil
}

// CacheStats 透出底层缓存的统计信息
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}
