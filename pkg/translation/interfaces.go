package translation

import "context"

// Cache 翻译缓存接口。所有实现都以归一化后的原文作为键，
// 归一化由缓存内部完成，调用方直接传原始文本。
type Cache interface {
	// Get 精确查找
	Get(text string) (string, bool)

	// Set 写入翻译，同键后写覆盖
	Set(text, translated string) error

	// FindFuzzy 精确查找失败后的模糊匹配
	FindFuzzy(text string) (FuzzyMatch, bool)

	// Len 当前条目数
	Len() int

	// Clear 清除所有条目
	Clear() error

	// Stats 获取缓存统计信息
	Stats() CacheStats
}

// Backend 翻译后端。一次缓存未命中对应一次同步调用；
// 调用失败由上层处理为"保留原文"，不会中断整个运行。
type Backend interface {
	// Translate 执行翻译
	Translate(ctx context.Context, text string) (string, error)

	// Name 获取后端名称
	Name() string
}

// CacheStats 缓存统计信息
type CacheStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	FuzzyHits int64 `json:"fuzzy_hits"`
	Size      int64 `json:"size"`
}
