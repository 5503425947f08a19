package translation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Entry 缓存条目。Original 保留提取时的原文，便于人工核对缓存文件；
// 内部查找只使用归一化键。
type Entry struct {
	Original    string `json:"original"`
	Translation string `json:"translation"`
}

// MemoryCache 内存缓存实现
type MemoryCache struct {
	mutex   sync.RWMutex
	entries map[string]Entry // 键为归一化原文
	sorted  []string         // 键按长度降序排列，模糊匹配依赖该顺序
	stale   bool             // sorted 是否需要重建

	hits      atomic.Int64
	misses    atomic.Int64
	fuzzyHits atomic.Int64
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]Entry),
	}
}

// Get 精确查找
func (c *MemoryCache) Get(text string) (string, bool) {
	key := Normalize(text)

	c.mutex.RLock()
	entry, ok := c.entries[key]
	c.mutex.RUnlock()

	if !ok {
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return entry.Translation, true
}

// Set 写入翻译，同键后写覆盖
func (c *MemoryCache) Set(text, translated string) error {
	key := Normalize(text)

	c.mutex.Lock()
	if _, exists := c.entries[key]; !exists {
		c.stale = true
	}
	c.entries[key] = Entry{Original: text, Translation: translated}
	c.mutex.Unlock()
	return nil
}

// Len 当前条目数
func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// Clear 清除所有条目
func (c *MemoryCache) Clear() error {
	c.mutex.Lock()
	c.entries = make(map[string]Entry)
	c.sorted = nil
	c.stale = false
	c.mutex.Unlock()
	return nil
}

// Stats 获取缓存统计信息
func (c *MemoryCache) Stats() CacheStats {
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		FuzzyHits: c.fuzzyHits.Load(),
		Size:      int64(c.Len()),
	}
}

// Snapshot 导出全部条目，键为归一化原文
func (c *MemoryCache) Snapshot() map[string]Entry {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	out := make(map[string]Entry, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// sortedKeys 返回按长度降序排列的键视图，长度相同按字典序。
// 模糊匹配的每一步都从最长的键开始尝试，保证最具体的条目先命中。
// 重建总是替换整个切片，调用方可以在锁外安全地遍历返回值。
func (c *MemoryCache) sortedKeys() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.stale && c.sorted != nil {
		return c.sorted
	}

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(keys[i]), utf8.RuneCountInString(keys[j])
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})
	c.sorted = keys
	c.stale = false
	return keys
}

// lookup 按归一化键直接取条目
func (c *MemoryCache) lookup(key string) (Entry, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// FileCache 带 JSON 文件持久化的缓存。每次写入后立即落盘，
// 运行中断时已获得的翻译不会丢失。
type FileCache struct {
	*MemoryCache

	path   string
	logger *zap.Logger
	ioMu   sync.Mutex
}

// cacheFile 缓存文件的标准序列化形式
type cacheFile struct {
	Version string  `json:"version,omitempty"`
	Entries []Entry `json:"entries"`
}

const cacheFileVersion = "1"

// NewFileCache 创建文件缓存并加载已有内容。
// 文件不存在按空缓存处理；文件损坏记录警告后同样按空缓存处理，运行继续。
func NewFileCache(path string, logger *zap.Logger) *FileCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &FileCache{
		MemoryCache: NewMemoryCache(),
		path:        path,
		logger:      logger,
	}
	c.load()
	return c
}

// load 读取缓存文件。支持两种格式：
// {"entries":[{"original":...,"translation":...}]} 和扁平的 键→译文 映射，
// 两者都会收敛成同一套归一化键条目。
func (c *FileCache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("读取缓存文件失败，按空缓存继续", zap.String("path", c.path), zap.Error(err))
		}
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		c.logger.Warn("缓存文件格式无效，按空缓存继续", zap.String("path", c.path), zap.Error(err))
		return
	}

	if entriesRaw, ok := raw["entries"]; ok {
		var entries []Entry
		if err := json.Unmarshal(entriesRaw, &entries); err != nil {
			c.logger.Warn("缓存条目解析失败，按空缓存继续", zap.String("path", c.path), zap.Error(err))
			return
		}
		for _, e := range entries {
			_ = c.MemoryCache.Set(e.Original, e.Translation)
		}
		return
	}

	// 扁平映射格式：逐个字段解析，跳过非字符串值
	loaded := 0
	for k, v := range raw {
		var translated string
		if err := json.Unmarshal(v, &translated); err != nil {
			continue
		}
		_ = c.MemoryCache.Set(k, translated)
		loaded++
	}
	if loaded == 0 && len(raw) > 0 {
		c.logger.Warn("缓存文件中没有可用条目", zap.String("path", c.path))
	}
}

// Set 写入翻译并立即落盘
func (c *FileCache) Set(text, translated string) error {
	if err := c.MemoryCache.Set(text, translated); err != nil {
		return err
	}
	return c.Flush()
}

// Seed 批量写入条目后一次性落盘，用于词汇表或上一轮翻译结果的预热
func (c *FileCache) Seed(entries []Entry) error {
	for _, e := range entries {
		_ = c.MemoryCache.Set(e.Original, e.Translation)
	}
	return c.Flush()
}

// Clear 清除所有条目并删除缓存文件
func (c *FileCache) Clear() error {
	_ = c.MemoryCache.Clear()

	c.ioMu.Lock()
	defer c.ioMu.Unlock()
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除缓存文件失败: %w", err)
	}
	return nil
}

// Flush 把当前全部条目写入缓存文件。
// 先写临时文件再重命名，避免中断时留下半个文件。
func (c *FileCache) Flush() error {
	snapshot := c.Snapshot()

	file := cacheFile{
		Version: cacheFileVersion,
		Entries: make([]Entry, 0, len(snapshot)),
	}
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		file.Entries = append(file.Entries, snapshot[k])
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化缓存失败: %w", err)
	}

	c.ioMu.Lock()
	defer c.ioMu.Unlock()

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建缓存目录失败: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("写入缓存临时文件失败: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("替换缓存文件失败: %w", err)
	}
	return nil
}

// Path 缓存文件路径
func (c *FileCache) Path() string {
	return c.path
}

// NewCache 根据配置创建缓存实例。路径为空时使用纯内存缓存（不持久化）。
func NewCache(path string, logger *zap.Logger) Cache {
	if path == "" {
		return NewMemoryCache()
	}
	return NewFileCache(path, logger)
}
