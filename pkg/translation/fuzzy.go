package translation

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// 模糊匹配阈值。既有缓存文件的命中行为依赖这些值，
// 调整任何一个都会改变跨运行的匹配结果。
const (
	minFuzzyQueryLen = 3  // 查询短于该长度时直接放弃
	minContainKeyLen = 10 // 「键是查询子串」要求的最小键长
	minReverseLen    = 10 // 「查询是键子串」要求的最小查询长度
	windowLen        = 12 // 滑动窗口宽度
	minPrefixRun     = 10 // 公共前缀最小长度
)

// MatchRule 标识模糊匹配命中的规则
type MatchRule string

const (
	MatchExact      MatchRule = "exact"        // 归一化后完全一致
	MatchKeyInQuery MatchRule = "key_in_query" // 缓存键是查询文本的子串
	MatchQueryInKey MatchRule = "query_in_key" // 查询文本是缓存键的子串
	MatchWindow     MatchRule = "window"       // 滑动窗口片段命中
	MatchPrefix     MatchRule = "prefix"       // 公共前缀命中
)

// FuzzyMatch 一次模糊匹配的结果。Confidence 是键与查询的编辑距离相似度，
// 只作为观测信号记录，不参与任何匹配决策。
type FuzzyMatch struct {
	Key         string    `json:"key"`
	Translation string    `json:"translation"`
	Rule        MatchRule `json:"rule"`
	Confidence  float64   `json:"confidence"`
}

// FindFuzzy 在缓存中做模糊查找，用于提取文本与缓存文本因换行、
// 分段不同而无法精确命中的场合。规则按固定顺序尝试，第一个命中即返回；
// 每条规则内部键都按长度降序遍历，最长的键优先。
// 这是有意宽松的启发式匹配，短文本和结构相似的文本可能误配。
func (c *MemoryCache) FindFuzzy(text string) (FuzzyMatch, bool) {
	query := Normalize(text)
	qr := []rune(query)
	if len(qr) < minFuzzyQueryLen {
		return FuzzyMatch{}, false
	}

	// 完全匹配
	if entry, ok := c.lookup(query); ok {
		c.hits.Add(1)
		return FuzzyMatch{Key: query, Translation: entry.Translation, Rule: MatchExact, Confidence: 1}, true
	}

	keys := c.sortedKeys()

	// 子串匹配：缓存键出现在查询文本里
	for _, key := range keys {
		if utf8.RuneCountInString(key) >= minContainKeyLen && strings.Contains(query, key) {
			return c.fuzzyHit(key, MatchKeyInQuery, query)
		}
	}

	// 反向子串匹配：查询文本出现在缓存键里
	if len(qr) >= minReverseLen {
		for _, key := range keys {
			if strings.Contains(key, query) {
				return c.fuzzyHit(key, MatchQueryInKey, query)
			}
		}
	}

	// 滑动窗口匹配
	if len(qr) >= windowLen {
		for _, key := range keys {
			if utf8.RuneCountInString(key) < windowLen {
				// 键按长度降序，剩下的只会更短
				break
			}
			for i := 0; i+windowLen <= len(qr); i++ {
				if strings.Contains(key, string(qr[i:i+windowLen])) {
					return c.fuzzyHit(key, MatchWindow, query)
				}
			}
		}
	}

	// 公共前缀匹配
	for _, key := range keys {
		if commonPrefixRun(key, qr) >= minPrefixRun {
			return c.fuzzyHit(key, MatchPrefix, query)
		}
	}

	return FuzzyMatch{}, false
}

// fuzzyHit 组装命中结果并计数
func (c *MemoryCache) fuzzyHit(key string, rule MatchRule, query string) (FuzzyMatch, bool) {
	entry, ok := c.lookup(key)
	if !ok {
		return FuzzyMatch{}, false
	}
	c.fuzzyHits.Add(1)
	return FuzzyMatch{
		Key:         key,
		Translation: entry.Translation,
		Rule:        rule,
		Confidence:  similarity(key, query),
	}, true
}

// commonPrefixRun 统计 key 与 query 从头开始连续相同的字符数
func commonPrefixRun(key string, query []rune) int {
	kr := []rune(key)
	n := len(kr)
	if len(query) < n {
		n = len(query)
	}
	if n < minPrefixRun {
		return 0
	}
	run := 0
	for i := 0; i < n; i++ {
		if kr[i] != query[i] {
			break
		}
		run++
	}
	return run
}

// similarity 键与查询的归一化编辑距离相似度，范围 [0,1]
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	d := fuzzy.LevenshteinDistance(a, b)
	sim := 1 - float64(d)/float64(longest)
	if sim < 0 {
		return 0
	}
	return sim
}
