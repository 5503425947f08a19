package classifier

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Category 文本块的分类
type Category string

const (
	CategoryText        Category = "text"         // 普通正文
	CategoryFormula     Category = "formula"      // 数学公式或公式编号
	CategoryLineNumbers Category = "line_numbers" // 行号列
	CategoryNoise       Category = "noise"        // 装饰性或无法翻译的内容
)

// Result 一次分类的结果。对同一输入永远返回同样的结果，不产生错误。
type Result struct {
	Category     Category
	Translatable bool
}

var (
	latexCommandPattern   = regexp.MustCompile(`\\[a-zA-Z]+`)
	equationNumberPattern = regexp.MustCompile(`^\s*\(\d+\)\s*$|^\s*\([A-Z]\.\d+\)\s*$`)
	subscriptPattern      = regexp.MustCompile(`[a-zA-Z][_^]\d`)

	// texSpanPattern 匹配未转义的 $...$ 或 $$...$$ 数学片段。
	// 开头的后行断言和结尾的反向引用都超出标准库 regexp 的能力。
	texSpanPattern = regexp2.MustCompile(`(?<!\\)(\$\$?)(?:[^$\\]|\\.)+?\1`, 0)
)

// Classifier 判定文本块类别和可翻译性。所有判定都是输入文本的纯函数。
type Classifier struct {
	profile     Profile
	strongSet   map[rune]struct{}
	extendedSet map[rune]struct{}
}

// New 创建分类器
func New(profile Profile) *Classifier {
	c := &Classifier{
		profile:     profile,
		strongSet:   make(map[rune]struct{}),
		extendedSet: make(map[rune]struct{}),
	}
	for _, r := range profile.StrongMathSymbols {
		c.strongSet[r] = struct{}{}
	}
	for _, r := range profile.ExtendedMathSymbols {
		c.extendedSet[r] = struct{}{}
	}
	return c
}

// NewDefault 使用默认阈值创建分类器
func NewDefault() *Classifier {
	return New(DefaultProfile())
}

// Classify 对一段文本分类。类别只区分公式和正文，
// 行号和噪声通过 Translatable 以及单独的判定函数体现。
func (c *Classifier) Classify(text string) Result {
	category := CategoryText
	if c.IsFormula(text) {
		category = CategoryFormula
	}
	return Result{
		Category:     category,
		Translatable: c.ShouldTranslate(text),
	}
}

// IsFormula 判断文本是否为数学公式。满足任意一条即成立：
// 含强数学符号；含 LaTeX 命令；整体是公式编号如 (5) 或 (A.1)；
// 短文本里上下标模式密集；扩展数学符号占比过高；含 $...$ 数学片段。
func (c *Classifier) IsFormula(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	for _, r := range text {
		if _, ok := c.strongSet[r]; ok {
			return true
		}
	}

	if latexCommandPattern.MatchString(text) {
		return true
	}

	if equationNumberPattern.MatchString(text) {
		return true
	}

	if utf8.RuneCountInString(text) < c.profile.SubscriptMaxLen {
		if len(subscriptPattern.FindAllString(text, -1)) > c.profile.SubscriptMinCount {
			return true
		}
	}

	total := 0
	mathCount := 0
	for _, r := range text {
		total++
		if _, ok := c.extendedSet[r]; ok {
			mathCount++
		}
	}
	if total > 0 && float64(mathCount)/float64(total) > c.profile.MathSymbolRatio {
		return true
	}

	if c.profile.DetectTeXSpans {
		if ok, _ := texSpanPattern.MatchString(text); ok {
			return true
		}
	}

	return false
}

// IsLineNumber 判断文本是否为行号列：至少三行，且纯数字行超过七成
func (c *Classifier) IsLineNumber(text string) bool {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < c.profile.MinLineNumberLines {
		return false
	}

	numberLines := 0
	for _, line := range lines {
		if isAllDigits(strings.TrimSpace(line)) {
			numberLines++
		}
	}
	return float64(numberLines)/float64(len(lines)) > c.profile.LineNumberRatio
}

// ShouldTranslate 判断文本是否值得送去翻译。
// 过短、行号、公式、字母占比过低（数字表格）、目标文字占比过高
// （已经翻译过）的文本都会被过滤。
func (c *Classifier) ShouldTranslate(text string) bool {
	text = strings.TrimSpace(text)

	total := utf8.RuneCountInString(text)
	if total < c.profile.MinTranslateLen {
		return false
	}

	if c.IsLineNumber(text) {
		return false
	}

	if c.IsFormula(text) {
		return false
	}

	alphaCount := 0
	targetCount := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			alphaCount++
		}
		if r >= c.profile.TargetRuneLo && r <= c.profile.TargetRuneHi {
			targetCount++
		}
	}

	if float64(alphaCount)/float64(total) < c.profile.MinAlphaRatio {
		return false
	}

	if float64(targetCount) > float64(total)*c.profile.MaxTargetRatio {
		return false
	}

	return true
}

// isAllDigits 空串不算数字行
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
