package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFormula(t *testing.T) {
	c := NewDefault()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"普通英文句子", "The quick brown fox jumps over the lazy dog.", false},
		{"强数学符号积分", "∫ f(x) dx over the domain", true},
		{"强数学符号求和", "∑_{i=1}^{n} x_i", true},
		{"LaTeX 命令", `\alpha + \beta = \gamma`, true},
		{"公式编号", "(5)", true},
		{"带空白的公式编号", "  (12)  ", true},
		{"附录公式编号", "(A.1)", true},
		{"括号里的普通词", "(note)", false},
		{"短文本密集上下标", "x_1 y_2 z_3 w_4", true},
		{"单个上下标不算", "value x_1 appears once in this sentence", false},
		{"希腊字母占比高", "αβγδε", true},
		{"希腊字母零星出现", "the parameter α controls the learning rate of the model", false},
		{"行内 TeX 片段", "where $x^2 + y^2 = z^2$ holds", true},
		{"双美元 TeX 片段", "$$E = mc^2$$", true},
		{"转义的美元符号", `the price is \$5 and \$10`, false},
		{"空字符串", "", false},
		{"纯空白", "   \t  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsFormula(tt.text), "text: %q", tt.text)
		})
	}
}

func TestIsFormulaSubscriptLengthGate(t *testing.T) {
	c := NewDefault()

	// 上下标密集但文本超过长度阈值时不触发该规则
	long := "a_1 b_2 c_3 " + strings.Repeat("plain words here ", 5)
	assert.False(t, c.IsFormula(long))

	short := "a_1 b_2 c_3"
	assert.True(t, c.IsFormula(short))
}

func TestIsLineNumber(t *testing.T) {
	c := NewDefault()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"三行纯数字", "1\n2\n3", true},
		{"多行行号", "10\n11\n12\n13\n14", true},
		{"两行不够", "1\n2", false},
		{"单行数字", "42", false},
		{"数字和文字混合过半", "1\nabc\ndef", false},
		{"数字占多数", "1\n2\n3\n4\nabc", true},
		{"空字符串", "", false},
		{"带空白的数字行", " 1 \n 2 \n 3 ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsLineNumber(tt.text), "text: %q", tt.text)
		})
	}
}

func TestShouldTranslate(t *testing.T) {
	c := NewDefault()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"普通英文段落", "Neural networks achieve strong results on this benchmark.", true},
		{"过短文本", "ab", false},
		{"刚好到达长度下限", "abc", true},
		{"行号列", "1\n2\n3\n4", false},
		{"公式", `\sum_{i} w_i x_i`, false},
		{"纯数字表格", "12 34 56 78 90", false},
		{"数字为主少量字母", "3.14 2.71 1.61 x", false},
		{"中文占比过高", "这段文字已经是中文内容了", false},
		{"少量中文的英文句子", "The term 记号 appears in the English sentence body.", true},
		{"空字符串", "", false},
		{"纯空白", "  \n ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ShouldTranslate(tt.text), "text: %q", tt.text)
		})
	}
}

func TestClassify(t *testing.T) {
	c := NewDefault()

	t.Run("正文可翻译", func(t *testing.T) {
		r := c.Classify("This paragraph describes the experimental setup in detail.")
		assert.Equal(t, CategoryText, r.Category)
		assert.True(t, r.Translatable)
	})

	t.Run("公式不可翻译", func(t *testing.T) {
		r := c.Classify(`\int_0^1 f(x) dx = 1`)
		assert.Equal(t, CategoryFormula, r.Category)
		assert.False(t, r.Translatable)
	})

	t.Run("行号归为正文但不可翻译", func(t *testing.T) {
		r := c.Classify("1\n2\n3\n4\n5")
		assert.Equal(t, CategoryText, r.Category)
		assert.False(t, r.Translatable)
	})

	t.Run("短噪声归为正文但不可翻译", func(t *testing.T) {
		r := c.Classify("*")
		assert.Equal(t, CategoryText, r.Category)
		assert.False(t, r.Translatable)
	})

	t.Run("同一输入结果稳定", func(t *testing.T) {
		text := "Stability of classification matters for cache reuse."
		first := c.Classify(text)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, c.Classify(text))
		}
	})
}

func TestCustomProfile(t *testing.T) {
	profile := DefaultProfile()
	profile.MinTranslateLen = 10
	profile.DetectTeXSpans = false
	c := New(profile)

	assert.False(t, c.ShouldTranslate("short one"), "9 个字符应低于自定义下限")
	assert.True(t, c.ShouldTranslate("long enough sentence"), "超过自定义下限")
	assert.False(t, c.IsFormula("inline $x+y$ math"), "关闭 TeX 片段检测后不再命中")
}
