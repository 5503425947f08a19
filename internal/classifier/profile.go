package classifier

// Profile 分类阈值集合。来源不同的文档在这些阈值上的表现差异很大，
// 所以全部收敛为可配置的默认值，而不是散落在判定逻辑里的硬编码常量。
type Profile struct {
	// StrongMathSymbols 强数学符号，出现任意一个直接判为公式
	StrongMathSymbols string `mapstructure:"strong_math_symbols"`

	// ExtendedMathSymbols 扩展数学符号集：比较、集合、逻辑运算符和希腊字母
	ExtendedMathSymbols string `mapstructure:"extended_math_symbols"`

	// MathSymbolRatio 扩展符号占比超过该值判为公式
	MathSymbolRatio float64 `mapstructure:"math_symbol_ratio"`

	// SubscriptMaxLen 上下标计数只对短于该长度的文本生效
	SubscriptMaxLen int `mapstructure:"subscript_max_len"`

	// SubscriptMinCount 上下标模式出现次数超过该值判为公式
	SubscriptMinCount int `mapstructure:"subscript_min_count"`

	// MinLineNumberLines 行号判定要求的最少行数
	MinLineNumberLines int `mapstructure:"min_line_number_lines"`

	// LineNumberRatio 纯数字行占比超过该值判为行号块
	LineNumberRatio float64 `mapstructure:"line_number_ratio"`

	// MinTranslateLen 可翻译文本的最小长度
	MinTranslateLen int `mapstructure:"min_translate_len"`

	// MinAlphaRatio 字母占比低于该值视为数字/符号表格，不翻译
	MinAlphaRatio float64 `mapstructure:"min_alpha_ratio"`

	// MaxTargetRatio 目标文字占比超过该值视为已翻译，不再处理
	MaxTargetRatio float64 `mapstructure:"max_target_ratio"`

	// TargetRuneLo/TargetRuneHi 目标文字的码点范围，默认为 CJK 统一表意文字
	TargetRuneLo rune `mapstructure:"target_rune_lo"`
	TargetRuneHi rune `mapstructure:"target_rune_hi"`

	// DetectTeXSpans 是否把未转义的 $...$ / $$...$$ 片段判为公式
	DetectTeXSpans bool `mapstructure:"detect_tex_spans"`
}

// DefaultProfile 返回默认阈值
func DefaultProfile() Profile {
	return Profile{
		StrongMathSymbols:   "∫∑∏√∂∇",
		ExtendedMathSymbols: "±×÷≤≥≠≈∞∈∉⊂⊃∪∩∧∨¬∀∃αβγδεζηθικλμνξοπρστυφχψωΓΔΘΛΞΠΣΦΨΩ",
		MathSymbolRatio:     0.4,
		SubscriptMaxLen:     50,
		SubscriptMinCount:   2,
		MinLineNumberLines:  3,
		LineNumberRatio:     0.7,
		MinTranslateLen:     3,
		MinAlphaRatio:       0.3,
		MaxTargetRatio:      0.3,
		TargetRuneLo:        0x4E00,
		TargetRuneHi:        0x9FFF,
		DetectTeXSpans:      true,
	}
}
