package overlay

// PyMuPDF 内置字体名，沿用既有产物的线格式
const (
	FontCJK       = "china-ss"
	FontHelvetica = "helv"
)

// Strategy 一次渲染尝试的参数。Scale 相对已适配字号再缩放。
type Strategy struct {
	Name    string
	Font    string
	Scale   float64
	HTMLBox bool
}

// DefaultStrategies 返回按序尝试的渲染策略：
// 中文字体原字号、中文字体八折字号、Helvetica 原字号，
// 最后交给自动排版的 HTML 盒子兜底。
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "primary", Font: FontCJK, Scale: 1.0},
		{Name: "shrink", Font: FontCJK, Scale: 0.8},
		{Name: "latin", Font: FontHelvetica, Scale: 1.0},
		{Name: "htmlbox", HTMLBox: true, Scale: 1.0},
	}
}
