package stats

import (
	"time"

	"github.com/google/uuid"
)

// RunStats 一次运行的观测计数。只做记录，不参与任何控制决策。
// 流水线按页顺序执行，计数器不需要加锁。
type RunStats struct {
	RunID      string    `json:"run_id"`
	InputPath  string    `json:"input_path,omitempty"`
	OutputPath string    `json:"output_path,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	PagesDone int `json:"pages_done"`
	Blocks    int `json:"blocks"`

	// 翻译解析
	Processed     int `json:"processed"`
	Skipped       int `json:"skipped"`
	FromGlossary  int `json:"from_glossary"`
	FromCache     int `json:"from_cache"`
	FromFuzzy     int `json:"from_fuzzy"`
	FromService   int `json:"from_service"`
	ServiceErrors int `json:"service_errors"`

	// 渲染
	Rendered      int `json:"rendered"`
	Fallbacks     int `json:"fallbacks"`
	Dropped       int `json:"dropped"`
	GeometrySkips int `json:"geometry_skips"`
}

// NewRunStats 以新的运行标识开始计数
func NewRunStats() *RunStats {
	return &RunStats{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// Finish 记录结束时间
func (s *RunStats) Finish() {
	s.FinishedAt = time.Now()
}

// Duration 运行耗时。尚未结束时按当前时间计算。
func (s *RunStats) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// TranslatedTotal 所有取得译文的块数
func (s *RunStats) TranslatedTotal() int {
	return s.FromGlossary + s.FromCache + s.FromFuzzy + s.FromService
}
