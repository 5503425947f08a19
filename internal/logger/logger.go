package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志初始化选项
type Options struct {
	// Verbose 为 true 时输出 Debug 级别日志
	Verbose bool
	// LogFile 不为空时同时写入该文件
	LogFile string
}

// New 创建一个新的日志记录器
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cfg.DisableStacktrace = true

	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if opts.LogFile != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, opts.LogFile)
	}

	return cfg.Build()
}
