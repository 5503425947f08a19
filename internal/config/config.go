package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nerdneilsfield/go-paper-overlay/internal/classifier"
	"github.com/nerdneilsfield/go-paper-overlay/internal/layout"
	"github.com/nerdneilsfield/go-paper-overlay/internal/overlay"
	"github.com/nerdneilsfield/go-paper-overlay/pkg/providers"
)

// ProviderConfig 翻译后端配置
type ProviderConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
}

// OverlayConfig 叠加渲染配置
type OverlayConfig struct {
	RedactPadding float64 `mapstructure:"redact_padding"`
	PrimaryFont   string  `mapstructure:"primary_font"`
	FallbackFont  string  `mapstructure:"fallback_font"`
	Origin        string  `mapstructure:"origin"` // top-left 或 bottom-left
}

// Config 保存整个工具的配置
type Config struct {
	SourceLang   string `mapstructure:"source_lang"`
	TargetLang   string `mapstructure:"target_lang"`
	CachePath    string `mapstructure:"cache_path"`
	GlossaryPath string `mapstructure:"glossary_path"`
	Progress     bool   `mapstructure:"progress"`
	DryRun       bool   `mapstructure:"dry_run"`

	Provider   ProviderConfig     `mapstructure:"provider"`
	Classifier classifier.Profile `mapstructure:"classifier"`
	Fitter     layout.Options     `mapstructure:"fitter"`
	Overlay    OverlayConfig      `mapstructure:"overlay"`
}

// Load 加载配置。路径为空时依次查找 ~/.config/paperoverlay/ 和当前目录下的
// config.yaml，找不到配置文件就使用默认值。环境变量以 PAPEROVERLAY_ 为前缀，
// 同时兼容 OPENAI_API_KEY 等旧变量名。
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Join(home, ".config", "paperoverlay"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PAPEROVERLAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 兼容既有工具链的环境变量
	_ = v.BindEnv("provider.api_key", "PAPEROVERLAY_PROVIDER_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("provider.base_url", "PAPEROVERLAY_PROVIDER_BASE_URL", "OPENAI_BASE_URL")
	_ = v.BindEnv("provider.model", "PAPEROVERLAY_PROVIDER_MODEL", "OPENAI_MODEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// BackendConfig 转换成翻译后端客户端的配置
func (c *Config) BackendConfig() providers.BaseConfig {
	cfg := providers.DefaultConfig()
	cfg.APIKey = c.Provider.APIKey
	if c.Provider.BaseURL != "" {
		cfg.BaseURL = c.Provider.BaseURL
	}
	if c.Provider.Model != "" {
		cfg.Model = c.Provider.Model
	}
	if c.SourceLang != "" {
		cfg.SourceLang = c.SourceLang
	}
	if c.TargetLang != "" {
		cfg.TargetLang = c.TargetLang
	}
	if c.Provider.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(c.Provider.TimeoutSeconds) * time.Second
	}
	if c.Provider.MaxRetries > 0 {
		cfg.Retry.MaxAttempts = c.Provider.MaxRetries
	}
	return cfg
}

// Strategies 根据配置组装渲染策略序列
func (c *Config) Strategies() []overlay.Strategy {
	primary := c.Overlay.PrimaryFont
	if primary == "" {
		primary = overlay.FontCJK
	}
	fallback := c.Overlay.FallbackFont
	if fallback == "" {
		fallback = overlay.FontHelvetica
	}
	return []overlay.Strategy{
		{Name: "primary", Font: primary, Scale: 1.0},
		{Name: "shrink", Font: primary, Scale: 0.8},
		{Name: "latin", Font: fallback, Scale: 1.0},
		{Name: "htmlbox", HTMLBox: true, Scale: 1.0},
	}
}

// PlanOrigin 渲染计划使用的坐标系
func (c *Config) PlanOrigin() overlay.Origin {
	if c.Overlay.Origin == string(overlay.OriginBottomLeft) {
		return overlay.OriginBottomLeft
	}
	return overlay.OriginTopLeft
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source_lang", "English")
	v.SetDefault("target_lang", "Chinese")
	v.SetDefault("progress", true)
	v.SetDefault("dry_run", false)

	v.SetDefault("provider.base_url", "https://api.openai.com/v1")
	v.SetDefault("provider.model", "gpt-4")
	v.SetDefault("provider.timeout_seconds", 60)
	v.SetDefault("provider.max_retries", 3)

	profile := classifier.DefaultProfile()
	v.SetDefault("classifier.strong_math_symbols", profile.StrongMathSymbols)
	v.SetDefault("classifier.extended_math_symbols", profile.ExtendedMathSymbols)
	v.SetDefault("classifier.math_symbol_ratio", profile.MathSymbolRatio)
	v.SetDefault("classifier.subscript_max_len", profile.SubscriptMaxLen)
	v.SetDefault("classifier.subscript_min_count", profile.SubscriptMinCount)
	v.SetDefault("classifier.min_line_number_lines", profile.MinLineNumberLines)
	v.SetDefault("classifier.line_number_ratio", profile.LineNumberRatio)
	v.SetDefault("classifier.min_translate_len", profile.MinTranslateLen)
	v.SetDefault("classifier.min_alpha_ratio", profile.MinAlphaRatio)
	v.SetDefault("classifier.max_target_ratio", profile.MaxTargetRatio)
	v.SetDefault("classifier.target_rune_lo", profile.TargetRuneLo)
	v.SetDefault("classifier.target_rune_hi", profile.TargetRuneHi)
	v.SetDefault("classifier.detect_tex_spans", profile.DetectTeXSpans)

	fit := layout.DefaultOptions()
	v.SetDefault("fitter.min_font_size", fit.MinFontSize)
	v.SetDefault("fitter.max_font_size", fit.MaxFontSize)
	v.SetDefault("fitter.readable_floor", fit.ReadableFloor)
	v.SetDefault("fitter.line_height", fit.LineHeight)
	v.SetDefault("fitter.narrow_weight", fit.NarrowWeight)

	v.SetDefault("overlay.redact_padding", 2.0)
	v.SetDefault("overlay.primary_font", overlay.FontCJK)
	v.SetDefault("overlay.fallback_font", overlay.FontHelvetica)
	v.SetDefault("overlay.origin", string(overlay.OriginTopLeft))
}
