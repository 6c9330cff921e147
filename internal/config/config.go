// File config/config.go
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"robonexus_go/internal/loading"
	"robonexus_go/internal/render"
)

// EnvPrefix 环境变量前缀，键里的 . 换成 _，如 ROBONEXUS_LOADING_MAX_DURATION
const EnvPrefix = "ROBONEXUS"

type Window struct {
	Width  int
	Height int
	Title  string
}

// Config 启动参数汇总
type Config struct {
	Window   Window
	Loading  loading.Options
	Subtitle string
	Contact  string
	LogLevel slog.Level
	Debug    bool
}

// SetDefaults 所有键的默认值
func SetDefaults(v *viper.Viper) {
	lo := loading.DefaultOptions()
	ro := lo.Render

	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 720)
	v.SetDefault("window.title", "Robo Nexus")
	v.SetDefault("window.subtitle", "Build. Code. Compete.")
	v.SetDefault("page.contact_url", "https://robonexus.example/contact")

	v.SetDefault("loading.max_duration", lo.MaxDuration)
	v.SetDefault("loading.skip_reveal_delay", lo.SkipRevealDelay)
	v.SetDefault("loading.cross_fade", lo.CrossFade)
	v.SetDefault("loading.selectors.canvas", lo.Selectors.Canvas)
	v.SetDefault("loading.selectors.screen", lo.Selectors.Screen)
	v.SetDefault("loading.selectors.content", lo.Selectors.Content)
	v.SetDefault("loading.selectors.skip", lo.Selectors.Skip)

	v.SetDefault("text.content", ro.Text)
	v.SetDefault("text.font_family", ro.FontFamily)
	v.SetDefault("text.font_weight", ro.FontWeight)
	v.SetDefault("text.font_size", ro.FontSize)
	v.SetDefault("text.font_file", "")
	v.SetDefault("text.fill", ro.Fill)

	v.SetDefault("gradient.start", ro.GradientStart)
	v.SetDefault("gradient.end", ro.GradientEnd)
	v.SetDefault("distortion.strength", ro.DistortionStrength)
	v.SetDefault("distortion.radius", ro.DistortionRadius)

	v.SetDefault("perf.min_fps", ro.MinFPS)
	v.SetDefault("perf.sample_interval", lo.SampleInterval)
	v.SetDefault("perf.log_interval", lo.LogInterval)

	v.SetDefault("log.level", "info")
	v.SetDefault("debug", false)
}

// BindFlags 命令行标志覆盖配置文件和环境变量
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, flag := range map[string]string{
		"config":               "config",
		"window.width":         "width",
		"window.height":        "height",
		"text.content":         "text",
		"loading.max_duration": "max-duration",
		"log.level":            "log-level",
		"debug":                "debug",
	} {
		f := fs.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Load 读默认值、可选配置文件、环境变量，再校验
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	cfg.Window = Window{
		Width:  v.GetInt("window.width"),
		Height: v.GetInt("window.height"),
		Title:  v.GetString("window.title"),
	}
	cfg.Subtitle = v.GetString("window.subtitle")
	cfg.Contact = v.GetString("page.contact_url")
	cfg.Debug = v.GetBool("debug")

	lo := loading.DefaultOptions()
	lo.MaxDuration = v.GetDuration("loading.max_duration")
	lo.SkipRevealDelay = v.GetDuration("loading.skip_reveal_delay")
	lo.CrossFade = v.GetDuration("loading.cross_fade")
	lo.SampleInterval = v.GetDuration("perf.sample_interval")
	lo.LogInterval = v.GetDuration("perf.log_interval")
	lo.Selectors = loading.Selectors{
		Canvas:  v.GetString("loading.selectors.canvas"),
		Screen:  v.GetString("loading.selectors.screen"),
		Content: v.GetString("loading.selectors.content"),
		Skip:    v.GetString("loading.selectors.skip"),
	}
	lo.Render = render.Options{
		Text:               v.GetString("text.content"),
		FontFamily:         v.GetString("text.font_family"),
		FontWeight:         v.GetInt("text.font_weight"),
		FontSize:           v.GetFloat64("text.font_size"),
		FontFile:           v.GetString("text.font_file"),
		Fill:               v.GetString("text.fill"),
		GradientStart:      v.GetString("gradient.start"),
		GradientEnd:        v.GetString("gradient.end"),
		DistortionStrength: v.GetFloat64("distortion.strength"),
		DistortionRadius:   v.GetFloat64("distortion.radius"),
		MinFPS:             v.GetFloat64("perf.min_fps"),
	}
	cfg.Loading = lo

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log.level"))); err != nil {
		return Config{}, fmt.Errorf("log.level: %w", err)
	}
	if cfg.Debug && cfg.LogLevel > slog.LevelDebug {
		cfg.LogLevel = slog.LevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 出错时报出具体的键
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	ro := c.Loading.Render
	for _, u := range []struct {
		key string
		v   float64
	}{
		{"distortion.strength", ro.DistortionStrength},
		{"distortion.radius", ro.DistortionRadius},
	} {
		if u.v <= 0 || u.v > 1 {
			return fmt.Errorf("%s = %v, want a value in (0,1]", u.key, u.v)
		}
	}
	for _, d := range []struct {
		key string
		v   time.Duration
	}{
		{"loading.max_duration", c.Loading.MaxDuration},
		{"loading.cross_fade", c.Loading.CrossFade},
		{"perf.sample_interval", c.Loading.SampleInterval},
		{"perf.log_interval", c.Loading.LogInterval},
	} {
		if d.v <= 0 {
			return fmt.Errorf("%s = %v, want a positive duration", d.key, d.v)
		}
	}
	if c.Loading.SkipRevealDelay < 0 {
		return fmt.Errorf("loading.skip_reveal_delay = %v, must not be negative", c.Loading.SkipRevealDelay)
	}
	if ro.FontSize <= 0 {
		return fmt.Errorf("text.font_size = %v, must be positive", ro.FontSize)
	}
	if ro.MinFPS <= 0 {
		return fmt.Errorf("perf.min_fps = %v, must be positive", ro.MinFPS)
	}
	return nil
}

// NewLogger 文本格式 slog，级别取自配置
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
