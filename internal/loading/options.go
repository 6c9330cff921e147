// File loading/options.go
package loading

import (
	"log/slog"
	"time"

	"robonexus_go/internal/host"
	"robonexus_go/internal/perf"
	"robonexus_go/internal/render"
)

// Selectors 四个必需元素的选择器
type Selectors struct {
	Canvas  string
	Screen  string
	Content string
	Skip    string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Canvas:  ".liquid-text-canvas",
		Screen:  ".loading-screen",
		Content: ".page-content",
		Skip:    ".loading-screen-skip",
	}
}

type Options struct {
	Selectors   Selectors
	MaxDuration time.Duration // 硬上限，默认 10s
	Render      render.Options

	SampleInterval time.Duration // FPS 采样
	LogInterval    time.Duration // 性能日志

	SkipRevealDelay time.Duration
	SkipFade        time.Duration
	CrossFade       time.Duration
}

func DefaultOptions() Options {
	return Options{
		Selectors:       DefaultSelectors(),
		MaxDuration:     10 * time.Second,
		Render:          render.DefaultOptions(),
		SampleInterval:  100 * time.Millisecond,
		LogInterval:     2 * time.Second,
		SkipRevealDelay: time.Second,
		SkipFade:        300 * time.Millisecond,
		CrossFade:       700 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Selectors.Canvas == "" {
		o.Selectors.Canvas = d.Selectors.Canvas
	}
	if o.Selectors.Screen == "" {
		o.Selectors.Screen = d.Selectors.Screen
	}
	if o.Selectors.Content == "" {
		o.Selectors.Content = d.Selectors.Content
	}
	if o.Selectors.Skip == "" {
		o.Selectors.Skip = d.Selectors.Skip
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = d.MaxDuration
	}
	if o.SampleInterval <= 0 {
		o.SampleInterval = d.SampleInterval
	}
	if o.LogInterval <= 0 {
		o.LogInterval = d.LogInterval
	}
	if o.SkipRevealDelay < 0 {
		o.SkipRevealDelay = d.SkipRevealDelay
	}
	if o.SkipFade <= 0 {
		o.SkipFade = d.SkipFade
	}
	if o.CrossFade <= 0 {
		o.CrossFade = d.CrossFade
	}
	return o
}

// Initializer 过渡结束后调用的主页面初始化入口
type Initializer struct {
	Name string
	Run  func()
}

// Deps 控制器的外部依赖；NewFrameMetrics / NewQuality 可以为空，
// 为空时没有自适应质量，流程照常
type Deps struct {
	Document  Document
	Loop      host.Scheduler
	Lifecycle *host.Lifecycle
	Shaders   render.ShaderSource
	Logger    *slog.Logger

	NewFrameMetrics func(start time.Duration) *perf.FrameMetrics
	NewQuality      func(t perf.Tunable, log *slog.Logger) *perf.QualityController

	Initializers []Initializer

	// OnPhase 每次阶段变化后回调（宿主用来切换省电模式等）
	OnPhase func(from, to Phase)
}
