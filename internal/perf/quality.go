// File perf/quality.go
package perf

import "log/slog"

// Level 渲染质量档位
type Level int

const (
	High Level = iota
	Medium
	Low
)

func (l Level) String() string {
	switch l {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	}
	return "unknown"
}

const (
	// MinSamplesBeforeEvaluation 预热样本数，启动初期的抖动不参与判断
	MinSamplesBeforeEvaluation = 30

	lowFPSThreshold    = 20.0
	mediumFPSThreshold = 30.0
)

// 各档位参数
const (
	MediumStrength = 0.10
	MediumRadius   = 0.20
	LowStrength    = 0.05
	LowRadius      = 0.15
	LowRenderScale = 0.75
)

// Tunable 质量控制器会原地修改的渲染参数
type Tunable interface {
	DistortionStrength() float64
	DistortionRadius() float64
	SetDistortionStrength(v float64)
	SetDistortionRadius(v float64)
	SetRenderScale(v float64)
}

// QualityController 按平均 FPS 单向降档：high -> medium -> low
// 帧率恢复不会自动升档，只有 Reset 能回到 high（避免来回抖动）
type QualityController struct {
	target  Tunable
	history *Window
	level   Level
	log     *slog.Logger

	origStrength float64
	origRadius   float64
	origScale    float64
}

func NewQualityController(target Tunable, log *slog.Logger) *QualityController {
	if log == nil {
		log = slog.Default()
	}
	return &QualityController{
		target:       target,
		history:      NewWindow(WindowSize),
		level:        High,
		log:          log.With("component", "quality"),
		origStrength: target.DistortionStrength(),
		origRadius:   target.DistortionRadius(),
		origScale:    1.0,
	}
}

func (q *QualityController) Level() Level { return q.level }

// Samples 自身窗口里的样本数（与 FrameMetrics 的窗口互不影响）
func (q *QualityController) Samples() int { return q.history.Len() }

// RecordFrame 记一个 FPS 样本，够 30 个后每次都评估
func (q *QualityController) RecordFrame(fps float64) {
	q.history.Push(fps)
	if q.history.Len() >= MinSamplesBeforeEvaluation {
		q.evaluate()
	}
}

func (q *QualityController) evaluate() {
	avg := q.history.Mean()
	switch {
	case avg < lowFPSThreshold && q.level != Low:
		q.log.Warn("fps below 20, switching to low quality",
			"fps", round1(avg), "previous", q.level.String())
		q.level = Low
		q.target.SetDistortionStrength(LowStrength)
		q.target.SetDistortionRadius(LowRadius)
		q.target.SetRenderScale(LowRenderScale)
	case avg < mediumFPSThreshold && q.level == High:
		q.log.Warn("fps below 30, switching to medium quality",
			"fps", round1(avg), "previous", q.level.String())
		q.level = Medium
		q.target.SetDistortionStrength(MediumStrength)
		q.target.SetDistortionRadius(MediumRadius)
	}
}

// Reset 清空样本并恢复构造时记录的参数
func (q *QualityController) Reset() {
	q.history.Reset()
	q.level = High
	q.target.SetDistortionStrength(q.origStrength)
	q.target.SetDistortionRadius(q.origRadius)
	q.target.SetRenderScale(q.origScale)
}
