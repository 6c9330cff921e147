// File loading/choreography.go
package loading

import (
	"time"

	"robonexus_go/internal/anim"
)

// 编排各段的名字，Timeline.Active 会返回它们
const (
	StepFadeInScreen = "fade-in-screen"
	StepFadeInText   = "fade-in-text"
	StepHoverSweep   = "hover-sweep"
	StepReturnCenter = "return-center"
	StepFinale       = "finale"
)

// Waypoint 悬停扫动的一个目标点
type Waypoint struct {
	X, Y     float64
	Duration time.Duration
	Ease     anim.Ease
}

// Sweep 左 -> 上中 -> 右 -> 下中 -> 中心，共 3.5s
var Sweep = []Waypoint{
	{0.2, 0.5, 800 * time.Millisecond, anim.Power2InOut},
	{0.5, 0.3, 700 * time.Millisecond, anim.Power2InOut},
	{0.8, 0.5, 800 * time.Millisecond, anim.Power2InOut},
	{0.5, 0.7, 700 * time.Millisecond, anim.Power2InOut},
	{0.5, 0.5, 500 * time.Millisecond, anim.Power2Out},
}

const (
	fadeInScreenAt  = 0
	fadeInTextAt    = 500 * time.Millisecond
	sweepAt         = time.Second
	returnCenterAt  = 4500 * time.Millisecond
	finaleAt        = 5 * time.Second
	fadeDuration    = 500 * time.Millisecond
	holdDuration    = 500 * time.Millisecond
	finaleDuration  = 800 * time.Millisecond
	finaleScale     = 1.2
	sweepStartPoint = 0.5
)

// Targets 编排要驱动的对象
type Targets struct {
	Screen Element
	Canvas Element
	Hover  func(x, y float64)
}

// Choreography 构建固定的加载动画，总长 5.8s
// 每段都写明起止值，Seek 到任意时刻都能得到确定的画面
func Choreography(t Targets) *anim.Timeline {
	tl := anim.NewTimeline()

	tl.Tween(StepFadeInScreen, fadeInScreenAt, fadeDuration, anim.Power2Out, func(p float64) {
		t.Screen.SetOpacity(p)
	})
	tl.Tween(StepFadeInText, fadeInTextAt, fadeDuration, anim.Power2Out, func(p float64) {
		t.Canvas.SetOpacity(p)
	})

	tl.Nest(sweepAt, hoverSweep(t.Hover))

	// 不管扫动停在哪里，这一段都把悬停点钉在正中
	tl.Hold(StepReturnCenter, returnCenterAt, holdDuration, func(float64) {
		t.Hover(0.5, 0.5)
	})

	tl.Tween(StepFinale, finaleAt, finaleDuration, anim.Power2In, func(p float64) {
		t.Canvas.SetScale(anim.Lerp(1, finaleScale, p))
		t.Canvas.SetOpacity(1 - p)
	})
	return tl
}

func hoverSweep(hover func(x, y float64)) *anim.Timeline {
	tl := anim.NewTimeline()
	x, y := sweepStartPoint, sweepStartPoint
	var at time.Duration
	for _, wp := range Sweep {
		fx, fy, wp := x, y, wp
		tl.Tween(StepHoverSweep, at, wp.Duration, wp.Ease, func(p float64) {
			hover(anim.Lerp(fx, wp.X, p), anim.Lerp(fy, wp.Y, p))
		})
		x, y = wp.X, wp.Y
		at += wp.Duration
	}
	return tl
}

// ChoreographyDuration 5.8s
func ChoreographyDuration() time.Duration {
	return finaleAt + finaleDuration
}
