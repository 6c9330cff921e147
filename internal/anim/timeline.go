// File anim/timeline.go
package anim

import (
	"sort"
	"time"

	"robonexus_go/internal/host"
)

type StepKind int

const (
	StepTween StepKind = iota // 按缓动更新数值
	StepHold                  // 占住一段时间，每帧以线性进度回调
	StepCall                  // 到点执行一次
)

func (k StepKind) String() string {
	switch k {
	case StepTween:
		return "tween"
	case StepHold:
		return "hold"
	case StepCall:
		return "call"
	}
	return "unknown"
}

// Step 时间轴上的一段，At/Duration 相对时间轴起点
type Step struct {
	Kind     StepKind
	Name     string
	At       time.Duration
	Duration time.Duration
	Ease     Ease
	Update   func(p float64) // p 为缓动后的进度
	OnStart  func()
	OnEnd    func()

	order   int
	started bool
	ended   bool
}

// End 这一段的结束时刻
func (s *Step) End() time.Duration { return s.At + s.Duration }

func (s *Step) progress(t time.Duration) float64 {
	if s.Duration <= 0 {
		return 1
	}
	return clamp01(float64(t-s.At) / float64(s.Duration))
}

// apply 把这一段推进到时刻 t；跨过整段时也保证最后一次 Update(1) 且只有一次
func (s *Step) apply(t time.Duration) {
	if t < s.At || s.ended {
		return
	}
	if !s.started {
		s.started = true
		if s.OnStart != nil {
			s.OnStart()
		}
	}
	if s.Kind == StepCall {
		s.ended = true
		return
	}
	p := s.progress(t)
	if s.Update != nil {
		ease := s.Ease
		if ease == nil || s.Kind == StepHold {
			ease = Linear
		}
		s.Update(ease(p))
	}
	if p >= 1 {
		s.ended = true
		if s.OnEnd != nil {
			s.OnEnd()
		}
	}
}

// Timeline 固定编排的时间轴
// 由 host.FrameScheduler 的帧回调驱动，也可以用 Advance 手动步进（测试、离线工具）
type Timeline struct {
	steps   []*Step
	dirty   bool
	nextOrd int

	elapsed    time.Duration
	onComplete func()
	completed  bool
	killed     bool
	paused     bool

	sched   host.FrameScheduler
	frame   host.FrameID
	hasLoop bool
	last    time.Duration
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

// Add 追加一段
func (tl *Timeline) Add(s Step) *Timeline {
	st := s
	st.order = tl.nextOrd
	st.started, st.ended = false, false
	tl.nextOrd++
	tl.steps = append(tl.steps, &st)
	tl.dirty = true
	return tl
}

func (tl *Timeline) Tween(name string, at, dur time.Duration, ease Ease, update func(p float64)) *Timeline {
	return tl.Add(Step{Kind: StepTween, Name: name, At: at, Duration: dur, Ease: ease, Update: update})
}

func (tl *Timeline) Hold(name string, at, dur time.Duration, update func(p float64)) *Timeline {
	return tl.Add(Step{Kind: StepHold, Name: name, At: at, Duration: dur, Update: update})
}

func (tl *Timeline) Call(name string, at time.Duration, fn func()) *Timeline {
	return tl.Add(Step{Kind: StepCall, Name: name, At: at, OnStart: fn})
}

// Nest 把子时间轴整体平移 at 后并入；子时间轴自己的 OnComplete 在它结束时刻触发
func (tl *Timeline) Nest(at time.Duration, child *Timeline) *Timeline {
	if child == nil {
		return tl
	}
	child.sortSteps()
	for _, s := range child.steps {
		cp := *s
		cp.At += at
		tl.Add(cp)
	}
	if child.onComplete != nil {
		done := child.onComplete
		tl.Call("", at+child.Duration(), done)
	}
	return tl
}

// Duration 最后一段的结束时刻
func (tl *Timeline) Duration() time.Duration {
	var d time.Duration
	for _, s := range tl.steps {
		if e := s.End(); e > d {
			d = e
		}
	}
	return d
}

// OnComplete 自然结束时调用一次；Kill 之后不会调用
func (tl *Timeline) OnComplete(fn func()) *Timeline {
	tl.onComplete = fn
	return tl
}

func (tl *Timeline) sortSteps() {
	if !tl.dirty {
		return
	}
	sort.SliceStable(tl.steps, func(i, j int) bool {
		if tl.steps[i].At != tl.steps[j].At {
			return tl.steps[i].At < tl.steps[j].At
		}
		return tl.steps[i].order < tl.steps[j].order
	})
	tl.dirty = false
}

// Advance 前进 dt，返回是否已经完成
func (tl *Timeline) Advance(dt time.Duration) bool {
	if tl.killed || tl.completed {
		return tl.completed
	}
	if dt > 0 {
		tl.elapsed += dt
	}
	tl.sortSteps()
	for _, s := range tl.steps {
		s.apply(tl.elapsed)
	}
	if tl.elapsed >= tl.Duration() {
		tl.completed = true
		if tl.onComplete != nil {
			tl.onComplete()
		}
	}
	return tl.completed
}

// Seek 跳到 t 并重新计算所有段的状态（调试工具用）
// 之后的段回到起始值，之前的段按顺序重放；Call 段只标记不执行
func (tl *Timeline) Seek(t time.Duration) {
	if tl.killed {
		return
	}
	if t < 0 {
		t = 0
	}
	tl.sortSteps()
	tl.completed = false
	tl.elapsed = t
	for i := len(tl.steps) - 1; i >= 0; i-- {
		s := tl.steps[i]
		s.started, s.ended = false, false
		if s.At > t && s.Kind != StepCall && s.Update != nil {
			s.Update(0)
		}
	}
	for _, s := range tl.steps {
		if s.At > t {
			continue
		}
		if s.Kind == StepCall {
			s.started, s.ended = true, true
			continue
		}
		p := s.progress(t)
		if s.Update != nil {
			ease := s.Ease
			if ease == nil || s.Kind == StepHold {
				ease = Linear
			}
			s.Update(ease(p))
		}
		s.started = true
		s.ended = p >= 1
	}
}

// Play 挂到帧调度器上开始播放，立即应用 t=0 的状态
func (tl *Timeline) Play(s host.FrameScheduler) {
	if tl.killed || tl.completed || tl.hasLoop {
		return
	}
	tl.sched = s
	tl.last = s.Now()
	if tl.Advance(0) {
		return
	}
	tl.arm()
}

func (tl *Timeline) arm() {
	tl.hasLoop = true
	tl.frame = tl.sched.RequestFrame(tl.step)
}

func (tl *Timeline) step(now time.Duration) {
	tl.hasLoop = false
	if tl.killed || tl.paused {
		return
	}
	dt := now - tl.last
	tl.last = now
	if tl.Advance(dt) {
		return
	}
	tl.arm()
}

func (tl *Timeline) Pause() {
	if tl.killed || tl.completed || tl.paused {
		return
	}
	tl.paused = true
	tl.cancel()
}

func (tl *Timeline) Resume() {
	if !tl.paused || tl.killed || tl.completed {
		return
	}
	tl.paused = false
	if tl.sched == nil {
		return
	}
	tl.last = tl.sched.Now()
	tl.arm()
}

// Kill 立即停止，不再回调，也不触发 OnComplete
func (tl *Timeline) Kill() {
	if tl.killed {
		return
	}
	tl.killed = true
	tl.cancel()
}

func (tl *Timeline) cancel() {
	if tl.hasLoop && tl.sched != nil {
		tl.sched.CancelFrame(tl.frame)
	}
	tl.hasLoop = false
}

func (tl *Timeline) Elapsed() time.Duration { return tl.elapsed }
func (tl *Timeline) Completed() bool        { return tl.completed }
func (tl *Timeline) Killed() bool           { return tl.killed }
func (tl *Timeline) Paused() bool           { return tl.paused }

// Progress 整体进度 [0,1]
func (tl *Timeline) Progress() float64 {
	d := tl.Duration()
	if d <= 0 {
		return 1
	}
	return clamp01(float64(tl.elapsed) / float64(d))
}

// Active 当前时刻正在进行的具名段
func (tl *Timeline) Active() []string {
	tl.sortSteps()
	var names []string
	for _, s := range tl.steps {
		if s.Kind == StepCall || s.Name == "" {
			continue
		}
		if tl.elapsed >= s.At && tl.elapsed < s.End() {
			names = append(names, s.Name)
		}
	}
	return names
}
