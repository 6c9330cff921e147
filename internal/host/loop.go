// File host/loop.go
package host

import (
	"sort"
	"time"
)

// FrameFunc 每帧回调，参数是当前时钟读数
type FrameFunc func(now time.Duration)

type FrameID uint64

type TimerID uint64

// FrameScheduler 按帧登记/取消回调
type FrameScheduler interface {
	RequestFrame(fn FrameFunc) FrameID
	CancelFrame(id FrameID)
	Now() time.Duration
}

// TimerScheduler 一次性和周期定时器
type TimerScheduler interface {
	SetTimeout(d time.Duration, fn func()) TimerID
	SetInterval(d time.Duration, fn func()) TimerID
	ClearTimer(id TimerID)
	Now() time.Duration
}

// Scheduler 两者合一，加载控制器需要同时使用
type Scheduler interface {
	FrameScheduler
	TimerScheduler
}

type frameEntry struct {
	id FrameID
	fn FrameFunc
}

type timer struct {
	id       TimerID
	deadline time.Duration
	interval time.Duration // 0 = 一次性
	fn       func()
	seq      uint64 // 同一 deadline 时按注册顺序
}

// Loop 单线程协作式调度器
// 所有回调都在 ebiten 的游戏 goroutine 上执行：计时器在 Update，帧回调在 Draw，不需要锁
type Loop struct {
	clock Clock

	nextFrame FrameID
	frames    []frameEntry
	inFlight  map[FrameID]bool // 正在执行的这一批，false = 已被取消

	nextTimer TimerID
	seq       uint64
	timers    map[TimerID]*timer

	ticks uint64
}

func NewLoop(clock Clock) *Loop {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &Loop{
		clock:  clock,
		timers: make(map[TimerID]*timer),
	}
}

func (l *Loop) Now() time.Duration { return l.clock.Now() }

// Clock 返回底层时钟
func (l *Loop) Clock() Clock { return l.clock }

func (l *Loop) RequestFrame(fn FrameFunc) FrameID {
	l.nextFrame++
	l.frames = append(l.frames, frameEntry{id: l.nextFrame, fn: fn})
	return l.nextFrame
}

func (l *Loop) CancelFrame(id FrameID) {
	for i, f := range l.frames {
		if f.id == id {
			l.frames = append(l.frames[:i], l.frames[i+1:]...)
			return
		}
	}
	if _, ok := l.inFlight[id]; ok {
		l.inFlight[id] = false
	}
}

func (l *Loop) SetTimeout(d time.Duration, fn func()) TimerID {
	return l.addTimer(d, 0, fn)
}

// SetInterval 周期 d 必须为正，否则按 1ms 处理，避免同一 tick 死循环
func (l *Loop) SetInterval(d time.Duration, fn func()) TimerID {
	if d <= 0 {
		d = time.Millisecond
	}
	return l.addTimer(d, d, fn)
}

func (l *Loop) addTimer(d, interval time.Duration, fn func()) TimerID {
	if d < 0 {
		d = 0
	}
	l.nextTimer++
	l.seq++
	l.timers[l.nextTimer] = &timer{
		id:       l.nextTimer,
		deadline: l.clock.Now() + d,
		interval: interval,
		fn:       fn,
		seq:      l.seq,
	}
	return l.nextTimer
}

func (l *Loop) ClearTimer(id TimerID) {
	delete(l.timers, id)
}

// PendingFrames 当前已登记、尚未执行的帧回调数量
func (l *Loop) PendingFrames() int { return len(l.frames) }

// ActiveTimers 尚未触发或仍在循环的计时器数量
func (l *Loop) ActiveTimers() int { return len(l.timers) }

// Ticks 已执行的帧轮数
func (l *Loop) Ticks() uint64 { return l.ticks }

// Tick 执行一轮：先按 deadline 触发到期计时器，再执行本轮开始前登记的帧回调
// 本轮中新登记的帧回调留到下一轮
func (l *Loop) Tick() {
	l.RunTimers()
	l.RunFrames()
}

// RunTimers 只触发到期计时器；ebiten 的 Update 里调用，追帧时一帧内可能连续多次
func (l *Loop) RunTimers() {
	now := l.clock.Now()

	due := make([]*timer, 0, len(l.timers))
	for _, t := range l.timers {
		if t.deadline <= now {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline != due[j].deadline {
			return due[i].deadline < due[j].deadline
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		// 前面的回调可能已经清掉了它
		if _, ok := l.timers[t.id]; !ok {
			continue
		}
		if t.interval > 0 {
			t.deadline += t.interval
			// 落后太多时直接对齐到 now 之后，不补触发
			if t.deadline <= now {
				t.deadline = now + t.interval
			}
		} else {
			delete(l.timers, t.id)
		}
		t.fn()
	}
}

// RunFrames 只执行帧回调，每个实际呈现的帧调用一次（ebiten 的 Draw）
func (l *Loop) RunFrames() {
	l.ticks++
	now := l.clock.Now()
	if len(l.frames) == 0 {
		return
	}
	batch := l.frames
	l.frames = nil
	l.inFlight = make(map[FrameID]bool, len(batch))
	for _, f := range batch {
		l.inFlight[f.id] = true
	}
	for _, f := range batch {
		// 回调里可能取消了同批里后面的帧
		if !l.inFlight[f.id] {
			continue
		}
		l.inFlight[f.id] = false
		f.fn(now)
	}
	l.inFlight = nil
}
