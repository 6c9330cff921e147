// File host/clock.go
package host

import "time"

// Clock 单调时钟，返回自时钟创建以来经过的时间
type Clock interface {
	Now() time.Duration
}

// SystemClock 使用 time.Now 的单调读数
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock 测试和离线基准用：只在 Advance/Set 时前进
// 单线程使用，不加锁
type ManualClock struct {
	now time.Duration
}

func NewManualClock() *ManualClock {
	return &ManualClock{}
}

func (c *ManualClock) Now() time.Duration {
	return c.now
}

// Advance 向前推进 d；负数忽略，时钟不回退
func (c *ManualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.now += d
}

// Set 直接设置时刻，早于当前值时忽略
func (c *ManualClock) Set(t time.Duration) {
	if t < c.now {
		return
	}
	c.now = t
}
