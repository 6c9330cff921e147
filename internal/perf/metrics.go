// File perf/metrics.go
package perf

import (
	"math"
	"time"
)

const (
	// WindowSize 滚动窗口长度（帧）
	WindowSize = 60
	// DefaultFPS 还没有样本时返回的占位值，不是测量结果
	DefaultFPS = 60.0
)

// Metrics 帧率统计，保留一位小数
type Metrics struct {
	Average float64
	Min     float64
	Max     float64
	Current float64
}

// PlateauMetrics 无样本时的占位统计
func PlateauMetrics() Metrics {
	return Metrics{Average: DefaultFPS, Min: DefaultFPS, Max: DefaultFPS, Current: DefaultFPS}
}

// FrameMetrics 按帧间隔计算瞬时 FPS，保留最近 60 个
type FrameMetrics struct {
	window   *Window
	lastTime time.Duration
}

// NewFrameMetrics start 是第一帧之前的参考时刻
func NewFrameMetrics(start time.Duration) *FrameMetrics {
	return &FrameMetrics{
		window:   NewWindow(WindowSize),
		lastTime: start,
	}
}

// RecordFrame 记录一帧，返回瞬时 FPS
// 间隔为 0 或倒退时记为 DefaultFPS
func (m *FrameMetrics) RecordFrame(now time.Duration) float64 {
	delta := now - m.lastTime
	m.lastTime = now

	fps := DefaultFPS
	if delta > 0 {
		fps = 1000 / (float64(delta) / float64(time.Millisecond))
	}
	m.window.Push(fps)
	return fps
}

// Samples 窗口里实际保留的样本数
func (m *FrameMetrics) Samples() int { return m.window.Len() }

// HasSamples 区分真实测量和占位值
func (m *FrameMetrics) HasSamples() bool { return m.window.Len() > 0 }

func (m *FrameMetrics) Metrics() Metrics {
	if m.window.Len() == 0 {
		return PlateauMetrics()
	}
	return Metrics{
		Average: round1(m.window.Mean()),
		Min:     round1(m.window.Min()),
		Max:     round1(m.window.Max()),
		Current: round1(m.window.Last()),
	}
}

func (m *FrameMetrics) Reset(now time.Duration) {
	m.window.Reset()
	m.lastTime = now
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
