// File loading/monitor.go
package loading

import "robonexus_go/internal/host"

// monitor 两个间隔定时器：采样喂给质量控制器，另一个定期打印性能日志
// 只能整体启动、整体取消
type monitor struct {
	c       *Controller
	sampler host.TimerID
	logger  host.TimerID
	running bool
}

func (m *monitor) start() {
	if m.running {
		return
	}
	c := m.c
	m.running = true
	m.sampler = c.loop.SetInterval(c.opts.SampleInterval, m.sample)
	m.logger = c.loop.SetInterval(c.opts.LogInterval, m.report)
	c.log.Debug("performance monitoring started",
		"sample", c.opts.SampleInterval, "log", c.opts.LogInterval)
}

func (m *monitor) stop() {
	if !m.running {
		return
	}
	m.running = false
	m.c.loop.ClearTimer(m.sampler)
	m.c.loop.ClearTimer(m.logger)
}

func (m *monitor) sample() {
	c := m.c
	// 暂停时没有新帧，旧值不能算进预热样本
	if c.renderer == nil || c.quality == nil || c.state.Paused {
		return
	}
	c.quality.RecordFrame(c.renderer.PerformanceMetrics().Current)
}

func (m *monitor) report() {
	c := m.c
	if c.renderer == nil {
		return
	}
	mt := c.renderer.PerformanceMetrics()
	c.log.Info("performance metrics",
		"fps", mt.Average, "min", mt.Min, "max", mt.Max, "quality", c.qualityLevel())
}
