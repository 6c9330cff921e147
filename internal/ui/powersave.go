package ui

import "github.com/hajimehoshi/ebiten/v2"

const (
	activeTPS = 60
	idleTPS   = 10
)

// powerMode 有动画时高刷新，页面静止后降档
// apply 默认改 ebiten 的 FPS 模式和 TPS，测试里替换掉
type powerMode struct {
	perfOn bool
	booted bool
	apply  func(perf bool)
}

func newPowerMode() *powerMode {
	return &powerMode{perfOn: true, apply: applyEbitenMode} // 默认以高刷新启动，保证加载动画流畅
}

func applyEbitenMode(perf bool) {
	if perf {
		ebiten.SetFPSMode(ebiten.FPSModeVsyncOn)
		ebiten.SetTPS(activeTPS)
		return
	}
	ebiten.SetFPSMode(ebiten.FPSModeVsyncOffMinimum)
	ebiten.SetTPS(idleTPS)
}

func (m *powerMode) enterPerf() {
	if m.perfOn {
		return
	}
	m.apply(true)
	m.perfOn = true
}

func (m *powerMode) leavePerf(force bool) {
	if !m.perfOn && !force {
		return
	}
	m.apply(false)
	m.perfOn = false
}

func (m *powerMode) ensurePerf(active bool) {
	if !m.booted {
		return
	}
	if active {
		m.enterPerf()
	} else {
		m.leavePerf(false)
	}
}

// markBooted 加载流程进入终态后调用；之前一直保持高刷新
func (m *powerMode) markBooted() {
	if m.booted {
		return
	}
	m.booted = true
	m.enterPerf()
}
