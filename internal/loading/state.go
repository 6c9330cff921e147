// File loading/state.go
package loading

import (
	"errors"
	"time"

	"robonexus_go/internal/perf"
)

var (
	ErrMissingElement = errors.New("loading: required element not found")
	ErrRendererInit   = errors.New("loading: renderer initialization failed")
)

// Phase 加载流程的阶段，只能前进；Complete 和 Error 是终态
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseAnimating
	PhaseCompleting
	PhaseTransitioning
	PhaseComplete
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseAnimating:
		return "animating"
	case PhaseCompleting:
		return "completing"
	case PhaseTransitioning:
		return "transitioning"
	case PhaseComplete:
		return "complete"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// Terminal Complete / Error
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseError
}

// canAdvance 阶段只能前进；Error 只能从 Initializing 进入
func canAdvance(from, to Phase) bool {
	if from.Terminal() || to <= from {
		return false
	}
	if to == PhaseError {
		return from == PhaseInitializing
	}
	return true
}

// Exit 是什么让流程离开了动画阶段（只记录第一个）
type Exit int

const (
	ExitNone Exit = iota
	ExitNatural
	ExitTimeout
	ExitSkip
	ExitFailure
	ExitNavigation
)

func (e Exit) String() string {
	switch e {
	case ExitNatural:
		return "natural"
	case ExitTimeout:
		return "timeout"
	case ExitSkip:
		return "skip"
	case ExitFailure:
		return "failure"
	case ExitNavigation:
		return "navigation"
	}
	return "none"
}

// State 对外的状态快照
type State struct {
	Phase        Phase
	Skipped      bool
	ErrorMessage string
	StartTime    time.Duration
	Elapsed      time.Duration
	Paused       bool
	TimedOut     bool
	Released     bool // 离开页面时已释放资源
	Exit         Exit
}

// Snapshot 调试面板用
type Snapshot struct {
	State
	Choreography   []string
	Progress       float64
	Quality        string
	Metrics        perf.Metrics
	Measured       bool // false 时 Metrics 是 60 的占位值
	HoverX, HoverY float64
	Rendering      bool
}
