// File loading/controller.go
package loading

import (
	"fmt"
	"log/slog"
	"time"

	"robonexus_go/internal/anim"
	"robonexus_go/internal/host"
	"robonexus_go/internal/perf"
	"robonexus_go/internal/render"
)

// Controller 加载画面的状态机
// 驱动渲染器和编排时间轴，保证在 MaxDuration 内把控制权交给主页面
// 所有方法都在宿主循环的线程上调用
type Controller struct {
	opts Options
	deps Deps
	loop host.Scheduler
	log  *slog.Logger

	canvas  Element
	screen  Element
	content Element
	skipBtn Control
	surface render.Surface

	renderer *render.Renderer
	quality  *perf.QualityController
	mon      monitor

	timeline   *anim.Timeline
	skipReveal *anim.Timeline
	crossFade  *anim.Timeline

	timeout      host.TimerID
	timeoutArmed bool

	removeUnload func()
	removeSkip   func()

	state          State
	initCalled     bool
	initOK         bool
	lastMetrics    perf.Metrics
	measured       bool
	initializersOK bool
	hoverX, hoverY float64
}

func NewController(opts Options, deps Deps) *Controller {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	if deps.Loop == nil {
		deps.Loop = host.NewLoop(nil)
	}
	c := &Controller{
		opts:   opts.withDefaults(),
		deps:   deps,
		loop:   deps.Loop,
		log:    log.With("component", "loading"),
		hoverX: 0.5,
		hoverY: 0.5,
	}
	c.mon.c = c
	return c
}

// Start 创建并初始化控制器，返回的句柄交给宿主保存（调试面板等）
func Start(opts Options, deps Deps) (*Controller, bool) {
	c := NewController(opts, deps)
	return c, c.Init()
}

// Init 找元素、初始化渲染器、启动编排
// 任何失败（包括 panic）都走同一个降级路径：立即显示主页面
func (c *Controller) Init() (ok bool) {
	if c.initCalled {
		return c.initOK
	}
	c.initCalled = true
	defer func() { c.initOK = ok }()
	c.state.StartTime = c.loop.Now()
	c.log.Info("initializing loading screen")

	defer func() {
		if rec := recover(); rec != nil {
			c.fail(fmt.Errorf("init panic: %v", rec))
			ok = false
		}
	}()
	if err := c.init(); err != nil {
		c.fail(err)
		return false
	}
	c.log.Info("loading screen started", "max_duration", c.opts.MaxDuration)
	return true
}

func (c *Controller) init() error {
	if err := c.bindElements(); err != nil {
		return err
	}

	ropts := []render.Option{render.WithLogger(c.log)}
	if c.deps.NewFrameMetrics != nil {
		ropts = append(ropts, render.WithFrameMetrics(c.deps.NewFrameMetrics(c.loop.Now())))
	}
	c.renderer = render.NewRenderer(c.surface, c.loop, c.deps.Shaders, c.opts.Render, ropts...)
	if !c.renderer.Init() {
		return ErrRendererInit
	}
	if c.deps.NewQuality != nil {
		c.quality = c.deps.NewQuality(c.renderer, c.log)
	} else {
		c.log.Warn("adaptive quality not available")
	}

	c.timeline = Choreography(Targets{Screen: c.screen, Canvas: c.canvas, Hover: c.setHover})
	c.timeline.OnComplete(c.onChoreographyDone)
	c.skipReveal = anim.NewTimeline().Tween("skip-reveal", c.opts.SkipRevealDelay, c.opts.SkipFade, anim.Power2Out,
		func(p float64) { c.skipBtn.SetOpacity(p) })
	c.removeSkip = c.skipBtn.OnActivate(c.Skip)
	c.attachUnload()

	c.advance(PhaseAnimating)
	c.renderer.StartRenderLoop()
	if c.quality != nil {
		c.mon.start()
	}
	c.armTimeout()
	c.timeline.Play(c.loop)
	c.skipReveal.Play(c.loop)
	return nil
}

// bindElements 四个元素都必须存在；找到的先记下，降级时还能用
func (c *Controller) bindElements() error {
	doc := c.deps.Document
	if doc == nil {
		return fmt.Errorf("%w: no document", ErrMissingElement)
	}
	sel := c.opts.Selectors
	c.canvas = doc.Query(sel.Canvas)
	c.screen = doc.Query(sel.Screen)
	c.content = doc.Query(sel.Content)
	skip := doc.Query(sel.Skip)

	for _, e := range []struct {
		sel string
		el  Element
	}{{sel.Canvas, c.canvas}, {sel.Screen, c.screen}, {sel.Content, c.content}, {sel.Skip, skip}} {
		if e.el == nil {
			return fmt.Errorf("%w: %s", ErrMissingElement, e.sel)
		}
	}
	surf, ok := c.canvas.(render.Surface)
	if !ok {
		return fmt.Errorf("%w: %s is not a drawable surface", ErrMissingElement, sel.Canvas)
	}
	btn, ok := skip.(Control)
	if !ok {
		return fmt.Errorf("%w: %s is not activatable", ErrMissingElement, sel.Skip)
	}
	c.surface = surf
	c.skipBtn = btn

	c.screen.SetOpacity(0)
	c.canvas.SetOpacity(0)
	c.canvas.SetScale(1)
	c.skipBtn.SetOpacity(0)
	return nil
}

func (c *Controller) attachUnload() {
	if c.removeUnload != nil || c.deps.Lifecycle == nil {
		return
	}
	c.removeUnload = c.deps.Lifecycle.OnUnload(c.onNavigateAway)
}

func (c *Controller) armTimeout() {
	c.timeout = c.loop.SetTimeout(c.opts.MaxDuration, c.onTimeout)
	c.timeoutArmed = true
}

func (c *Controller) clearTimeout() {
	if !c.timeoutArmed {
		return
	}
	c.loop.ClearTimer(c.timeout)
	c.timeoutArmed = false
}

func (c *Controller) advance(to Phase) bool {
	from := c.state.Phase
	if !canAdvance(from, to) {
		return false
	}
	c.state.Phase = to
	c.log.Debug("phase", "from", from.String(), "to", to.String())
	if c.deps.OnPhase != nil {
		c.deps.OnPhase(from, to)
	}
	return true
}

func (c *Controller) setExit(e Exit) {
	if c.state.Exit == ExitNone {
		c.state.Exit = e
	}
}

func (c *Controller) setHover(x, y float64) {
	c.hoverX, c.hoverY = x, y
	if c.renderer != nil {
		c.renderer.SetHoverPosition(x, y)
	}
}

func (c *Controller) onChoreographyDone() {
	if c.state.Phase != PhaseAnimating {
		return
	}
	c.log.Info("animation sequence complete")
	c.setExit(ExitNatural)
	c.advance(PhaseCompleting)
	c.clearTimeout()
	c.releaseRenderer()
	c.transition()
}

func (c *Controller) onTimeout() {
	c.timeoutArmed = false
	c.state.TimedOut = true
	c.log.Error("animation timeout exceeded",
		"elapsed", c.loop.Now()-c.state.StartTime, "phase", c.state.Phase.String(), "action", "forcing transition")
	c.forceTransition(ExitTimeout)
}

// Skip 用户跳过；只在动画阶段有效，且只生效一次
func (c *Controller) Skip() {
	if c.state.Skipped || c.state.Phase != PhaseAnimating {
		return
	}
	c.state.Skipped = true
	c.log.Info("animation skipped by user")
	c.forceTransition(ExitSkip)
}

// forceTransition 超时和跳过共用：停监控、杀时间轴、释放渲染器、清超时，然后淡出
func (c *Controller) forceTransition(reason Exit) {
	if c.state.Phase != PhaseAnimating {
		return
	}
	c.log.Info("forcing transition to main page", "reason", reason.String())
	c.setExit(reason)
	c.mon.stop()
	if c.timeline != nil {
		c.timeline.Kill()
	}
	c.releaseRenderer()
	c.clearTimeout()
	c.transition()
}

// transition 交叉淡出加载画面、淡入主页面
func (c *Controller) transition() {
	if !c.advance(PhaseTransitioning) {
		return
	}
	c.log.Info("transitioning to main page")
	c.mon.stop()
	if c.skipReveal != nil {
		c.skipReveal.Kill()
	}

	screenFrom := c.screen.Opacity()
	contentFrom := c.content.Opacity()
	skipFrom := c.skipBtn.Opacity()
	c.crossFade = anim.NewTimeline().
		Tween("cross-fade", 0, c.opts.CrossFade, anim.Power2InOut, func(p float64) {
			c.screen.SetOpacity(anim.Lerp(screenFrom, 0, p))
			c.skipBtn.SetOpacity(anim.Lerp(skipFrom, 0, p))
			c.content.SetOpacity(anim.Lerp(contentFrom, 1, p))
		}).
		OnComplete(c.finish)
	c.crossFade.Play(c.loop)
}

func (c *Controller) finish() {
	if c.state.Phase != PhaseTransitioning {
		return
	}
	c.screen.Remove()
	c.skipBtn.Remove()
	if c.removeSkip != nil {
		c.removeSkip()
		c.removeSkip = nil
	}
	c.advance(PhaseComplete)
	c.log.Info("transition complete", "elapsed", c.loop.Now()-c.state.StartTime, "exit", c.state.Exit.String())
	c.runInitializers()
}

// fail 初始化阶段失败：进入 Error，马上露出主页面
// 已经进入动画阶段之后的异常改走强制过渡
func (c *Controller) fail(err error) {
	c.log.Error("loading screen failed, falling back", "error", err)
	if c.state.Phase != PhaseInitializing {
		c.forceTransition(ExitFailure)
		return
	}
	c.state.ErrorMessage = err.Error()
	c.setExit(ExitFailure)
	c.mon.stop()
	if c.timeline != nil {
		c.timeline.Kill()
	}
	if c.skipReveal != nil {
		c.skipReveal.Kill()
	}
	c.releaseRenderer()
	c.clearTimeout()
	c.advance(PhaseError)
	c.fallback()
}

// fallback 没有过渡动画：主页面直接不透明，加载画面直接移除
func (c *Controller) fallback() {
	content, screen := c.content, c.screen
	if content == nil {
		content = c.safeQuery(c.opts.Selectors.Content)
	}
	if screen == nil {
		screen = c.safeQuery(c.opts.Selectors.Screen)
	}
	if content != nil {
		content.SetOpacity(1)
	}
	if screen != nil {
		screen.Remove()
	}
	if skip := c.safeQuery(c.opts.Selectors.Skip); skip != nil {
		skip.Remove()
	}
	c.runInitializers()
}

func (c *Controller) safeQuery(sel string) (el Element) {
	if c.deps.Document == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			el = nil
		}
	}()
	return c.deps.Document.Query(sel)
}

// onNavigateAway 窗口关闭：只释放资源，不再切换阶段
func (c *Controller) onNavigateAway() {
	if c.state.Released {
		return
	}
	c.log.Info("navigation detected, cleaning up resources")
	if c.state.Phase == PhaseAnimating {
		c.setExit(ExitNavigation)
	}
	if c.timeline != nil {
		c.timeline.Kill()
	}
	if c.skipReveal != nil {
		c.skipReveal.Kill()
	}
	if c.crossFade != nil {
		c.crossFade.Kill()
	}
	c.mon.stop()
	c.releaseRenderer()
	c.clearTimeout()
	c.state.Released = true
}

func (c *Controller) releaseRenderer() {
	if c.renderer == nil {
		return
	}
	c.keepMetrics()
	c.renderer.StopRenderLoop()
	c.renderer.Dispose()
}

// Pause 暂停编排和渲染；超时不暂停，仍然是墙钟上限
func (c *Controller) Pause() {
	if c.state.Phase != PhaseAnimating || c.state.Paused {
		return
	}
	c.state.Paused = true
	c.timeline.Pause()
	c.renderer.StopRenderLoop()
}

func (c *Controller) Resume() {
	if !c.state.Paused {
		return
	}
	c.state.Paused = false
	if c.state.Phase != PhaseAnimating {
		return
	}
	c.timeline.Resume()
	c.renderer.StartRenderLoop()
}

func (c *Controller) runInitializers() {
	if c.initializersOK {
		return
	}
	c.initializersOK = true
	for _, in := range c.deps.Initializers {
		if in.Run == nil {
			c.log.Warn("initializer not found", "name", in.Name)
			continue
		}
		c.runInitializer(in)
	}
}

func (c *Controller) runInitializer(in Initializer) {
	defer func() {
		if rec := recover(); rec != nil {
			c.log.Error("initializer panicked", "name", in.Name, "panic", rec)
		}
	}()
	in.Run()
	c.log.Debug("initializer done", "name", in.Name)
}

// State 当前状态的拷贝
func (c *Controller) State() State {
	s := c.state
	if c.initCalled {
		s.Elapsed = c.loop.Now() - s.StartTime
	}
	return s
}

func (c *Controller) Phase() Phase { return c.state.Phase }

func (c *Controller) HoverPosition() (x, y float64) { return c.hoverX, c.hoverY }

// Renderer 未初始化或已释放时返回 nil
func (c *Controller) Renderer() *render.Renderer {
	if c.renderer == nil || c.renderer.Disposed() {
		return nil
	}
	return c.renderer
}

func (c *Controller) qualityLevel() string {
	if c.quality == nil {
		return "unknown"
	}
	return c.quality.Level().String()
}

// keepMetrics 渲染器释放前记下最后一次真实测量
func (c *Controller) keepMetrics() {
	if r := c.Renderer(); r != nil && r.Measured() {
		c.lastMetrics = r.PerformanceMetrics()
		c.measured = true
	}
}

// Snapshot 调试信息；渲染器释放后给出最后一次测量，从没测过时 Measured 为 false
func (c *Controller) Snapshot() Snapshot {
	c.keepMetrics()
	s := Snapshot{
		State:    c.State(),
		Quality:  c.qualityLevel(),
		Metrics:  perf.PlateauMetrics(),
		Measured: c.measured,
		HoverX:   c.hoverX,
		HoverY:   c.hoverY,
	}
	if c.measured {
		s.Metrics = c.lastMetrics
	}
	if c.timeline != nil {
		s.Choreography = c.timeline.Active()
		s.Progress = c.timeline.Progress()
	}
	if r := c.Renderer(); r != nil {
		s.Rendering = r.Running()
	}
	return s
}

// Elapsed 自 Init 起的时间
func (c *Controller) Elapsed() time.Duration {
	return c.State().Elapsed
}
