package loading

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"robonexus_go/internal/host"
	"robonexus_go/internal/perf"
	"robonexus_go/internal/render"
)

type fakeEl struct {
	opacity float64
	scale   float64
	removed bool
}

func (e *fakeEl) Opacity() float64     { return e.opacity }
func (e *fakeEl) SetOpacity(v float64) { e.opacity = v }
func (e *fakeEl) Scale() float64       { return e.scale }
func (e *fakeEl) SetScale(v float64)   { e.scale = v }
func (e *fakeEl) Remove()              { e.removed = true }
func (e *fakeEl) Removed() bool        { return e.removed }

type fakeCanvas struct {
	fakeEl
	*render.HeadlessSurface
}

type fakeControl struct {
	fakeEl
	handlers []func()
}

func (c *fakeControl) OnActivate(fn func()) func() {
	c.handlers = append(c.handlers, fn)
	i := len(c.handlers) - 1
	return func() { c.handlers[i] = nil }
}

func (c *fakeControl) activate() {
	for _, fn := range c.handlers {
		if fn != nil {
			fn()
		}
	}
}

type fakeDoc struct {
	els    map[string]Element
	panics string
}

func (d *fakeDoc) Query(sel string) Element {
	if sel == d.panics {
		panic("query exploded")
	}
	if el, ok := d.els[sel]; ok {
		return el
	}
	return nil
}

var testShaders = render.ShaderSource{
	Vertex:   "void main() {}",
	Fragment: "package main\nfunc Fragment(dst vec4, src vec2, color vec4) vec4 { return color }\n",
}

type harness struct {
	t       *testing.T
	clock   *host.ManualClock
	loop    *host.Loop
	life    *host.Lifecycle
	canvas  *fakeCanvas
	screen  *fakeEl
	content *fakeEl
	skip    *fakeControl
	doc     *fakeDoc
	phases  []Phase
	inits   int
	opts    Options
	deps    Deps
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		t:       t,
		clock:   host.NewManualClock(),
		life:    host.NewLifecycle(),
		canvas:  &fakeCanvas{HeadlessSurface: render.NewHeadlessSurface(320, 180)},
		screen:  &fakeEl{opacity: 1},
		content: &fakeEl{},
		skip:    &fakeControl{},
	}
	h.loop = host.NewLoop(h.clock)
	h.doc = &fakeDoc{els: map[string]Element{
		".liquid-text-canvas":  h.canvas,
		".loading-screen":      h.screen,
		".page-content":        h.content,
		".loading-screen-skip": h.skip,
	}}
	h.opts = DefaultOptions()
	h.deps = Deps{
		Document:        h.doc,
		Loop:            h.loop,
		Lifecycle:       h.life,
		Shaders:         testShaders,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewFrameMetrics: perf.NewFrameMetrics,
		NewQuality:      perf.NewQualityController,
		Initializers: []Initializer{
			{Name: "navbar", Run: func() { h.inits++ }},
			{Name: "missing"},
		},
		OnPhase: func(_, to Phase) { h.phases = append(h.phases, to) },
	}
	return h
}

func (h *harness) start() *Controller {
	c := NewController(h.opts, h.deps)
	c.Init()
	return c
}

// run 以固定帧间隔推进到 until
func (h *harness) run(until, frame time.Duration) {
	for h.clock.Now() < until {
		h.clock.Advance(frame)
		h.loop.Tick()
	}
}

func (h *harness) runUntil(c *Controller, p Phase, limit time.Duration) time.Duration {
	for c.Phase() != p && h.clock.Now() < limit {
		h.clock.Advance(16 * time.Millisecond)
		h.loop.Tick()
	}
	return h.clock.Now()
}

func (h *harness) assertQuiet() {
	h.t.Helper()
	if n := h.loop.PendingFrames(); n != 0 {
		h.t.Fatalf("%d frame callbacks still pending", n)
	}
	if n := h.loop.ActiveTimers(); n != 0 {
		h.t.Fatalf("%d timers still armed", n)
	}
	if dev := h.canvas.Device(); dev != nil && dev.Live() != 0 {
		h.t.Fatalf("%d gpu objects leaked", dev.Live())
	}
}

func TestNaturalCompletion(t *testing.T) {
	h := newHarness(t)
	c := h.start()
	if c.Phase() != PhaseAnimating {
		t.Fatalf("phase after init = %v", c.Phase())
	}
	if h.life.Listeners() != 1 {
		t.Fatalf("unload listeners = %d", h.life.Listeners())
	}

	done := h.runUntil(c, PhaseComplete, 8*time.Second)
	if c.Phase() != PhaseComplete {
		t.Fatalf("phase = %v at %v", c.Phase(), done)
	}
	want := ChoreographyDuration() + h.opts.CrossFade
	if done < want || done > want+100*time.Millisecond {
		t.Fatalf("completed at %v, want about %v", done, want)
	}

	st := c.State()
	if st.Exit != ExitNatural || st.Skipped || st.TimedOut {
		t.Fatalf("state %+v", st)
	}
	if !h.screen.removed || !h.skip.removed || h.content.opacity != 1 {
		t.Fatalf("screen removed=%v content=%v", h.screen.removed, h.content.opacity)
	}
	if h.inits != 1 {
		t.Fatalf("initializers ran %d times", h.inits)
	}
	wantPhases := []Phase{PhaseAnimating, PhaseCompleting, PhaseTransitioning, PhaseComplete}
	if len(h.phases) != len(wantPhases) {
		t.Fatalf("phases %v", h.phases)
	}
	for i := range wantPhases {
		if h.phases[i] != wantPhases[i] {
			t.Fatalf("phases %v", h.phases)
		}
	}
	h.assertQuiet()

	// 终态之后再跳过没有任何效果
	c.Skip()
	h.skip.activate()
	if c.State().Skipped || c.Phase() != PhaseComplete {
		t.Fatalf("skip after completion changed state")
	}
}

func TestChoreographyDrivesHover(t *testing.T) {
	h := newHarness(t)
	c := h.start()

	h.run(1800*time.Millisecond, 10*time.Millisecond)
	if x, _ := c.HoverPosition(); x >= 0.5 {
		t.Fatalf("hover x = %v, sweep should be heading left", x)
	}
	if h.canvas.opacity != 1 || h.screen.opacity != 1 {
		t.Fatalf("fade-ins incomplete: canvas=%v screen=%v", h.canvas.opacity, h.screen.opacity)
	}
	if snap := c.Snapshot(); len(snap.Choreography) == 0 || snap.Choreography[0] != StepHoverSweep {
		t.Fatalf("active steps %v", snap.Choreography)
	}

	h.run(4700*time.Millisecond, 10*time.Millisecond)
	if x, y := c.HoverPosition(); x != 0.5 || y != 0.5 {
		t.Fatalf("return-center left hover at (%v,%v)", x, y)
	}
	r := c.Renderer()
	if r == nil {
		t.Fatalf("renderer released early")
	}
	if x, y := r.HoverNDC(); x != 0 || y != 0 {
		t.Fatalf("renderer hover ndc (%v,%v)", x, y)
	}
	if h.skip.opacity != 1 {
		t.Fatalf("skip control not revealed: %v", h.skip.opacity)
	}

	h.run(5500*time.Millisecond, 10*time.Millisecond)
	if h.canvas.scale <= 1 || h.canvas.opacity >= 1 {
		t.Fatalf("finale not running: scale=%v opacity=%v", h.canvas.scale, h.canvas.opacity)
	}
}

func TestTimeoutIsUpperBound(t *testing.T) {
	h := newHarness(t)
	h.opts.MaxDuration = 3 * time.Second
	c := h.start()

	var reached time.Duration
	for h.clock.Now() < 5*time.Second {
		h.clock.Advance(16 * time.Millisecond)
		h.loop.Tick()
		if reached == 0 && c.Phase() >= PhaseTransitioning {
			reached = h.clock.Now()
		}
	}
	if reached < 3*time.Second || reached > 3*time.Second+16*time.Millisecond {
		t.Fatalf("transition began at %v", reached)
	}
	st := c.State()
	if !st.TimedOut || st.Exit != ExitTimeout || st.Phase != PhaseComplete {
		t.Fatalf("state %+v", st)
	}
	if h.content.opacity != 1 || !h.screen.removed {
		t.Fatalf("main page not revealed")
	}
	h.assertQuiet()
}

func TestSkipIsSingleShot(t *testing.T) {
	h := newHarness(t)
	c := h.start()
	h.run(2*time.Second, 16*time.Millisecond)

	h.skip.activate()
	if c.Phase() != PhaseTransitioning || !c.State().Skipped {
		t.Fatalf("skip: phase=%v", c.Phase())
	}
	h.run(2300*time.Millisecond, 16*time.Millisecond)
	mid := h.content.opacity
	c.Skip()
	h.skip.activate()
	if h.content.opacity != mid || c.Phase() != PhaseTransitioning {
		t.Fatalf("second skip restarted the transition")
	}
	if c.Renderer() != nil {
		t.Fatalf("renderer not released on skip")
	}

	h.runUntil(c, PhaseComplete, 4*time.Second)
	if c.Phase() != PhaseComplete || c.State().Exit != ExitSkip {
		t.Fatalf("state %+v", c.State())
	}
	if h.inits != 1 {
		t.Fatalf("initializers ran %d times", h.inits)
	}
	h.assertQuiet()
}

func TestSkipBeforeAnimatingIgnored(t *testing.T) {
	h := newHarness(t)
	c := NewController(h.opts, h.deps)
	c.Skip()
	if c.State().Skipped {
		t.Fatalf("skip accepted before init")
	}
}

func TestMissingElementFallsBack(t *testing.T) {
	for _, sel := range []string{".liquid-text-canvas", ".loading-screen", ".loading-screen-skip"} {
		t.Run(sel, func(t *testing.T) {
			h := newHarness(t)
			delete(h.doc.els, sel)
			c := NewController(h.opts, h.deps)
			if c.Init() {
				t.Fatalf("init succeeded without %s", sel)
			}
			st := c.State()
			if st.Phase != PhaseError || st.ErrorMessage == "" || st.Exit != ExitFailure {
				t.Fatalf("state %+v", st)
			}
			if h.content.opacity != 1 {
				t.Fatalf("content not visible")
			}
			if sel != ".loading-screen" && !h.screen.removed {
				t.Fatalf("loading screen not removed")
			}
			if h.canvas.Device() != nil {
				t.Fatalf("renderer touched the surface")
			}
			if h.inits != 1 {
				t.Fatalf("initializers ran %d times", h.inits)
			}
			h.assertQuiet()
		})
	}
}

func TestRendererFailureFallsBack(t *testing.T) {
	h := newHarness(t)
	h.canvas.FailCompile = true
	c := h.start()
	if c.Phase() != PhaseError || !h.screen.removed || h.content.opacity != 1 {
		t.Fatalf("phase=%v removed=%v content=%v", c.Phase(), h.screen.removed, h.content.opacity)
	}
	h.assertQuiet()

	// 终态：后续事件都不改变阶段
	c.Skip()
	h.life.Unload()
	h.run(12*time.Second, 100*time.Millisecond)
	if c.Phase() != PhaseError || len(h.phases) != 1 {
		t.Fatalf("phases %v", h.phases)
	}
}

func TestInitPanicRecovered(t *testing.T) {
	h := newHarness(t)
	h.doc.panics = ".loading-screen-skip"
	c := NewController(h.opts, h.deps)
	if c.Init() {
		t.Fatalf("init succeeded")
	}
	if c.Phase() != PhaseError || h.content.opacity != 1 || !h.screen.removed {
		t.Fatalf("phase=%v content=%v", c.Phase(), h.content.opacity)
	}
	if c.State().ErrorMessage == "" {
		t.Fatalf("no error message")
	}
}

func TestInitResultStableAfterLatePanic(t *testing.T) {
	h := newHarness(t)
	h.deps.OnPhase = func(_, to Phase) {
		h.phases = append(h.phases, to)
		if to == PhaseAnimating {
			panic("phase hook exploded")
		}
	}
	c := NewController(h.opts, h.deps)
	if c.Init() {
		t.Fatalf("init reported success after panic")
	}
	if c.Phase() != PhaseTransitioning || c.State().Exit != ExitFailure {
		t.Fatalf("phase=%v exit=%v", c.Phase(), c.State().Exit)
	}
	if c.Init() {
		t.Fatalf("second Init changed the result")
	}
	h.runUntil(c, PhaseComplete, 2*time.Second)
	if c.Phase() != PhaseComplete || h.content.opacity != 1 {
		t.Fatalf("phase=%v content=%v", c.Phase(), h.content.opacity)
	}
}

func TestMissingElementError(t *testing.T) {
	h := newHarness(t)
	delete(h.doc.els, ".page-content")
	c := NewController(h.opts, h.deps)
	if err := c.init(); !errors.Is(err, ErrMissingElement) {
		t.Fatalf("err = %v", err)
	}
}

func TestNavigationAwayReleases(t *testing.T) {
	h := newHarness(t)
	c := h.start()
	h.run(2*time.Second, 16*time.Millisecond)
	dev := h.canvas.Device()

	h.life.Unload()
	st := c.State()
	if !st.Released || st.Exit != ExitNavigation || st.Phase != PhaseAnimating {
		t.Fatalf("state %+v", st)
	}
	if dev.Live() != 0 || !dev.IsLost() {
		t.Fatalf("gpu not released: live=%d", dev.Live())
	}
	h.assertQuiet()

	h.run(12*time.Second, 100*time.Millisecond)
	if c.Phase() != PhaseAnimating {
		t.Fatalf("phase moved after unload: %v", c.Phase())
	}
}

func TestPauseResume(t *testing.T) {
	h := newHarness(t)
	c := h.start()
	h.run(time.Second, 16*time.Millisecond)

	c.Pause()
	x, y := c.HoverPosition()
	h.run(6*time.Second, 16*time.Millisecond)
	if nx, ny := c.HoverPosition(); nx != x || ny != y {
		t.Fatalf("hover moved while paused")
	}
	if c.Renderer().Running() {
		t.Fatalf("render loop running while paused")
	}

	c.Resume()
	h.run(6500*time.Millisecond, 16*time.Millisecond)
	if nx, _ := c.HoverPosition(); nx == x {
		t.Fatalf("hover frozen after resume")
	}
	if !c.Renderer().Running() {
		t.Fatalf("render loop not restarted")
	}

	// 暂停了 5s，自然结束要到 10.8s；超时按墙钟 10s 先到
	h.runUntil(c, PhaseTransitioning, 11*time.Second)
	if c.State().Exit != ExitTimeout {
		t.Fatalf("exit = %v", c.State().Exit)
	}
}

func TestPausedSamplesNotCounted(t *testing.T) {
	h := newHarness(t)
	c := h.start()
	h.run(time.Second, 16*time.Millisecond)

	c.Pause()
	before := c.quality.Samples()
	h.run(4*time.Second, 16*time.Millisecond)
	if got := c.quality.Samples(); got != before {
		t.Fatalf("quality samples grew while paused: %d -> %d", before, got)
	}

	c.Resume()
	h.run(4500*time.Millisecond, 16*time.Millisecond)
	if c.quality.Samples() <= before {
		t.Fatalf("sampling did not resume")
	}
}

func TestSnapshotKeepsLastMeasurement(t *testing.T) {
	h := newHarness(t)
	c := h.start()
	if snap := c.Snapshot(); snap.Measured {
		t.Fatalf("measured before any frame: %+v", snap.Metrics)
	}
	h.runUntil(c, PhaseComplete, 8*time.Second)
	if c.Renderer() != nil {
		t.Fatalf("renderer still alive after completion")
	}
	snap := c.Snapshot()
	if !snap.Measured {
		t.Fatalf("measurement lost after dispose")
	}
	// 16ms 一帧是 62.5fps，不会和占位的 60 混淆
	if snap.Metrics.Current != 62.5 {
		t.Fatalf("metrics = %+v", snap.Metrics)
	}
}

func TestSlowFramesDowngradeQuality(t *testing.T) {
	h := newHarness(t)
	c := h.start()
	// 15fps
	h.run(4*time.Second, 66*time.Millisecond)
	if q := c.Snapshot().Quality; q != "low" {
		t.Fatalf("quality = %s", q)
	}
}

// 呈现只有 15fps，但每帧前有三次 Update 追帧；帧率要按呈现帧算
func TestCatchUpUpdatesDoNotHideSlowFrames(t *testing.T) {
	h := newHarness(t)
	c := h.start()
	for h.clock.Now() < 4*time.Second {
		h.clock.Advance(66*time.Millisecond + 200*time.Microsecond)
		h.loop.RunTimers()
		h.clock.Advance(200 * time.Microsecond)
		h.loop.RunTimers()
		h.clock.Advance(200 * time.Microsecond)
		h.loop.RunTimers()
		h.loop.RunFrames()
	}
	snap := c.Snapshot()
	if snap.Metrics.Max > 16 {
		t.Fatalf("update gaps leaked into frame metrics: %+v", snap.Metrics)
	}
	if snap.Quality != "low" {
		t.Fatalf("quality = %s", snap.Quality)
	}
}

func TestWithoutQualityDeps(t *testing.T) {
	h := newHarness(t)
	h.deps.NewQuality = nil
	h.deps.NewFrameMetrics = nil
	c := h.start()
	if c.Phase() != PhaseAnimating {
		t.Fatalf("phase %v", c.Phase())
	}
	if snap := c.Snapshot(); snap.Quality != "unknown" || snap.Metrics != perf.PlateauMetrics() || snap.Measured {
		t.Fatalf("snapshot %+v", snap)
	}
	h.runUntil(c, PhaseComplete, 8*time.Second)
	if c.Phase() != PhaseComplete {
		t.Fatalf("phase %v", c.Phase())
	}
	h.assertQuiet()
}

func TestPhaseOrdering(t *testing.T) {
	order := []Phase{PhaseInitializing, PhaseAnimating, PhaseCompleting, PhaseTransitioning, PhaseComplete}
	for i, from := range order {
		for j, to := range order {
			if got := canAdvance(from, to); got != (j > i && !from.Terminal()) {
				t.Fatalf("canAdvance(%v,%v) = %v", from, to, got)
			}
		}
		if got := canAdvance(from, PhaseError); got != (from == PhaseInitializing) {
			t.Fatalf("canAdvance(%v,error) = %v", from, got)
		}
	}
	if canAdvance(PhaseError, PhaseComplete) {
		t.Fatalf("left error state")
	}
}
