package render

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"robonexus_go/internal/host"
	"robonexus_go/internal/perf"
)

var testShaders = ShaderSource{
	Vertex:   "attribute vec2 a_position;\nvoid main() {}\n",
	Fragment: "package main\n\nfunc Fragment(dst vec4, src vec2, color vec4) vec4 { return color }\n",
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRenderer(s *HeadlessSurface) (*Renderer, *host.Loop, *host.ManualClock) {
	clock := host.NewManualClock()
	loop := host.NewLoop(clock)
	r := NewRenderer(s, loop, testShaders, DefaultOptions(),
		WithLogger(quiet()), WithFrameMetrics(perf.NewFrameMetrics(0)))
	return r, loop, clock
}

func TestRendererInitAndLoop(t *testing.T) {
	s := NewHeadlessSurface(640, 360)
	s.DPR = 2
	r, loop, clock := newTestRenderer(s)

	if !r.Init() {
		t.Fatalf("init failed")
	}
	if w, h := s.PixelSize(); w != 1280 || h != 720 {
		t.Fatalf("pixel size %dx%d", w, h)
	}
	dev := s.Device()
	// vs, fs, program, texture, 2 buffers
	if dev.Live() != 6 {
		t.Fatalf("live objects = %d", dev.Live())
	}

	r.StartRenderLoop()
	r.StartRenderLoop()
	if loop.PendingFrames() != 1 {
		t.Fatalf("pending frames = %d, duplicate loop started", loop.PendingFrames())
	}
	for i := 0; i < 5; i++ {
		clock.Advance(16 * time.Millisecond)
		loop.Tick()
	}
	if dev.Draws != 5 {
		t.Fatalf("draws = %d", dev.Draws)
	}
	hover, _ := dev.LastUniforms[UniformHover].([]float32)
	if len(hover) != 2 || hover[0] != 0 || hover[1] != 0 {
		t.Fatalf("hover uniform %v", dev.LastUniforms[UniformHover])
	}
	if got := r.PerformanceMetrics().Current; got < 62 || got > 63 {
		t.Fatalf("current fps = %v", got)
	}

	r.StopRenderLoop()
	clock.Advance(16 * time.Millisecond)
	loop.Tick()
	if dev.Draws != 5 || r.Running() {
		t.Fatalf("frame rendered after stop")
	}
}

func TestRendererInitFailures(t *testing.T) {
	cases := []struct {
		name  string
		setup func(s *HeadlessSurface)
		src   ShaderSource
	}{
		{"no context", func(s *HeadlessSurface) { s.NoContext = true }, testShaders},
		{"lost context", func(s *HeadlessSurface) { s.LostContext = true }, testShaders},
		{"compile error", func(s *HeadlessSurface) { s.FailCompile = true }, testShaders},
		{"texture error", func(s *HeadlessSurface) { s.FailTexture = true }, testShaders},
		{"bad fragment", func(*HeadlessSurface) {}, ShaderSource{Vertex: testShaders.Vertex, Fragment: "void main() {}"}},
		{"empty vertex", func(*HeadlessSurface) {}, ShaderSource{Fragment: testShaders.Fragment}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewHeadlessSurface(320, 200)
			c.setup(s)
			loop := host.NewLoop(host.NewManualClock())
			r := NewRenderer(s, loop, c.src, DefaultOptions(), WithLogger(quiet()))
			if r.Init() {
				t.Fatalf("init succeeded")
			}
			r.StartRenderLoop()
			if r.Running() || loop.PendingFrames() != 0 {
				t.Fatalf("render loop started after failed init")
			}
			if dev := s.Device(); dev != nil && dev.Live() != 0 {
				t.Fatalf("leaked %d objects", dev.Live())
			}
			r.Dispose()
			r.Dispose()
		})
	}
}

func TestRendererDisposeIdempotent(t *testing.T) {
	s := NewHeadlessSurface(320, 200)
	r, loop, _ := newTestRenderer(s)
	if !r.Init() {
		t.Fatalf("init failed")
	}
	r.StartRenderLoop()
	r.Dispose()
	r.Dispose()

	dev := s.Device()
	if dev.Live() != 0 || dev.DoubleDeletes != 0 {
		t.Fatalf("live=%d double=%d", dev.Live(), dev.DoubleDeletes)
	}
	if dev.Losses != 1 || !dev.IsLost() {
		t.Fatalf("context not released: losses=%d", dev.Losses)
	}
	if w, h := s.PixelSize(); w != 0 || h != 0 {
		t.Fatalf("surface not shrunk: %dx%d", w, h)
	}
	if loop.PendingFrames() != 0 || r.Running() {
		t.Fatalf("render loop survived dispose")
	}
	if r.Init() {
		t.Fatalf("init after dispose succeeded")
	}
	r.Render()
	if dev.Draws != 0 {
		t.Fatalf("rendered after dispose: draws = %d", dev.Draws)
	}
}

func TestHoverNDC(t *testing.T) {
	r := NewRenderer(NewHeadlessSurface(1, 1), host.NewLoop(nil), testShaders, Options{})
	cases := []struct{ x, y, nx, ny float64 }{
		{0.5, 0.5, 0, 0},
		{0, 0, -1, 1},
		{1, 1, 1, -1},
		{0.25, 0.75, -0.5, -0.5},
	}
	for _, c := range cases {
		r.SetHoverPosition(c.x, c.y)
		if nx, ny := r.HoverNDC(); nx != c.nx || ny != c.ny {
			t.Fatalf("(%v,%v) -> (%v,%v), want (%v,%v)", c.x, c.y, nx, ny, c.nx, c.ny)
		}
	}
}

func TestRendererTunable(t *testing.T) {
	s := NewHeadlessSurface(400, 200)
	r, loop, clock := newTestRenderer(s)
	if !r.Init() {
		t.Fatalf("init failed")
	}
	q := perf.NewQualityController(r, quiet())
	for i := 0; i < perf.MinSamplesBeforeEvaluation; i++ {
		q.RecordFrame(10)
	}
	if q.Level() != perf.Low {
		t.Fatalf("level = %v", q.Level())
	}
	if w, h := s.PixelSize(); w != 300 || h != 150 {
		t.Fatalf("scaled pixel size %dx%d", w, h)
	}

	r.StartRenderLoop()
	clock.Advance(16 * time.Millisecond)
	loop.Tick()
	u := s.Device().LastUniforms
	ls, lr := perf.LowStrength, perf.LowRadius
	if u[UniformStrength] != float32(ls) || u[UniformRadius] != float32(lr) {
		t.Fatalf("uniforms %v %v", u[UniformStrength], u[UniformRadius])
	}
	res, _ := u[UniformResolution].([]float32)
	if len(res) != 2 || res[0] != 300 || res[1] != 150 {
		t.Fatalf("resolution %v", res)
	}

	q.Reset()
	if w, _ := s.PixelSize(); w != 400 || r.DistortionStrength() != 0.15 {
		t.Fatalf("reset: width=%d strength=%v", w, r.DistortionStrength())
	}
}

func TestMetricsWithoutMonitor(t *testing.T) {
	r := NewRenderer(NewHeadlessSurface(1, 1), host.NewLoop(nil), testShaders, Options{})
	if got := r.PerformanceMetrics(); got != perf.PlateauMetrics() {
		t.Fatalf("metrics %+v", got)
	}
}
