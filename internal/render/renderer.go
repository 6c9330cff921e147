// File render/renderer.go
package render

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"robonexus_go/internal/host"
	"robonexus_go/internal/perf"
)

// 全屏四边形（三角带），纹理坐标 y 翻转，文字正立
var (
	quadPositions = []float32{-1, -1, 1, -1, -1, 1, 1, 1}
	quadTexCoords = []float32{0, 1, 1, 1, 0, 0, 1, 0}
)

// Uniform 名称，与片元着色器里的变量一致
const (
	UniformHover         = "Hover"
	UniformRadius        = "Radius"
	UniformStrength      = "Strength"
	UniformTime          = "Time"
	UniformResolution    = "Resolution"
	UniformGradientStart = "GradientStart"
	UniformGradientEnd   = "GradientEnd"
	// 纹理环绕/过滤，ebiten 后端按 TextureOptions 填
	UniformRepeat  = "Repeat"
	UniformNearest = "Nearest"
)

type Option func(*Renderer)

// WithFrameMetrics 注入帧率监控；不注入时 PerformanceMetrics 返回 60 的平台值
func WithFrameMetrics(m *perf.FrameMetrics) Option {
	return func(r *Renderer) { r.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l.With("component", "renderer")
		}
	}
}

// Renderer 液体文字渲染器
// 所有方法都在宿主的帧线程调用，不加锁
type Renderer struct {
	surface Surface
	sched   host.FrameScheduler
	shaders ShaderSource
	opts    Options
	log     *slog.Logger
	metrics *perf.FrameMetrics

	ctx       Context
	vs, fs    Shader
	program   Program
	texture   Texture
	positions Buffer
	texCoords Buffer
	uniforms  map[string]any

	hoverX, hoverY float64
	strength       float64
	radius         float64
	renderScale    float64
	startTime      time.Duration

	initialized bool
	disposed    bool
	drawFailed  bool

	running bool
	frame   host.FrameID
}

func NewRenderer(surface Surface, sched host.FrameScheduler, shaders ShaderSource, opts Options, options ...Option) *Renderer {
	opts = opts.withDefaults()
	r := &Renderer{
		surface:     surface,
		sched:       sched,
		shaders:     shaders,
		opts:        opts,
		log:         slog.Default().With("component", "renderer"),
		hoverX:      0.5,
		hoverY:      0.5,
		strength:    opts.DistortionStrength,
		radius:      opts.DistortionRadius,
		renderScale: 1,
		uniforms:    map[string]any{},
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Init 建立上下文、编译着色器、光栅化文字、上传几何体
// 失败时记录原因、释放已创建的对象并返回 false，不会 panic
func (r *Renderer) Init() (ok bool) {
	if r.disposed {
		r.log.Warn("init called on disposed renderer")
		return false
	}
	if r.initialized {
		return true
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("renderer init panicked", "panic", rec)
			r.releaseObjects()
			r.ctx = nil
			ok = false
		}
	}()
	if err := r.init(); err != nil {
		r.log.Error("renderer init failed", "error", err)
		r.releaseObjects()
		r.ctx = nil
		return false
	}
	r.initialized = true
	r.log.Info("renderer ready", "text", r.opts.Text)
	return true
}

func (r *Renderer) init() error {
	if r.surface == nil {
		return ErrContextUnavailable
	}
	ctx, err := r.surface.Context()
	if err != nil {
		if errors.Is(err, ErrContextUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrContextUnavailable, err)
	}
	if ctx == nil {
		return ErrContextUnavailable
	}
	if ctx.IsLost() {
		return ErrContextLost
	}
	r.ctx = ctx
	r.resize()

	if err := r.initShaders(); err != nil {
		return err
	}
	if err := r.createTextTexture(); err != nil {
		return err
	}
	if err := r.setupGeometry(); err != nil {
		return err
	}
	r.setupUniforms()
	r.startTime = r.sched.Now()
	return nil
}

func (r *Renderer) initShaders() error {
	vs, err := r.ctx.CompileShader(StageVertex, r.shaders.Vertex)
	if err != nil {
		return fmt.Errorf("%w: vertex: %v", ErrShaderCompile, err)
	}
	r.vs = vs
	fs, err := r.ctx.CompileShader(StageFragment, r.shaders.Fragment)
	if err != nil {
		return fmt.Errorf("%w: fragment: %v", ErrShaderCompile, err)
	}
	r.fs = fs
	p, err := r.ctx.LinkProgram(vs, fs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrShaderLink, err)
	}
	r.program = p
	return nil
}

func (r *Renderer) createTextTexture() error {
	img, err := RasterizeText(r.opts, r.surface.DevicePixelRatio())
	if err != nil {
		return err
	}
	tex, err := r.ctx.NewTexture(img, TextureOptions{Wrap: WrapClampToEdge, Filter: FilterLinear})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTexture, err)
	}
	r.texture = tex
	return nil
}

func (r *Renderer) setupGeometry() error {
	pos, err := r.ctx.NewBuffer(quadPositions)
	if err != nil {
		return fmt.Errorf("position buffer: %w", err)
	}
	r.positions = pos
	tc, err := r.ctx.NewBuffer(quadTexCoords)
	if err != nil {
		return fmt.Errorf("texcoord buffer: %w", err)
	}
	r.texCoords = tc
	return nil
}

func (r *Renderer) setupUniforms() {
	r.uniforms[UniformRadius] = float32(r.radius)
	r.uniforms[UniformStrength] = float32(r.strength)
	r.uniforms[UniformGradientStart] = ParseHexColor(r.opts.GradientStart).Slice()
	r.uniforms[UniformGradientEnd] = ParseHexColor(r.opts.GradientEnd).Slice()
	r.uniforms[UniformTime] = float32(0)
	hx, hy := r.HoverNDC()
	r.uniforms[UniformHover] = []float32{float32(hx), float32(hy)}
	r.setResolution()
}

func (r *Renderer) setResolution() {
	w, h := r.surface.PixelSize()
	r.uniforms[UniformResolution] = []float32{float32(w), float32(h)}
}

// resize 像素尺寸 = 逻辑尺寸 × DPR × 渲染缩放，变化时同步 viewport
func (r *Renderer) resize() {
	dpr := r.surface.DevicePixelRatio()
	if dpr <= 0 {
		dpr = 1
	}
	scale := dpr * r.renderScale
	dw, dh := r.surface.DisplaySize()
	w := int(math.Floor(float64(dw) * scale))
	h := int(math.Floor(float64(dh) * scale))
	if pw, ph := r.surface.PixelSize(); pw != w || ph != h {
		r.surface.SetPixelSize(w, h)
	}
	r.ctx.Viewport(w, h)
}

// SetHoverPosition 归一化的画布坐标，原点在左上
func (r *Renderer) SetHoverPosition(x, y float64) {
	r.hoverX, r.hoverY = x, y
}

func (r *Renderer) HoverPosition() (x, y float64) {
	return r.hoverX, r.hoverY
}

// HoverNDC 转到设备空间：x*2-1，y 翻转
func (r *Renderer) HoverNDC() (x, y float64) {
	return r.hoverX*2 - 1, -(r.hoverY*2 - 1)
}

// Render 画一帧；未初始化时什么都不做
func (r *Renderer) Render() {
	if !r.initialized || r.ctx == nil {
		return
	}
	now := r.sched.Now()
	if r.metrics != nil {
		r.metrics.RecordFrame(now)
	}
	r.ctx.Clear()

	r.uniforms[UniformTime] = float32((now - r.startTime).Seconds())
	hx, hy := r.HoverNDC()
	r.uniforms[UniformHover] = []float32{float32(hx), float32(hy)}

	err := r.ctx.Draw(DrawCall{
		Program:   r.program,
		Texture:   r.texture,
		Positions: r.positions,
		TexCoords: r.texCoords,
		Mode:      TriangleStrip,
		Count:     4,
		Uniforms:  r.uniforms,
	})
	if err != nil && !r.drawFailed {
		// 只记一次，避免每帧刷屏
		r.drawFailed = true
		r.log.Warn("draw failed", "error", err)
	}
}

// StartRenderLoop 每个宿主帧渲染一次，已在运行时不会再开第二个循环
func (r *Renderer) StartRenderLoop() {
	if !r.initialized {
		r.log.Warn("render loop requested before init")
		return
	}
	if r.running {
		return
	}
	r.running = true
	r.frame = r.sched.RequestFrame(r.tick)
}

func (r *Renderer) tick(time.Duration) {
	if !r.running {
		return
	}
	r.Render()
	r.frame = r.sched.RequestFrame(r.tick)
}

// StopRenderLoop 取消挂起的帧回调，可重复调用
func (r *Renderer) StopRenderLoop() {
	if !r.running {
		return
	}
	r.running = false
	r.sched.CancelFrame(r.frame)
}

func (r *Renderer) Running() bool     { return r.running }
func (r *Renderer) Initialized() bool { return r.initialized }
func (r *Renderer) Disposed() bool    { return r.disposed }

// Measured 是否已有真实帧率样本
func (r *Renderer) Measured() bool { return r.metrics != nil && r.metrics.HasSamples() }

// PerformanceMetrics 没有监控或还没有样本时返回 60 的平台值
func (r *Renderer) PerformanceMetrics() perf.Metrics {
	if r.metrics == nil {
		return perf.PlateauMetrics()
	}
	return r.metrics.Metrics()
}

// Tunable

func (r *Renderer) DistortionStrength() float64 { return r.strength }
func (r *Renderer) DistortionRadius() float64   { return r.radius }
func (r *Renderer) RenderScale() float64        { return r.renderScale }

func (r *Renderer) SetDistortionStrength(v float64) {
	r.strength = v
	if r.initialized {
		r.uniforms[UniformStrength] = float32(v)
	}
}

func (r *Renderer) SetDistortionRadius(v float64) {
	r.radius = v
	if r.initialized {
		r.uniforms[UniformRadius] = float32(v)
	}
}

// SetRenderScale 缩放画布像素尺寸（降档时使用），同步 viewport 和分辨率 uniform
func (r *Renderer) SetRenderScale(v float64) {
	if v <= 0 {
		return
	}
	r.renderScale = v
	if r.initialized && r.ctx != nil {
		r.resize()
		r.setResolution()
	}
}

// Dispose 停止循环、删除全部 GPU 对象、尽可能丢弃上下文、把画布缩到 0×0
// 可以重复调用，Init 失败后调用也安全
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.StopRenderLoop()
	r.releaseObjects()
	if l, ok := r.ctx.(ContextLoser); ok {
		l.LoseContext()
	}
	r.ctx = nil
	if r.surface != nil {
		r.surface.SetPixelSize(0, 0)
	}
	r.initialized = false
	r.disposed = true
	r.log.Debug("renderer disposed")
}

// releaseObjects 按创建的逆序删除，删除后句柄置空
func (r *Renderer) releaseObjects() {
	if r.ctx == nil {
		return
	}
	for _, obj := range []Object{r.texCoords, r.positions, r.texture, r.program, r.fs, r.vs} {
		if obj != nil {
			r.ctx.Delete(obj)
		}
	}
	r.texCoords, r.positions = nil, nil
	r.texture, r.program = nil, nil
	r.fs, r.vs = nil, nil
}
