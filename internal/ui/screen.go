// File /ui/screen.go
package ui

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"robonexus_go/internal/assets"
	"robonexus_go/internal/host"
	"robonexus_go/internal/loading"
	"robonexus_go/internal/perf"
	"robonexus_go/internal/render"
)

const (
	// 逻辑画布尺寸，窗口里等比缩放居中
	LogicalWidth  = 1280
	LogicalHeight = 720

	heroFontSize = 64
	logoSize     = 40
	qrSize       = 112
)

var overlayFace font.Face = basicfont.Face7x13

// 跳过按钮在右下角
var skipRect = image.Rect(LogicalWidth-40-120, LogicalHeight-40-40, LogicalWidth-40, LogicalHeight-40)

// Config 页面参数
type Config struct {
	Loading      loading.Options
	HeroText     string
	Subtitle     string
	ContactURL   string  // 页脚二维码内容，空则不画
	DPR          float64 // <=0 按 1 处理
	ParticleSeed int64
	ShowOverlay  bool
	Logger       *slog.Logger
	Clock        host.Clock // 为空用系统时钟
}

// Page 实现 ebiten.Game：加载画面盖在主页面上，结束后只剩主页面
type Page struct {
	cfg Config
	log *slog.Logger

	clock host.Clock
	loop  *host.Loop
	life  *host.Lifecycle

	doc     *Document
	screen  *Layer
	canvas  *Canvas
	content *Layer
	skip    *Button

	bg        *background
	particles *ParticleField
	navbar    *Navbar
	hero      *FlipText
	heroFace  font.Face
	logo      *ebiten.Image
	qr        *ebiten.Image

	ctrl    *loading.Controller
	started bool
	focused bool
	power   *powerMode

	offscreen  *ebiten.Image
	contentImg *ebiten.Image
	screenImg  *ebiten.Image
	winW, winH int
	ptr        pointer
	overlay    bool
	lastUpdate float64 // 秒，上一帧的时钟读数
}

// NewPage 构造页面；加载流程在第一次 Update 时启动
func NewPage(cfg Config) (*Page, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = host.NewSystemClock()
	}
	if cfg.HeroText == "" {
		cfg.HeroText = "ROBO NEXUS"
	}
	p := &Page{
		cfg:       cfg,
		log:       log.With("component", "page"),
		clock:     clock,
		loop:      host.NewLoop(clock),
		life:      host.NewLifecycle(),
		doc:       NewDocument(),
		screen:    NewLayer(1),
		content:   NewLayer(0),
		skip:      NewButton(skipRect, "SKIP >>"),
		particles: NewParticleField(LogicalWidth, LogicalHeight, cfg.ParticleSeed),
		navbar:    NewNavbar(LogicalWidth),
		hero:      NewFlipText(cfg.HeroText),
		focused:   true,
		power:     newPowerMode(),
		overlay:   cfg.ShowOverlay,
		winW:      LogicalWidth,
		winH:      LogicalHeight,
	}

	var err error
	if p.bg, err = newBackground(LogicalWidth, LogicalHeight); err != nil {
		return nil, err
	}
	if p.logo, err = assets.LoadSVG("logo", logoSize, logoSize); err != nil {
		return nil, err
	}
	if p.qr, err = assets.LoadQRCode(cfg.ContactURL, qrSize); err != nil {
		return nil, err
	}
	fontOpts := cfg.Loading.Render
	if p.heroFace, err = render.NewTextFace(fontOpts, heroFontSize); err != nil {
		return nil, fmt.Errorf("加载标题字体失败: %w", err)
	}

	// 画布坐标已经是逻辑像素，窗口缩放在 Draw 里统一做
	p.canvas = NewCanvas(image.Rect(0, 0, LogicalWidth, LogicalHeight), cfg.DPR)

	sel := cfg.Loading.Selectors
	if sel == (loading.Selectors{}) {
		sel = loading.DefaultSelectors()
	}
	p.doc.Register(sel.Canvas, p.canvas)
	p.doc.Register(sel.Screen, p.screen)
	p.doc.Register(sel.Content, p.content)
	p.doc.Register(sel.Skip, p.skip)

	p.offscreen = ebiten.NewImage(LogicalWidth, LogicalHeight)
	p.contentImg = ebiten.NewImage(LogicalWidth, LogicalHeight)
	p.screenImg = ebiten.NewImage(LogicalWidth, LogicalHeight)

	shaders, err := assets.LiquidShaders()
	if err != nil {
		return nil, err
	}
	p.ctrl = loading.NewController(cfg.Loading, loading.Deps{
		Document:        p.doc,
		Loop:            p.loop,
		Lifecycle:       p.life,
		Shaders:         shaders,
		Logger:          log,
		NewFrameMetrics: perf.NewFrameMetrics,
		NewQuality:      perf.NewQualityController,
		Initializers:    p.initializers(),
		OnPhase:         p.onPhase,
	})
	return p, nil
}

// initializers 过渡结束后依次启动的主页面效果
func (p *Page) initializers() []loading.Initializer {
	return []loading.Initializer{
		{Name: "navbar", Run: p.navbar.Enable},
		{Name: "flip-text", Run: func() { p.hero.Start(p.loop.Now()) }},
		{Name: "particles", Run: p.particles.Start},
	}
}

func (p *Page) onPhase(from, to loading.Phase) {
	p.log.Debug("loading phase", "from", from, "to", to)
	if to.Terminal() {
		p.power.markBooted()
	}
}

// Controller 加载控制器，诊断面板和命令行工具用
func (p *Page) Controller() *loading.Controller { return p.ctrl }

// Lifecycle 窗口关闭时由 Update 触发
func (p *Page) Lifecycle() *host.Lifecycle { return p.life }

func (p *Page) start() {
	p.started = true
	if !p.ctrl.Init() {
		p.log.Warn("loading screen unavailable, showing page directly",
			"error", p.ctrl.State().ErrorMessage)
	}
}

// Update 窗口关闭 -> 输入 -> 焦点 -> 计时器 -> 页面效果
func (p *Page) Update() error {
	if ebiten.IsWindowBeingClosed() {
		p.life.Unload()
		return ebiten.Termination
	}
	if !p.started {
		p.start()
	}

	p.handleInput()
	p.syncFocus(ebiten.IsFocused())

	now := p.clock.Now().Seconds()
	dt := now - p.lastUpdate
	if p.lastUpdate == 0 || dt < 0 || dt > 0.25 {
		dt = 1.0 / 60
	}
	p.lastUpdate = now

	// 这里只跑计时器；帧回调放到 Draw，追帧时连续的 Update 不算作帧
	p.loop.RunTimers()

	p.navbar.Update(dt, p.ptr.x, p.ptr.y)
	p.particles.Update(dt)

	p.power.ensurePerf(p.animating())
	if !p.power.perfOn && p.particles.Started() {
		// 降档后粒子仍以低帧率漂移
		ebiten.ScheduleFrame()
	}
	return nil
}

// syncFocus 窗口失焦时暂停加载动画，超时照常计时
func (p *Page) syncFocus(focused bool) {
	if focused == p.focused {
		return
	}
	p.focused = focused
	if focused {
		p.ctrl.Resume()
	} else {
		p.ctrl.Pause()
	}
}

// animating 是否还有需要高刷新的东西
func (p *Page) animating() bool {
	if !p.ctrl.Phase().Terminal() {
		return true
	}
	return p.overlay || p.ptr.moved || p.hero.Animating(p.loop.Now()) || !p.navbar.Settled()
}

// Draw 先画主页面，再叠加载画面，最后等比缩放到窗口
func (p *Page) Draw(screen *ebiten.Image) {
	// 每个呈现帧推进一次编排和液体文字渲染，帧率统计也按这里算
	p.loop.RunFrames()

	screen.Fill(color.Black)
	p.offscreen.Fill(color.Black)

	if p.content.Visible() {
		p.contentImg.Clear()
		p.drawContent(p.contentImg)
		op := &ebiten.DrawImageOptions{}
		op.ColorScale.ScaleAlpha(float32(p.content.Opacity()))
		p.offscreen.DrawImage(p.contentImg, op)
	}

	if p.screen.Visible() {
		p.screenImg.Fill(bgScreen)
		p.canvas.draw(p.screenImg)
		op := &ebiten.DrawImageOptions{}
		op.ColorScale.ScaleAlpha(float32(p.screen.Opacity()))
		p.offscreen.DrawImage(p.screenImg, op)
	}
	// 跳过按钮单独淡入淡出，不跟随加载画面的透明度
	drawButton(p.offscreen, p.skip, overlayFace, p.skip.Contains(p.ptr.x, p.ptr.y))

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale, dx, dy := letterbox(w, h, LogicalWidth, LogicalHeight)
	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(dx, dy)
	screen.DrawImage(p.offscreen, op)

	if p.overlay {
		drawOverlay(screen, overlayLines(p.ctrl.Snapshot(), ebiten.ActualTPS(), ebiten.ActualFPS()))
	}
}

func (p *Page) drawContent(dst *ebiten.Image) {
	p.bg.draw(dst)
	p.particles.Draw(dst)
	p.navbar.Draw(dst, p.logo, overlayFace)

	now := p.loop.Now()
	p.hero.Draw(dst, p.heroFace, LogicalWidth/2, LogicalHeight/2, now)
	if p.cfg.Subtitle != "" {
		b := text.BoundString(overlayFace, p.cfg.Subtitle)
		text.Draw(dst, p.cfg.Subtitle, overlayFace, (LogicalWidth-b.Dx())/2, LogicalHeight/2+48,
			color.RGBA{0xb8, 0xd4, 0xde, 0xff})
	}
	if p.qr != nil {
		qh := p.qr.Bounds().Dy()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(40, float64(LogicalHeight-40-qh))
		dst.DrawImage(p.qr, op)
		text.Draw(dst, "CONTACT US", overlayFace, 40, LogicalHeight-40-qh-8, color.White)
	}
}

// Layout 屏幕用窗口实际尺寸，Draw 里自己做等比缩放
func (p *Page) Layout(outsideWidth, outsideHeight int) (int, int) {
	p.winW, p.winH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
