// File: cmd/choreo_tuner/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"robonexus_go/internal/anim"
	"robonexus_go/internal/assets"
	"robonexus_go/internal/host"
	"robonexus_go/internal/loading"
	"robonexus_go/internal/render"
	"robonexus_go/internal/ui"
)

const (
	WindowW      = 1280
	WindowH      = 720
	saveFilename = "choreo_samples.json"
	sampleStep   = 100 * time.Millisecond
)

var face = basicfont.Face7x13

// 预览区域：液体文字画布缩小放在上半部分
var preview = image.Rect(160, 40, 1120, 520)

type Sample struct {
	AtMS          int64    `json:"at_ms"`
	Steps         []string `json:"steps"`
	HoverX        float64  `json:"hover_x"`
	HoverY        float64  `json:"hover_y"`
	ScreenOpacity float64  `json:"screen_opacity"`
	CanvasOpacity float64  `json:"canvas_opacity"`
	CanvasScale   float64  `json:"canvas_scale"`
}

type Tuner struct {
	screen *ui.Layer
	canvas *ui.Canvas
	tl     *anim.Timeline

	renderer *render.Renderer // 初始化失败时为空，只画示意
	hoverX   float64
	hoverY   float64

	pos    time.Duration
	play   bool
	speed  float64
	last   time.Time
	helpOn bool
	status string
}

func NewTuner(opts render.Options) (*Tuner, error) {
	t := &Tuner{
		screen: ui.NewLayer(0),
		canvas: ui.NewCanvas(preview, 1),
		hoverX: 0.5,
		hoverY: 0.5,
		play:   true,
		speed:  1,
		helpOn: true,
	}
	t.canvas.SetScale(1)
	t.tl = loading.Choreography(loading.Targets{
		Screen: t.screen,
		Canvas: t.canvas,
		Hover:  func(x, y float64) { t.hoverX, t.hoverY = x, y },
	})

	shaders, err := assets.LiquidShaders()
	if err != nil {
		return nil, err
	}
	r := render.NewRenderer(t.canvas, host.NewLoop(nil), shaders, opts)
	if r.Init() {
		t.renderer = r
	} else {
		t.status = "renderer unavailable, showing schematic only"
	}
	t.tl.Seek(0)
	return t, nil
}

func (t *Tuner) Update() error {
	now := time.Now()
	if !t.last.IsZero() && t.play {
		dt := now.Sub(t.last)
		t.pos += time.Duration(float64(dt) * t.speed)
		if t.pos >= t.tl.Duration() {
			t.pos = t.tl.Duration()
			t.play = false
		}
	}
	t.last = now

	// 空格：播放/暂停；播完后再按从头开始
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if !t.play && t.pos >= t.tl.Duration() {
			t.pos = 0
		}
		t.play = !t.play
	}
	// 左右：逐步；按住 Shift 步长 500ms
	stepLen := 50 * time.Millisecond
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		stepLen = 500 * time.Millisecond
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		t.play = false
		t.pos -= stepLen
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		t.play = false
		t.pos += stepLen
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		t.pos = 0
		t.play = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		t.speed = min(t.speed*2, 4)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		t.speed = max(t.speed/2, 0.125)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		t.helpOn = !t.helpOn
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := t.saveSamples(saveFilename); err != nil {
			t.status = "save failed: " + err.Error()
		} else {
			t.status = "saved " + saveFilename
		}
	}

	t.pos = max(0, min(t.pos, t.tl.Duration()))
	t.tl.Seek(t.pos)

	if t.renderer != nil {
		t.renderer.SetHoverPosition(t.hoverX, t.hoverY)
		t.renderer.Render()
	}
	return nil
}

func (t *Tuner) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x10, 0x10, 0x14, 0xff})

	// 加载画面底色按 screen 透明度
	a := float32(t.screen.Opacity())
	vector.DrawFilledRect(screen, float32(preview.Min.X), float32(preview.Min.Y),
		float32(preview.Dx()), float32(preview.Dy()),
		color.RGBA{uint8(3 * a), uint8(8 * a), uint8(13 * a), uint8(255 * a)}, false)
	vector.StrokeRect(screen, float32(preview.Min.X), float32(preview.Min.Y),
		float32(preview.Dx()), float32(preview.Dy()), 1, color.RGBA{0x50, 0x50, 0x60, 0xff}, false)

	if t.renderer != nil {
		op := &ebiten.DrawImageOptions{}
		if img := t.canvas.Target(); img != nil {
			b := img.Bounds()
			s := t.canvas.Scale()
			rw, rh := float64(preview.Dx()), float64(preview.Dy())
			op.GeoM.Scale(rw/float64(b.Dx()), rh/float64(b.Dy()))
			op.GeoM.Translate(-rw/2, -rh/2)
			op.GeoM.Scale(s, s)
			op.GeoM.Translate(float64(preview.Min.X)+rw/2, float64(preview.Min.Y)+rh/2)
			op.ColorScale.ScaleAlpha(float32(t.canvas.Opacity()))
			screen.DrawImage(img, op)
		}
	}

	// 悬停点十字
	hx := float32(preview.Min.X) + float32(t.hoverX)*float32(preview.Dx())
	hy := float32(preview.Min.Y) + float32(t.hoverY)*float32(preview.Dy())
	vector.StrokeLine(screen, hx-8, hy, hx+8, hy, 1, color.RGBA{0xff, 0x40, 0x40, 0xff}, false)
	vector.StrokeLine(screen, hx, hy-8, hx, hy+8, 1, color.RGBA{0xff, 0x40, 0x40, 0xff}, false)

	t.drawTimeline(screen)

	y := 600
	info := fmt.Sprintf("t=%.3fs / %.1fs  speed x%.3g  steps [%s]  hover (%.3f, %.3f)  screen %.2f  canvas %.2f x%.3f",
		t.pos.Seconds(), t.tl.Duration().Seconds(), t.speed, strings.Join(t.tl.Active(), ","),
		t.hoverX, t.hoverY, t.screen.Opacity(), t.canvas.Opacity(), t.canvas.Scale())
	text.Draw(screen, info, face, 20, y, color.White)
	if t.status != "" {
		text.Draw(screen, t.status, face, 20, y+18, color.RGBA{0xff, 0xd0, 0x60, 0xff})
	}
	if t.helpOn {
		help := "Space play/pause  Left/Right step (Shift 500ms)  Up/Down speed  R restart  S save samples  H help"
		text.Draw(screen, help, face, 20, WindowH-16, color.RGBA{0xa0, 0xa0, 0xb0, 0xff})
	}
}

// drawTimeline 时间轴：每段一条色块，当前位置一根竖线
func (t *Tuner) drawTimeline(dst *ebiten.Image) {
	const x0, y0, w = 160.0, 540.0, 960.0
	total := t.tl.Duration().Seconds()
	spans := []struct {
		name     string
		from, to float64
		clr      color.RGBA
	}{
		{loading.StepFadeInScreen, 0, 0.5, color.RGBA{0x40, 0x80, 0xff, 0xff}},
		{loading.StepFadeInText, 0.5, 1.0, color.RGBA{0x40, 0xc0, 0xff, 0xff}},
		{loading.StepHoverSweep, 1.0, 4.5, color.RGBA{0x60, 0xd0, 0x80, 0xff}},
		{loading.StepReturnCenter, 4.5, 5.0, color.RGBA{0xd0, 0xd0, 0x60, 0xff}},
		{loading.StepFinale, 5.0, 5.8, color.RGBA{0xff, 0x80, 0x60, 0xff}},
	}
	for _, s := range spans {
		sx := x0 + s.from/total*w
		sw := (s.to - s.from) / total * w
		vector.DrawFilledRect(dst, float32(sx), y0, float32(sw), 16, s.clr, false)
		text.Draw(dst, s.name, face, int(sx)+2, int(y0)+30, color.RGBA{0xc0, 0xc0, 0xc0, 0xff})
	}
	cx := float32(x0 + t.pos.Seconds()/total*w)
	vector.StrokeLine(dst, cx, y0-6, cx, y0+22, 2, color.White, false)
}

func (t *Tuner) Layout(outsideW, outsideH int) (int, int) { return WindowW, WindowH }

// sampleChoreography 按固定步长 Seek 并记录各目标的值
func sampleChoreography(step time.Duration) []Sample {
	screen, canvas := ui.NewLayer(0), ui.NewLayer(0)
	var hx, hy float64 = 0.5, 0.5
	tl := loading.Choreography(loading.Targets{
		Screen: screen,
		Canvas: canvas,
		Hover:  func(x, y float64) { hx, hy = x, y },
	})
	var out []Sample
	for at := time.Duration(0); at <= tl.Duration(); at += step {
		tl.Seek(at)
		out = append(out, Sample{
			AtMS:          at.Milliseconds(),
			Steps:         tl.Active(),
			HoverX:        hx,
			HoverY:        hy,
			ScreenOpacity: screen.Opacity(),
			CanvasOpacity: canvas.Opacity(),
			CanvasScale:   canvas.Scale(),
		})
	}
	return out
}

func (t *Tuner) saveSamples(path string) error {
	b, err := json.MarshalIndent(sampleChoreography(sampleStep), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func main() {
	textFlag := flag.String("text", "", "预览文字")
	dump := flag.Bool("dump", false, "只把采样写到标准输出，不开窗口")
	flag.Parse()

	if *dump {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sampleChoreography(sampleStep)); err != nil {
			log.Fatal(err)
		}
		return
	}

	opts := render.DefaultOptions()
	if *textFlag != "" {
		opts.Text = *textFlag
	}
	t, err := NewTuner(opts)
	if err != nil {
		log.Fatal(err)
	}
	ebiten.SetWindowSize(WindowW, WindowH)
	ebiten.SetWindowTitle("Choreography Tuner")
	if err := ebiten.RunGame(t); err != nil {
		log.Fatal(err)
	}
}
