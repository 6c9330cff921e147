// File ui/fliptext.go
package ui

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"

	"robonexus_go/internal/anim"
)

const (
	flipPerLetter = 600 * time.Millisecond
	flipStagger   = 100 * time.Millisecond
	flipDelay     = 500 * time.Millisecond
)

// FlipText 标题逐字翻转进场
// 没启动前按静态文字绘制
type FlipText struct {
	Text string

	started bool
	start   time.Duration
}

func NewFlipText(s string) *FlipText { return &FlipText{Text: s} }

// Start 页面初始化入口，只生效一次
func (f *FlipText) Start(now time.Duration) {
	if f.started {
		return
	}
	f.started = true
	f.start = now
}

func (f *FlipText) Started() bool { return f.started }

// LetterProgress 第 i 个字符的翻转进度，已缓动
func (f *FlipText) LetterProgress(i int, now time.Duration) float64 {
	if !f.started {
		return 1
	}
	t := now - f.start - flipDelay - time.Duration(i)*flipStagger
	if t <= 0 {
		return 0
	}
	if t >= flipPerLetter {
		return 1
	}
	return anim.Power2Out(float64(t) / float64(flipPerLetter))
}

// Duration 从 Start 到最后一个字符落定
func (f *FlipText) Duration() time.Duration {
	n := len([]rune(f.Text))
	if n == 0 {
		return 0
	}
	return flipDelay + time.Duration(n-1)*flipStagger + flipPerLetter
}

func (f *FlipText) Animating(now time.Duration) bool {
	return f.started && now-f.start < f.Duration()
}

// Draw 以 (cx, baseline) 水平居中；每个字符绕自身中线做纵向压缩模拟翻转
func (f *FlipText) Draw(dst *ebiten.Image, face font.Face, cx, baseline float64, now time.Duration) {
	total := font.MeasureString(face, f.Text).Round()
	x0 := cx - float64(total)/2
	half := float64(face.Metrics().Ascent.Round()) / 2

	runes := []rune(f.Text)
	for i, r := range runes {
		p := f.LetterProgress(i, now)
		if p <= 0 {
			continue
		}
		adv := font.MeasureString(face, string(runes[:i])).Round()

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(0, half)
		op.GeoM.Scale(1, p)
		op.GeoM.Translate(0, -half)
		op.GeoM.Translate(x0+float64(adv), baseline)
		op.ColorScale.ScaleAlpha(float32(p))
		text.DrawWithOptions(dst, string(r), face, op)
	}
}
