// File /ui/render.go
package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

// 乘性渐变：左上亮，右下暗
const gradKage = `//kage:unit pixels

package main

var UBright float
var UDark   float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	uv := (src - imageSrc0Origin()) / imageSrc0Size()
	t := clamp((uv.x + uv.y) * 0.5, 0.0, 1.0)
	f := mix(UBright, UDark, t)
	return vec4(c.rgb * f, c.a)
}
`

const (
	gradBright = 1.35
	gradDark   = 0.70
)

var (
	bgBase   = color.RGBA{0x0b, 0x1d, 0x2a, 0xff}
	bgScreen = color.RGBA{0x03, 0x08, 0x0d, 0xff}
)

// background 底色做一次渐变后缓存，之后每帧直接贴
type background struct {
	baked *ebiten.Image
}

func newBackground(w, h int) (*background, error) {
	sh, err := ebiten.NewShader([]byte(gradKage))
	if err != nil {
		return nil, fmt.Errorf("编译渐变 shader 失败: %w", err)
	}
	defer sh.Deallocate()

	base := ebiten.NewImage(w, h)
	base.Fill(bgBase)
	defer base.Deallocate()

	baked := ebiten.NewImage(w, h)
	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = base
	op.Uniforms = map[string]any{
		"UBright": float32(gradBright),
		"UDark":   float32(gradDark),
	}
	baked.DrawRectShader(w, h, sh, op)
	return &background{baked: baked}, nil
}

func (b *background) draw(dst *ebiten.Image) {
	dst.DrawImage(b.baked, nil)
}

// letterbox 逻辑画布等比缩放进窗口后的缩放和偏移
func letterbox(winW, winH, logW, logH int) (scale, dx, dy float64) {
	if winW <= 0 || winH <= 0 || logW <= 0 || logH <= 0 {
		return 1, 0, 0
	}
	scale = math.Min(float64(winW)/float64(logW), float64(winH)/float64(logH))
	dx = (float64(winW) - float64(logW)*scale) / 2
	dy = (float64(winH) - float64(logH)*scale) / 2
	return
}

// toLogical 窗口坐标反算到逻辑画布
func toLogical(x, y float64, winW, winH, logW, logH int) (float64, float64) {
	s, dx, dy := letterbox(winW, winH, logW, logH)
	return (x - dx) / s, (y - dy) / s
}

// drawButton 跳过按钮：描边圆角近似（矩形 + 文字居中）
func drawButton(dst *ebiten.Image, b *Button, face font.Face, hovered bool) {
	if !b.Visible() {
		return
	}
	a := float32(b.Opacity())
	x, y := float32(b.Rect.Min.X), float32(b.Rect.Min.Y)
	w, h := float32(b.Rect.Dx()), float32(b.Rect.Dy())

	fill := float32(0.10)
	if hovered {
		fill = 0.22
	}
	vector.DrawFilledRect(dst, x, y, w, h, premul(0xff, 0xff, 0xff, fill*a), false)
	vector.StrokeRect(dst, x, y, w, h, 1, premul(0xff, 0xff, 0xff, 0.6*a), false)

	bounds := text.BoundString(face, b.Label)
	tx := b.Rect.Min.X + (b.Rect.Dx()-bounds.Dx())/2
	ty := b.Rect.Min.Y + (b.Rect.Dy()+bounds.Dy())/2 - 1
	text.Draw(dst, b.Label, face, tx, ty, premul(0xff, 0xff, 0xff, 0.9*a))
}

// premul 非预乘颜色 + 透明度 -> color.RGBA（预乘）
func premul(r, g, b uint8, a float32) color.RGBA {
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	return color.RGBA{uint8(float32(r) * a), uint8(float32(g) * a), uint8(float32(b) * a), uint8(255 * a)}
}
