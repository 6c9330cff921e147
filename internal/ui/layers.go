// File ui/layers.go
package ui

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"robonexus_go/internal/loading"
	"robonexus_go/internal/render"
)

// Layer 页面上的一层：透明度、缩放、是否已移除
type Layer struct {
	opacity float64
	scale   float64
	removed bool
}

func NewLayer(opacity float64) *Layer {
	return &Layer{opacity: opacity, scale: 1}
}

func (l *Layer) Opacity() float64 { return l.opacity }

func (l *Layer) SetOpacity(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	l.opacity = v
}

func (l *Layer) Scale() float64 {
	if l.scale == 0 {
		return 1
	}
	return l.scale
}

func (l *Layer) SetScale(v float64) { l.scale = v }
func (l *Layer) Remove()            { l.removed = true }
func (l *Layer) Removed() bool      { return l.removed }

// Visible 没移除且不是全透明
func (l *Layer) Visible() bool { return !l.removed && l.opacity > 0 }

// Canvas 液体文字画布：既是可动画的层，也是渲染器的 Surface
type Canvas struct {
	Layer
	*render.EbitenSurface
	Rect image.Rectangle
}

func NewCanvas(rect image.Rectangle, dpr float64) *Canvas {
	return &Canvas{
		Layer:         Layer{scale: 1},
		EbitenSurface: render.NewEbitenSurface(rect.Dx(), rect.Dy(), dpr),
		Rect:          rect,
	}
}

// draw 把渲染结果按层的缩放（绕中心）和透明度贴到 dst
func (c *Canvas) draw(dst *ebiten.Image) {
	if !c.Visible() {
		return
	}
	img := c.Target()
	if img == nil {
		return
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	rw, rh := float64(c.Rect.Dx()), float64(c.Rect.Dy())
	s := c.Scale()

	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	op.GeoM.Scale(rw/float64(b.Dx()), rh/float64(b.Dy()))
	op.GeoM.Translate(-rw/2, -rh/2)
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(float64(c.Rect.Min.X)+rw/2, float64(c.Rect.Min.Y)+rh/2)
	op.ColorScale.ScaleAlpha(float32(c.opacity))
	dst.DrawImage(img, op)
}

// Button 可激活的层（跳过按钮）
// 点击和 Enter/Space 都由 Page 的输入处理转成 Activate
type Button struct {
	Layer
	Rect  image.Rectangle
	Label string

	next     int
	handlers map[int]func()
	order    []int
}

func NewButton(rect image.Rectangle, label string) *Button {
	return &Button{Layer: Layer{scale: 1}, Rect: rect, Label: label, handlers: map[int]func(){}}
}

func (b *Button) OnActivate(fn func()) (remove func()) {
	if fn == nil {
		return func() {}
	}
	b.next++
	id := b.next
	b.handlers[id] = fn
	b.order = append(b.order, id)
	return func() { delete(b.handlers, id) }
}

// Activate 按登记顺序调用回调；已移除的按钮不响应
func (b *Button) Activate() bool {
	if b.removed || len(b.handlers) == 0 {
		return false
	}
	for _, id := range b.order {
		if fn, ok := b.handlers[id]; ok {
			fn()
		}
	}
	return true
}

// Contains 逻辑坐标是否落在按钮上
func (b *Button) Contains(x, y float64) bool {
	return x >= float64(b.Rect.Min.X) && x < float64(b.Rect.Max.X) &&
		y >= float64(b.Rect.Min.Y) && y < float64(b.Rect.Max.Y)
}

// Document 选择器 -> 层
type Document struct {
	els map[string]loading.Element
}

func NewDocument() *Document {
	return &Document{els: map[string]loading.Element{}}
}

func (d *Document) Register(sel string, el loading.Element) {
	if el == nil {
		delete(d.els, sel)
		return
	}
	d.els[sel] = el
}

// Query 找不到时返回 nil 接口（不是带类型的 nil）
func (d *Document) Query(sel string) loading.Element {
	el, ok := d.els[sel]
	if !ok {
		return nil
	}
	return el
}
