// File ui/input.go
package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// pointer 指针在逻辑画布上的位置
type pointer struct {
	x, y  float64
	moved bool
}

// handleInput 读取本帧输入：F3 开关诊断面板，点击或 Enter/Space 激活跳过按钮
func (p *Page) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		p.overlay = !p.overlay
	}

	mx, my := ebiten.CursorPosition()
	lx, ly := toLogical(float64(mx), float64(my), p.winW, p.winH, LogicalWidth, LogicalHeight)
	p.ptr.moved = lx != p.ptr.x || ly != p.ptr.y
	p.ptr.x, p.ptr.y = lx, ly

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && p.skip.Contains(lx, ly) {
		p.activateSkip("pointer")
		return
	}
	// Space 在这里就被消费掉，页面上没有别的地方响应它
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		p.activateSkip("keyboard")
	}
}

func (p *Page) activateSkip(source string) {
	if p.skip.Activate() {
		p.log.Debug("skip activated", "source", source)
	}
}
