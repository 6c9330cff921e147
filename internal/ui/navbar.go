// File ui/navbar.go
package ui

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

const (
	springStiffness = 200.0
	springDamping   = 20.0
	springSubstep   = 1.0 / 240
	springRestEps   = 0.05
)

// Spring 一维阻尼弹簧，位置追随 Target
type Spring struct {
	Stiffness, Damping float64
	Pos, Vel, Target   float64
}

func NewSpring(pos float64) *Spring {
	return &Spring{Stiffness: springStiffness, Damping: springDamping, Pos: pos, Target: pos}
}

// Step 半隐式欧拉，固定小步长积分，帧率抖动不会让弹簧发散
func (s *Spring) Step(dt float64) {
	for dt > 0 {
		h := math.Min(dt, springSubstep)
		a := s.Stiffness*(s.Target-s.Pos) - s.Damping*s.Vel
		s.Vel += a * h
		s.Pos += s.Vel * h
		dt -= h
	}
}

func (s *Spring) Settled() bool {
	return math.Abs(s.Target-s.Pos) < springRestEps && math.Abs(s.Vel) < springRestEps
}

var navItems = []string{"Home", "Events", "Tutorials", "Team", "Alumni", "Contact"}

const (
	navHeight   = 64
	navItemGap  = 110
	navGlowSize = 46
)

// Navbar 顶部导航，光斑跟随指针（弹簧），指针离开后淡出
type Navbar struct {
	width   int
	enabled bool

	glowX, glowY *Spring
	glowAlpha    *Spring
}

func NewNavbar(width int) *Navbar {
	return &Navbar{
		width:     width,
		glowX:     NewSpring(float64(width) / 2),
		glowY:     NewSpring(navHeight / 2),
		glowAlpha: NewSpring(0),
	}
}

// Enable 页面初始化入口，重复调用无效果
func (n *Navbar) Enable() { n.enabled = true }

func (n *Navbar) Enabled() bool { return n.enabled }

// Update 指针在导航栏内时光斑追过去，否则只衰减亮度
func (n *Navbar) Update(dt, px, py float64) {
	if !n.enabled {
		return
	}
	if n.Contains(px, py) {
		n.glowX.Target = px
		n.glowY.Target = py
		n.glowAlpha.Target = 1
	} else {
		n.glowAlpha.Target = 0
	}
	n.glowX.Step(dt)
	n.glowY.Step(dt)
	n.glowAlpha.Step(dt)
}

func (n *Navbar) Contains(x, y float64) bool {
	return x >= 0 && x < float64(n.width) && y >= 0 && y < navHeight
}

func (n *Navbar) Settled() bool {
	return n.glowX.Settled() && n.glowY.Settled() && n.glowAlpha.Settled()
}

// Glow 当前光斑位置和亮度
func (n *Navbar) Glow() (x, y, alpha float64) {
	a := n.glowAlpha.Pos
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	return n.glowX.Pos, n.glowY.Pos, a
}

func (n *Navbar) Draw(dst, logo *ebiten.Image, face font.Face) {
	w := float32(n.width)
	vector.DrawFilledRect(dst, 0, 0, w, navHeight, color.RGBA{0x06, 0x10, 0x18, 0xd0}, false)
	vector.StrokeLine(dst, 0, navHeight, w, navHeight, 1, color.RGBA{0x47, 0xa0, 0xb8, 0x60}, false)

	if gx, gy, ga := n.Glow(); n.enabled && ga > 0.01 {
		// 三圈叠加近似径向渐变
		for i, r := range []float32{navGlowSize, navGlowSize * 0.6, navGlowSize * 0.3} {
			a := float32(ga) * float32(0.10+0.08*float64(i))
			vector.DrawFilledCircle(dst, float32(gx), float32(gy), r,
				color.RGBA{uint8(0x47 * a), uint8(0xa0 * a), uint8(0xb8 * a), uint8(0xff * a)}, true)
		}
	}

	x := 24.0
	if logo != nil {
		op := &ebiten.DrawImageOptions{}
		lh := float64(logo.Bounds().Dy())
		op.GeoM.Translate(x, (navHeight-lh)/2)
		dst.DrawImage(logo, op)
		x += float64(logo.Bounds().Dx()) + 12
	}
	text.Draw(dst, "ROBO NEXUS", face, int(x), navHeight/2+4, color.White)

	ix := n.width - len(navItems)*navItemGap
	for i, item := range navItems {
		text.Draw(dst, item, face, ix+i*navItemGap+20, navHeight/2+4, color.RGBA{0xcc, 0xdd, 0xe6, 0xff})
	}
}
