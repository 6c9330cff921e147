// File ui/particles.go
package ui

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	particleCount    = 80
	particleMaxSpeed = 24.0 // 像素/秒
	particleLinkDist = 120.0
)

type particle struct {
	x, y   float64
	vx, vy float64
	r      float32
}

// ParticleField 背景漂浮粒子，近距离的粒子之间连线
type ParticleField struct {
	w, h float64
	rng  *rand.Rand
	ps   []particle
}

func NewParticleField(w, h int, seed int64) *ParticleField {
	return &ParticleField{w: float64(w), h: float64(h), rng: rand.New(rand.NewSource(seed))}
}

// Start 页面初始化入口，重复调用不会重新撒点
func (f *ParticleField) Start() {
	if f.ps != nil {
		return
	}
	f.ps = make([]particle, particleCount)
	for i := range f.ps {
		a := f.rng.Float64() * 2 * math.Pi
		v := (0.3 + 0.7*f.rng.Float64()) * particleMaxSpeed
		f.ps[i] = particle{
			x:  f.rng.Float64() * f.w,
			y:  f.rng.Float64() * f.h,
			vx: math.Cos(a) * v,
			vy: math.Sin(a) * v,
			r:  float32(1 + 2*f.rng.Float64()),
		}
	}
}

func (f *ParticleField) Started() bool { return f.ps != nil }

// Update 匀速漂移，出界从对侧回来
func (f *ParticleField) Update(dt float64) {
	for i := range f.ps {
		p := &f.ps[i]
		p.x = wrap(p.x+p.vx*dt, f.w)
		p.y = wrap(p.y+p.vy*dt, f.h)
	}
}

func wrap(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	v = math.Mod(v, max)
	if v < 0 {
		v += max
	}
	return v
}

func (f *ParticleField) Draw(dst *ebiten.Image) {
	for i := range f.ps {
		a := &f.ps[i]
		for j := i + 1; j < len(f.ps); j++ {
			b := &f.ps[j]
			d := math.Hypot(a.x-b.x, a.y-b.y)
			if d >= particleLinkDist {
				continue
			}
			k := float32(1 - d/particleLinkDist)
			al := 0.35 * k
			vector.StrokeLine(dst, float32(a.x), float32(a.y), float32(b.x), float32(b.y), 1,
				color.RGBA{uint8(0x47 * al), uint8(0xa0 * al), uint8(0xb8 * al), uint8(0xff * al)}, true)
		}
	}
	for i := range f.ps {
		p := &f.ps[i]
		vector.DrawFilledCircle(dst, float32(p.x), float32(p.y), p.r, color.RGBA{0x84, 0xa5, 0xae, 0xc0}, true)
	}
}
