// File render/ebiten.go
package render

import (
	"fmt"
	"image"
	"strings"

	mgl "github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenSurface 离屏 ebiten.Image 作为画布
// ebiten 自带顶点阶段，顶点源码只做非空校验；片元源码是 Kage
type EbitenSurface struct {
	displayW, displayH int
	dpr                float64
	pixelW, pixelH     int
	ctx                *ebitenContext
}

func NewEbitenSurface(w, h int, dpr float64) *EbitenSurface {
	if dpr <= 0 {
		dpr = 1
	}
	return &EbitenSurface{displayW: w, displayH: h, dpr: dpr}
}

func (s *EbitenSurface) DisplaySize() (int, int)   { return s.displayW, s.displayH }
func (s *EbitenSurface) DevicePixelRatio() float64 { return s.dpr }
func (s *EbitenSurface) PixelSize() (int, int)     { return s.pixelW, s.pixelH }

func (s *EbitenSurface) SetPixelSize(w, h int) {
	s.pixelW, s.pixelH = w, h
	if s.ctx != nil && !s.ctx.lost {
		s.ctx.Viewport(w, h)
	}
}

// SetDisplaySize 窗口缩放或 DPR 变化时更新，像素尺寸等渲染器下一次 resize
func (s *EbitenSurface) SetDisplaySize(w, h int, dpr float64) {
	s.displayW, s.displayH = w, h
	if dpr > 0 {
		s.dpr = dpr
	}
}

// Context 第一次调用时创建；丢失后再取到的还是同一个（已丢失的）上下文
func (s *EbitenSurface) Context() (Context, error) {
	if s.ctx == nil {
		s.ctx = &ebitenContext{}
	}
	return s.ctx, nil
}

// Target 当前渲染结果，没有上下文或已丢失时为 nil
func (s *EbitenSurface) Target() *ebiten.Image {
	if s.ctx == nil || s.ctx.lost {
		return nil
	}
	return s.ctx.target
}

type ebitenContext struct {
	target *ebiten.Image
	lost   bool
}

type ebitenShader struct {
	stage Stage
	src   string
	kage  *ebiten.Shader
}

func (s *ebitenShader) Label() string { return s.stage.String() + " shader" }
func (s *ebitenShader) Stage() Stage  { return s.stage }

type ebitenProgram struct {
	shader *ebiten.Shader
}

func (p *ebitenProgram) Label() string { return "program" }

type ebitenTexture struct {
	img  *ebiten.Image
	w, h int
	opts TextureOptions
}

func (t *ebitenTexture) Label() string    { return "texture" }
func (t *ebitenTexture) Size() (int, int) { return t.w, t.h }

type ebitenBuffer struct {
	data []float32
}

func (b *ebitenBuffer) Label() string { return "buffer" }
func (b *ebitenBuffer) Len() int      { return len(b.data) }

func (c *ebitenContext) IsLost() bool { return c.lost }

func (c *ebitenContext) Viewport(w, h int) {
	if c.lost || w <= 0 || h <= 0 {
		return
	}
	if c.target != nil {
		b := c.target.Bounds()
		if b.Dx() == w && b.Dy() == h {
			return
		}
		c.target.Deallocate()
	}
	c.target = ebiten.NewImage(w, h)
}

func (c *ebitenContext) CompileShader(stage Stage, src string) (Shader, error) {
	if c.lost {
		return nil, ErrContextLost
	}
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty %s source", stage)
	}
	sh := &ebitenShader{stage: stage, src: src}
	if stage == StageFragment {
		k, err := ebiten.NewShader([]byte(src))
		if err != nil {
			return nil, fmt.Errorf("kage: %w", err)
		}
		sh.kage = k
	}
	return sh, nil
}

func (c *ebitenContext) LinkProgram(vs, fs Shader) (Program, error) {
	if c.lost {
		return nil, ErrContextLost
	}
	v, ok1 := vs.(*ebitenShader)
	f, ok2 := fs.(*ebitenShader)
	if !ok1 || !ok2 || v.stage != StageVertex || f.stage != StageFragment || f.kage == nil {
		return nil, fmt.Errorf("link: need one vertex and one compiled fragment shader")
	}
	return &ebitenProgram{shader: f.kage}, nil
}

func (c *ebitenContext) NewTexture(img *image.RGBA, opts TextureOptions) (Texture, error) {
	if c.lost {
		return nil, ErrContextLost
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	return &ebitenTexture{img: ebiten.NewImageFromImage(img), w: b.Dx(), h: b.Dy(), opts: opts}, nil
}

func (c *ebitenContext) NewBuffer(data []float32) (Buffer, error) {
	if c.lost {
		return nil, ErrContextLost
	}
	return &ebitenBuffer{data: append([]float32(nil), data...)}, nil
}

func (c *ebitenContext) Clear() {
	if c.target != nil {
		c.target.Clear()
	}
}

// Draw 设备空间坐标换算到目标像素，纹理坐标换算到源图像素
func (c *ebitenContext) Draw(call DrawCall) error {
	if c.lost {
		return ErrContextLost
	}
	if c.target == nil {
		return fmt.Errorf("no viewport")
	}
	prog, ok := call.Program.(*ebitenProgram)
	if !ok || prog.shader == nil {
		return fmt.Errorf("invalid program")
	}
	tex, ok := call.Texture.(*ebitenTexture)
	if !ok || tex.img == nil {
		return fmt.Errorf("invalid texture")
	}
	pos, ok1 := call.Positions.(*ebitenBuffer)
	tc, ok2 := call.TexCoords.(*ebitenBuffer)
	if !ok1 || !ok2 || len(pos.data) < call.Count*2 || len(tc.data) < call.Count*2 {
		return fmt.Errorf("vertex buffers too short for %d vertices", call.Count)
	}

	b := c.target.Bounds()
	viewport := viewportMatrix(float32(b.Dx()), float32(b.Dy()))
	texel := mgl.Scale2D(float32(tex.w), float32(tex.h))
	vs := make([]ebiten.Vertex, call.Count)
	for i := range vs {
		d := viewport.Mul3x1(mgl.Vec3{pos.data[i*2], pos.data[i*2+1], 1})
		s := texel.Mul3x1(mgl.Vec3{tc.data[i*2], tc.data[i*2+1], 1})
		vs[i] = ebiten.Vertex{
			DstX:   d.X(),
			DstY:   d.Y(),
			SrcX:   s.X(),
			SrcY:   s.Y(),
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		}
	}
	var idx []uint16
	if call.Mode == TriangleStrip {
		idx = stripIndices(call.Count)
	} else {
		idx = make([]uint16, call.Count)
		for i := range idx {
			idx[i] = uint16(i)
		}
	}

	uniforms := make(map[string]any, len(call.Uniforms)+2)
	for k, v := range call.Uniforms {
		uniforms[k] = v
	}
	for k, v := range samplerUniforms(tex.opts) {
		uniforms[k] = v
	}
	op := &ebiten.DrawTrianglesShaderOptions{Uniforms: uniforms}
	op.Images[0] = tex.img
	c.target.DrawTrianglesShader(vs, idx, prog.shader, op)
	return nil
}

// samplerUniforms Kage 没有采样器状态，环绕和过滤方式交给片元着色器自己处理
func samplerUniforms(opts TextureOptions) map[string]any {
	u := map[string]any{UniformRepeat: float32(0), UniformNearest: float32(0)}
	if opts.Wrap == WrapRepeat {
		u[UniformRepeat] = float32(1)
	}
	if opts.Filter == FilterNearest {
		u[UniformNearest] = float32(1)
	}
	return u
}

// viewportMatrix 设备空间 [-1,1]² 到目标像素，Y 轴向下
func viewportMatrix(w, h float32) mgl.Mat3 {
	return mgl.Translate2D(w/2, h/2).Mul3(mgl.Scale2D(w/2, -h/2))
}

func (c *ebitenContext) Delete(obj Object) {
	switch o := obj.(type) {
	case *ebitenShader:
		if o.kage != nil {
			o.kage.Deallocate()
			o.kage = nil
		}
	case *ebitenProgram:
		o.shader = nil
	case *ebitenTexture:
		if o.img != nil {
			o.img.Deallocate()
			o.img = nil
		}
	case *ebitenBuffer:
		o.data = nil
	}
}

// LoseContext 释放离屏目标，之后所有调用都失败
func (c *ebitenContext) LoseContext() {
	if c.lost {
		return
	}
	c.lost = true
	if c.target != nil {
		c.target.Deallocate()
		c.target = nil
	}
}
