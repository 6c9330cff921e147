// File render/headless.go
package render

import (
	"fmt"
	"image"
	"strings"
)

// HeadlessSurface 无窗口的软件画布，用于测试和基准
// 四个开关模拟各种失败路径
type HeadlessSurface struct {
	Width, Height int
	DPR           float64

	NoContext   bool // 拿不到上下文
	LostContext bool // 拿到的上下文已丢失
	FailCompile bool
	FailTexture bool

	pixelW, pixelH int
	ctx            *HeadlessContext
}

func NewHeadlessSurface(w, h int) *HeadlessSurface {
	return &HeadlessSurface{Width: w, Height: h, DPR: 1}
}

func (s *HeadlessSurface) DisplaySize() (int, int)   { return s.Width, s.Height }
func (s *HeadlessSurface) DevicePixelRatio() float64 { return s.DPR }
func (s *HeadlessSurface) PixelSize() (int, int)     { return s.pixelW, s.pixelH }
func (s *HeadlessSurface) SetPixelSize(w, h int)     { s.pixelW, s.pixelH = w, h }

func (s *HeadlessSurface) Context() (Context, error) {
	if s.NoContext {
		return nil, ErrContextUnavailable
	}
	if s.ctx == nil {
		s.ctx = &HeadlessContext{
			surface: s,
			lost:    s.LostContext,
			live:    map[Object]struct{}{},
		}
	}
	return s.ctx, nil
}

// Device 已创建的上下文，没有时为 nil
func (s *HeadlessSurface) Device() *HeadlessContext { return s.ctx }

// HeadlessContext 只记账不画图：对象存活表、绘制次数、最后一次的 uniform
type HeadlessContext struct {
	surface *HeadlessSurface
	lost    bool
	live    map[Object]struct{}

	Created       int
	Deleted       int
	DoubleDeletes int
	Draws         int
	Clears        int
	Losses        int
	ViewportW     int
	ViewportH     int
	LastUniforms  map[string]any
}

type headlessObject struct {
	kind  string
	stage Stage
	w, h  int
	n     int
}

func (o *headlessObject) Label() string    { return o.kind }
func (o *headlessObject) Stage() Stage     { return o.stage }
func (o *headlessObject) Size() (int, int) { return o.w, o.h }
func (o *headlessObject) Len() int         { return o.n }

func (c *HeadlessContext) track(o *headlessObject) *headlessObject {
	c.live[o] = struct{}{}
	c.Created++
	return o
}

// Live 尚未删除的对象数
func (c *HeadlessContext) Live() int { return len(c.live) }

func (c *HeadlessContext) IsLost() bool { return c.lost }

func (c *HeadlessContext) Viewport(w, h int) {
	c.ViewportW, c.ViewportH = w, h
}

func (c *HeadlessContext) CompileShader(stage Stage, src string) (Shader, error) {
	if c.lost {
		return nil, ErrContextLost
	}
	if c.surface.FailCompile {
		return nil, fmt.Errorf("%s: injected compile error", stage)
	}
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty %s source", stage)
	}
	// 最低限度的语法检查：片元必须有入口
	if stage == StageFragment && !strings.Contains(src, "Fragment") {
		return nil, fmt.Errorf("fragment: no entry point")
	}
	return c.track(&headlessObject{kind: stage.String() + " shader", stage: stage}), nil
}

func (c *HeadlessContext) LinkProgram(vs, fs Shader) (Program, error) {
	if c.lost {
		return nil, ErrContextLost
	}
	if vs == nil || fs == nil || vs.Stage() != StageVertex || fs.Stage() != StageFragment {
		return nil, fmt.Errorf("link: stage mismatch")
	}
	if !c.alive(vs) || !c.alive(fs) {
		return nil, fmt.Errorf("link: deleted shader")
	}
	return c.track(&headlessObject{kind: "program"}), nil
}

func (c *HeadlessContext) NewTexture(img *image.RGBA, _ TextureOptions) (Texture, error) {
	if c.lost {
		return nil, ErrContextLost
	}
	if c.surface.FailTexture {
		return nil, fmt.Errorf("injected texture error")
	}
	b := img.Bounds()
	return c.track(&headlessObject{kind: "texture", w: b.Dx(), h: b.Dy()}), nil
}

func (c *HeadlessContext) NewBuffer(data []float32) (Buffer, error) {
	if c.lost {
		return nil, ErrContextLost
	}
	return c.track(&headlessObject{kind: "buffer", n: len(data)}), nil
}

func (c *HeadlessContext) Clear() { c.Clears++ }

func (c *HeadlessContext) Draw(call DrawCall) error {
	if c.lost {
		return ErrContextLost
	}
	for _, o := range []Object{call.Program, call.Texture, call.Positions, call.TexCoords} {
		if o == nil || !c.alive(o) {
			return fmt.Errorf("draw with released object")
		}
	}
	c.Draws++
	c.LastUniforms = make(map[string]any, len(call.Uniforms))
	for k, v := range call.Uniforms {
		if f, ok := v.([]float32); ok {
			v = append([]float32(nil), f...)
		}
		c.LastUniforms[k] = v
	}
	return nil
}

func (c *HeadlessContext) Delete(obj Object) {
	if !c.alive(obj) {
		c.DoubleDeletes++
		return
	}
	delete(c.live, obj)
	c.Deleted++
}

func (c *HeadlessContext) LoseContext() {
	c.lost = true
	c.Losses++
}

func (c *HeadlessContext) alive(o Object) bool {
	_, ok := c.live[o]
	return ok
}
