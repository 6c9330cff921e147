// File render/device.go
package render

import (
	"errors"
	"image"
)

var (
	ErrContextUnavailable = errors.New("render: gpu context unavailable")
	ErrContextLost        = errors.New("render: gpu context lost")
	ErrShaderCompile      = errors.New("render: shader compile failed")
	ErrShaderLink         = errors.New("render: program link failed")
	ErrTexture            = errors.New("render: texture creation failed")
)

type Stage int

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	if s == StageVertex {
		return "vertex"
	}
	return "fragment"
}

// ShaderSource 外部提供的着色器源码，渲染器只把它当数据
type ShaderSource struct {
	Vertex   string
	Fragment string
}

// Object GPU 对象句柄
type Object interface {
	Label() string
}

type Shader interface {
	Object
	Stage() Stage
}

type Program interface {
	Object
}

type Texture interface {
	Object
	Size() (w, h int)
}

type Buffer interface {
	Object
	Len() int
}

type Wrap int

const (
	WrapClampToEdge Wrap = iota
	WrapRepeat
)

type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
)

type TextureOptions struct {
	Wrap   Wrap
	Filter Filter
}

type Topology int

const (
	TriangleStrip Topology = iota
	Triangles
)

// DrawCall 一次绘制：Positions 为设备空间 (-1..1)，TexCoords 为 0..1
type DrawCall struct {
	Program   Program
	Texture   Texture
	Positions Buffer
	TexCoords Buffer
	Mode      Topology
	Count     int
	Uniforms  map[string]any
}

// Context 渲染上下文
type Context interface {
	IsLost() bool
	Viewport(w, h int)
	CompileShader(stage Stage, src string) (Shader, error)
	LinkProgram(vs, fs Shader) (Program, error)
	NewTexture(img *image.RGBA, opts TextureOptions) (Texture, error)
	NewBuffer(data []float32) (Buffer, error)
	Clear()
	Draw(call DrawCall) error
	Delete(obj Object)
}

// ContextLoser 平台支持时可以主动丢弃上下文，尽快释放显存
type ContextLoser interface {
	LoseContext()
}

// Surface 渲染目标（画布）
// DisplaySize 是逻辑尺寸，PixelSize 是实际像素尺寸（逻辑尺寸 × DPR × 渲染缩放）
type Surface interface {
	DisplaySize() (w, h int)
	DevicePixelRatio() float64
	PixelSize() (w, h int)
	SetPixelSize(w, h int)
	Context() (Context, error)
}

// stripIndices 三角带 -> 三角形索引
func stripIndices(n int) []uint16 {
	if n < 3 {
		return nil
	}
	idx := make([]uint16, 0, (n-2)*3)
	for i := 0; i+2 < n; i++ {
		if i%2 == 0 {
			idx = append(idx, uint16(i), uint16(i+1), uint16(i+2))
		} else {
			idx = append(idx, uint16(i+1), uint16(i), uint16(i+2))
		}
	}
	return idx
}
