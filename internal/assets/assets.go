package assets

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"robonexus_go/internal/render"
)

//go:embed shaders/*.kage shaders/*.vert
var shaderFS embed.FS

//go:embed images/*.svg
var imageFS embed.FS

// 简单缓存，避免重复渲染 SVG
var (
	imgMu    sync.Mutex
	imgCache = map[string]*ebiten.Image{}
)

// LiquidShaders 液体文字的着色器源码（顶点 + Kage 片元）
func LiquidShaders() (render.ShaderSource, error) {
	vs, err := shaderFS.ReadFile("shaders/liquid.vert")
	if err != nil {
		return render.ShaderSource{}, fmt.Errorf("读取顶点着色器失败: %w", err)
	}
	fs, err := shaderFS.ReadFile("shaders/liquid.kage")
	if err != nil {
		return render.ShaderSource{}, fmt.Errorf("读取片元着色器失败: %w", err)
	}
	return render.ShaderSource{Vertex: string(vs), Fragment: string(fs)}, nil
}

// LoadSVG 通过名称加载嵌入的 SVG（不含扩展名），按目标尺寸光栅化
// w 或 h 传 0 表示按比例推算
func LoadSVG(name string, w, h int) (*ebiten.Image, error) {
	key := fmt.Sprintf("%s@%dx%d", name, w, h)
	imgMu.Lock()
	defer imgMu.Unlock()
	if img := imgCache[key]; img != nil {
		return img, nil
	}
	data, err := imageFS.ReadFile("images/" + name + ".svg")
	if err != nil {
		return nil, fmt.Errorf("读取嵌入图片 %s 失败: %w", name, err)
	}
	rgba, err := rasterizeSVG(data, w, h)
	if err != nil {
		return nil, fmt.Errorf("渲染 SVG %s 失败: %w", name, err)
	}
	img := ebiten.NewImageFromImage(rgba)
	imgCache[key] = img
	return img, nil
}

// 把 SVG 字节渲染为 RGBA
func rasterizeSVG(svgData []byte, targetW, targetH int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, err
	}
	vb := icon.ViewBox
	if vb.W <= 0 || vb.H <= 0 {
		return nil, fmt.Errorf("viewBox 为空")
	}

	// 决定像素尺寸（保持比例）
	w := float64(targetW)
	h := float64(targetH)
	switch {
	case w <= 0 && h <= 0:
		w, h = vb.W, vb.H
	case w <= 0:
		w = h * vb.W / vb.H
	case h <= 0:
		h = w * vb.H / vb.W
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	icon.SetTarget(0, 0, w, h)

	dstW, dstH := int(w+0.5), int(h+0.5)
	rgba := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	// 透明底
	draw.Draw(rgba, rgba.Bounds(), image.Transparent, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(dstW, dstH, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(dstW, dstH, scanner)
	icon.Draw(dasher, 1.0)

	return rgba, nil
}
