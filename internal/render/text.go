// File render/text.go
package render

import (
	"fmt"
	"image"
	"math"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// fontBytes 根据字体族和字重挑一份内置字体
func fontBytes(family string, weight int) []byte {
	mono := strings.Contains(strings.ToLower(family), "mono")
	switch {
	case mono && weight >= 600:
		return gomonobold.TTF
	case mono:
		return gomono.TTF
	case weight >= 700:
		return gobold.TTF
	case weight >= 500:
		return gomedium.TTF
	default:
		return goregular.TTF
	}
}

// NewTextFace 按选项创建字体；size 已包含 DPR
func NewTextFace(opts Options, size float64) (font.Face, error) {
	data := fontBytes(opts.FontFamily, opts.FontWeight)
	if opts.FontFile != "" {
		b, err := os.ReadFile(opts.FontFile)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", opts.FontFile, err)
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return face, nil
}

// RasterizeText 把文字画到 (1024×512)×DPR 的透明画布上，水平垂直居中
func RasterizeText(opts Options, dpr float64) (*image.RGBA, error) {
	opts = opts.withDefaults()
	if dpr <= 0 {
		dpr = 1
	}
	w := int(math.Floor(TextureWidth * dpr))
	h := int(math.Floor(TextureHeight * dpr))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: text canvas %dx%d", ErrTexture, w, h)
	}

	face, err := NewTextFace(opts, opts.FontSize*dpr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTexture, err)
	}
	defer face.Close()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ParseHexColor(opts.Fill).RGBA()),
		Face: face,
	}
	adv := d.MeasureString(opts.Text)
	m := face.Metrics()
	// 基线居中：上移半个 (ascent - descent)
	d.Dot = fixed.Point26_6{
		X: (fixed.I(w) - adv) / 2,
		Y: fixed.I(h)/2 + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(opts.Text)
	return img, nil
}
