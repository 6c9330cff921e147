// File render/color.go
package render

import (
	"image/color"
	"strconv"
	"strings"
)

// RGB 归一化到 0..1 的颜色
type RGB struct {
	R, G, B float32
}

var white = RGB{1, 1, 1}

// ParseHexColor 解析 "#rrggbb" 或 "rrggbb"（不区分大小写），其它格式一律返回白色
func ParseHexColor(s string) RGB {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return white
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return white
	}
	return RGB{
		R: float32((v>>16)&0xFF) / 255,
		G: float32((v>>8)&0xFF) / 255,
		B: float32(v&0xFF) / 255,
	}
}

// Slice 作为 vec3 uniform 传入
func (c RGB) Slice() []float32 {
	return []float32{c.R, c.G, c.B}
}

// RGBA 转 image/color，alpha 固定不透明
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(c.R*255 + 0.5),
		G: uint8(c.G*255 + 0.5),
		B: uint8(c.B*255 + 0.5),
		A: 0xFF,
	}
}
