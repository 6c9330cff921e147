// File render/options.go
package render

// 文字纹理的逻辑尺寸，实际像素再乘 DPR
const (
	TextureWidth  = 1024
	TextureHeight = 512
)

// Options 渲染参数；强度/半径之后只由质量控制器修改
type Options struct {
	Text       string
	FontFamily string // "go" 或 "go-mono"
	FontWeight int
	FontSize   float64
	FontFile   string // 可选，TTF/OTF 路径，优先于 FontFamily
	Fill       string

	GradientStart string
	GradientEnd   string

	DistortionStrength float64
	DistortionRadius   float64
	MinFPS             float64
}

func DefaultOptions() Options {
	return Options{
		Text:               "Robo Nexus",
		FontFamily:         "go",
		FontWeight:         900,
		FontSize:           120,
		Fill:               "#ffffff",
		GradientStart:      "#ffffff",
		GradientEnd:        "#47a0b8",
		DistortionStrength: 0.15,
		DistortionRadius:   0.25,
		MinFPS:             30,
	}
}

// withDefaults 零值和越界值回落到默认值
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Text == "" {
		o.Text = d.Text
	}
	if o.FontFamily == "" {
		o.FontFamily = d.FontFamily
	}
	if o.FontWeight <= 0 {
		o.FontWeight = d.FontWeight
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	if o.Fill == "" {
		o.Fill = d.Fill
	}
	if o.GradientStart == "" {
		o.GradientStart = d.GradientStart
	}
	if o.GradientEnd == "" {
		o.GradientEnd = d.GradientEnd
	}
	if !inUnit(o.DistortionStrength) {
		o.DistortionStrength = d.DistortionStrength
	}
	if !inUnit(o.DistortionRadius) {
		o.DistortionRadius = d.DistortionRadius
	}
	if o.MinFPS <= 0 {
		o.MinFPS = d.MinFPS
	}
	return o
}

// inUnit v ∈ (0,1]
func inUnit(v float64) bool {
	return v > 0 && v <= 1
}
