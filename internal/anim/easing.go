// File anim/easing.go
package anim

import "math"

// Ease 把线性进度 [0,1] 映射为缓动进度
type Ease func(t float64) float64

func Linear(t float64) float64 { return t }

// Power2In 二次方缓入
func Power2In(t float64) float64 { return t * t }

func Power2Out(t float64) float64 {
	u := 1 - t
	return 1 - u*u
}

func Power2InOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	u := -2*t + 2
	return 1 - u*u/2
}

func SineInOut(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// clamp01 越界进度一律夹到 [0,1]
func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// Lerp 线性插值
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
