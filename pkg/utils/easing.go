package utils

import "math"

// 缓动函数，输入进度 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]。
//
// 参考：https://easings.net/

// EaseOutCubic 三次方缓出，开始快、结束慢（魔法文字上升使用）
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-Clamp01(t), 3)
}

// EaseInOutQuad 二次方缓入缓出（庆祝背景渐变使用）
func EaseInOutQuad(t float64) float64 {
	t = Clamp01(t)
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - math.Pow(-2*t+2, 2)/2
}

// Lerp 线性插值：a + (b-a)*t
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 将值限制在 [0, 1]
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
