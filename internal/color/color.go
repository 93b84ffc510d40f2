// Package color holds the sRGB transfer curve used by the bloom kernels.
//
// Bloom runs entirely in linear light. The curve is needed in two places:
// linearizing the user-facing threshold control, and storing linear values in
// 8-bit sRGB pyramid buffers on devices without a packed float format.
package color

import "math"

// GammaToLinear converts a gamma-encoded (sRGB) value to linear light.
// Values above 1 follow the same power segment so HDR controls stay monotonic.
func GammaToLinear(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return float32(math.Pow(float64((s+0.055)/1.055), 2.4))
}

// LinearToGamma is the inverse of GammaToLinear.
func LinearToGamma(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*float32(math.Pow(float64(l), 1.0/2.4)) - 0.055
}

// MaxComponent returns the brightest channel, which is what the bloom
// prefilter thresholds against.
func MaxComponent(r, g, b float32) float32 {
	return max(r, max(g, b))
}
