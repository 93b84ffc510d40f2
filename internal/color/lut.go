package color

import "math"

// decodeLUT maps an sRGB byte to linear float32.
var decodeLUT [256]float32

// encodeLUT maps linear [0,1] quantized to 12 bits onto an sRGB byte.
var encodeLUT [4096]uint8

func init() {
	for i := range decodeLUT {
		decodeLUT[i] = GammaToLinear(float32(i) / 255)
	}
	for i := range encodeLUT {
		s := float64(LinearToGamma(float32(i) / 4095))
		//nolint:gosec // G115: clamped to [0,255]
		encodeLUT[i] = uint8(math.Min(math.Max(s*255+0.5, 0), 255))
	}
}

// DecodeSRGB8 converts an sRGB byte to linear light.
func DecodeSRGB8(s uint8) float32 {
	return decodeLUT[s]
}

// EncodeSRGB8 converts linear light to an sRGB byte.
// Input outside [0,1] saturates.
func EncodeSRGB8(l float32) uint8 {
	if !(l > 0) {
		return 0
	}
	if l >= 1 {
		return 255
	}
	return encodeLUT[int(l*4095+0.5)]
}

// DecodeUnorm8 maps a byte to [0,1] without a transfer curve.
func DecodeUnorm8(v uint8) float32 {
	return float32(v) / 255
}

// EncodeUnorm8 maps [0,1] to a byte with rounding. Input outside [0,1] saturates.
func EncodeUnorm8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
