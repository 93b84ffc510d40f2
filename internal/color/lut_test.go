package color

import (
	"math"
	"testing"
)

func floatNear(a, b, epsilon float32) bool {
	return float32(math.Abs(float64(a-b))) <= epsilon
}

func TestGammaToLinearEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"zero", 0, 0},
		{"one", 1, 1},
		{"linear segment", 0.04, 0.04 / 12.92},
		{"mid gray", 0.5, 0.21404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GammaToLinear(tt.in)
			if !floatNear(got, tt.want, 1e-4) {
				t.Errorf("GammaToLinear(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGammaRoundTrip(t *testing.T) {
	for i := 0; i <= 100; i++ {
		v := float32(i) / 100
		got := GammaToLinear(LinearToGamma(v))
		if !floatNear(got, v, 1e-5) {
			t.Errorf("round trip %v = %v", v, got)
		}
	}
}

func TestGammaToLinearMonotonicAboveOne(t *testing.T) {
	prev := GammaToLinear(1)
	for _, v := range []float32{1.5, 2, 4, 10} {
		got := GammaToLinear(v)
		if got <= prev {
			t.Errorf("GammaToLinear(%v) = %v, want > %v", v, got, prev)
		}
		prev = got
	}
}

func TestSRGB8RoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		got := EncodeSRGB8(DecodeSRGB8(uint8(i)))
		if got != uint8(i) {
			t.Errorf("EncodeSRGB8(DecodeSRGB8(%d)) = %d", i, got)
		}
	}
}

func TestEncodeSaturates(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{-1, 0},
		{0, 0},
		{1, 255},
		{12.5, 255},
		{float32(math.NaN()), 0},
	}
	for _, tt := range tests {
		if got := EncodeSRGB8(tt.in); got != tt.want {
			t.Errorf("EncodeSRGB8(%v) = %d, want %d", tt.in, got, tt.want)
		}
		if got := EncodeUnorm8(tt.in); got != tt.want {
			t.Errorf("EncodeUnorm8(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMaxComponent(t *testing.T) {
	if got := MaxComponent(0.2, 3, 1); got != 3 {
		t.Errorf("MaxComponent = %v, want 3", got)
	}
}
