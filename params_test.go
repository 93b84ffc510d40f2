package bloom

import (
	"math"
	"testing"
)

func floatNear(a, b, epsilon float32) bool {
	return float32(math.Abs(float64(a-b))) <= epsilon
}

func TestRemapScatter(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, 0.05},
		{1, 0.95},
		{0.5, 0.5},
		{0.7, 0.68},
	}
	for _, tt := range tests {
		if got := RemapScatter(tt.in); !floatNear(got, tt.want, 1e-6) {
			t.Errorf("RemapScatter(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestShaderParams(t *testing.T) {
	p := DefaultParams()
	p.Threshold = 1
	s := p.Shader()

	if s.Threshold != 1 {
		t.Errorf("Threshold = %v, want 1", s.Threshold)
	}
	if s.ThresholdKnee != 0.5 {
		t.Errorf("ThresholdKnee = %v, want 0.5", s.ThresholdKnee)
	}
	if s.Clamp != DefaultClamp {
		t.Errorf("Clamp = %v, want %v", s.Clamp, DefaultClamp)
	}
	if v := s.Vec4(); v != [4]float32{s.Scatter, s.Clamp, s.Threshold, s.ThresholdKnee} {
		t.Errorf("Vec4() = %v, want scatter/clamp/threshold/knee order", v)
	}
}

func TestShaderThresholdIsLinearized(t *testing.T) {
	tests := []struct {
		threshold float32
		want      float32
	}{
		{0, 0},
		{0.5, 0.214041},
		{0.9, 0.787412},
	}
	for _, tt := range tests {
		p := DefaultParams()
		p.Threshold = tt.threshold
		s := p.Shader()
		if !floatNear(s.Threshold, tt.want, 1e-5) {
			t.Errorf("Shader().Threshold for %v = %v, want %v", tt.threshold, s.Threshold, tt.want)
		}
		if !floatNear(s.ThresholdKnee, tt.want/2, 1e-5) {
			t.Errorf("Shader().ThresholdKnee for %v = %v, want %v", tt.threshold, s.ThresholdKnee, tt.want/2)
		}
	}
}

func TestNormalize(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name  string
		in    Params
		check func(Params) bool
	}{
		{"scatter above one", Params{Scatter: 3}, func(p Params) bool { return p.Scatter == 1 }},
		{"scatter negative", Params{Scatter: -1}, func(p Params) bool { return p.Scatter == 0 }},
		{"scatter NaN", Params{Scatter: nan}, func(p Params) bool { return p.Scatter == 0 }},
		{"iterations zero", Params{MaxIterations: 0}, func(p Params) bool { return p.MaxIterations == 1 }},
		{"iterations large", Params{MaxIterations: 40}, func(p Params) bool { return p.MaxIterations == MaxPyramidSize }},
		{"negative threshold", Params{Threshold: -2}, func(p Params) bool { return p.Threshold == 0 }},
		{"negative intensity", Params{Intensity: -2}, func(p Params) bool { return p.Intensity == 0 }},
		{"NaN clamp", Params{Clamp: nan}, func(p Params) bool { return p.Clamp == DefaultClamp }},
		{"negative clamp", Params{Clamp: -1}, func(p Params) bool { return p.Clamp == 0 }},
		{"negative tint", Params{Tint: [3]float32{-1, 0.5, 2}}, func(p Params) bool { return p.Tint == [3]float32{0, 0.5, 2} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); !tt.check(got) {
				t.Errorf("Normalize(%+v) = %+v", tt.in, got)
			}
		})
	}
}

func TestDefaultParamsAreNormalized(t *testing.T) {
	p := DefaultParams()
	if p.Normalize() != p {
		t.Errorf("DefaultParams() changes under Normalize: %+v", p.Normalize())
	}
}
