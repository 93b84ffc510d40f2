package bloom

import (
	"math"

	"github.com/gogpu/bloom/internal/color"
)

// Scatter is remapped into this range so neither extreme collapses the
// upsample blend onto a single level.
const (
	MinScatter = 0.05
	MaxScatter = 0.95
)

// DefaultClamp is the largest value the prefilter lets through.
// It sits just under the half-float maximum.
const DefaultClamp = 65472

// Params are the per-frame bloom controls.
type Params struct {
	// Threshold is the gamma-space brightness where bloom starts.
	Threshold float32

	// Intensity scales the bloom layer when it is composited.
	Intensity float32

	// Scatter in [0, 1] sets how far bloom spreads across levels.
	Scatter float32

	// Clamp caps source brightness before thresholding.
	Clamp float32

	// Tint multiplies the bloom layer per channel.
	Tint [3]float32

	// MaxIterations bounds the pyramid depth, in [1, MaxPyramidSize].
	MaxIterations int

	// HighQualityFiltering switches downsample and upsample to a 9-tap tent.
	HighQualityFiltering bool
}

// DefaultParams returns the stock bloom settings.
func DefaultParams() Params {
	return Params{
		Threshold:     0.9,
		Intensity:     1,
		Scatter:       0.7,
		Clamp:         DefaultClamp,
		Tint:          [3]float32{1, 1, 1},
		MaxIterations: 6,
	}
}

// Normalize returns p with every field in its valid range.
// NaN controls fall back to 0, except Clamp which falls back to DefaultClamp.
func (p Params) Normalize() Params {
	p.Threshold = nonNegative(p.Threshold)
	p.Intensity = nonNegative(p.Intensity)
	p.Scatter = min(nonNegative(p.Scatter), 1)
	if isNaN(p.Clamp) {
		p.Clamp = DefaultClamp
	}
	p.Clamp = max(p.Clamp, 0)
	for i, c := range p.Tint {
		p.Tint[i] = nonNegative(c)
	}
	p.MaxIterations = min(max(p.MaxIterations, 1), MaxPyramidSize)
	return p
}

// ShaderParams are the uniforms shared by every bloom blit.
// The first four fields are the packed _Params vector.
type ShaderParams struct {
	Scatter       float32
	Clamp         float32
	Threshold     float32
	ThresholdKnee float32

	// HighQuality selects the tent filter variants.
	HighQuality bool
}

// Shader derives the uniforms from normalized params.
// Threshold is converted from gamma to linear light and the knee is half of it.
func (p Params) Shader() ShaderParams {
	threshold := color.GammaToLinear(p.Threshold)
	return ShaderParams{
		Scatter:       RemapScatter(p.Scatter),
		Clamp:         p.Clamp,
		Threshold:     threshold,
		ThresholdKnee: threshold * 0.5,
		HighQuality:   p.HighQualityFiltering,
	}
}

// RemapScatter maps a [0, 1] scatter control onto [MinScatter, MaxScatter].
func RemapScatter(s float32) float32 {
	return lerp(MinScatter, MaxScatter, s)
}

// Vec4 returns the packed (scatter, clamp, threshold, thresholdKnee) vector.
func (s ShaderParams) Vec4() [4]float32 {
	return [4]float32{s.Scatter, s.Clamp, s.Threshold, s.ThresholdKnee}
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func nonNegative(v float32) float32 {
	if v > 0 {
		return v
	}
	return 0
}

func isNaN(v float32) bool {
	return math.IsNaN(float64(v))
}
