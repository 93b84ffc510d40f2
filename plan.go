package bloom

import (
	"fmt"
	"math"
)

// MaxPyramidSize is the fixed capacity of each pyramid chain.
const MaxPyramidSize = 16

// DownsampleShift halves the source before the pyramid starts.
const DownsampleShift = 1

// Size is a texture resolution in pixels.
type Size struct {
	Width  int
	Height int
}

// String returns the size as WxH.
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// PyramidPlan is the level layout for one frame.
type PyramidPlan struct {
	// MipCount is the number of levels, in [1, MaxPyramidSize].
	MipCount int

	// Levels holds MipCount sizes, largest first.
	Levels []Size
}

// Plan computes the pyramid for a source of the given size.
//
// The working size is the source shifted down by DownsampleShift. The level
// count is floor(log2(max(w, h)) - 1), clamped to [1, min(maxIterations, 16)].
// Each level halves the previous one with a floor of 1.
//
// Plan never fails: zero or negative sizes produce a single 1x1 level.
func Plan(sourceWidth, sourceHeight, maxIterations int) PyramidPlan {
	tw := sourceWidth >> DownsampleShift
	th := sourceHeight >> DownsampleShift

	maxSize := max(tw, th, 1)
	iterations := int(math.Floor(math.Log2(float64(maxSize)) - 1))

	limit := min(max(maxIterations, 1), MaxPyramidSize)
	mipCount := min(max(iterations, 1), limit)

	levels := make([]Size, mipCount)
	size := Size{Width: max(1, tw), Height: max(1, th)}
	for i := range levels {
		levels[i] = size
		size = Size{Width: max(1, size.Width>>1), Height: max(1, size.Height>>1)}
	}

	return PyramidPlan{MipCount: mipCount, Levels: levels}
}

// Valid reports whether the plan can drive a pyramid.
func (p PyramidPlan) Valid() bool {
	return p.MipCount >= 1 && p.MipCount <= MaxPyramidSize && len(p.Levels) == p.MipCount
}
