package filter

import (
	"math"

	"github.com/gogpu/bloom/internal/image"
)

type rgb struct {
	r, g, b float32
}

func (c rgb) add(o rgb) rgb { return rgb{c.r + o.r, c.g + o.g, c.b + o.b} }

func (c rgb) scale(s float32) rgb { return rgb{c.r * s, c.g * s, c.b * s} }

func (c rgb) min(limit float32) rgb {
	return rgb{min(c.r, limit), min(c.g, limit), min(c.b, limit)}
}

func (c rgb) lerp(o rgb, t float32) rgb {
	return rgb{c.r + (o.r-c.r)*t, c.g + (o.g-c.g)*t, c.b + (o.b-c.b)*t}
}

// sanitize maps NaN and negative channels to 0 so a single bad texel
// cannot poison the whole pyramid.
func (c rgb) sanitize() rgb {
	return rgb{positive(c.r), positive(c.g), positive(c.b)}
}

func (c rgb) split() (float32, float32, float32) { return c.r, c.g, c.b }

func positive(v float32) float32 {
	if v > 0 && !math.IsInf(float64(v), 1) {
		return v
	}
	if v > 0 {
		return math.MaxFloat32
	}
	return 0
}

func fetch(b *image.Buf, u, v float64) rgb {
	r, g, bl, _ := image.SampleBilinear(b, u, v)
	return rgb{r, g, bl}
}

// box4 averages four bilinear fetches one texel away on each diagonal,
// covering a 4x4 texel footprint.
func box4(b *image.Buf, u, v, du, dv float64) rgb {
	s := fetch(b, u-du, v-dv)
	s = s.add(fetch(b, u+du, v-dv))
	s = s.add(fetch(b, u-du, v+dv))
	s = s.add(fetch(b, u+du, v+dv))
	return s.scale(0.25)
}

// tent9 is the 3x3 tent filter with weights
//
//	1 2 1
//	2 4 2
//	1 2 1
//
// divided by 16.
func tent9(b *image.Buf, u, v, du, dv float64) rgb {
	s := fetch(b, u-du, v-dv)
	s = s.add(fetch(b, u, v-dv).scale(2))
	s = s.add(fetch(b, u+du, v-dv))

	s = s.add(fetch(b, u-du, v).scale(2))
	s = s.add(fetch(b, u, v).scale(4))
	s = s.add(fetch(b, u+du, v).scale(2))

	s = s.add(fetch(b, u-du, v+dv))
	s = s.add(fetch(b, u, v+dv).scale(2))
	s = s.add(fetch(b, u+du, v+dv))
	return s.scale(1.0 / 16)
}
