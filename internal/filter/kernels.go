package filter

import (
	"github.com/gogpu/bloom/internal/color"
	"github.com/gogpu/bloom/internal/image"
	"github.com/gogpu/bloom/internal/parallel"
)

// Params are the per-frame uniforms shared by the bloom kernels.
// The first four fields match the packed _Params vector of the shader.
type Params struct {
	Scatter       float32
	Clamp         float32
	Threshold     float32
	ThresholdKnee float32

	// HighQuality selects the 9-tap tent for prefilter, downsample and upsample.
	HighQuality bool
}

// epsilon guards the divisions in the knee curve.
const epsilon = 1e-4

// Prefilter writes the thresholded source into dst.
//
// dst is usually half the size of src; the bilinear fetch at each
// destination texel center averages the 2x2 source footprint.
func Prefilter(pool *parallel.WorkerPool, src, dst *image.Buf, p Params) {
	sw, sh := src.Bounds()
	du, dv := 1/float64(sw), 1/float64(sh)

	forEachPixel(pool, dst, func(u, v float64) (float32, float32, float32) {
		var c rgb
		if p.HighQuality {
			c = tent9(src, u, v, du, dv)
		} else {
			c = fetch(src, u, v)
		}
		return threshold(c, p).split()
	})
}

// threshold applies the quadratic soft knee:
//
//	soft = clamp(b - t + k, 0, 2k)^2 / 4k
//	out  = c * max(b - t, soft) / b
//
// where b is the brightest channel after clamping.
func threshold(c rgb, p Params) rgb {
	c = c.sanitize().min(p.Clamp)

	brightness := color.MaxComponent(c.r, c.g, c.b)
	soft := brightness - p.Threshold + p.ThresholdKnee
	soft = min(max(soft, 0), 2*p.ThresholdKnee)
	soft = soft * soft / (4*p.ThresholdKnee + epsilon)

	contribution := max(brightness-p.Threshold, soft) / max(brightness, epsilon)
	return c.scale(contribution)
}

// Downsample filters src into dst, one pyramid level down.
func Downsample(pool *parallel.WorkerPool, src, dst *image.Buf, highQuality bool) {
	sw, sh := src.Bounds()
	du, dv := 1/float64(sw), 1/float64(sh)

	forEachPixel(pool, dst, func(u, v float64) (float32, float32, float32) {
		if highQuality {
			return tent9(src, u, v, du, dv).split()
		}
		return box4(src, u, v, du, dv).split()
	})
}

// Upsample writes mix(high, upsample(low), scatter) into dst.
// high and dst share a resolution; low is the coarser level.
func Upsample(pool *parallel.WorkerPool, low, high, dst *image.Buf, scatter float32, highQuality bool) {
	lw, lh := low.Bounds()
	du, dv := 1/float64(lw), 1/float64(lh)

	forEachPixel(pool, dst, func(u, v float64) (float32, float32, float32) {
		var lo rgb
		if highQuality {
			lo = tent9(low, u, v, du, dv)
		} else {
			lo = fetch(low, u, v)
		}
		hi := fetch(high, u, v)
		return hi.lerp(lo, scatter).split()
	})
}

// Copy resamples src into dst with a single bilinear fetch.
// Buffers of equal size and format are copied directly.
func Copy(pool *parallel.WorkerPool, src, dst *image.Buf) {
	if src.Format() == dst.Format() && dst.CopyFrom(src) == nil {
		return
	}
	forEachPixel(pool, dst, func(u, v float64) (float32, float32, float32) {
		return fetch(src, u, v).split()
	})
}

// Composite adds bloom * intensity * tint onto frame in place.
// The frame keeps its alpha.
func Composite(pool *parallel.WorkerPool, frame, bloom *image.Buf, intensity float32, tint [3]float32) {
	w, h := frame.Bounds()
	run := func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := image.TexelCenter(y, h)
			for x := 0; x < w; x++ {
				b := fetch(bloom, image.TexelCenter(x, w), v)
				r, g, bl, a := frame.At(x, y)
				frame.Set(x, y,
					r+b.r*intensity*tint[0],
					g+b.g*intensity*tint[1],
					bl+b.b*intensity*tint[2],
					a)
			}
		}
	}
	rows(pool, h, run)
}

// forEachPixel evaluates fn at every destination texel center and stores
// the result with alpha 1.
func forEachPixel(pool *parallel.WorkerPool, dst *image.Buf, fn func(u, v float64) (float32, float32, float32)) {
	w, h := dst.Bounds()
	rows(pool, h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := image.TexelCenter(y, h)
			for x := 0; x < w; x++ {
				r, g, b := fn(image.TexelCenter(x, w), v)
				dst.Set(x, y, r, g, b, 1)
			}
		}
	})
}

func rows(pool *parallel.WorkerPool, height int, fn func(y0, y1 int)) {
	if pool == nil {
		fn(0, height)
		return
	}
	pool.Rows(height, fn)
}
