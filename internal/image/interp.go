package image

import "math"

// SampleBilinear samples b at normalized coordinates (u, v) with bilinear
// filtering and clamp-to-edge addressing, matching a GPU sampler configured
// with FilterModeLinear and AddressModeClampToEdge.
//
// (0,0) is the top-left corner of the first texel and (1,1) the bottom-right
// corner of the last one, so texel centers sit at (i+0.5)/size.
func SampleBilinear(b *Buf, u, v float64) (r, g, bl, a float32) {
	fx := u*float64(b.width) - 0.5
	fy := v*float64(b.height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := float32(fx - float64(x0))
	ty := float32(fy - float64(y0))

	// At clamps, so neighbours past the edge repeat the edge texel.
	r00, g00, b00, a00 := b.At(x0, y0)
	r10, g10, b10, a10 := b.At(x0+1, y0)
	r01, g01, b01, a01 := b.At(x0, y0+1)
	r11, g11, b11, a11 := b.At(x0+1, y0+1)

	r = lerp2D(r00, r10, r01, r11, tx, ty)
	g = lerp2D(g00, g10, g01, g11, tx, ty)
	bl = lerp2D(b00, b10, b01, b11, tx, ty)
	a = lerp2D(a00, a10, a01, a11, tx, ty)
	return r, g, bl, a
}

// TexelCenter returns the normalized coordinate of texel i in a dimension of size n.
func TexelCenter(i, n int) float64 {
	return (float64(i) + 0.5) / float64(n)
}

func lerp2D(c00, c10, c01, c11, tx, ty float32) float32 {
	top := c00 + (c10-c00)*tx
	bottom := c01 + (c11-c01)*tx
	return top + (bottom-top)*ty
}
